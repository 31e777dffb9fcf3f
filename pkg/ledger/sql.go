/*
 Copyright 2023 NanaFS Authors.

 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package ledger

import (
	"context"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/basenana/graphdump/pkg/ledger/db"
	"github.com/basenana/graphdump/pkg/types"
	"github.com/basenana/graphdump/utils"
)

type sqlLedger struct {
	dbEntity *gorm.DB
}

var _ Ledger = &sqlLedger{}

func (s *sqlLedger) Get(ctx context.Context, id string) (*Record, error) {
	defer utils.TraceRegion(ctx, "ledger.sql.get")()
	model := &db.DownloadRecord{}
	res := s.dbEntity.WithContext(ctx).Where("id = ?", id).First(model)
	if res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}
	return modelToRecord(model), nil
}

func (s *sqlLedger) Save(ctx context.Context, record *Record) error {
	defer utils.TraceRegion(ctx, "ledger.sql.save")()
	record.UpdatedAt = time.Now()
	model := recordToModel(record)
	res := s.dbEntity.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(model)
	return db.SqlError2Error(res.Error)
}

func (s *sqlLedger) List(ctx context.Context, status Status) ([]*Record, error) {
	defer utils.TraceRegion(ctx, "ledger.sql.list")()
	var models []db.DownloadRecord
	tx := s.dbEntity.WithContext(ctx)
	if status != "" {
		tx = tx.Where("status = ?", string(status))
	}
	if res := tx.Order("id").Find(&models); res.Error != nil {
		return nil, db.SqlError2Error(res.Error)
	}
	result := make([]*Record, 0, len(models))
	for i := range models {
		result = append(result, modelToRecord(&models[i]))
	}
	return result, nil
}

func (s *sqlLedger) Close() error {
	dbConn, err := s.dbEntity.DB()
	if err != nil {
		return err
	}
	return dbConn.Close()
}

func newSqliteLedger(path string) (*sqlLedger, error) {
	if err := utils.Mkdir(filepath.Dir(path)); err != nil {
		return nil, errors.Wrap(err, "prepare ledger dir failed")
	}
	dbEntity, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: db.NewDbLogger()})
	if err != nil {
		return nil, err
	}

	dbConn, err := dbEntity.DB()
	if err != nil {
		return nil, err
	}
	// one writer, the sqlite file is locked per connection
	dbConn.SetMaxOpenConns(1)

	if err = dbConn.Ping(); err != nil {
		return nil, err
	}
	return buildSqlLedger(dbEntity)
}

func newPostgresLedger(dsn string) (*sqlLedger, error) {
	dbEntity, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: db.NewDbLogger()})
	if err != nil {
		return nil, err
	}

	dbConn, err := dbEntity.DB()
	if err != nil {
		return nil, err
	}

	dbConn.SetMaxIdleConns(2)
	dbConn.SetMaxOpenConns(5)
	dbConn.SetConnMaxLifetime(time.Hour)

	if err = dbConn.Ping(); err != nil {
		return nil, err
	}
	return buildSqlLedger(dbEntity)
}

func buildSqlLedger(dbEntity *gorm.DB) (*sqlLedger, error) {
	if err := db.Migrate(dbEntity); err != nil {
		return nil, errors.Wrap(err, "migrate ledger failed")
	}
	return &sqlLedger{dbEntity: dbEntity}, nil
}

func recordToModel(r *Record) *db.DownloadRecord {
	return &db.DownloadRecord{
		ID:           r.ID,
		Kind:         string(r.Kind),
		Title:        r.Title,
		ContentURL:   r.ContentURL,
		StoredKey:    r.StoredKey,
		Status:       string(r.Status),
		Attempts:     r.Attempts,
		LastError:    r.LastError,
		LastModified: toUnixNano(r.LastModified),
		RunID:        r.RunID,
		UpdatedAt:    toUnixNano(r.UpdatedAt),
	}
}

func modelToRecord(m *db.DownloadRecord) *Record {
	return &Record{
		ID:           m.ID,
		Kind:         types.NodeKind(m.Kind),
		Title:        m.Title,
		ContentURL:   m.ContentURL,
		StoredKey:    m.StoredKey,
		Status:       Status(m.Status),
		Attempts:     m.Attempts,
		LastError:    m.LastError,
		LastModified: fromUnixNano(m.LastModified),
		RunID:        m.RunID,
		UpdatedAt:    fromUnixNano(m.UpdatedAt),
	}
}

func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
