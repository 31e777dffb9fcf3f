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
	"fmt"
	"time"

	"github.com/basenana/graphdump/config"
	"github.com/basenana/graphdump/pkg/types"
)

type Status string

const (
	StatusDone   Status = "done"
	StatusFailed Status = "failed"
)

// Record is what the ledger remembers about one downloaded leaf.
type Record struct {
	ID           string
	Kind         types.NodeKind
	Title        string
	ContentURL   string
	StoredKey    string
	Status       Status
	Attempts     int
	LastError    string
	LastModified time.Time
	RunID        string
	UpdatedAt    time.Time
}

// UpToDate reports whether the record already holds the content of a leaf last modified at modified.
func (r *Record) UpToDate(modified time.Time) bool {
	return r != nil && r.Status == StatusDone && r.LastModified.Equal(modified)
}

// Ledger persists download outcomes across runs so unchanged pages are not fetched again.
type Ledger interface {
	Get(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, record *Record) error
	List(ctx context.Context, status Status) ([]*Record, error)
	Close() error
}

func New(cfg config.Ledger) (Ledger, error) {
	var (
		l   Ledger
		err error
	)
	switch cfg.Type {
	case config.MemoryLedger, "":
		l = newMemoryLedger()
	case config.SqliteLedger:
		l, err = newSqliteLedger(cfg.Path)
	case config.PostgresLedger:
		l, err = newPostgresLedger(cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: unknow ledger type: %s", types.ErrInvalidConfig, cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	return instrumentalLedger{l: l}, nil
}
