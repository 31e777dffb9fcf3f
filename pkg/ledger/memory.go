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
	"sort"
	"sync"
	"time"

	"github.com/basenana/graphdump/pkg/types"
)

type memoryLedger struct {
	records map[string]Record
	mux     sync.Mutex
}

var _ Ledger = &memoryLedger{}

func (m *memoryLedger) Get(ctx context.Context, id string) (*Record, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &r, nil
}

func (m *memoryLedger) Save(ctx context.Context, record *Record) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	record.UpdatedAt = time.Now()
	m.records[record.ID] = *record
	return nil
}

func (m *memoryLedger) List(ctx context.Context, status Status) ([]*Record, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	result := make([]*Record, 0)
	for id := range m.records {
		r := m.records[id]
		if status != "" && r.Status != status {
			continue
		}
		result = append(result, &r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *memoryLedger) Close() error {
	return nil
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{records: map[string]Record{}}
}
