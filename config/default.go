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

package config

import (
	"path"
)

const (
	defaultStorageID     = "local-export"
	defaultMaxRounds     = 5
	defaultDelayMs       = 500
	defaultMaxDelayMs    = 30 * 1000
	defaultTimeoutSecond = 60
	defaultSelector      = "body"
	defaultMetricJob     = "graphdump"
)

func DefaultConfig(workdir string) Config {
	return Config{
		Graph: Graph{
			BaseURL:        DefaultGraphBaseURL,
			TimeoutSeconds: defaultTimeoutSecond,
		},
		Download: Download{
			Enable:     true,
			MaxRounds:  defaultMaxRounds,
			DelayMs:    defaultDelayMs,
			MaxDelayMs: defaultMaxDelayMs,
			Selector:   defaultSelector,
		},
		Output: Output{
			Storage: Storage{
				ID:       defaultStorageID,
				Type:     LocalStorage,
				LocalDir: path.Join(workdir, defaultExportDir),
			},
		},
		Ledger: Ledger{
			Type: MemoryLedger,
		},
	}
}

// DefaultPersistentConfig is what `config init` writes: the ledger survives between runs.
func DefaultPersistentConfig(workdir string) Config {
	cfg := DefaultConfig(workdir)
	cfg.Ledger = Ledger{
		Type: SqliteLedger,
		Path: path.Join(workdir, defaultLedgerFile),
	}
	return cfg
}
