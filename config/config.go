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

type Config struct {
	Graph    Graph    `json:"graph"`
	Filter   Filter   `json:"filter"`
	Download Download `json:"download"`
	Output   Output   `json:"output"`
	Ledger   Ledger   `json:"ledger"`
	Metric   *Metric  `json:"metric,omitempty"`

	SentryDSN string `json:"sentry_dsn,omitempty"`
	Debug     bool   `json:"debug,omitempty"`
}

type Graph struct {
	BaseURL        string `json:"base_url"`
	User           string `json:"user,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	PageSize       int    `json:"page_size,omitempty"`
}

// Filter selects the branches a crawl descends into.
// Include and Exclude are name globs, Kinds limits which node kinds they apply to,
// CEL is an optional expression over kind, id, name, created_at and modified_at.
type Filter struct {
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
	Kinds   []string `json:"kinds,omitempty"`
	CEL     string   `json:"cel,omitempty"`
}

type Download struct {
	Enable     bool   `json:"enable"`
	MaxRounds  uint   `json:"max_rounds"`
	DelayMs    int    `json:"delay_ms,omitempty"`
	MaxDelayMs int    `json:"max_delay_ms,omitempty"`
	Markdown   bool   `json:"markdown,omitempty"`
	Selector   string `json:"selector,omitempty"`
}

type Output struct {
	Storage      Storage `json:"storage"`
	Compress     string  `json:"compress,omitempty"`
	SectionsOnly bool    `json:"sections_only,omitempty"`
}

type Ledger struct {
	Type string `json:"type"`
	Path string `json:"path,omitempty"`
	DSN  string `json:"dsn,omitempty"`
}

type Metric struct {
	PushGateway string `json:"push_gateway"`
	Job         string `json:"job,omitempty"`
}
