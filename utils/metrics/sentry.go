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

package metrics

import (
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry enables crash reporting when a DSN is configured, the
// SENTRY_DSN environment variable wins over the config value.
// The returned func flushes pending events and is always safe to call.
func InitSentry(dsn, release string) (func(), error) {
	if envDSN, ok := os.LookupEnv("SENTRY_DSN"); ok {
		dsn = envDSN
	}
	if dsn == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{Dsn: dsn, Release: release, TracesSampleRate: 0.2})
	if err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}
