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
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/basenana/graphdump/pkg/types"
)

var (
	ledgerOperationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_operation_latency_seconds",
			Help:    "The latency of download ledger operation.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		},
		[]string{"operation"},
	)
	ledgerOperationErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operation_errors",
			Help: "This count of download ledger encountering errors",
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(
		ledgerOperationLatency,
		ledgerOperationErrorCounter,
	)
}

type instrumentalLedger struct {
	l Ledger
}

var _ Ledger = instrumentalLedger{}

func (i instrumentalLedger) Get(ctx context.Context, id string) (*Record, error) {
	const operation = "get"
	defer logOperationLatency(operation, time.Now())
	r, err := i.l.Get(ctx, id)
	if !errors.Is(err, types.ErrNotFound) {
		logOperationError(operation, err)
	}
	return r, err
}

func (i instrumentalLedger) Save(ctx context.Context, record *Record) error {
	const operation = "save"
	defer logOperationLatency(operation, time.Now())
	err := i.l.Save(ctx, record)
	logOperationError(operation, err)
	return err
}

func (i instrumentalLedger) List(ctx context.Context, status Status) ([]*Record, error) {
	const operation = "list"
	defer logOperationLatency(operation, time.Now())
	records, err := i.l.List(ctx, status)
	logOperationError(operation, err)
	return records, err
}

func (i instrumentalLedger) Close() error {
	return i.l.Close()
}

func logOperationLatency(operation string, startAt time.Time) {
	ledgerOperationLatency.WithLabelValues(operation).Observe(time.Since(startAt).Seconds())
}

func logOperationError(operation string, err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		ledgerOperationErrorCounter.WithLabelValues(operation).Inc()
	}
}
