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

package export

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	exportedItemCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_items",
			Help: "This count of items written into snapshots",
		},
		[]string{"kind"},
	)
	partialSnapshotCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_partial_snapshots",
			Help: "This count of snapshots with missing branches",
		},
		[]string{"snapshot"},
	)
)

func init() {
	prometheus.MustRegister(
		exportedItemCounter,
		partialSnapshotCounter,
	)
}

func (e *Exporter) pushMetrics(ctx context.Context) {
	m := e.cfg.Metric
	if m == nil || m.PushGateway == "" {
		return
	}
	err := push.New(m.PushGateway, m.Job).
		Gatherer(prometheus.DefaultGatherer).
		Grouping("run_id", e.runID).
		PushContext(ctx)
	if err != nil {
		e.logger.Warnw("push metrics failed", "gateway", m.PushGateway, "err", err)
	}
}
