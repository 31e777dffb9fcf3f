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

package downloader

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	attemptCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "downloader_attempts",
			Help: "This count of content download attempts",
		},
		[]string{"result"},
	)
	roundRunCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "downloader_rounds",
			Help: "This count of download rounds",
		},
	)
	pendingGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "downloader_pending_items",
			Help: "The number of items still failing after the last round",
		},
	)
)

func init() {
	prometheus.MustRegister(
		attemptCounter,
		roundRunCounter,
		pendingGauge,
	)
}
