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

package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	crawledNodeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_nodes",
			Help: "This count of crawled nodes",
		},
		[]string{"kind"},
	)
	skippedNodeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_skipped_nodes",
			Help: "This count of nodes rejected by the filter",
		},
		[]string{"kind"},
	)
	branchFailureCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_branch_failures",
			Help: "This count of branches whose children could not be listed",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		crawledNodeCounter,
		skippedNodeCounter,
		branchFailureCounter,
	)
}
