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

package graph

import (
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graph_request_latency_seconds",
			Help:    "The latency of graph api requests.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"operation"},
	)
	requestErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graph_request_errors",
			Help: "This count of graph api requests encountering errors",
		},
		[]string{"operation", "reason"},
	)

	resourceSegments = map[string]struct{}{
		"todo": {}, "lists": {}, "tasks": {},
		"onenote": {}, "notebooks": {}, "sectionGroups": {}, "sections": {}, "pages": {}, "content": {},
	}
)

func init() {
	prometheus.MustRegister(
		requestLatency,
		requestErrorCounter,
	)
}

func logRequestLatency(operation string, startAt time.Time) {
	requestLatency.WithLabelValues(operation).Observe(time.Since(startAt).Seconds())
}

// operationOf keeps the resource names of a request path and drops ids,
// so next links and per-node urls share one label value.
func operationOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	var parts []string
	for _, seg := range strings.Split(u.Path, "/") {
		if _, ok := resourceSegments[seg]; ok {
			parts = append(parts, seg)
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, "/")
}
