// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package collector

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsIngest holds Prometheus metrics for the ingestion subsystem.
type metricsIngest struct {
	once sync.Once

	recordsTotal  prometheus.Counter
	batchesTotal  prometheus.Counter
	errorsTotal   prometheus.Counter
	ingestSeconds prometheus.Histogram
}

var ingestMetrics metricsIngest

func (m *metricsIngest) init() {
	m.once.Do(func() {
		m.recordsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twiz_ingest_records_total",
			Help: "Total batch records applied to the store",
		})
		m.batchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twiz_ingest_batches_total",
			Help: "Total ingest batches accepted",
		})
		m.errorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "twiz_ingest_errors_total",
			Help: "Total ingest batches that failed and were rolled back",
		})
		m.ingestSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "twiz_ingest_duration_seconds",
			Help:    "Duration of one batch ingest transaction",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		})

		prometheus.MustRegister(
			m.recordsTotal, m.batchesTotal, m.errorsTotal, m.ingestSeconds,
		)
	})
}

func recordBatchApplied(recordCount int, seconds float64) {
	ingestMetrics.init()
	ingestMetrics.batchesTotal.Inc()
	ingestMetrics.recordsTotal.Add(float64(recordCount))
	ingestMetrics.ingestSeconds.Observe(seconds)
}

func recordBatchError() {
	ingestMetrics.init()
	ingestMetrics.errorsTotal.Inc()
}
