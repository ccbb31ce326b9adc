// Copyright 2025 Zintix Labs
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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/zintix-labs/casinolab"
)

// poolCollector 每次抓取時讀一次機台池快照(pull)，不另外維護狀態
type poolCollector struct {
	snapshot func() []casinolab.MachinePoolMetrics

	available *prometheus.Desc
	inflight  *prometheus.Desc
	size      *prometheus.Desc
	broken    *prometheus.Desc
	rebuild   *prometheus.Desc
	panics    *prometheus.Desc
	fatals    *prometheus.Desc
	closed    *prometheus.Desc
}

func newPoolCollector(snapshot func() []casinolab.MachinePoolMetrics) *poolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "pool", name), help, []string{"game"}, nil)
	}
	return &poolCollector{
		snapshot:  snapshot,
		available: desc("available", "Machines ready to be borrowed."),
		inflight:  desc("inflight", "Machines currently settling a round."),
		size:      desc("size", "Target pool capacity."),
		broken:    desc("broken_backlog", "Broken machines waiting for inspection."),
		rebuild:   desc("rebuild_total", "Machines rebuilt after a failure."),
		panics:    desc("panics_total", "Rounds that panicked."),
		fatals:    desc("fatals_total", "Rounds that ended with an engine fatal error."),
		closed:    desc("closed", "1 when the pool no longer accepts bets."),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.available
	ch <- c.inflight
	ch <- c.size
	ch <- c.broken
	ch <- c.rebuild
	ch <- c.panics
	ch <- c.fatals
	ch <- c.closed
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.snapshot() {
		closed := 0.0
		if s.Closed {
			closed = 1
		}
		ch <- prometheus.MustNewConstMetric(c.available, prometheus.GaugeValue, float64(s.Available), s.GameID)
		ch <- prometheus.MustNewConstMetric(c.inflight, prometheus.GaugeValue, float64(s.Inflight), s.GameID)
		ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(s.PoolSize), s.GameID)
		ch <- prometheus.MustNewConstMetric(c.broken, prometheus.GaugeValue, float64(s.BrokenBacklog), s.GameID)
		ch <- prometheus.MustNewConstMetric(c.rebuild, prometheus.CounterValue, float64(s.Rebuild), s.GameID)
		ch <- prometheus.MustNewConstMetric(c.panics, prometheus.CounterValue, float64(s.Panics), s.GameID)
		ch <- prometheus.MustNewConstMetric(c.fatals, prometheus.CounterValue, float64(s.Fatals), s.GameID)
		ch <- prometheus.MustNewConstMetric(c.closed, prometheus.GaugeValue, closed, s.GameID)
	}
}
