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

// Package metrics 以 prometheus 收集結算、帳本與機台池的指標。
//
// Metrics 同時實作 slot.Observer 與 ledger.Observer，建立平台與帳本時以 option 掛上即可。
// 每個 Metrics 持有自己的 Registry，測試之間互不干擾。
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zintix-labs/casinolab"
	"github.com/zintix-labs/casinolab/errs"
	"github.com/zintix-labs/casinolab/sdk/calc"
)

const namespace = "casinolab"

type Metrics struct {
	reg *prometheus.Registry

	rounds      *prometheus.CounterVec
	wagered     *prometheus.CounterVec
	paid        *prometheus.CounterVec
	payoutMult  *prometheus.HistogramVec
	features    *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	insolvency  *prometheus.CounterVec
	ledgerOps   *prometheus.CounterVec
	ledgerMoved *prometheus.CounterVec

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New 建立指標並註冊到新的 Registry。pools 可為 nil，非 nil 時每次抓取都會讀一次機台池快照
func New(pools func() []casinolab.MachinePoolMetrics) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "rounds_total",
			Help:      "Settled rounds by game and outcome.",
		}, []string{"game", "outcome"}),
		wagered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "wagered_total",
			Help:      "Tokens wagered on settled rounds.",
		}, []string{"game"}),
		paid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "paid_total",
			Help:      "Tokens paid out on settled rounds.",
		}, []string{"game"}),
		payoutMult: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "payout_multiplier",
			Help:      "Payout divided by wager for winning rounds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"game"}),
		features: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "features_total",
			Help:      "Special features triggered.",
		}, []string{"game", "feature"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "rejected_total",
			Help:      "Bets rejected before settlement, by error kind.",
		}, []string{"game", "kind"}),
		insolvency: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "game",
			Name:      "insolvency_total",
			Help:      "Rounds refunded because the platform could not cover the payout.",
		}, []string{"game"}),
		ledgerOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations by name and result kind.",
		}, []string{"op", "result"}),
		ledgerMoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "moved_total",
			Help:      "Tokens moved by successful ledger operations.",
		}, []string{"op"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"method", "path"}),
	}

	m.reg.MustRegister(
		m.rounds, m.wagered, m.paid, m.payoutMult, m.features,
		m.rejected, m.insolvency, m.ledgerOps, m.ledgerMoved,
		m.httpInFlight, m.httpRequests, m.httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	if pools != nil {
		m.reg.MustRegister(newPoolCollector(pools))
	}
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// WatchLogDrops 把非同步 logger 丟棄的筆數掛成 counter，抓取時才讀
func (m *Metrics) WatchLogDrops(dropped func() uint64) {
	m.reg.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "log_dropped_total",
		Help:      "Log records dropped because the async buffer was full or closed.",
	}, func() float64 { return float64(dropped()) }))
}

// Handler 對外輸出 /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// ============================================================
// ** slot.Observer **
// ============================================================

func (m *Metrics) ObserveRound(gameID string, amount, payout int64, features []calc.Feature) {
	outcome := "loss"
	if payout > 0 {
		outcome = "win"
		if amount > 0 {
			m.payoutMult.WithLabelValues(gameID).Observe(float64(payout) / float64(amount))
		}
	}
	m.rounds.WithLabelValues(gameID, outcome).Inc()
	m.wagered.WithLabelValues(gameID).Add(float64(amount))
	m.paid.WithLabelValues(gameID).Add(float64(payout))
	for _, f := range features {
		m.features.WithLabelValues(gameID, string(f)).Inc()
	}
}

func (m *Metrics) ObserveRejected(gameID string, kind errs.Kind) {
	m.rejected.WithLabelValues(gameID, kindLabel(kind)).Inc()
}

func (m *Metrics) ObserveInsolvency(gameID string) {
	m.insolvency.WithLabelValues(gameID).Inc()
}

// ============================================================
// ** ledger.Observer **
// ============================================================

func (m *Metrics) ObserveLedgerOp(op string, kind errs.Kind, amount int64) {
	if kind == errs.KindNone {
		m.ledgerOps.WithLabelValues(op, "ok").Inc()
		if amount > 0 {
			m.ledgerMoved.WithLabelValues(op).Add(float64(amount))
		}
		return
	}
	m.ledgerOps.WithLabelValues(op, kind.String()).Inc()
}

func kindLabel(k errs.Kind) string {
	if s := k.String(); s != "" {
		return s
	}
	return "internal"
}

// ============================================================
// ** HTTP **
// ============================================================

// Instrument 以 HTTP 指標包裝 handler，/metrics 本身不計
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)
		m.httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// canonicalPath 把帶 id 的路徑收斂成樣板，避免 label 爆量
//
//	/v1/games/classic-slots/bet -> /v1/games/:id/bet
//	/v1/users/alice/balance     -> /v1/users/:addr/balance
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "v1" || len(parts) < 3 {
		return "/" + trimmed
	}
	switch parts[1] {
	case "games":
		parts[2] = ":id"
	case "users":
		parts[2] = ":addr"
	}
	return "/" + strings.Join(parts, "/")
}
