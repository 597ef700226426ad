package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics exposes the settlement engine's instruments. Label sets are kept
// deliberately small; seller and payout identifiers never become labels.
type Metrics struct {
	commissionsRecorded  *prometheus.CounterVec
	commissionsDeduped   prometheus.Counter
	commissionsCancelled prometheus.Counter
	payoutsCreated       prometheus.Counter
	payoutTransitions    *prometheus.CounterVec
	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
}

// NewRegistry builds the process registry with the standard runtime
// collectors installed.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		commissionsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_commissions_recorded_total",
			Help: "Commissions written, by resolution source.",
		}, []string{"rule_source"}),
		commissionsDeduped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settlement_commissions_deduplicated_total",
			Help: "Commission inserts skipped by the per-line uniqueness guard.",
		}),
		commissionsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settlement_commissions_cancelled_total",
			Help: "Commissions voided by order cancellation or refund.",
		}),
		payoutsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settlement_payouts_created_total",
			Help: "Payouts created.",
		}),
		payoutTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_payout_transitions_total",
			Help: "Payout lifecycle transitions, by resulting status.",
		}, []string{"status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_http_requests_total",
			Help: "HTTP requests, by route, method, and status class.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "settlement_http_request_duration_seconds",
			Help:    "HTTP request duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(
		m.commissionsRecorded,
		m.commissionsDeduped,
		m.commissionsCancelled,
		m.payoutsCreated,
		m.payoutTransitions,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) RecordCommission(ruleSource string) {
	if m == nil {
		return
	}
	m.commissionsRecorded.WithLabelValues(strings.ToLower(strings.TrimSpace(ruleSource))).Inc()
}

func (m *Metrics) RecordCommissionDeduped() {
	if m == nil {
		return
	}
	m.commissionsDeduped.Inc()
}

func (m *Metrics) RecordCommissionsCancelled(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.commissionsCancelled.Add(float64(n))
}

func (m *Metrics) RecordPayoutCreated() {
	if m == nil {
		return
	}
	m.payoutsCreated.Inc()
}

func (m *Metrics) RecordPayoutTransition(status string) {
	if m == nil {
		return
	}
	m.payoutTransitions.WithLabelValues(strings.ToLower(strings.TrimSpace(status))).Inc()
}

func (m *Metrics) ObserveHTTPRequest(route, method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, statusClass(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(seconds)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
