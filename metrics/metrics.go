// Package metrics holds the Prometheus collectors of the wallet host. Every
// method is safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dappwallet"

// Sync fetch results
const (
	SyncApplied    = "applied"
	SyncSuperseded = "superseded"
	SyncFailed     = "failed"
)

type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	ledgerConnected prometheus.Gauge
	syncFetches     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "dApp requests handled, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time from receiving a dApp request to its response.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"kind"}),
		ledgerConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_connected",
			Help:      "1 while the ledger connection is up.",
		}),
		syncFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_fetches_total",
			Help:      "Account synchronizer fetches, by concern and result.",
		}, []string{"concern", "result"}),
	}
	reg.MustRegister(m.requests, m.requestDuration, m.ledgerConnected, m.syncFetches)
	return m
}

// ObserveRequest records a finished dApp request
func (m *Metrics) ObserveRequest(kind, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(kind, outcome).Inc()
	m.requestDuration.WithLabelValues(kind).Observe(took.Seconds())
}

func (m *Metrics) SetLedgerConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.ledgerConnected.Set(1)
		return
	}
	m.ledgerConnected.Set(0)
}

func (m *Metrics) ObserveSyncFetch(concern, result string) {
	if m == nil {
		return
	}
	m.syncFetches.WithLabelValues(concern, result).Inc()
}
