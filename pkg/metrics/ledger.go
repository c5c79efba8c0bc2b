package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cruiseguide"

// Sync outcomes used as the result label.
const (
	ResultSuccess    = "success"
	ResultNotFound   = "not_found"
	ResultValidation = "validation"
	ResultConflict   = "conflict"
	ResultError      = "error"
)

// LedgerMetrics records ledger sync throughput and latency.
type LedgerMetrics struct {
	duration *prometheus.HistogramVec
	syncs    *prometheus.CounterVec
	entries  prometheus.Counter
}

// NewLedgerMetrics registers the ledger sync metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ledger_sync_duration_seconds",
		Help:      "Duration of ledger syncs in seconds.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"result"})
	syncs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_sync_total",
		Help:      "Ledger syncs by result.",
	}, []string{"result"})
	entries := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_entries_created_total",
		Help:      "Ledger entries inserted by syncs.",
	})
	reg.MustRegister(duration, syncs, entries)
	return &LedgerMetrics{duration: duration, syncs: syncs, entries: entries}
}

// ObserveSync records one finished sync.
func (m *LedgerMetrics) ObserveSync(result string, duration time.Duration, entriesCreated int64) {
	if m == nil || m.syncs == nil {
		return
	}
	result = normalizeLabel(result)
	m.duration.WithLabelValues(result).Observe(duration.Seconds())
	m.syncs.WithLabelValues(result).Inc()
	if entriesCreated > 0 {
		m.entries.Add(float64(entriesCreated))
	}
}
