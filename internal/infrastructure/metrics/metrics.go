// internal/infrastructure/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fxsentiment"

// Значения метки result
const (
	ResultOK       = "ok"
	ResultFailed   = "failed"
	ResultRejected = "rejected"
	ResultDropped  = "dropped"
	ResultRevoked  = "revoked"
	ResultSkipped  = "skipped"
)

var (
	CyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "poll_cycles_total", Help: "Poll cycles by outcome"},
		[]string{"result"},
	)
	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: namespace, Name: "poll_cycle_duration_seconds", Help: "Fetch and reconcile duration", Buckets: prometheus.DefBuckets},
	)
	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "transitions_total", Help: "Signal transitions detected"},
		[]string{"symbol", "to"},
	)
	CompositeChangesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "composite_changes_total", Help: "Composite signal changes"},
	)
	MatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "alert_matches_total", Help: "Pending alerts confirmed by sentiment"},
		[]string{"symbol"},
	)
	ExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "alert_expired_total", Help: "Pending alerts evicted by timeout"},
	)
	AlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "alerts_received_total", Help: "Alert ingestion requests by outcome"},
		[]string{"result"},
	)
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "notifications_total", Help: "Notification deliveries by outcome"},
		[]string{"result"},
	)
	PendingAlerts = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: namespace, Name: "pending_alerts", Help: "Alerts waiting for confirmation"},
	)
	TrackedSymbols = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: namespace, Name: "tracked_symbols", Help: "Symbols in the last snapshot"},
	)
)

func init() {
	prometheus.MustRegister(
		CyclesTotal,
		CycleDuration,
		TransitionsTotal,
		CompositeChangesTotal,
		MatchesTotal,
		ExpiredTotal,
		AlertsTotal,
		NotificationsTotal,
		PendingAlerts,
		TrackedSymbols,
	)
}

// Handler экспортирует метрики в формате Prometheus
func Handler() http.Handler {
	return promhttp.Handler()
}
