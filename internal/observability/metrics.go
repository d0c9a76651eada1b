// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Check-in metrics
	CheckinsTotal   *prometheus.CounterVec
	CheckinDuration *prometheus.HistogramVec

	// Minting metrics
	MintsTotal   *prometheus.CounterVec
	MintDuration prometheus.Histogram

	// Watcher metrics
	WatchedMints       prometheus.Gauge
	MintDeletionsSeen  prometheus.Counter
	WatcherResyncTotal prometheus.Counter

	// Latency metrics
	RPCCallLatency *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "ticket_gate"
	}

	return &Metrics{
		// Check-in metrics
		CheckinsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkin",
			Name:      "verifications_total",
			Help:      "Total number of check-in verifications by outcome",
		}, []string{"outcome"}),
		CheckinDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "checkin",
			Name:      "verification_duration_seconds",
			Help:      "Check-in verification duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),

		// Minting metrics
		MintsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "minting",
			Name:      "mints_total",
			Help:      "Total number of ticket mint attempts by status",
		}, []string{"status"}),
		MintDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "minting",
			Name:      "mint_duration_seconds",
			Help:      "Ticket mint duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		}),

		// Watcher metrics
		WatchedMints: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "watched_mints",
			Help:      "Current number of mint accounts under subscription",
		}),
		MintDeletionsSeen: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "mint_deletions_total",
			Help:      "Total number of watched mint accounts seen deleted on-chain",
		}),
		WatcherResyncTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "resyncs_total",
			Help:      "Total number of watch-set refreshes against the ticket store",
		}),

		// Latency metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCheckin records one check-in verification.
func RecordCheckin(outcome string, seconds float64) {
	DefaultMetrics.CheckinsTotal.WithLabelValues(outcome).Inc()
	DefaultMetrics.CheckinDuration.WithLabelValues(outcome).Observe(seconds)
}

// RecordMint records one ticket mint attempt.
func RecordMint(status string, seconds float64) {
	DefaultMetrics.MintsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.MintDuration.Observe(seconds)
}

// RecordMintDeletion increments the deleted-mint counter.
func RecordMintDeletion() {
	DefaultMetrics.MintDeletionsSeen.Inc()
}

// UpdateWatchedMints updates the watched-mints gauge.
func UpdateWatchedMints(n int) {
	DefaultMetrics.WatchedMints.Set(float64(n))
}

// RecordWatcherResync increments the watch-set refresh counter.
func RecordWatcherResync() {
	DefaultMetrics.WatcherResyncTotal.Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(route string, code int, seconds float64) {
	DefaultMetrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route).Observe(seconds)
}
