package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Valuation metrics
	valuationsTotal   *prometheus.CounterVec
	valuationAborts   *prometheus.CounterVec
	valuationWarnings prometheus.Counter
	valuationDuration prometheus.Histogram
	snapshotFetches   *prometheus.CounterVec
	snapshotDuration  *prometheus.HistogramVec
	reportsArchived   *prometheus.CounterVec
	watchlistSymbols  prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Valuation metrics
	r.valuationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddm_valuations_total",
			Help: "Total number of valuation runs",
		},
		[]string{"variant", "outcome"},
	)
	r.valuationAborts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddm_valuation_aborts_total",
			Help: "Valuation runs stopped before a value was produced, by error code",
		},
		[]string{"code"},
	)
	r.valuationWarnings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ddm_valuation_warnings_total",
			Help: "Total number of warnings emitted by valuation runs",
		},
	)
	r.valuationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ddm_valuation_duration_seconds",
			Help:    "Valuation duration in seconds, snapshot fetch included",
			Buckets: prometheus.DefBuckets,
		},
	)
	r.snapshotFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddm_snapshot_fetches_total",
			Help: "Total number of snapshot fetches",
		},
		[]string{"collector", "status"},
	)
	r.snapshotDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ddm_snapshot_fetch_duration_seconds",
			Help:    "Snapshot fetch duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"collector"},
	)
	r.reportsArchived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddm_reports_archived_total",
			Help: "Total number of reports written to the archive",
		},
		[]string{"status"},
	)
	r.watchlistSymbols = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ddm_watchlist_symbols",
			Help: "Number of symbols in watchlist",
		},
	)

	reg.MustRegister(r.valuationsTotal)
	reg.MustRegister(r.valuationAborts)
	reg.MustRegister(r.valuationWarnings)
	reg.MustRegister(r.valuationDuration)
	reg.MustRegister(r.snapshotFetches)
	reg.MustRegister(r.snapshotDuration)
	reg.MustRegister(r.reportsArchived)
	reg.MustRegister(r.watchlistSymbols)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordValuation records a finished run. outcome is ok, aborted or error.
func (r *Registry) RecordValuation(variant, outcome string, warnings int, duration float64) {
	r.valuationsTotal.WithLabelValues(variant, outcome).Inc()
	r.valuationWarnings.Add(float64(warnings))
	r.valuationDuration.Observe(duration)
}

// RecordAbort records the error code that stopped a run
func (r *Registry) RecordAbort(code string) {
	r.valuationAborts.WithLabelValues(code).Inc()
}

// RecordSnapshotFetch records one collector call
func (r *Registry) RecordSnapshotFetch(collector string, err error, duration float64) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.snapshotFetches.WithLabelValues(collector, status).Inc()
	r.snapshotDuration.WithLabelValues(collector).Observe(duration)
}

// RecordReportArchived records a report archive attempt
func (r *Registry) RecordReportArchived(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.reportsArchived.WithLabelValues(status).Inc()
}

// SetWatchlistSize sets the watchlist size.
func (r *Registry) SetWatchlistSize(size int) {
	r.watchlistSymbols.Set(float64(size))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
