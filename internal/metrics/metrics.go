// Package metrics provides Prometheus metrics for the evidence copier.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the evidence copier.
type Metrics struct {
	// Search metrics
	SearchesCompleted *prometheus.CounterVec
	SearchesFailed    *prometheus.CounterVec
	SearchesCancelled *prometheus.CounterVec

	// Upload metrics
	UploadsCompleted *prometheus.CounterVec
	UploadsFailed    *prometheus.CounterVec

	// Provisioning metrics
	FoldersCreated *prometheus.CounterVec
	FoldersReused  *prometheus.CounterVec

	// Timing metrics
	SearchDuration *prometheus.HistogramVec
	UploadDuration *prometheus.HistogramVec
	RunDuration    *prometheus.HistogramVec

	// Size metrics
	ScreenshotBytes *prometheus.HistogramVec

	// Run state
	RunActive prometheus.Gauge

	// Error metrics
	BrowserErrors *prometheus.CounterVec
	DriveErrors   *prometheus.CounterVec
	AuditErrors   *prometheus.CounterVec
}

// Config holds metrics configuration.
type Config struct {
	Enabled bool
	Address string // Address for metrics HTTP server (e.g., ":9090")
}

var defaultMetrics *Metrics

// Init initializes the metrics package with global metrics.
// Call this once at startup.
func Init(namespace string) *Metrics {
	if namespace == "" {
		namespace = "evidence_copier"
	}

	m := &Metrics{
		SearchesCompleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_completed_total",
				Help:      "Total number of search terms captured successfully",
			},
			[]string{"kind"},
		),
		SearchesFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_failed_total",
				Help:      "Total number of search terms that failed capture",
			},
			[]string{"kind"},
		),
		SearchesCancelled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_cancelled_total",
				Help:      "Total number of search terms skipped by cancellation",
			},
			[]string{"kind"},
		),
		UploadsCompleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_completed_total",
				Help:      "Total number of evidence uploads",
			},
			[]string{"backend"},
		),
		UploadsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_failed_total",
				Help:      "Total number of failed evidence uploads",
			},
			[]string{"backend"},
		),
		FoldersCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "folders_created_total",
				Help:      "Total number of folders created during provisioning",
			},
			[]string{"backend"},
		),
		FoldersReused: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "folders_reused_total",
				Help:      "Total number of existing folders reused (idempotent reruns)",
			},
			[]string{"backend"},
		),
		SearchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_duration_seconds",
				Help:      "Time to capture one search term (find + settle + screenshot)",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 8), // 0.5s to ~2m
			},
			[]string{"kind"},
		),
		UploadDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upload_duration_seconds",
				Help:      "Time to upload one screenshot",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
			[]string{"backend"},
		),
		RunDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Total duration of a capture run",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~1h
			},
			[]string{"kind"},
		),
		ScreenshotBytes: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "screenshot_bytes",
				Help:      "Size of captured screenshots in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 2, 15), // 1KB to ~32MB
			},
			[]string{"kind"},
		),
		RunActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_active",
				Help:      "Whether a capture run currently holds the run slot",
			},
		),
		BrowserErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "browser_errors_total",
				Help:      "Total number of browser driver errors",
			},
			[]string{"operation"},
		),
		DriveErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "drive_errors_total",
				Help:      "Total number of drive store errors",
			},
			[]string{"backend"},
		),
		AuditErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audit_errors_total",
				Help:      "Total number of audit emission errors",
			},
			[]string{"sink"},
		),
	}

	defaultMetrics = m
	return m
}

// Get returns the global metrics instance.
// Returns nil if Init has not been called.
func Get() *Metrics {
	return defaultMetrics
}

// StartServer starts an HTTP server for Prometheus metrics scraping.
// Blocks until the server exits.
func StartServer(address string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return http.ListenAndServe(address, mux)
}

// IncSearchCompleted increments the completed searches counter.
func (m *Metrics) IncSearchCompleted(kind string) {
	m.SearchesCompleted.WithLabelValues(kind).Inc()
}

// IncSearchFailed increments the failed searches counter.
func (m *Metrics) IncSearchFailed(kind string) {
	m.SearchesFailed.WithLabelValues(kind).Inc()
}

// IncSearchCancelled increments the cancelled searches counter.
func (m *Metrics) IncSearchCancelled(kind string) {
	m.SearchesCancelled.WithLabelValues(kind).Inc()
}

// IncUploadCompleted increments the completed uploads counter.
func (m *Metrics) IncUploadCompleted(backend string) {
	m.UploadsCompleted.WithLabelValues(backend).Inc()
}

// IncUploadFailed increments the failed uploads counter.
func (m *Metrics) IncUploadFailed(backend string) {
	m.UploadsFailed.WithLabelValues(backend).Inc()
}

// IncFoldersCreated increments the created folders counter.
func (m *Metrics) IncFoldersCreated(backend string) {
	m.FoldersCreated.WithLabelValues(backend).Inc()
}

// IncFoldersReused increments the reused folders counter.
func (m *Metrics) IncFoldersReused(backend string) {
	m.FoldersReused.WithLabelValues(backend).Inc()
}

// ObserveSearchDuration records the capture time for one term.
func (m *Metrics) ObserveSearchDuration(kind string, seconds float64) {
	m.SearchDuration.WithLabelValues(kind).Observe(seconds)
}

// ObserveUploadDuration records the upload time for one screenshot.
func (m *Metrics) ObserveUploadDuration(backend string, seconds float64) {
	m.UploadDuration.WithLabelValues(backend).Observe(seconds)
}

// ObserveRunDuration records the total run time.
func (m *Metrics) ObserveRunDuration(kind string, seconds float64) {
	m.RunDuration.WithLabelValues(kind).Observe(seconds)
}

// ObserveScreenshotBytes records the size of a captured screenshot.
func (m *Metrics) ObserveScreenshotBytes(kind string, bytes float64) {
	m.ScreenshotBytes.WithLabelValues(kind).Observe(bytes)
}

// SetRunActive marks whether the run slot is held.
func (m *Metrics) SetRunActive(active bool) {
	if active {
		m.RunActive.Set(1)
	} else {
		m.RunActive.Set(0)
	}
}

// IncBrowserErrors increments the browser errors counter.
func (m *Metrics) IncBrowserErrors(operation string) {
	m.BrowserErrors.WithLabelValues(operation).Inc()
}

// IncDriveErrors increments the drive errors counter.
func (m *Metrics) IncDriveErrors(backend string) {
	m.DriveErrors.WithLabelValues(backend).Inc()
}

// IncAuditErrors increments the audit errors counter.
func (m *Metrics) IncAuditErrors(sink string) {
	m.AuditErrors.WithLabelValues(sink).Inc()
}
