package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flexplay_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flexplay_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flexplay_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Derived artifact cache metrics
var (
	ArtifactCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flexplay_artifact_cache_hits_total",
			Help: "Total number of derived artifact cache hits by kind",
		},
		[]string{"kind"},
	)

	ArtifactCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flexplay_artifact_cache_misses_total",
			Help: "Total number of derived artifact cache misses by kind",
		},
		[]string{"kind"},
	)

	TranscodeJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flexplay_transcode_jobs_total",
			Help: "Total number of synchronous transcode builds",
		},
		[]string{"status"},
	)

	TranscodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flexplay_transcode_duration_seconds",
			Help:    "Synchronous transcode build duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)
)

// Thumbnail scheduler metrics
var (
	ThumbnailJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flexplay_thumbnail_jobs_total",
			Help: "Total number of background thumbnail jobs",
		},
		[]string{"status"}, // "success", "error", "deduplicated"
	)

	ThumbnailJobsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flexplay_thumbnail_jobs_running",
			Help: "Number of thumbnail jobs currently holding a worker slot",
		},
	)

	ThumbnailDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flexplay_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Edit pipeline metrics
var (
	EditTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flexplay_edit_tasks_total",
			Help: "Total number of edit tasks by terminal state",
		},
		[]string{"state"}, // "completed", "error"
	)

	EditTasksActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flexplay_edit_tasks_active",
			Help: "Number of edit tasks currently processing",
		},
	)

	EditTaskDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flexplay_edit_task_duration_seconds",
			Help:    "Edit task duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)
)

// Cache eviction metrics
var (
	SweepRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flexplay_cache_sweep_runs_total",
			Help: "Total number of cache eviction sweeps",
		},
	)

	SweepDeletedEntries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flexplay_cache_sweep_deleted_total",
			Help: "Total number of cache entries deleted by sweeps",
		},
	)

	SweepFreedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flexplay_cache_sweep_freed_bytes_total",
			Help: "Total bytes reclaimed by cache sweeps",
		},
	)

	CacheSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flexplay_cache_size_bytes",
			Help: "Total size of all cache roots after the last sweep",
		},
	)
)

// Application info metric
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "flexplay_app_info",
		Help: "Application information",
	},
	[]string{"version", "commit", "go_version"},
)

// SetAppInfo sets the application info metric.
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
