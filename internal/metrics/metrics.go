package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "breez",
			Subsystem: "uploads",
			Name:      "total",
			Help:      "Total number of resource upload attempts.",
		},
		[]string{"file_type", "status"},
	)

	uploadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "breez",
			Subsystem: "uploads",
			Name:      "duration_seconds",
			Help:      "Duration of resource uploads end to end.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
	)

	downloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "breez",
			Subsystem: "downloads",
			Name:      "total",
			Help:      "Total number of resource download attempts.",
		},
		[]string{"status"},
	)

	coinsSpent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "breez",
			Subsystem: "economy",
			Name:      "coins_spent_total",
			Help:      "Coins debited through successful downloads.",
		},
	)

	coinsEarned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "breez",
			Subsystem: "economy",
			Name:      "coins_earned_total",
			Help:      "Coins credited through accepted uploads.",
		},
	)

	authEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "breez",
			Subsystem: "auth",
			Name:      "events_total",
			Help:      "Auth state transitions observed by the session cache.",
		},
		[]string{"event"},
	)
)

func init() {
	Registry.MustRegister(
		uploads,
		uploadDuration,
		downloads,
		coinsSpent,
		coinsEarned,
		authEvents,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordUpload records one upload attempt and, when it succeeded, the
// coins it credited to the uploader.
func RecordUpload(fileType, status string, duration time.Duration, coins int) {
	if fileType == "" {
		fileType = "unknown"
	}
	uploads.WithLabelValues(fileType, status).Inc()
	if duration > 0 {
		uploadDuration.Observe(duration.Seconds())
	}
	if coins > 0 {
		coinsEarned.Add(float64(coins))
	}
}

// RecordDownload records one download attempt and, when it succeeded,
// the coins it debited from the downloader.
func RecordDownload(status string, coins int) {
	downloads.WithLabelValues(status).Inc()
	if coins > 0 {
		coinsSpent.Add(float64(coins))
	}
}

// RecordAuthEvent counts an auth state transition.
func RecordAuthEvent(event string) {
	if event == "" {
		return
	}
	authEvents.WithLabelValues(event).Inc()
}
