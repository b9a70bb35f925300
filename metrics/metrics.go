package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "olake"
	subsystem = "discovery"
)

var (
	Enabled bool

	pollAttempts      *prometheus.CounterVec
	reconciledStreams *prometheus.CounterVec
	discoveryErrors   *prometheus.CounterVec
	pollDuration      *prometheus.HistogramVec

	initOnce sync.Once
)

// Init registers the discovery collectors with the default registry
func Init(enabled bool) {
	Enabled = enabled
	if !enabled {
		return
	}

	initOnce.Do(func() {
		pollAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "poll_attempts",
		}, []string{"result"})

		reconciledStreams = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reconciled_streams",
		}, []string{"origin"})

		discoveryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "errors",
		}, []string{"error_type"})

		pollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "poll_duration_seconds",
			Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120, 180},
		}, []string{"state"})
	})
}

func PollAttempt(result string) {
	if Enabled {
		pollAttempts.WithLabelValues(result).Inc()
	}
}

// ReconciledStreams counts streams by origin: "carried", "synthesized" or "dropped"
func ReconciledStreams(origin string, count int) {
	if Enabled && count > 0 {
		reconciledStreams.WithLabelValues(origin).Add(float64(count))
	}
}

func DiscoveryError(errorType string) {
	if Enabled {
		discoveryErrors.WithLabelValues(errorType).Inc()
	}
}

func PollDuration(state string, seconds float64) {
	if Enabled {
		pollDuration.WithLabelValues(state).Observe(seconds)
	}
}

// WriteToTextfile dumps all registered metrics in the text exposition format,
// suitable for node_exporter's textfile collector.
func WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
