package mirror

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsRepositoryLabelConstant         = "repo"
	metricsStatusLabelConstant             = "status"
	metricsWriteFailureTemplateConstant    = "failed to write metrics to %s: %w"
	metricsRegisterFailureTemplateConstant = "failed to register mirror metrics: %w"
)

// Metrics holds the Prometheus collectors updated by mirror runs.
//
// Available metrics are...
//   - branch_materializations_total - (tags: repo,status)
//     A Counter incremented once per branch with its terminal status (done|skipped|failed).
//   - branch_materialization_latency_seconds - (tags: repo)
//     A Histogram of how long each attempted materialization took.
//   - last_mirror_timestamp_seconds - (tags: repo)
//     A Gauge holding the time of the last mirror run that finished without failures.
type Metrics struct {
	gatherer               prometheus.Gatherer
	materializations       *prometheus.CounterVec
	materializationLatency *prometheus.HistogramVec
	lastMirrorTimestamp    *prometheus.GaugeVec
}

// NewMetrics creates the collectors under metricsNamespace and registers them with a fresh registry.
func NewMetrics(metricsNamespace string) (*Metrics, error) {
	registry := prometheus.NewRegistry()

	metrics := &Metrics{
		gatherer: registry,
		materializations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "branch_materializations_total",
			Help:      "Count of branch materializations by terminal status",
		},
			[]string{metricsRepositoryLabelConstant, metricsStatusLabelConstant},
		),
		materializationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "branch_materialization_latency_seconds",
			Help:      "Latency of attempted branch materializations",
			Buckets:   []float64{0.5, 1, 5, 10, 20, 30, 60, 90, 120, 150, 300},
		},
			[]string{metricsRepositoryLabelConstant},
		),
		lastMirrorTimestamp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_mirror_timestamp_seconds",
			Help:      "Timestamp of the last mirror run without failures",
		},
			[]string{metricsRepositoryLabelConstant},
		),
	}

	for _, collector := range []prometheus.Collector{metrics.materializations, metrics.materializationLatency, metrics.lastMirrorTimestamp} {
		if registerError := registry.Register(collector); registerError != nil {
			return nil, fmt.Errorf(metricsRegisterFailureTemplateConstant, registerError)
		}
	}

	return metrics, nil
}

// WriteTextfile writes the current metric values in the Prometheus text format, suitable for the node exporter textfile collector.
func (metrics *Metrics) WriteTextfile(path string) error {
	if metrics == nil {
		return nil
	}
	if writeError := prometheus.WriteToTextfile(path, metrics.gatherer); writeError != nil {
		return fmt.Errorf(metricsWriteFailureTemplateConstant, path, writeError)
	}
	return nil
}

func (metrics *Metrics) recordMaterialization(repository string, status MaterializationStatus, start time.Time) {
	if metrics == nil {
		return
	}
	metrics.materializations.With(prometheus.Labels{
		metricsRepositoryLabelConstant: repository,
		metricsStatusLabelConstant:     string(status),
	}).Inc()
	if status != MaterializationSkipped {
		metrics.materializationLatency.WithLabelValues(repository).Observe(time.Since(start).Seconds())
	}
}

func (metrics *Metrics) recordMirror(repository string, report MirrorReport) {
	if metrics == nil || report.HasFailures() {
		return
	}
	metrics.lastMirrorTimestamp.WithLabelValues(repository).Set(float64(time.Now().Unix()))
}
