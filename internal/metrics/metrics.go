// Package metrics records per-run Prometheus metrics on a private registry
// and writes them in the node exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nao1215/petrd/internal/model"
)

// Metrics holds the Prometheus collectors for one petrd process.
type Metrics struct {
	registry *prometheus.Registry

	// FilesProcessed counts processed files by kind and verdict status.
	FilesProcessed *prometheus.CounterVec

	// Failures counts failed files by error class.
	Failures *prometheus.CounterVec

	// PayloadBytes counts written payload bytes by source (embedded or sidecar).
	PayloadBytes *prometheus.CounterVec

	// FileDuration is the per-file processing time distribution.
	FileDuration prometheus.Histogram

	// LastRun is the Unix time of the last completed run.
	LastRun prometheus.Gauge
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		FilesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "petrd_files_processed_total",
				Help: "Files processed, by kind and verdict status",
			},
			[]string{"kind", "status"},
		),

		Failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "petrd_failures_total",
				Help: "Files that failed, by error class",
			},
			[]string{"class"},
		),

		PayloadBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "petrd_payload_bytes_total",
				Help: "Payload bytes written, by payload source",
			},
			[]string{"source"},
		),

		FileDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "petrd_file_duration_seconds",
				Help:    "Per-file processing time distribution",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
			},
		),

		LastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "petrd_last_run_timestamp_seconds",
				Help: "Unix time of the last completed run",
			},
		),
	}
}

// Observe records one outcome.
func (m *Metrics) Observe(o *model.Outcome) {
	if o == nil {
		return
	}
	m.FilesProcessed.WithLabelValues(o.Kind.String(), o.Verdict.Status.String()).Inc()
	if !o.Succeeded() {
		class := o.ErrorClass
		if class == "" {
			class = "other"
		}
		m.Failures.WithLabelValues(class).Inc()
	}
	if o.PayloadBytes > 0 {
		m.PayloadBytes.WithLabelValues(o.Verdict.Source.Kind.String()).Add(float64(o.PayloadBytes))
	}
	m.FileDuration.Observe(o.Duration.Seconds())
}

// ObserveSummary records every outcome of a run and stamps LastRun.
func (m *Metrics) ObserveSummary(s *model.RunSummary) {
	for _, o := range s.Outcomes {
		m.Observe(o)
	}
	m.LastRun.SetToCurrentTime()
}

// WriteTextfile writes all metrics to path for the node exporter textfile
// collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
