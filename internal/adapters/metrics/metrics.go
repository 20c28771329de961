// Package metrics records run statistics in a private Prometheus registry
// and writes them in the text exposition format, for node_exporter's
// textfile collector or a CI artifact.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/corey/fpvcompat/internal/domain/compat"
	"github.com/corey/fpvcompat/internal/domain/part"
)

// Recorder holds the run metrics.
type Recorder struct {
	reg *prometheus.Registry

	PartsLoaded   *prometheus.CounterVec
	SourcesLoaded prometheus.Counter
	SourcesFailed prometheus.Counter
	Edges         *prometheus.CounterVec
	Runs          prometheus.Counter
	RunDuration   prometheus.Histogram
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		PartsLoaded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fpvcompat_parts_loaded_total",
				Help: "Normalized part records loaded, by part type",
			},
			[]string{"type"},
		),
		SourcesLoaded: f.NewCounter(prometheus.CounterOpts{
			Name: "fpvcompat_sources_loaded_total",
			Help: "Source files decoded successfully",
		}),
		SourcesFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "fpvcompat_sources_failed_total",
			Help: "Source files that could not be read or parsed",
		}),
		Edges: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fpvcompat_edges_total",
				Help: "Evaluated compatibility edges, by pair and status",
			},
			[]string{"pair", "status"},
		),
		Runs: f.NewCounter(prometheus.CounterOpts{
			Name: "fpvcompat_runs_total",
			Help: "Completed evaluation runs",
		}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fpvcompat_run_duration_seconds",
			Help:    "Wall time of one load and evaluation",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// ObserveParts counts loaded records by type.
func (r *Recorder) ObserveParts(t part.Table) {
	for typ, n := range t.CountByType() {
		label := string(typ)
		if label == "" {
			label = "unknown"
		}
		r.PartsLoaded.WithLabelValues(label).Add(float64(n))
	}
}

// ObserveResults counts edges by pair and status.
func (r *Recorder) ObserveResults(rs compat.Results) {
	for _, t := range rs {
		for _, e := range t.Edges {
			r.Edges.WithLabelValues(t.Key, string(e.Status)).Inc()
		}
	}
}

// WriteFile writes every metric to path atomically.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
