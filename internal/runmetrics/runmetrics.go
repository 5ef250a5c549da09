// Package runmetrics records per-run analysis figures in a Prometheus registry
// and exports them in the node_exporter textfile format.
package runmetrics

import (
	"fmt"
	"time"

	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/structure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the run metrics. Safe for concurrent use.
type Registry struct {
	DatasetsTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	Entities         *prometheus.GaugeVec
	PatternHits      *prometheus.GaugeVec
	MaxScore         *prometheus.GaugeVec
	DroppedEdges     *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		registry: reg,
		DatasetsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "psa_datasets_total",
				Help: "Datasets processed, by outcome",
			},
			[]string{"status"},
		),
		AnalysisDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "psa_analysis_duration_seconds",
				Help:    "Wall time of one dataset analysis",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
		),
		Entities: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "psa_entities",
				Help: "Entities per kind in the analyzed snapshot",
			},
			[]string{"dataset", "kind"},
		),
		PatternHits: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "psa_pattern_hits",
				Help: "Entities triggering each pattern",
			},
			[]string{"dataset", "kind", "pattern"},
		),
		MaxScore: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "psa_max_score",
				Help: "Highest outlier score per kind",
			},
			[]string{"dataset", "kind"},
		),
		DroppedEdges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "psa_dropped_edges",
				Help: "Edges dropped for unresolved endpoints",
			},
			[]string{"dataset"},
		),
	}
}

// Prometheus returns the underlying registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// RecordAnalysis stores the figures of one successful analysis.
func (r *Registry) RecordAnalysis(dataset string, a *structure.Analysis, elapsed time.Duration) {
	r.DatasetsTotal.WithLabelValues("ok").Inc()
	r.AnalysisDuration.Observe(elapsed.Seconds())
	r.DroppedEdges.WithLabelValues(dataset).Set(float64(a.Summary.DroppedEdges))

	for _, c := range a.Categories {
		kind := c.Kind.String()
		r.Entities.WithLabelValues(dataset, kind).Set(float64(len(c.Entities)))
		for _, pc := range c.PatternCounts {
			r.PatternHits.WithLabelValues(dataset, kind, pc.Code.String()).Set(float64(pc.Count))
		}
		top := 0.0
		for _, e := range c.Entities {
			top = max(top, e.Score)
		}
		r.MaxScore.WithLabelValues(dataset, kind).Set(top)
	}
}

// RecordFailure counts a dataset that could not be loaded or analyzed.
func (r *Registry) RecordFailure() {
	r.DatasetsTotal.WithLabelValues("error").Inc()
}

// WriteTextfile atomically writes the registry to path.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
