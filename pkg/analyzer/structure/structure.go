// Package structure runs the full structural analysis of a pub/sub snapshot:
// extraction, topic categorization, metrics, relative flags, patterns and
// outlier scores.
package structure

import (
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/category"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/extract"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/flags"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/metrics"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/outlier"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/patterns"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"
)

// Analyzer scores every entity of a snapshot.
// This analyzer is safe for concurrent use.
type Analyzer struct {
	minPrefixLen int
	weights      outlier.Weights
	settings     metrics.Settings
	strict       bool
	logger       *zap.Logger
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMinPrefixLen sets the shortest topic-name prefix that forms a category.
func WithMinPrefixLen(n int) Option {
	return func(a *Analyzer) {
		a.minPrefixLen = n
	}
}

// WithWeights sets τ and λ.
func WithWeights(w outlier.Weights) Option {
	return func(a *Analyzer) {
		a.weights = w
	}
}

// WithLowConnectivityDegree sets K_LCR.
func WithLowConnectivityDegree(k int) Option {
	return func(a *Analyzer) {
		a.settings.LowConnectivityDegree = k
	}
}

// WithStrict makes dangling edges fail the analysis.
func WithStrict(strict bool) Option {
	return func(a *Analyzer) {
		a.strict = strict
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates a new structural analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		minPrefixLen: category.DefaultMinPrefixLen,
		weights:      outlier.DefaultWeights(),
		settings:     metrics.DefaultSettings(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Settings returns the constants this analyzer runs with.
func (a *Analyzer) Settings() Settings {
	return Settings{
		MinPrefixLen:          a.minPrefixLen,
		Tau:                   a.weights.Tau,
		Lambda:                a.weights.Lambda,
		LowConnectivityDegree: a.settings.LowConnectivityDegree,
		Strict:                a.strict,
	}
}

// Analyze runs every stage over snap. The snapshot is only read. The only
// error is *extract.DanglingReferenceError in strict mode.
func (a *Analyzer) Analyze(snap *models.Snapshot) (*Analysis, error) {
	g, err := extract.Extract(snap, extract.WithStrict(a.strict))
	if err != nil {
		return nil, err
	}
	for _, d := range g.Dropped {
		a.logger.Warn("dropped edge",
			zap.String("relation", string(d.Relation)),
			zap.String("from", d.From),
			zap.String("to", d.To),
			zap.String("dangling", string(d.Dangling)))
	}

	topics := snap.Entities(models.KindTopic)
	cats := category.Build(topics, a.minPrefixLen)
	names := make(map[string]string, len(topics))
	for _, t := range topics {
		names[t.ID] = t.DisplayName()
	}

	// Kinds share no mutable state; each writes only its own slot.
	results := make([]Category, len(models.Kinds))
	wg := conc.NewWaitGroup()
	for i, kind := range models.Kinds {
		wg.Go(func() {
			results[i] = a.analyzeKind(kind, g, cats)
		})
	}
	wg.Wait()

	analysis := &Analysis{
		Settings:        a.Settings(),
		TopicCategories: cats.Assignments(names),
		Dropped:         g.Dropped,
		Categories:      results,
		Summary: Summary{
			Applications:    g.Applications.Len(),
			Topics:          g.Topics.Len(),
			Nodes:           g.Nodes.Len(),
			Libraries:       g.Libraries.Len(),
			Edges:           snap.EdgeCount() - len(g.Dropped),
			DroppedEdges:    len(g.Dropped),
			TopicCategories: cats.Distinct(),
		},
	}
	for i := range results {
		analysis.Summary.PatternHits += results[i].Triggered()
	}

	a.logger.Debug("analysis complete",
		zap.Int("applications", analysis.Summary.Applications),
		zap.Int("topics", analysis.Summary.Topics),
		zap.Int("nodes", analysis.Summary.Nodes),
		zap.Int("libraries", analysis.Summary.Libraries),
		zap.Int("pattern_hits", analysis.Summary.PatternHits))

	return analysis, nil
}

type flagged struct {
	flags []flags.Flag
	hits  []bool
}

// analyzeKind runs both phases for one kind. Phase one computes raw metrics;
// population aggregates are fixed before any entity is flagged or scored.
func (a *Analyzer) analyzeKind(kind models.Kind, g *extract.Graph, cats category.Categories) Category {
	table := metrics.Compute(kind, g, cats, a.settings)

	thresholds := make([]flags.Threshold, len(table.Codes))
	out := Category{
		Kind:       kind,
		Thresholds: make([]MetricThreshold, len(table.Codes)),
	}
	for j, code := range table.Codes {
		thresholds[j] = flags.Compute(table.Column(j))
		out.Thresholds[j] = newMetricThreshold(code, thresholds[j])
	}

	evaluated := iter.Map(table.Rows, func(row *metrics.Row) flagged {
		f := flagged{flags: make([]flags.Flag, len(row.Values))}
		lookup := make(patterns.Flags, len(row.Values))
		for j, v := range row.Values {
			f.flags[j] = thresholds[j].Of(v)
			lookup[table.Codes[j]] = f.flags[j]
		}
		f.hits = patterns.Evaluate(kind, lookup)
		return f
	})

	codes := patterns.Codes(kind)
	hits := make([][]bool, len(evaluated))
	for i := range evaluated {
		hits[i] = evaluated[i].hits
	}
	counts := outlier.Counts(hits, len(codes))
	out.PatternCounts = make([]PatternCount, len(codes))
	for j, c := range codes {
		out.PatternCounts[j] = PatternCount{Code: c, Count: counts[j]}
	}

	out.Entities = make([]EntityScore, len(table.Rows))
	iter.ForEachIdx(table.Rows, func(i int, row *metrics.Row) {
		f := evaluated[i]

		e := EntityScore{
			ID:       row.ID,
			Name:     row.Name,
			Metrics:  make([]MetricValue, len(row.Values)),
			Patterns: make([]PatternHit, len(codes)),
		}
		for j, v := range row.Values {
			e.Metrics[j] = MetricValue{Code: table.Codes[j], Value: v, Up: f.flags[j].Up, Down: f.flags[j].Down}
		}
		for j, c := range codes {
			e.Patterns[j] = PatternHit{Code: c, Triggered: f.hits[j]}
		}
		e.OSP = outlier.PatternScore(f.hits, counts)
		e.UNI = outlier.Uniqueness(row.Values, thresholds, a.weights.Tau)
		e.Score = a.weights.Score(e.OSP, e.UNI)
		out.Entities[i] = e
	})

	a.logger.Debug("scored category",
		zap.String("kind", string(kind)),
		zap.Int("entities", len(out.Entities)),
		zap.Int("pattern_hits", out.Triggered()))

	return out
}
