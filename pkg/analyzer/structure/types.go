package structure

import (
	"math"

	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/category"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/extract"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/flags"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/metrics"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/outlier"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/patterns"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
	"github.com/cespare/xxhash/v2"
)

// MetricValue is one raw metric of an entity with its relative flags.
type MetricValue struct {
	Code  metrics.Code `json:"code" toon:"code"`
	Value float64      `json:"value" toon:"value"`
	Up    bool         `json:"up" toon:"up"`
	Down  bool         `json:"down" toon:"down"`
}

// PatternHit records whether an entity triggers a pattern.
type PatternHit struct {
	Code      patterns.Code `json:"code" toon:"code"`
	Triggered bool          `json:"triggered" toon:"triggered"`
}

// EntityScore is the complete result row of one entity.
type EntityScore struct {
	ID       string        `json:"id" toon:"id"`
	Name     string        `json:"name" toon:"name"`
	Metrics  []MetricValue `json:"metrics" toon:"metrics"`
	Patterns []PatternHit  `json:"patterns" toon:"patterns"`
	OSP      float64       `json:"osp" toon:"osp"`
	UNI      float64       `json:"uni" toon:"uni"`
	Score    float64       `json:"score" toon:"score"`
}

// Metric returns the value of code.
func (e *EntityScore) Metric(code metrics.Code) (MetricValue, bool) {
	for _, m := range e.Metrics {
		if m.Code == code {
			return m, true
		}
	}
	return MetricValue{}, false
}

// Triggered reports whether the entity triggers pattern code.
func (e *EntityScore) Triggered(code patterns.Code) bool {
	for _, p := range e.Patterns {
		if p.Code == code {
			return p.Triggered
		}
	}
	return false
}

// TriggeredCodes lists the triggered patterns in rule order.
func (e *EntityScore) TriggeredCodes() []patterns.Code {
	var out []patterns.Code
	for _, p := range e.Patterns {
		if p.Triggered {
			out = append(out, p.Code)
		}
	}
	return out
}

// MetricThreshold is the population threshold of one metric.
type MetricThreshold struct {
	Code metrics.Code `json:"code" toon:"code"`
	Q1   float64      `json:"q1" toon:"q1"`
	Q3   float64      `json:"q3" toon:"q3"`
	Min  float64      `json:"min" toon:"min"`
	Max  float64      `json:"max" toon:"max"`
	Mode flags.Mode   `json:"mode" toon:"mode"`
}

func newMetricThreshold(code metrics.Code, t flags.Threshold) MetricThreshold {
	return MetricThreshold{Code: code, Q1: t.Q1, Q3: t.Q3, Min: t.Min, Max: t.Max, Mode: t.Mode}
}

// Threshold converts back to the flagging rule.
func (m MetricThreshold) Threshold() flags.Threshold {
	return flags.Threshold{Q1: m.Q1, Q3: m.Q3, Min: m.Min, Max: m.Max, Mode: m.Mode}
}

// PatternCount is how many entities of a category trigger a pattern.
type PatternCount struct {
	Code  patterns.Code `json:"code" toon:"code"`
	Count int           `json:"count" toon:"count"`
}

// Category holds every result of one entity kind. Entities are in ascending id order.
type Category struct {
	Kind          models.Kind       `json:"kind" toon:"kind"`
	Thresholds    []MetricThreshold `json:"thresholds" toon:"thresholds"`
	PatternCounts []PatternCount    `json:"pattern_counts" toon:"pattern_counts"`
	Entities      []EntityScore     `json:"entities" toon:"entities"`
}

// Entity finds an entity by id.
func (c *Category) Entity(id string) (*EntityScore, bool) {
	for i := range c.Entities {
		if c.Entities[i].ID == id {
			return &c.Entities[i], true
		}
	}
	return nil, false
}

// Ranking returns the entities ordered by Score descending, then id ascending.
func (c *Category) Ranking() []outlier.Entry {
	out := make([]outlier.Entry, len(c.Entities))
	for i, e := range c.Entities {
		out[i] = outlier.Entry{ID: e.ID, Name: e.Name, Score: e.Score}
	}
	outlier.Rank(out)
	return out
}

// Triggered returns the number of (entity, pattern) hits in the category.
func (c *Category) Triggered() int {
	n := 0
	for _, pc := range c.PatternCounts {
		n += pc.Count
	}
	return n
}

// Summary gives aggregate counts of an analysis.
type Summary struct {
	Applications    int `json:"applications" toon:"applications"`
	Topics          int `json:"topics" toon:"topics"`
	Nodes           int `json:"nodes" toon:"nodes"`
	Libraries       int `json:"libraries" toon:"libraries"`
	Edges           int `json:"edges" toon:"edges"`
	DroppedEdges    int `json:"dropped_edges" toon:"dropped_edges"`
	TopicCategories int `json:"topic_categories" toon:"topic_categories"`
	PatternHits     int `json:"pattern_hits" toon:"pattern_hits"`
}

// Settings echoes the constants an analysis ran with.
type Settings struct {
	MinPrefixLen          int     `json:"min_lcp_len" toon:"min_lcp_len"`
	Tau                   float64 `json:"tau" toon:"tau"`
	Lambda                float64 `json:"lambda" toon:"lambda"`
	LowConnectivityDegree int     `json:"k_lcr" toon:"k_lcr"`
	Strict                bool    `json:"strict" toon:"strict"`
}

// Analysis is the immutable result of one run over one snapshot. Categories
// are in application, topic, node, library order.
type Analysis struct {
	Settings        Settings              `json:"settings" toon:"settings"`
	Summary         Summary               `json:"summary" toon:"summary"`
	TopicCategories []category.Assignment `json:"topic_categories" toon:"topic_categories"`
	Dropped         []extract.DroppedEdge `json:"dropped,omitempty" toon:"dropped,omitempty"`
	Categories      []Category            `json:"categories" toon:"categories"`
}

// Category returns the results of one kind.
func (a *Analysis) Category(kind models.Kind) *Category {
	for i := range a.Categories {
		if a.Categories[i].Kind == kind {
			return &a.Categories[i]
		}
	}
	return nil
}

// Only returns a shallow copy restricted to one kind. An empty kind keeps
// every category.
func (a *Analysis) Only(kind models.Kind) *Analysis {
	if kind == "" {
		return a
	}
	only := *a
	only.Categories = nil
	if c := a.Category(kind); c != nil {
		only.Categories = []Category{*c}
	}
	return &only
}

// Rankings returns each kind's (name, score) ranking, keyed by collection name.
func (a *Analysis) Rankings() map[string][]outlier.Entry {
	out := make(map[string][]outlier.Entry, len(a.Categories))
	for i := range a.Categories {
		out[a.Categories[i].Kind.Plural()] = a.Categories[i].Ranking()
	}
	return out
}

// Digest hashes every id, metric value, flag, pattern hit and score bit for
// bit. Two analyses with equal digests produced identical tables.
func (a *Analysis) Digest() uint64 {
	h := xxhash.New()
	var buf [8]byte
	putFloat := func(f float64) {
		bits := math.Float64bits(f)
		for i := range buf {
			buf[i] = byte(bits >> (8 * i))
		}
		_, _ = h.Write(buf[:])
	}
	putBool := func(b bool) {
		if b {
			_, _ = h.Write([]byte{1})
		} else {
			_, _ = h.Write([]byte{0})
		}
	}

	for _, asg := range a.TopicCategories {
		_, _ = h.WriteString(asg.TopicID)
		_, _ = h.WriteString(asg.Category)
	}
	for _, c := range a.Categories {
		_, _ = h.WriteString(string(c.Kind))
		for _, e := range c.Entities {
			_, _ = h.WriteString(e.ID)
			for _, m := range e.Metrics {
				putFloat(m.Value)
				putBool(m.Up)
				putBool(m.Down)
			}
			for _, p := range e.Patterns {
				putBool(p.Triggered)
			}
			putFloat(e.OSP)
			putFloat(e.UNI)
			putFloat(e.Score)
		}
	}
	return h.Sum64()
}
