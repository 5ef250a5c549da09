package report

import (
	"time"

	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/inventory"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/loops"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/metrics"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/outlier"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/patterns"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/structure"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/dataset"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
	"github.com/google/uuid"
)

// Metadata identifies one run over one dataset.
type Metadata struct {
	RunID       string `json:"run_id" toon:"run_id"`
	GeneratedAt string `json:"generated_at" toon:"generated_at"`
	Version     string `json:"version" toon:"version"`
	Dataset     string `json:"dataset" toon:"dataset"`
	Path        string `json:"path,omitempty" toon:"path,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty" toon:"fingerprint,omitempty"`
}

// NewMetadata stamps a dataset with a fresh run id.
func NewMetadata(ds *dataset.Dataset, version string, now time.Time) Metadata {
	if version == "" {
		version = "dev"
	}
	return Metadata{
		RunID:       uuid.NewString(),
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Version:     version,
		Dataset:     ds.Name,
		Path:        ds.Path,
		Fingerprint: ds.Fingerprint,
	}
}

// AnalysisDocument is the serialized form of a full structural analysis.
type AnalysisDocument struct {
	Metadata Metadata            `json:"metadata" toon:"metadata"`
	Analysis *structure.Analysis `json:"analysis" toon:"analysis"`
}

// KindRanking is the ranked score list of one entity kind.
type KindRanking struct {
	Category string          `json:"category" toon:"category"`
	Entries  []outlier.Entry `json:"entries" toon:"entries"`
}

// RankingDocument carries every kind's ranking, in report order.
type RankingDocument struct {
	Metadata Metadata      `json:"metadata" toon:"metadata"`
	Rankings []KindRanking `json:"rankings" toon:"rankings"`
}

// InventoryDocument is the serialized form of the basic statistics.
type InventoryDocument struct {
	Metadata Metadata         `json:"metadata" toon:"metadata"`
	Stats    *inventory.Stats `json:"stats" toon:"stats"`
}

// LoopsDocument is the serialized form of the feedback loop findings.
type LoopsDocument struct {
	Metadata Metadata        `json:"metadata" toon:"metadata"`
	Loops    *loops.Analysis `json:"loops" toon:"loops"`
}

// LegendPattern describes one pattern rule.
type LegendPattern struct {
	Kind        models.Kind   `json:"kind" toon:"kind"`
	Code        patterns.Code `json:"code" toon:"code"`
	Name        string        `json:"name" toon:"name"`
	Condition   string        `json:"condition" toon:"condition"`
	Description string        `json:"description" toon:"description"`
}

// LegendMetric describes one metric.
type LegendMetric struct {
	Kind        models.Kind  `json:"kind" toon:"kind"`
	Code        metrics.Code `json:"code" toon:"code"`
	Name        string       `json:"name" toon:"name"`
	Description string       `json:"description" toon:"description"`
}

// Legend lists every metric and pattern the analysis knows about.
type Legend struct {
	Metrics  []LegendMetric  `json:"metrics" toon:"metrics"`
	Patterns []LegendPattern `json:"patterns" toon:"patterns"`
}

// NewLegend builds the legend from the rule and metric tables.
func NewLegend() Legend {
	var l Legend
	for _, kind := range models.Kinds {
		for _, d := range metrics.Definitions(kind) {
			l.Metrics = append(l.Metrics, LegendMetric{Kind: kind, Code: d.Code, Name: d.Name, Description: d.Description})
		}
		for _, r := range patterns.Rules(kind) {
			l.Patterns = append(l.Patterns, LegendPattern{
				Kind:        kind,
				Code:        r.Code,
				Name:        r.Name,
				Condition:   r.Condition,
				Description: r.Description,
			})
		}
	}
	return l
}
