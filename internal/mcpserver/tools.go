package mcpserver

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/output"
	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/report"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/extract"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/inventory"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/loops"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/outlier"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/structure"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/dataset"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// DatasetInput selects the snapshot a tool works on.
type DatasetInput struct {
	Path     string `json:"path,omitempty" jsonschema:"Snapshot file (.json, .yaml or .yml) to analyze."`
	Document string `json:"document,omitempty" jsonschema:"Inline snapshot JSON document. Used when path is empty."`
	Format   string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, markdown or text."`
}

// AnalyzeInput adds scoring overrides.
type AnalyzeInput struct {
	DatasetInput
	Top          int      `json:"top,omitempty" jsonschema:"Rows per table in markdown/text output. 0 shows all."`
	Strict       bool     `json:"strict,omitempty" jsonschema:"Fail on edges that reference unknown entities instead of dropping them."`
	Tau          float64  `json:"tau,omitempty" jsonschema:"Per-metric uniqueness cap in (0,1]. Default 0.30."`
	Lambda       *float64 `json:"lambda,omitempty" jsonschema:"Weight of the uniqueness term. Default 0.30."`
	MinPrefixLen int      `json:"min_lcp_len,omitempty" jsonschema:"Shortest shared topic-name prefix that forms a category. Default 3."`
	KLCR         *int     `json:"k_lcr,omitempty" jsonschema:"Topic count at or below which a participant is low-connectivity. Default 2."`
}

// RankInput selects one entity kind to rank.
type RankInput struct {
	AnalyzeInput
	Kind string `json:"kind,omitempty" jsonschema:"Entity kind: application, topic, node or library. Empty ranks all four."`
}

// StatsInput limits the basic statistics tables.
type StatsInput struct {
	DatasetInput
	Top int `json:"top,omitempty" jsonschema:"Rows per table in markdown/text output. 0 shows all."`
}

// PatternsInput filters the legend.
type PatternsInput struct {
	Kind   string `json:"kind,omitempty" jsonschema:"Entity kind to describe. Empty describes all."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, markdown or text."`
}

var errNoDataset = errors.New("either path or document is required")

func getFormat(format string) output.Format {
	switch strings.ToLower(format) {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	case "text":
		return output.FormatText
	default:
		return output.FormatTOON
	}
}

func formatOutput(r output.Renderable, format output.Format) (string, error) {
	var buf bytes.Buffer
	if err := output.NewWriterFormatter(&buf, format, false).Output(r); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func toolResult(r output.Renderable, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(r, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) load(input DatasetInput) (*dataset.Dataset, error) {
	switch {
	case input.Path != "":
		return s.loader.Load(input.Path)
	case input.Document != "":
		snap, err := s.loader.Parse([]byte(input.Document), dataset.FormatJSON)
		if err != nil {
			return nil, err
		}
		return &dataset.Dataset{
			Name:        "inline",
			Fingerprint: dataset.Fingerprint([]byte(input.Document)),
			Snapshot:    snap,
		}, nil
	default:
		return nil, errNoDataset
	}
}

// analyzer applies the call's overrides to the server defaults.
func (s *Server) analyzer(input AnalyzeInput) (*structure.Analyzer, error) {
	cfg := *s.cfg
	if input.Tau != 0 {
		cfg.Analysis.Tau = input.Tau
	}
	if input.Lambda != nil {
		cfg.Analysis.Lambda = *input.Lambda
	}
	if input.MinPrefixLen != 0 {
		cfg.Analysis.MinPrefixLen = input.MinPrefixLen
	}
	if input.KLCR != nil {
		cfg.Analysis.LowConnectivityDegree = *input.KLCR
	}
	if input.Strict {
		cfg.Analysis.Strict = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return structure.New(
		structure.WithMinPrefixLen(cfg.Analysis.MinPrefixLen),
		structure.WithWeights(outlier.Weights{Tau: cfg.Analysis.Tau, Lambda: cfg.Analysis.Lambda}),
		structure.WithLowConnectivityDegree(cfg.Analysis.LowConnectivityDegree),
		structure.WithStrict(cfg.Analysis.Strict),
		structure.WithLogger(s.logger),
	), nil
}

func (s *Server) analyze(input AnalyzeInput) (*dataset.Dataset, *structure.Analysis, error) {
	ds, err := s.load(input.DatasetInput)
	if err != nil {
		return nil, nil, err
	}
	az, err := s.analyzer(input)
	if err != nil {
		return nil, nil, err
	}
	a, err := az.Analyze(ds.Snapshot)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Debug("tool analysis complete",
		zap.String("dataset", ds.Name),
		zap.Int("pattern_hits", a.Summary.PatternHits))
	return ds, a, nil
}

func (s *Server) metadata(ds *dataset.Dataset) report.Metadata {
	return report.NewMetadata(ds, s.version, time.Now())
}

// Tool handlers

func (s *Server) handleAnalyzeArchitecture(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, any, error) {
	ds, a, err := s.analyze(input)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(report.Analysis(s.metadata(ds), a, report.Options{Top: input.Top}), getFormat(input.Format))
}

func (s *Server) handleRankEntities(ctx context.Context, req *mcp.CallToolRequest, input RankInput) (*mcp.CallToolResult, any, error) {
	kind, err := models.ParseKind(input.Kind)
	if err != nil {
		return toolError(err.Error())
	}
	ds, a, err := s.analyze(input.AnalyzeInput)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(report.Ranking(s.metadata(ds), a.Only(kind), report.Options{Top: input.Top}), getFormat(input.Format))
}

func (s *Server) handleBasicStats(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (*mcp.CallToolResult, any, error) {
	ds, err := s.load(input.DatasetInput)
	if err != nil {
		return toolError(err.Error())
	}
	g, err := extract.Extract(ds.Snapshot)
	if err != nil {
		return toolError(err.Error())
	}
	stats := inventory.Compute(ds.Snapshot, g)
	return toolResult(report.Inventory(s.metadata(ds), stats, report.Options{Top: input.Top}), getFormat(input.Format))
}

func (s *Server) handleDetectLoops(ctx context.Context, req *mcp.CallToolRequest, input DatasetInput) (*mcp.CallToolResult, any, error) {
	ds, err := s.load(input)
	if err != nil {
		return toolError(err.Error())
	}
	g, err := extract.Extract(ds.Snapshot)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(report.Loops(s.metadata(ds), loops.Detect(g)), getFormat(input.Format))
}

func (s *Server) handleDescribePatterns(ctx context.Context, req *mcp.CallToolRequest, input PatternsInput) (*mcp.CallToolResult, any, error) {
	kind, err := models.ParseKind(input.Kind)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(report.Patterns(kind), getFormat(input.Format))
}
