package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/logging"
	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/output"
	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/progress"
	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/report"
	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/runmetrics"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/outlier"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/structure"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/config"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/dataset"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// outputFlags are shared by every command that prints a report.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, json, markdown, toon (default from config)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to file",
		},
		&cli.IntFlag{
			Name:  "top",
			Usage: "Rows per table (0 = all)",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
	}
}

// analysisFlags override the scoring constants of the config file.
func analysisFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{
			Name:  "tau",
			Usage: "Per-metric uniqueness cap, in (0, 1]",
		},
		&cli.Float64Flag{
			Name:  "lambda",
			Usage: "Weight of the uniqueness term",
		},
		&cli.IntFlag{
			Name:  "min-lcp-len",
			Usage: "Shortest common prefix that groups topics into a category",
		},
		&cli.IntFlag{
			Name:  "k-lcr",
			Usage: "Degree at or below which an application counts as low-connectivity",
		},
		strictFlag(),
	}
}

func strictFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "strict",
		Usage: "Fail on edges that reference unknown entities instead of dropping them",
	}
}

// loadConfig loads the config file and applies command-line overrides.
func loadConfig(c *cli.Context) (*config.LoadResult, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	result, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, err
	}
	applyFlags(c, result.Config)
	if err := result.Config.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("format") {
		cfg.Output.Format = strings.ToLower(c.String("format"))
		if cfg.Output.Format == "md" {
			cfg.Output.Format = string(output.FormatMarkdown)
		}
	}
	if c.IsSet("top") {
		cfg.Output.Top = c.Int("top")
	}
	if c.Bool("no-color") {
		cfg.Output.Color = false
	}
	if c.IsSet("workers") {
		cfg.Analysis.Workers = c.Int("workers")
	}
	if c.IsSet("metrics-file") {
		cfg.Metrics.Textfile = c.String("metrics-file")
	}
	if c.IsSet("tau") {
		cfg.Analysis.Tau = c.Float64("tau")
	}
	if c.IsSet("lambda") {
		cfg.Analysis.Lambda = c.Float64("lambda")
	}
	if c.IsSet("min-lcp-len") {
		cfg.Analysis.MinPrefixLen = c.Int("min-lcp-len")
	}
	if c.IsSet("k-lcr") {
		cfg.Analysis.LowConnectivityDegree = c.Int("k-lcr")
	}
	if c.Bool("strict") {
		cfg.Analysis.Strict = true
	}
}

// runEnv is what a dataset command needs once flags and config are resolved.
type runEnv struct {
	cfg     *config.Config
	out     string
	logger  *zap.Logger
	loader  *dataset.Loader
	metrics *runmetrics.Registry
}

func newRunEnv(c *cli.Context) (*runEnv, error) {
	result, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	cfg := result.Config

	logger, err := logging.New(cfg.Logging.Level, c.Bool("verbose"))
	if err != nil {
		return nil, err
	}
	if result.Source != "" {
		logger.Debug("config loaded", zap.String("source", result.Source))
	}
	if !cfg.Output.Color {
		color.NoColor = true
	}

	loader, err := dataset.NewLoader()
	if err != nil {
		return nil, err
	}

	return &runEnv{
		cfg:     cfg,
		out:     c.String("output"),
		logger:  logger,
		loader:  loader,
		metrics: runmetrics.NewRegistry(),
	}, nil
}

func (e *runEnv) close() {
	_ = e.logger.Sync()
}

// colored reports whether tables may carry color; file output never does.
func (e *runEnv) colored() bool {
	return e.cfg.Output.Color && e.out == "" && !color.NoColor
}

func (e *runEnv) reportOptions() report.Options {
	return report.Options{Top: e.cfg.Output.Top, Colored: e.colored()}
}

func (e *runEnv) metadata(ds *dataset.Dataset) report.Metadata {
	return report.NewMetadata(ds, version, time.Now())
}

func (e *runEnv) analyzer() *structure.Analyzer {
	a := e.cfg.Analysis
	return structure.New(
		structure.WithMinPrefixLen(a.MinPrefixLen),
		structure.WithWeights(outlier.Weights{Tau: a.Tau, Lambda: a.Lambda}),
		structure.WithLowConnectivityDegree(a.LowConnectivityDegree),
		structure.WithStrict(a.Strict),
		structure.WithLogger(e.logger),
	)
}

// analyze runs the full pipeline over one dataset and records its run metrics.
func (e *runEnv) analyze(ds *dataset.Dataset) (*structure.Analysis, error) {
	start := time.Now()
	a, err := e.analyzer().Analyze(ds.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ds.Path, err)
	}
	elapsed := time.Since(start)
	e.metrics.RecordAnalysis(ds.Path, a, elapsed)
	e.logger.Debug("analysis complete",
		zap.String("dataset", ds.Name),
		zap.String("fingerprint", ds.Fingerprint),
		zap.Int("pattern_hits", a.Summary.PatternHits),
		zap.Int("dropped_edges", a.Summary.DroppedEdges),
		zap.Duration("elapsed", elapsed))
	return a, nil
}

// renderFunc turns one loaded dataset into its report.
type renderFunc func(e *runEnv, ds *dataset.Dataset) (output.Renderable, error)

// datasetAction builds the action of a command that reports on every dataset
// named by its arguments.
func datasetAction(label string, render renderFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := newRunEnv(c)
		if err != nil {
			return err
		}
		defer e.close()
		return e.run(c, label, render)
	}
}

// run loads and renders the datasets concurrently, then writes their reports
// in sorted path order. Datasets that fail are reported after the output of
// the ones that succeeded.
func (e *runEnv) run(c *cli.Context, label string, render renderFunc) error {
	paths, err := dataset.Discover(getPaths(c))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		color.Yellow("No datasets found")
		return nil
	}

	var tracker *progress.Tracker
	if len(paths) > 1 {
		tracker = progress.NewTracker(label, len(paths))
	}

	results := analyzer.MapInputs(c.Context, paths, e.cfg.Analysis.Workers,
		func(path string) (output.Renderable, error) {
			ds, err := e.loader.Load(path)
			if err != nil {
				return nil, err
			}
			e.logger.Debug("dataset loaded",
				zap.String("path", path),
				zap.Int("edges", ds.Snapshot.EdgeCount()))
			return render(e, ds)
		},
		func(path string, err error) {
			if err != nil {
				e.metrics.RecordFailure()
				tracker.Fail(path, err)
				return
			}
			tracker.Tick(path)
		})
	tracker.FinishSuccess()

	var (
		reports []output.Renderable
		errs    []error
	)
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		reports = append(reports, r.Value)
	}

	if len(reports) > 0 {
		if err := e.write(report.Batch(reports)); err != nil {
			return err
		}
	}
	if err := e.writeMetrics(); err != nil {
		return err
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d datasets failed: %w", len(errs), len(paths), errors.Join(errs...))
	}
	return nil
}

func (e *runEnv) write(r output.Renderable) error {
	formatter, err := output.NewFormatter(output.ParseFormat(e.cfg.Output.Format), e.out, e.colored())
	if err != nil {
		return err
	}
	defer formatter.Close()
	return formatter.Output(r)
}

func (e *runEnv) writeMetrics() error {
	path := e.cfg.Metrics.Textfile
	if path == "" {
		return nil
	}
	if err := e.metrics.WriteTextfile(path); err != nil {
		return err
	}
	e.logger.Debug("run metrics written", zap.String("path", path))
	return nil
}
