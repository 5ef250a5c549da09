package main

import (
	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/output"
	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/report"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/extract"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/loops"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/dataset"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func loopsCmd() *cli.Command {
	return &cli.Command{
		Name:      "loops",
		Usage:     "Detect feedback loops: self-subscriptions and ping-pong pairs",
		ArgsUsage: "[path...]",
		Flags:     append(outputFlags(), strictFlag()),
		Action:    datasetAction("Tracing", renderLoops),
	}
}

func renderLoops(e *runEnv, ds *dataset.Dataset) (output.Renderable, error) {
	g, err := extract.Extract(ds.Snapshot, extract.WithStrict(e.cfg.Analysis.Strict))
	if err != nil {
		return nil, err
	}
	l := loops.Detect(g)
	if l.Total() > 0 {
		e.logger.Warn("feedback loops found", zap.String("dataset", ds.Name), zap.Int("count", l.Total()))
	}
	return report.Loops(e.metadata(ds), l), nil
}
