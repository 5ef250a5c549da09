package main

import (
	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/output"
	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/report"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/dataset"
	"github.com/urfave/cli/v2"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Score every entity and report metrics, flags, patterns and rankings",
		ArgsUsage: "[path...]",
		Flags:     append(outputFlags(), analysisFlags()...),
		Action:    datasetAction("Analyzing", renderAnalysis),
	}
}

func renderAnalysis(e *runEnv, ds *dataset.Dataset) (output.Renderable, error) {
	a, err := e.analyze(ds)
	if err != nil {
		return nil, err
	}
	return report.Analysis(e.metadata(ds), a, e.reportOptions()), nil
}
