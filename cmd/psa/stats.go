package main

import (
	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/output"
	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/report"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/extract"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/analyzer/inventory"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/dataset"
	"github.com/urfave/cli/v2"
)

func statsCmd() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Show basic statistics: topic sizes, fan-in/out, placement and QoS",
		ArgsUsage: "[path...]",
		Flags:     append(outputFlags(), strictFlag()),
		Action:    datasetAction("Counting", renderInventory),
	}
}

func renderInventory(e *runEnv, ds *dataset.Dataset) (output.Renderable, error) {
	g, err := extract.Extract(ds.Snapshot, extract.WithStrict(e.cfg.Analysis.Strict))
	if err != nil {
		return nil, err
	}
	return report.Inventory(e.metadata(ds), inventory.Compute(ds.Snapshot, g), e.reportOptions()), nil
}
