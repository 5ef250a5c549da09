package main

import (
	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/output"
	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/report"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/dataset"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
	"github.com/urfave/cli/v2"
)

func rankCmd() *cli.Command {
	return &cli.Command{
		Name:      "rank",
		Usage:     "List (name, score) per entity kind, highest score first",
		ArgsUsage: "[path...]",
		Flags: append(append(outputFlags(), analysisFlags()...),
			&cli.StringFlag{
				Name:    "kind",
				Aliases: []string{"k"},
				Usage:   "Only this kind: application, topic, node or library",
			},
		),
		Action: func(c *cli.Context) error {
			kind, err := models.ParseKind(c.String("kind"))
			if err != nil {
				return err
			}
			return datasetAction("Ranking", func(e *runEnv, ds *dataset.Dataset) (output.Renderable, error) {
				a, err := e.analyze(ds)
				if err != nil {
					return nil, err
				}
				return report.Ranking(e.metadata(ds), a.Only(kind), e.reportOptions()), nil
			})(c)
		},
	}
}
