package main

import (
	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/report"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/models"
	"github.com/urfave/cli/v2"
)

func patternsCmd() *cli.Command {
	return &cli.Command{
		Name:  "patterns",
		Usage: "Describe the metrics and smell patterns",
		Flags: append(outputFlags(),
			&cli.StringFlag{
				Name:    "kind",
				Aliases: []string{"k"},
				Usage:   "Only this kind: application, topic, node or library",
			},
		),
		Action: runPatternsCmd,
	}
}

func runPatternsCmd(c *cli.Context) error {
	kind, err := models.ParseKind(c.String("kind"))
	if err != nil {
		return err
	}
	e, err := newRunEnv(c)
	if err != nil {
		return err
	}
	defer e.close()
	return e.write(report.Patterns(kind))
}
