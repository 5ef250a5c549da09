package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp().RunContext(ctx, os.Args)
	stop()
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "psa",
		Usage:   "Structural smell analysis for publish-subscribe architectures",
		Version: version,
		Description: `psa reads a static snapshot of a publish-subscribe system (applications,
topics, nodes, libraries and their publish/subscribe/runs-on/uses edges),
computes connectivity metrics per entity, flags values outside the
population's interquartile fences, matches them against structural smell
patterns and ranks every entity by an outlier score.

Snapshots are JSON or YAML. A directory argument analyzes every
*.json, *.yaml and *.yml file inside it.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"PSA_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Datasets analyzed concurrently (0 = 2x NumCPU)",
			},
			&cli.StringFlag{
				Name:    "metrics-file",
				Usage:   "Write run metrics in Prometheus text format to this file",
				EnvVars: []string{"PSA_METRICS_FILE"},
			},
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			rankCmd(),
			statsCmd(),
			loopsCmd(),
			patternsCmd(),
			configCmd(),
			mcpCmd(),
		},
	}
}
