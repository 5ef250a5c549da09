package main

import (
	"fmt"

	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/logging"
	"github.com/canetizen/structural-analysis-on-distributed-systems/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes psa's analyses
as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "psa": {
        "command": "psa",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_architecture  Metrics, flags, patterns and scores per entity
  - rank_entities         (name, score) ranking per entity kind
  - basic_stats           Topic sizes, fan-in/out, placement and QoS counts
  - detect_loops          Self-subscriptions and ping-pong pairs
  - describe_patterns     Metric and pattern legend`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the MCP registry manifest",
				Action: runMCPManifestCmd,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	result, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := logging.New(result.Config.Logging.Level, c.Bool("verbose"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	server, err := mcpserver.NewServer(version,
		mcpserver.WithConfig(result.Config),
		mcpserver.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	return server.Run(c.Context)
}

func runMCPManifestCmd(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}
