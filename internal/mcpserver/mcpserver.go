package mcpserver

import (
	"context"
	"fmt"

	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/config"
	"github.com/canetizen/structural-analysis-on-distributed-systems/pkg/dataset"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Server wraps the MCP server and registers the psa analysis tools.
type Server struct {
	server  *mcp.Server
	loader  *dataset.Loader
	cfg     *config.Config
	logger  *zap.Logger
	version string
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets the defaults tool calls start from.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		s.cfg = cfg
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new MCP server with all psa tools registered.
func NewServer(version string, opts ...Option) (*Server, error) {
	if version == "" {
		version = "dev"
	}
	loader, err := dataset.NewLoader()
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset loader: %w", err)
	}

	s := &Server{
		server: mcp.NewServer(
			&mcp.Implementation{
				Name:    "psa",
				Version: version,
			},
			nil,
		),
		loader:  loader,
		cfg:     config.DefaultConfig(),
		logger:  zap.NewNop(),
		version: version,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()
	s.registerPrompts()
	return s, nil
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting", zap.String("version", s.version))
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_architecture",
		Description: describeAnalyzeArchitecture(),
	}, s.handleAnalyzeArchitecture)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "rank_entities",
		Description: describeRankEntities(),
	}, s.handleRankEntities)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "basic_stats",
		Description: describeBasicStats(),
	}, s.handleBasicStats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "detect_loops",
		Description: describeDetectLoops(),
	}, s.handleDetectLoops)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "describe_patterns",
		Description: describePatterns(),
	}, s.handleDescribePatterns)
}
