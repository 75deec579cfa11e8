package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-catalog/pkg/config"
)

const (
	serverName    = "doc-catalog"
	serverVersion = "1.0.0"
)

// ServerConfig holds configuration for the MCP server
type ServerConfig struct {
	AppConfig  *config.AppConfig
	ConfigPath string
	Transport  string // "stdio" or "sse"
	Port       int
	Logger     *logrus.Logger
}

// Server exposes catalog rendering and configured jobs as MCP tools
type Server struct {
	mcpServer  *server.MCPServer
	cfg        *ServerConfig
	log        *logrus.Entry
	runManager *RunManager
}

// NewServer creates a new MCP server instance
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg.AppConfig == nil {
		return nil, fmt.Errorf("AppConfig is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithLogging(),
	)

	s := &Server{
		mcpServer:  mcpServer,
		cfg:        cfg,
		log:        cfg.Logger.WithField("component", "mcp"),
		runManager: NewRunManager(),
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	listJobsTool := mcp.NewTool("list_jobs",
		mcp.WithDescription("List all configured catalog jobs with their source, target and write mode"),
	)
	s.mcpServer.AddTool(listJobsTool, s.handleListJobs)

	renderTool := mcp.NewTool("render_catalog",
		mcp.WithDescription("Render the catalog (nested bullet list of heading links) for markdown text without writing any file"),
		mcp.WithString("markdown",
			mcp.Required(),
			mcp.Description("Markdown document content"),
		),
		mcp.WithString("link_document",
			mcp.Description("Document path used in the generated links (default 'Reference.md')"),
		),
		mcp.WithString("filter",
			mcp.Description("False-positive filter: 'narrow' (default) or 'broad'"),
		),
		mcp.WithString("level_counting",
			mcp.Description("Heading level counting: 'anywhere' (default) or 'prefix'"),
		),
		mcp.WithBoolean("verify_anchors",
			mcp.Description("Report generated links whose slug has no matching heading anchor"),
		),
	)
	s.mcpServer.AddTool(renderTool, s.handleRenderCatalog)

	generateTool := mcp.NewTool("generate_catalog",
		mcp.WithDescription("Run a configured catalog job, writing its target file. Returns the run record."),
		mcp.WithString("job_key",
			mcp.Required(),
			mcp.Description("Job key from the config file"),
		),
	)
	s.mcpServer.AddTool(generateTool, s.handleGenerateCatalog)

	getRunTool := mcp.NewTool("get_run",
		mcp.WithDescription("Get the record of a previous generate_catalog run"),
		mcp.WithString("run_id",
			mcp.Required(),
			mcp.Description("The run ID returned by generate_catalog"),
		),
	)
	s.mcpServer.AddTool(getRunTool, s.handleGetRun)

	s.log.Infof("Registered %d MCP tools", 4)
}

// Run starts the MCP server with the configured transport
func (s *Server) Run() error {
	switch s.cfg.Transport {
	case "stdio":
		s.log.Info("Starting MCP server with stdio transport")
		return server.ServeStdio(s.mcpServer)
	case "sse":
		addr := fmt.Sprintf(":%d", s.cfg.Port)
		s.log.Infof("Starting MCP server with SSE transport on %s", addr)
		sseServer := server.NewSSEServer(s.mcpServer)
		return sseServer.Start(addr)
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", s.cfg.Transport)
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Infof("Shutting down MCP server (%d catalog runs served)...", len(s.runManager.ListRuns()))
	return nil
}
