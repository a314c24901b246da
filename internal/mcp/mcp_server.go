// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/polarcap/climatol/internal/contract"
	"go.uber.org/zap"
)

// NewMCPServer initializes and configures the climatol MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, prov contract.ProvenanceStore, log *zap.SugaredLogger) *server.MCPServer {
	s := server.NewMCPServer(
		"Climatol Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		prov:    prov,
		log:     log,
	}

	// --- 1. Tool: resolve_bounds ---
	s.AddTool(mcp.NewTool("resolve_bounds",
		mcp.WithDescription("Resolve the complete calendar years a model output stream covers."),
		mcp.WithString("base_dir", mcp.Description("Run directory holding the model output (defaults to the configured directory).")),
		mcp.WithString("stream", mcp.Description("Model output stream name.")),
		mcp.WithString("start", mcp.Description("Requested start date (YYYY-MM-DD).")),
		mcp.WithString("end", mcp.Description("Requested end date (YYYY-MM-DD).")),
	), h.handleResolveBounds)

	// --- 2. Tool: run_climatology ---
	s.AddTool(mcp.NewTool("run_climatology",
		mcp.WithDescription("Compute or reuse cached seasonal climatologies for the given variables."),
		mcp.WithString("base_dir", mcp.Description("Run directory holding the model output.")),
		mcp.WithString("months", mcp.Description("Comma-separated month sets (e.g. 'ANN,JFM').")),
		mcp.WithString("variables", mcp.Description("Comma-separated variables to average."), mcp.Required()),
	), h.handleRunClimatology)

	// --- 3. Tool: run_timeseries ---
	s.AddTool(mcp.NewTool("run_timeseries",
		mcp.WithDescription("Compute a scalar diagnostic time series, extending the cache incrementally."),
		mcp.WithString("base_dir", mcp.Description("Run directory holding the model output.")),
		mcp.WithString("diag", mcp.Description("Diagnostic to compute. Defaults to 'sst'."), mcp.Enum("sst", "ohc", "seaice")),
		mcp.WithString("hemisphere", mcp.Description("Hemisphere for the sea-ice diagnostic."), mcp.Enum("north", "south")),
	), h.handleRunTimeseries)

	// --- 4. Tool: cache_status ---
	s.AddTool(mcp.NewTool("cache_status",
		mcp.WithDescription("Summarize cached artifacts by kind, size and age."),
		mcp.WithString("base_dir", mcp.Description("Run directory holding the model output.")),
	), h.handleCacheStatus)

	return s
}

// StartMCPServer starts the climatol MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, prov contract.ProvenanceStore, log *zap.SugaredLogger) error {
	s := NewMCPServer(baseCfg, prov, log)
	return server.ServeStdio(s)
}
