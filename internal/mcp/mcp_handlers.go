package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/polarcap/climatol/core"
	"github.com/polarcap/climatol/internal/contract"
	"github.com/polarcap/climatol/internal/driver"
	"github.com/polarcap/climatol/internal/iocache"
	"github.com/polarcap/climatol/internal/ncstore"
	"github.com/polarcap/climatol/schema"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	prov    contract.ProvenanceStore
	log     *zap.SugaredLogger
}

// newDriver builds a per-request driver. The locator is bound to the
// request's base directory, everything else is shared.
func (h *toolHandler) newDriver(cfg *contract.Config) *driver.Driver {
	osFs := afero.NewOsFs()
	return &driver.Driver{
		Cfg:     cfg,
		Engine:  core.NewEngine(iocache.NewArtifactStore(osFs), h.log),
		Locator: ncstore.NewLocator(osFs, cfg.BaseDir),
		Reader:  ncstore.NewReader(),
		Prov:    h.prov,
		Log:     h.log,
	}
}

// requestConfig clones the base configuration and applies the overrides
// shared by all tools.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("base_dir", ""); p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("invalid base_dir %q: %w", p, err)
		}
		cfg.BaseDir = abs
		cfg.CacheDir = filepath.Join(abs, "climatol_cache")
		cfg.MappingDir = filepath.Join(cfg.CacheDir, "mapping")
	}
	if s := request.GetString("stream", ""); s != "" {
		cfg.Stream = s
	}
	if s := request.GetString("start", ""); s != "" {
		d, err := schema.ParseDate(s)
		if err != nil {
			return nil, err
		}
		cfg.StartDate = d
	}
	if s := request.GetString("end", ""); s != "" {
		d, err := schema.ParseDate(s)
		if err != nil {
			return nil, err
		}
		cfg.EndDate = d
	}
	return cfg, nil
}

func (h *toolHandler) handleResolveBounds(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	bounds, _, err := h.newDriver(cfg).ResolveBounds()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("bounds resolution failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(map[string]any{
		"start_year": bounds.StartYear,
		"end_year":   bounds.EndYear,
		"label":      bounds.YearString(),
		"changed":    bounds.Changed,
	}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRunClimatology(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	if v := request.GetString("variables", ""); v != "" {
		cfg.Variables = splitList(v)
	}
	if m := request.GetString("months", ""); m != "" {
		cfg.MonthSets = cfg.MonthSets[:0]
		for _, name := range splitList(m) {
			ms, err := schema.LookupMonthSet(name)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid month set: %v", err)), nil
			}
			cfg.MonthSets = append(cfg.MonthSets, ms)
		}
	}

	results, bounds, err := h.newDriver(cfg).RunClimatologies()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("climatology failed: %v", err)), nil
	}

	summaries := make([]map[string]any, len(results))
	for i, r := range results {
		summaries[i] = map[string]any{
			"month_set":  r.MonthSet.Identity(),
			"cache_path": r.CachePath,
			"reused":     r.Reused,
			"variables":  r.Dataset.VarNames(),
		}
	}
	jsonData, _ := json.MarshalIndent(map[string]any{
		"bounds":        bounds.YearString(),
		"climatologies": summaries,
	}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRunTimeseries(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	diagName := request.GetString("diag", driver.DiagSST)
	hemisphere := request.GetString("hemisphere", "north")

	result, stats, bounds, err := h.newDriver(cfg).RunTimeSeries(diagName, hemisphere)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("time series failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(map[string]any{
		"bounds":          bounds.YearString(),
		"points":          len(result.Times),
		"variables":       result.VarNames(),
		"chunks_total":    stats.ChunksTotal,
		"chunks_computed": stats.ChunksComputed,
		"chunks_reused":   stats.ChunksReused,
	}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCacheStatus(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	status, err := iocache.ScanCache(afero.NewOsFs(), cfg.CacheDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cache scan failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
