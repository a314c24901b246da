package mcp_test

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/polarcap/climatol/internal/contract"
	mcp_internal "github.com/polarcap/climatol/internal/mcp"
	"github.com/polarcap/climatol/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	baseCfg := &contract.Config{
		BaseDir:  t.TempDir(),
		Stream:   contract.DefaultStream,
		Calendar: schema.NoLeapCalendar,
		StartDate: schema.Date{
			Year: 1, Month: 1, Day: 1,
		},
		EndDate: schema.Date{
			Year: 9999, Month: 12, Day: 31,
		},
		YearsPerCacheUpdate: contract.DefaultYearsPerCacheUpdate,
	}

	s := mcp_internal.NewMCPServer(baseCfg, nil, zap.NewNop().Sugar())
	ctx := context.Background()

	t.Run("run_climatology missing variables", func(t *testing.T) {
		tool := s.GetTool("run_climatology")
		require.NotNil(t, tool, "Tool run_climatology should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name:      "run_climatology",
				Arguments: map[string]any{},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "requires --variables")
	})

	t.Run("resolve_bounds invalid date", func(t *testing.T) {
		tool := s.GetTool("resolve_bounds")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "resolve_bounds",
				Arguments: map[string]any{
					"start": "not-a-date",
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "invalid date")
	})

	t.Run("resolve_bounds empty directory", func(t *testing.T) {
		tool := s.GetTool("resolve_bounds")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name:      "resolve_bounds",
				Arguments: map[string]any{},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "no files found")
	})
}
