// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/debrief/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Shared tool parameter descriptions.
var (
	inputParam = mcp.WithString("input", mcp.Description("Path to the survey export (.xlsx or .csv). Defaults to the configured input."))
	limitParam = mcp.WithNumber("limit", mcp.Description("Top-N entries per theme dimension (1-100)."))
	basisParam = mcp.WithString("basis", mcp.Description("Count themes per mention or per session. Defaults to 'mentions'."), mcp.Enum("mentions", "sessions"))
)

// NewMCPServer initializes and configures the debrief MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Partner Debrief Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: list_partners ---
	s.AddTool(mcp.NewTool("list_partners",
		mcp.WithDescription("List every partner in the survey export with response and session counts."),
		inputParam,
	), h.handleListPartners)

	// --- 2. Tool: get_partner_metrics ---
	s.AddTool(mcp.NewTool("get_partner_metrics",
		mcp.WithDescription("Build the full debrief report for one partner: rating metrics, top themes, trends and qualitative insights."),
		mcp.WithString("partner", mcp.Description("Partner name as it appears in the export."), mcp.Required()),
		inputParam,
		limitParam,
		basisParam,
		mcp.WithString("granularity", mcp.Description("Trend bucket size."), mcp.Enum("day", "week", "month")),
	), h.handleGetPartnerMetrics)

	// --- 3. Tool: get_top_themes ---
	s.AddTool(mcp.NewTool("get_top_themes",
		mcp.WithDescription("Rank the most frequent pressures, challenges, obstacles or takeaways for one partner or all partners."),
		mcp.WithString("partner", mcp.Description("Partner name. Omit to rank across every partner.")),
		mcp.WithString("dimension", mcp.Description("Restrict to one theme dimension."), mcp.Enum("pressure", "challenge", "obstacle", "takeaway")),
		inputParam,
		limitParam,
		basisParam,
	), h.handleGetTopThemes)

	// --- 4. Tool: get_trend ---
	s.AddTool(mcp.NewTool("get_trend",
		mcp.WithDescription("Mean rating per session period for one partner or all partners."),
		mcp.WithString("partner", mcp.Description("Partner name. Omit for every partner.")),
		mcp.WithString("rating", mcp.Description("Rating field. Omit for every rating."), mcp.Enum("relevance", "support", "urgency")),
		mcp.WithString("granularity", mcp.Description("Bucket size. Defaults to 'day'."), mcp.Enum("day", "week", "month")),
		inputParam,
	), h.handleGetTrend)

	// --- 5. Tool: compare_partners ---
	s.AddTool(mcp.NewTool("compare_partners",
		mcp.WithDescription("Compare metrics and top themes of two or more partners side by side."),
		mcp.WithArray("partners", mcp.Description("Partner names to compare (at least two)."), mcp.WithStringItems(), mcp.Required()),
		inputParam,
		limitParam,
		basisParam,
	), h.handleComparePartners)

	return s
}

// StartMCPServer starts the debrief MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
