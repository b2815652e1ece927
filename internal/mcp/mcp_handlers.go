package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/debrief/core"
	"github.com/huangsam/debrief/internal/contract"
	"github.com/huangsam/debrief/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// partnerEntry is one row of the list_partners result.
type partnerEntry struct {
	Partner   string `json:"partner"`
	Responses int    `json:"responses"`
	Sessions  int    `json:"sessions"`
}

// prepare clones the base config, applies the request overrides and loads the table.
func (h *toolHandler) prepare(ctx context.Context, request mcp.CallToolRequest, partners []string) (*contract.Config, *schema.Table, *mcp.CallToolResult) {
	cfg := h.baseCfg.Clone()
	in := contract.ToolInput{
		Input:       request.GetString("input", ""),
		Partners:    partners,
		Limit:       request.GetInt("limit", 0),
		Basis:       request.GetString("basis", ""),
		Granularity: request.GetString("granularity", ""),
		Rating:      request.GetString("rating", ""),
		Dimension:   request.GetString("dimension", ""),
	}
	if err := contract.Revalidate(cfg, in); err != nil {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err))
	}
	table, err := core.LoadTable(ctx, cfg, h.mgr)
	if err != nil {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("loading survey failed: %v", err))
	}
	return cfg, table, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListPartners(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, table, errResult := h.prepare(ctx, request, nil)
	if errResult != nil {
		return errResult, nil
	}

	overview, err := core.BuildOverview(table)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing partners failed: %v", err)), nil
	}
	entries := make([]partnerEntry, 0, len(overview.Partners))
	for _, snap := range overview.Partners {
		entries = append(entries, partnerEntry{Partner: snap.Partner, Responses: snap.Responses, Sessions: snap.Sessions})
	}
	return jsonResult(entries)
}

func (h *toolHandler) handleGetPartnerMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	partner := request.GetString("partner", "")
	if partner == "" {
		return mcp.NewToolResultError("partner is required"), nil
	}
	cfg, table, errResult := h.prepare(ctx, request, []string{partner})
	if errResult != nil {
		return errResult, nil
	}

	report, err := core.BuildPartnerReport(table, firstPartner(cfg), core.OptionsFromConfig(cfg))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("partner report failed: %v", err)), nil
	}
	// Row-level details stay out of the agent response.
	report.Details = nil
	return jsonResult(report)
}

func (h *toolHandler) handleGetTopThemes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, table, errResult := h.prepare(ctx, request, optionalPartner(request))
	if errResult != nil {
		return errResult, nil
	}

	report, err := core.BuildInsights(table, firstPartner(cfg), core.OptionsFromConfig(cfg))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("theme ranking failed: %v", err)), nil
	}
	return jsonResult(report)
}

func (h *toolHandler) handleGetTrend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, table, errResult := h.prepare(ctx, request, optionalPartner(request))
	if errResult != nil {
		return errResult, nil
	}

	series, err := core.BuildTrends(table, firstPartner(cfg), core.OptionsFromConfig(cfg))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("trend failed: %v", err)), nil
	}
	return jsonResult(series)
}

func (h *toolHandler) handleComparePartners(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	partners := request.GetStringSlice("partners", nil)
	if len(partners) < 2 {
		return mcp.NewToolResultError("partners must name at least two partners"), nil
	}
	cfg, table, errResult := h.prepare(ctx, request, partners)
	if errResult != nil {
		return errResult, nil
	}

	report, err := core.BuildComparisonReport(ctx, table, cfg.Partners, core.OptionsFromConfig(cfg))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}
	return jsonResult(report)
}

// optionalPartner returns the partner argument as an override list, or an
// empty list so a partner in the base config does not leak into the call.
func optionalPartner(request mcp.CallToolRequest) []string {
	if p := request.GetString("partner", ""); p != "" {
		return []string{p}
	}
	return []string{}
}

func firstPartner(cfg *contract.Config) string {
	if len(cfg.Partners) == 0 {
		return ""
	}
	return cfg.Partners[0]
}
