package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/debrief/internal/contract"
	mcp_internal "github.com/huangsam/debrief/internal/mcp"
	"github.com/huangsam/debrief/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const surveyCSV = `Session Date,Partner,Pressure,Challenge,Obstacle,Relevance,Support,Urgency
2024-01-01,Acme,Talent,Delegation,Time,5,4,3
2024-01-01,Acme,Talent,Focus,Budget,4,4,2
2024-02-01,Acme,Budget,Delegation,Time,3,5,4
2024-01-15,Beta,Growth,Hiring,Politics,2,3,5
2024-01-15,Beta,Talent,Hiring,Time,4,,5
`

func baseConfig(t *testing.T) *contract.Config {
	t.Helper()
	survey := filepath.Join(t.TempDir(), "survey.csv")
	require.NoError(t, os.WriteFile(survey, []byte(surveyCSV), 0o644))

	cfg := &contract.Config{}
	require.NoError(t, contract.ProcessAndValidate(cfg, &contract.ConfigRawInput{
		Input:        survey,
		Limit:        contract.DefaultResultLimit,
		Basis:        string(schema.MentionBasis),
		Granularity:  string(schema.DayGranularity),
		Precision:    contract.DefaultPrecision,
		Output:       string(schema.JSONOut),
		Color:        "no",
		CacheBackend: string(schema.NoneBackend),
	}))
	return cfg
}

func call(t *testing.T, cfg *contract.Config, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(cfg, nil)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "handlers report failures in the result, not as errors")
	require.NotEmpty(t, res.Content)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestListPartners(t *testing.T) {
	res := call(t, baseConfig(t), "list_partners", nil)
	require.False(t, res.IsError, text(res))

	var entries []struct {
		Partner   string `json:"partner"`
		Responses int    `json:"responses"`
		Sessions  int    `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(res)), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Acme", entries[0].Partner)
	assert.Equal(t, 3, entries[0].Responses)
	assert.Equal(t, 2, entries[0].Sessions)
	assert.Equal(t, "Beta", entries[1].Partner)
}

func TestGetPartnerMetrics(t *testing.T) {
	cfg := baseConfig(t)

	t.Run("report", func(t *testing.T) {
		res := call(t, cfg, "get_partner_metrics", map[string]any{"partner": "Acme", "limit": 2.0})
		require.False(t, res.IsError, text(res))

		var report schema.PartnerReport
		require.NoError(t, json.Unmarshal([]byte(text(res)), &report))
		assert.Equal(t, "Acme", report.Partner)
		assert.Equal(t, 3, report.Summary.Responses)
		assert.Empty(t, report.Details)
		for _, block := range report.Themes {
			assert.LessOrEqual(t, len(block.Items), 2)
		}
	})

	t.Run("missing partner", func(t *testing.T) {
		res := call(t, cfg, "get_partner_metrics", map[string]any{})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "partner is required")
	})

	t.Run("unknown partner", func(t *testing.T) {
		res := call(t, cfg, "get_partner_metrics", map[string]any{"partner": "Gamma"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "Gamma")
	})
}

func TestGetTopThemes(t *testing.T) {
	cfg := baseConfig(t)

	res := call(t, cfg, "get_top_themes", map[string]any{"dimension": "pressure"})
	require.False(t, res.IsError, text(res))
	var report schema.ThemeReport
	require.NoError(t, json.Unmarshal([]byte(text(res)), &report))
	assert.Empty(t, report.Partner)
	require.Len(t, report.Themes, 1)
	require.NotEmpty(t, report.Themes[0].Items)
	assert.Equal(t, "Talent", report.Themes[0].Items[0].Value)
	assert.Equal(t, 3, report.Themes[0].Items[0].Count)

	res = call(t, cfg, "get_top_themes", map[string]any{"dimension": "mood"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "invalid dimension")
}

func TestGetTrend(t *testing.T) {
	res := call(t, baseConfig(t), "get_trend", map[string]any{"partner": "Acme", "rating": "relevance", "granularity": "month"})
	require.False(t, res.IsError, text(res))

	var series []schema.TrendSeries
	require.NoError(t, json.Unmarshal([]byte(text(res)), &series))
	require.Len(t, series, 1)
	assert.Equal(t, schema.RelevanceRating, series[0].Field)
	require.Len(t, series[0].Buckets, 2)
	assert.InDelta(t, 4.5, series[0].Buckets[0].Mean, 1e-9)
	assert.InDelta(t, 3.0, series[0].Buckets[1].Mean, 1e-9)
}

func TestComparePartners(t *testing.T) {
	cfg := baseConfig(t)

	res := call(t, cfg, "compare_partners", map[string]any{"partners": []any{"Acme", "Beta"}})
	require.False(t, res.IsError, text(res))
	var report schema.ComparisonReport
	require.NoError(t, json.Unmarshal([]byte(text(res)), &report))
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "Acme", report.Rows[0].Partner)
	assert.Equal(t, "Beta", report.Rows[1].Partner)

	res = call(t, cfg, "compare_partners", map[string]any{"partners": []any{"Acme"}})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "at least two")
}

func TestMissingInput(t *testing.T) {
	cfg := baseConfig(t)
	cfg.InputPath = ""

	res := call(t, cfg, "list_partners", nil)
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "no input file")

	res = call(t, cfg, "list_partners", map[string]any{"input": filepath.Join(t.TempDir(), "missing.csv")})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "invalid parameters")
}
