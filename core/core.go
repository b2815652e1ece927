// Package core has core logic for assembling debrief reports from a loaded survey table.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/debrief/core/agg"
	"github.com/huangsam/debrief/core/load"
	"github.com/huangsam/debrief/internal/contract"
	"github.com/huangsam/debrief/internal/outwriter"
	"github.com/huangsam/debrief/internal/xlsx"
	"github.com/huangsam/debrief/schema"
)

// ErrNoInput is returned when a command needs survey data but no input was configured.
var ErrNoInput = errors.New("no input file: pass --input or set DEBRIEF_INPUT")

// ExecutorFunc defines the function signature for executing different report commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// LoadTable returns the normalized table for the configured input, going
// through the process-wide table cache.
func LoadTable(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.Table, error) {
	if cfg.InputPath == "" {
		return nil, ErrNoInput
	}
	opts := load.Options{Sheet: cfg.Sheet, Schema: cfg.Columns, Logger: cfg.Log()}
	return tables.Load(ctx, cfg.InputPath, opts, tableStore(mgr))
}

// ExecuteOverview prints the global snapshot and one row per partner.
func ExecuteOverview(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	table, err := LoadTable(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogReportHeader(cfg, table)
	}

	ctx, run := beginRun(ctx, mgr, uuid.NewString(), schema.OverviewReport, cfg, table.Source, start)
	overview, err := BuildOverview(table)
	if err != nil {
		run.finish(0, err)
		return err
	}
	for _, snap := range overview.Partners {
		run.snapshot(ctx, snap, agg.ThemeBlocks(table, schema.CoreThemeDimensions, snap.Partner, 1, cfg.Basis))
	}
	run.finish(table.Len(), nil)
	return outwriter.PrintOverview(overview, cfg, time.Since(start))
}

// ExecutePartners prints the partner list with response counts.
func ExecutePartners(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	table, err := LoadTable(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if table.Len() == 0 {
		return &schema.EmptyScopeError{}
	}
	return outwriter.PrintPartners(agg.PartnerMetrics(table), cfg, time.Since(start))
}

// ExecutePartner prints the full report for the single partner in cfg.Partners.
func ExecutePartner(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return executePartner(ctx, cfg, mgr, schema.PartnerKind)
}

// ExecuteExportPartner writes the partner report as an XLSX workbook.
// Without --output-file the workbook is named after the partner.
func ExecuteExportPartner(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	partner, err := singlePartner(cfg)
	if err != nil {
		return err
	}
	return executePartner(withSuppressHeader(ctx), exportConfig(cfg, xlsx.PartnerFileName(partner)), mgr, schema.PartnerExport)
}

func executePartner(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, kind schema.ReportKind) error {
	start := time.Now()
	partner, err := singlePartner(cfg)
	if err != nil {
		return err
	}
	table, err := LoadTable(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogReportHeader(cfg, table)
	}

	report, err := BuildPartnerReport(table, partner, OptionsFromConfig(cfg))
	if err != nil {
		return err
	}
	ctx, run := beginRun(ctx, mgr, report.ID, kind, cfg, table.Source, start)
	run.snapshot(ctx, report.Summary, report.Themes)
	err = outwriter.PrintPartnerReport(report, cfg, time.Since(start))
	run.finish(report.Summary.Responses, err)
	return err
}

// ExecuteCompare prints the side-by-side comparison of two or more partners.
func ExecuteCompare(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return executeCompare(ctx, cfg, mgr, schema.ComparisonKind)
}

// ExecuteExportCompare writes the comparison as an XLSX workbook.
func ExecuteExportCompare(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return executeCompare(withSuppressHeader(ctx), exportConfig(cfg, xlsx.ComparisonFileName(cfg.Partners)), mgr, schema.ComparisonExport)
}

func executeCompare(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, kind schema.ReportKind) error {
	start := time.Now()
	table, err := LoadTable(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogReportHeader(cfg, table)
	}

	report, err := BuildComparisonReport(ctx, table, cfg.Partners, OptionsFromConfig(cfg))
	if err != nil {
		return err
	}
	ctx, run := beginRun(ctx, mgr, report.ID, kind, cfg, table.Source, start)
	total := 0
	for i, row := range report.Rows {
		snap := agg.Metrics(table, row.Partner)
		total += snap.Responses
		run.snapshot(ctx, snap, report.Themes[i].Themes)
	}
	err = outwriter.PrintComparison(report, cfg, time.Since(start))
	run.finish(total, err)
	return err
}

// ExecuteThemes prints the ranked themes for one partner, or for every
// partner when none is given.
func ExecuteThemes(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	partner, err := optionalPartner(cfg)
	if err != nil {
		return err
	}
	table, err := LoadTable(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogReportHeader(cfg, table)
	}

	report, err := BuildInsights(table, partner, OptionsFromConfig(cfg))
	if err != nil {
		return err
	}
	_, run := beginRun(ctx, mgr, uuid.NewString(), schema.ThemesReport, cfg, table.Source, start)
	err = outwriter.PrintThemes(report, cfg, time.Since(start))
	run.finish(table.Filter(partner).Len(), err)
	return err
}

// ExecuteTrends prints rating means over time for one partner, or for
// every partner when none is given.
func ExecuteTrends(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	partner, err := optionalPartner(cfg)
	if err != nil {
		return err
	}
	table, err := LoadTable(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogReportHeader(cfg, table)
	}

	series, err := BuildTrends(table, partner, OptionsFromConfig(cfg))
	if err != nil {
		return err
	}
	_, run := beginRun(ctx, mgr, uuid.NewString(), schema.TrendsReport, cfg, table.Source, start)
	err = outwriter.PrintTrends(series, cfg, time.Since(start))
	run.finish(table.Filter(partner).Len(), err)
	return err
}

// singlePartner returns the one partner a partner report needs.
func singlePartner(cfg *contract.Config) (string, error) {
	if len(cfg.Partners) != 1 {
		return "", fmt.Errorf("expected exactly one partner (got %d)", len(cfg.Partners))
	}
	return cfg.Partners[0], nil
}

// optionalPartner returns the partner filter, or "" for every partner.
func optionalPartner(cfg *contract.Config) (string, error) {
	switch len(cfg.Partners) {
	case 0:
		return "", nil
	case 1:
		return cfg.Partners[0], nil
	default:
		return "", fmt.Errorf("expected at most one partner (got %d)", len(cfg.Partners))
	}
}

// exportConfig forces XLSX output, naming the file when none was given.
func exportConfig(cfg *contract.Config, defaultFile string) *contract.Config {
	out := cfg.Clone()
	out.Output = schema.XLSXOut
	if out.OutputFile == "" {
		out.OutputFile = defaultFile
	}
	return out
}
