package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/debrief/core/agg"
	"github.com/huangsam/debrief/internal/contract"
	"github.com/huangsam/debrief/schema"
	"golang.org/x/sync/errgroup"
)

// ErrTooFewPartners is returned when a comparison names fewer than two distinct partners.
var ErrTooFewPartners = errors.New("comparison needs at least two distinct partners")

// ErrPartnerRequired is returned when a partner report is built without a partner.
var ErrPartnerRequired = errors.New("a partner name is required")

// ReportOptions controls the size and shape of assembled reports.
type ReportOptions struct {
	Limit        int                     // top-N per theme block; 0 keeps all
	Basis        schema.ThemeBasis       // empty means mentions
	Granularity  schema.Granularity      // empty means day
	Ratings      []schema.RatingField    // nil means every rating field
	Dimensions   []schema.ThemeDimension // nil means every dimension the table provides
	ExcerptLimit int                     // qualitative excerpts per insight field; 0 keeps all
}

// OptionsFromConfig derives report options from a validated config.
func OptionsFromConfig(cfg *contract.Config) ReportOptions {
	opts := ReportOptions{
		Limit:        cfg.ResultLimit,
		Basis:        cfg.Basis,
		Granularity:  cfg.Granularity,
		ExcerptLimit: schema.MaxInsightExcerpts,
	}
	if cfg.Rating != "" {
		opts.Ratings = []schema.RatingField{cfg.Rating}
	}
	if cfg.Dimension != "" {
		opts.Dimensions = []schema.ThemeDimension{cfg.Dimension}
	}
	return opts
}

func (o ReportOptions) normalized() ReportOptions {
	if o.Basis == "" {
		o.Basis = schema.MentionBasis
	}
	if o.Granularity == "" {
		o.Granularity = schema.DayGranularity
	}
	if len(o.Ratings) == 0 {
		o.Ratings = schema.AllRatingFields
	}
	return o
}

// dimensions returns the requested dimensions, or every dimension the table has.
func (o ReportOptions) dimensions(table *schema.Table) []schema.ThemeDimension {
	if len(o.Dimensions) > 0 {
		return o.Dimensions
	}
	return agg.Dimensions(table)
}

// BuildPartnerReport assembles every block of a single partner's report.
func BuildPartnerReport(table *schema.Table, partner string, opts ReportOptions) (schema.PartnerReport, error) {
	partner = schema.CollapseSpace(partner)
	if partner == "" {
		return schema.PartnerReport{}, ErrPartnerRequired
	}
	scope := table.Filter(partner)
	if scope.Len() == 0 {
		return schema.PartnerReport{}, &schema.EmptyScopeError{Partner: partner}
	}
	opts = opts.normalized()

	trends := make([]schema.TrendSeries, 0, len(opts.Ratings))
	for _, field := range opts.Ratings {
		trends = append(trends, agg.Trend(table, field, partner, opts.Granularity))
	}

	return schema.PartnerReport{
		ID:          uuid.NewString(),
		Partner:     partner,
		Source:      table.Source,
		GeneratedAt: time.Now().UTC(),
		Summary:     agg.Metrics(table, partner),
		Themes:      agg.ThemeBlocks(table, opts.dimensions(table), partner, opts.Limit, opts.Basis),
		Trends:      trends,
		Periods:     agg.Periods(table, partner, opts.Granularity),
		Insights:    insightBlocks(table, partner, opts.ExcerptLimit),
		Details:     scope.Responses,
	}, nil
}

// insightBlocks collects excerpts for every insight column the source provides.
func insightBlocks(table *schema.Table, partner string, limit int) []schema.InsightBlock {
	blocks := make([]schema.InsightBlock, 0, len(schema.AllInsightFields))
	for _, field := range schema.AllInsightFields {
		if !table.HasColumn(schema.InsightColumns[field]) {
			continue
		}
		blocks = append(blocks, schema.InsightBlock{
			Field:    field,
			Title:    schema.InsightTitles[field],
			Excerpts: agg.Insights(table, field, partner, limit),
		})
	}
	return blocks
}

// BuildComparisonReport lines partners up column for column, in the order given.
// Metrics and themes for each partner are computed concurrently.
func BuildComparisonReport(ctx context.Context, table *schema.Table, partners []string, opts ReportOptions) (schema.ComparisonReport, error) {
	names := distinctPartners(partners)
	if len(names) < 2 {
		return schema.ComparisonReport{}, fmt.Errorf("%w (got %d)", ErrTooFewPartners, len(names))
	}
	known := make(map[string]struct{})
	for _, p := range table.Partners() {
		known[p] = struct{}{}
	}
	for _, name := range names {
		if _, ok := known[name]; !ok {
			return schema.ComparisonReport{}, &schema.EmptyScopeError{Partner: name}
		}
	}
	opts = opts.normalized()
	dims := opts.dimensions(table)

	rows := make([]schema.ComparisonRow, len(names))
	themes := make([]schema.PartnerThemes, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = comparisonRow(agg.Metrics(table, name))
			themes[i] = schema.PartnerThemes{
				Partner: name,
				Themes:  agg.ThemeBlocks(table, dims, name, opts.Limit, opts.Basis),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return schema.ComparisonReport{}, err
	}

	return schema.ComparisonReport{
		ID:          uuid.NewString(),
		Source:      table.Source,
		GeneratedAt: time.Now().UTC(),
		Columns:     schema.ComparisonColumns(),
		Rows:        rows,
		Themes:      themes,
	}, nil
}

// comparisonRow flattens a snapshot into cells aligned with schema.ComparisonColumns.
func comparisonRow(snap schema.MetricSnapshot) schema.ComparisonRow {
	values := []schema.ComparisonCell{
		wholeCell(snap.Responses),
		wholeCell(snap.Sessions),
	}
	for _, field := range schema.AllRatingFields {
		stat := snap.Rating(field)
		values = append(values,
			schema.ComparisonCell{Value: stat.Mean},
			schema.ComparisonCell{Value: stat.Median},
		)
	}
	first, last := snap.DateRange()
	values = append(values, schema.ComparisonCell{Text: first}, schema.ComparisonCell{Text: last})
	return schema.ComparisonRow{Partner: snap.Partner, Values: values}
}

func wholeCell(n int) schema.ComparisonCell {
	return schema.ComparisonCell{Value: schema.FloatPtr(float64(n)), Whole: true}
}

// distinctPartners normalizes names and drops blanks and repeats, keeping order.
func distinctPartners(partners []string) []string {
	seen := make(map[string]struct{}, len(partners))
	out := make([]string, 0, len(partners))
	for _, p := range partners {
		p = schema.CollapseSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// BuildOverview returns the global snapshot plus one snapshot per partner.
func BuildOverview(table *schema.Table) (schema.Overview, error) {
	if table.Len() == 0 {
		return schema.Overview{}, &schema.EmptyScopeError{}
	}
	return schema.Overview{
		Source:   table.Source,
		Stats:    table.Stats,
		Global:   agg.Metrics(table, ""),
		Partners: agg.PartnerMetrics(table),
	}, nil
}

// BuildInsights ranks themes for one partner, or across every partner when
// partner is empty.
func BuildInsights(table *schema.Table, partner string, opts ReportOptions) (schema.ThemeReport, error) {
	if err := checkScope(table, partner); err != nil {
		return schema.ThemeReport{}, err
	}
	opts = opts.normalized()
	return schema.ThemeReport{
		Partner: partner,
		Basis:   opts.Basis,
		Limit:   opts.Limit,
		Themes:  agg.ThemeBlocks(table, opts.dimensions(table), partner, opts.Limit, opts.Basis),
	}, nil
}

// BuildTrends returns one series per requested rating field.
func BuildTrends(table *schema.Table, partner string, opts ReportOptions) ([]schema.TrendSeries, error) {
	if err := checkScope(table, partner); err != nil {
		return nil, err
	}
	opts = opts.normalized()
	series := make([]schema.TrendSeries, 0, len(opts.Ratings))
	for _, field := range opts.Ratings {
		series = append(series, agg.Trend(table, field, partner, opts.Granularity))
	}
	return series, nil
}

// checkScope returns an EmptyScopeError when the filter selects nothing.
func checkScope(table *schema.Table, partner string) error {
	if table.Len() == 0 {
		return &schema.EmptyScopeError{Partner: partner}
	}
	if partner == "" {
		return nil
	}
	for _, r := range table.Responses {
		if r.Partner == partner {
			return nil
		}
	}
	return &schema.EmptyScopeError{Partner: partner}
}
