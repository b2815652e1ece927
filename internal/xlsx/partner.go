package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/debrief/schema"
)

// Partner workbook sheets, in order.
const (
	SummarySheet  = "Executive Summary"
	MetricsSheet  = "Detailed Metrics"
	ThemesSheet   = "Theme Analysis"
	InsightsSheet = "Qualitative Insights"
	DetailsSheet  = "Session Details"
)

// maxThemeRows caps the rows of each theme section.
const maxThemeRows = 10

// PartnerFileName is the default workbook name for a partner export.
func PartnerFileName(partner string) string {
	return fileSafe(partner) + "_Intelligence_Report.xlsx"
}

// SavePartnerReport writes the partner workbook to path. Failures are
// returned as *schema.ExportError and leave no file behind.
func SavePartnerReport(path string, report schema.PartnerReport, precision int) error {
	return save(path, func(w io.Writer) error {
		return WritePartnerReport(w, report, precision)
	})
}

// WritePartnerReport encodes the five-sheet partner workbook on w.
func WritePartnerReport(w io.Writer, report schema.PartnerReport, precision int) error {
	b, err := newBook(precision)
	if err != nil {
		return err
	}
	b.props("Partner Debrief Intelligence Report: "+report.Partner, report.ID)
	b.summarySheet(report, precision)
	b.metricsSheet(report)
	b.themesSheet(report.Themes)
	b.insightsSheet(report.Insights)
	b.detailsSheet(report.Details)
	return b.write(w)
}

func (b *book) summarySheet(report schema.PartnerReport, precision int) {
	sh := b.sheet(SummarySheet)
	b.set(sh, 1, 1, "Partner Debrief Intelligence Report")
	b.style(sh, 1, 1, 1, 1, titleStyle)
	b.set(sh, 1, 2, "Partner: "+report.Partner)
	b.style(sh, 1, 2, 1, 2, subtitleStyle)
	b.set(sh, 1, 3, "Report Generated: "+report.GeneratedAt.Format(DateLong))
	b.set(sh, 1, 4, "Source: "+report.Source)
	b.style(sh, 1, 4, 1, 4, mutedStyle)

	b.set(sh, 1, 6, "KEY PERFORMANCE INDICATORS")
	b.merge(sh, 1, 3, 6)
	b.style(sh, 1, 6, 3, 6, bannerStyle)

	summary := report.Summary
	kpis := [][2]string{
		{"Total Survey Responses", fmt.Sprintf("%d", summary.Responses)},
		{"Unique Debrief Sessions", fmt.Sprintf("%d", summary.Sessions)},
	}
	for _, field := range schema.AllRatingFields {
		value := schema.NoDataLabel
		if mean := summary.Rating(field).Mean; mean != nil {
			value = fmt.Sprintf("%.*f / %.*f", precision, *mean, precision, float64(schema.MaxRating))
		}
		kpis = append(kpis, [2]string{fmt.Sprintf("Average %s Score", schema.RatingTitles[field]), value})
	}
	first, last := summary.DateRange()
	period := "N/A"
	if first != "N/A" {
		period = first + " to " + last
	}
	kpis = append(kpis, [2]string{"Data Period", period})

	for i, kpi := range kpis {
		row := 8 + i
		b.set(sh, 1, row, kpi[0])
		b.style(sh, 1, row, 1, row, labelStyle)
		b.set(sh, 3, row, kpi[1])
		b.style(sh, 3, row, 3, row, valueStyle)
	}
	b.width(sh, 1, 30)
	b.width(sh, 3, 25)
}

func (b *book) metricsSheet(report schema.PartnerReport) {
	sh := b.sheet(MetricsSheet)
	b.set(sh, 1, 1, "Coach Satisfaction Metrics")
	b.style(sh, 1, 1, 1, 1, titleStyle)

	header := []string{"Session Date"}
	for _, field := range schema.AllRatingFields {
		header = append(header, schema.RatingTitles[field])
	}
	header = append(header, "Response Count")
	b.header(sh, 3, header)

	for i, period := range report.Periods {
		row := 4 + i
		b.set(sh, 1, row, period.Period)
		for j, field := range schema.AllRatingFields {
			b.mean(sh, 2+j, row, period.Means[field])
		}
		col := len(header)
		b.set(sh, col, row, period.Responses)
		b.style(sh, col, row, col, row, wholeStyle)
	}
	if len(report.Periods) == 0 {
		b.set(sh, 1, 4, "No dated sessions")
		b.style(sh, 1, 4, 1, 4, mutedStyle)
	}

	for i, w := range []float64{15, 12, 12, 12, 15} {
		b.width(sh, i+1, w)
	}
}

// themeSections writes titled theme sections from startRow and returns the next free row.
func (b *book) themeSections(sh string, startRow int, blocks []schema.ThemeBlock, countTitle, sectionName string) int {
	row := startRow
	for _, block := range blocks {
		b.set(sh, 1, row, strings.ToUpper(block.Title))
		b.merge(sh, 1, 2, row)
		b.style(sh, 1, row, 2, row, sectionName)
		row++

		b.set(sh, 1, row, "Theme")
		b.set(sh, 2, row, countTitle)
		b.style(sh, 1, row, 2, row, subheadStyle)
		row++

		items := block.Items
		if len(items) > maxThemeRows {
			items = items[:maxThemeRows]
		}
		for _, item := range items {
			b.set(sh, 1, row, item.Value)
			b.style(sh, 1, row, 1, row, wrapStyle)
			b.set(sh, 2, row, item.Count)
			b.style(sh, 2, row, 2, row, wholeStyle)
			row++
		}
		if len(items) == 0 {
			b.set(sh, 1, row, "No responses")
			b.style(sh, 1, row, 1, row, mutedStyle)
			row++
		}
		row += 2
	}
	return row
}

func (b *book) themesSheet(blocks []schema.ThemeBlock) {
	sh := b.sheet(ThemesSheet)
	b.set(sh, 1, 1, "Coaching Themes & Patterns")
	b.style(sh, 1, 1, 1, 1, titleStyle)
	b.themeSections(sh, 3, blocks, "Frequency", sectionStyle)
	b.width(sh, 1, 60)
	b.width(sh, 2, 12)
}

func (b *book) insightsSheet(blocks []schema.InsightBlock) {
	sh := b.sheet(InsightsSheet)
	b.set(sh, 1, 1, "Coach Insights & Feedback")
	b.style(sh, 1, 1, 1, 1, titleStyle)

	row := 3
	for _, block := range blocks {
		b.set(sh, 1, row, block.Title)
		b.merge(sh, 1, 2, row)
		b.style(sh, 1, row, 2, row, insightStyle)
		row++

		excerpts := block.Excerpts
		if len(excerpts) > schema.MaxInsightExcerpts {
			excerpts = excerpts[:schema.MaxInsightExcerpts]
		}
		for i, text := range excerpts {
			b.set(sh, 1, row, fmt.Sprintf("%d.", i+1))
			b.set(sh, 2, row, text)
			b.style(sh, 2, row, 2, row, wrapStyle)
			b.height(sh, row, max(30, float64(len(text))/3))
			row++
		}
		if len(excerpts) == 0 {
			b.set(sh, 2, row, "No responses")
			b.style(sh, 2, row, 2, row, mutedStyle)
			row++
		}
		row++
	}
	b.width(sh, 1, 5)
	b.width(sh, 2, 80)
}

func (b *book) detailsSheet(details []schema.Response) {
	sh := b.sheet(DetailsSheet)
	b.set(sh, 1, 1, "Complete Session Data")
	b.style(sh, 1, 1, 1, 1, titleStyle)

	header := []string{"Timestamp", "Session Date", "Coach ID"}
	for _, field := range schema.AllRatingFields {
		header = append(header, schema.RatingTitles[field])
	}
	header = append(header, "Pressure", "Challenge", "Obstacle", "Takeaway", "Anything Else", "Barriers")
	b.header(sh, 3, header)

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for i, r := range details {
		row := 4 + i
		values := []any{formatTime(r.Timestamp, "2006-01-02 15:04:05"), formatTime(r.SessionDate, schema.DateLayout), r.CoachID}
		for _, field := range schema.AllRatingFields {
			if v, ok := r.Rating(field); ok {
				values = append(values, v)
			} else {
				values = append(values, r.Ratings[field])
			}
		}
		values = append(values, r.Pressure, r.Challenge, r.Obstacle, blankToEmpty(r.Takeaway), blankToEmpty(r.Unshared), blankToEmpty(r.Barrier))
		for col, v := range values {
			b.set(sh, col+1, row, v)
			if s, ok := v.(string); ok && len(s) > widths[col] {
				widths[col] = len(s)
			}
		}
	}
	for i, w := range widths {
		b.width(sh, i+1, float64(min(50, max(12, w+2))))
	}
}
