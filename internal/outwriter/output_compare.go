package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/debrief/internal/contract"
	"github.com/huangsam/debrief/internal/parquet"
	"github.com/huangsam/debrief/internal/xlsx"
	"github.com/huangsam/debrief/schema"
)

// PrintComparison outputs a comparison, dispatching based on the output format configured.
func PrintComparison(report schema.ComparisonReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.XLSXOut:
		return writeBinary(cfg.OutputFile, func(w io.Writer) error {
			return xlsx.WriteComparison(w, report, cfg.Precision)
		}, func(path string) error {
			return xlsx.SaveComparison(path, report, cfg.Precision)
		}, "Exported comparison")
	case schema.ParquetOut:
		rows := comparisonSnapshots(report)
		return writeBinary(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, rows)
		}, nil, "Wrote Parquet comparison")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteComparison(w, report, cfg, duration)
		}, fmt.Sprintf("Wrote %s comparison", cfg.Output))
	}
}

// WriteComparison writes a comparison as text, CSV or JSON.
func WriteComparison(w io.Writer, report schema.ComparisonReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, report)
	case schema.CSVOut:
		return writeCSVRows(w, append([]string{"Partner"}, report.Columns...), comparisonRows(report, cfg.Precision, false))
	default:
		return writeComparisonText(w, report, cfg, duration)
	}
}

// comparisonRows renders every cell. CSV leaves missing values empty.
func comparisonRows(report schema.ComparisonReport, precision int, text bool) [][]string {
	rows := make([][]string, 0, len(report.Rows))
	for _, r := range report.Rows {
		row := make([]string, 0, len(r.Values)+1)
		row = append(row, r.Partner)
		for _, cell := range r.Values {
			if !text && (cell.Text == "N/A" || (cell.Value == nil && cell.Text == "")) {
				row = append(row, "")
				continue
			}
			row = append(row, cell.Display(precision))
		}
		rows = append(rows, row)
	}
	return rows
}

func writeComparisonText(w io.Writer, report schema.ComparisonReport, cfg *contract.Config, duration time.Duration) error {
	if err := renderTable(w, append([]string{"Partner"}, report.Columns...), comparisonRows(report, cfg.Precision, true), 0); err != nil {
		return err
	}

	// Themes side by side: one column per partner, one row per rank.
	width := getMaxTextWidth(cfg, 0) / max(1, len(report.Themes))
	headers := []string{"Rank"}
	for _, pt := range report.Themes {
		headers = append(headers, pt.Partner)
	}
	for _, dim := range themeDimensions(report) {
		if _, err := fmt.Fprintf(w, "\n%s\n", strings.ToUpper(schema.ThemeTitles[dim])); err != nil {
			return err
		}
		var data [][]string
		for rank := 0; ; rank++ {
			row := []string{strconv.Itoa(rank + 1)}
			found := false
			for _, pt := range report.Themes {
				cell := ""
				for _, block := range pt.Themes {
					if block.Dimension == dim && rank < len(block.Items) {
						item := block.Items[rank]
						cell = contract.TruncateText(fmt.Sprintf("%s (%d)", item.Value, item.Count), max(width, 16))
						found = true
					}
				}
				row = append(row, cell)
			}
			if !found {
				break
			}
			data = append(data, row)
		}
		if len(data) == 0 {
			if _, err := fmt.Fprintln(w, "  No responses"); err != nil {
				return err
			}
			continue
		}
		left := make([]int, 0, len(headers)-1)
		for i := 1; i < len(headers); i++ {
			left = append(left, i)
		}
		if err := renderTable(w, headers, data, left...); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nCompared %d partners in %v. Cache backend: %s\n", len(report.Rows), duration, cfg.CacheBackend)
	return err
}

// themeDimensions lists the dimensions present in any partner's themes, in report order.
func themeDimensions(report schema.ComparisonReport) []schema.ThemeDimension {
	seen := make(map[schema.ThemeDimension]bool)
	for _, pt := range report.Themes {
		for _, block := range pt.Themes {
			seen[block.Dimension] = true
		}
	}
	var dims []schema.ThemeDimension
	for _, dim := range schema.AllThemeDimensions {
		if seen[dim] {
			dims = append(dims, dim)
		}
	}
	return dims
}

// comparisonSnapshots turns comparison rows back into snapshot records,
// reading each value by its column title.
func comparisonSnapshots(report schema.ComparisonReport) []parquet.PartnerSnapshot {
	index := make(map[string]int, len(report.Columns))
	for i, col := range report.Columns {
		index[col] = i
	}
	value := func(row schema.ComparisonRow, col string) *float64 {
		i, ok := index[col]
		if !ok || i >= len(row.Values) {
			return nil
		}
		return row.Values[i].Value
	}
	whole := func(row schema.ComparisonRow, col string) int32 {
		if v := value(row, col); v != nil {
			return int32(*v)
		}
		return 0
	}

	top := make(map[string][]schema.ThemeBlock, len(report.Themes))
	for _, pt := range report.Themes {
		top[pt.Partner] = pt.Themes
	}
	topValue := func(partner string, dim schema.ThemeDimension) *string {
		for _, block := range top[partner] {
			if block.Dimension == dim && len(block.Items) > 0 {
				v := block.Items[0].Value
				return &v
			}
		}
		return nil
	}

	rows := make([]parquet.PartnerSnapshot, 0, len(report.Rows))
	for _, r := range report.Rows {
		rows = append(rows, parquet.PartnerSnapshot{
			RunID:        report.ID,
			Partner:      r.Partner,
			RecordedAt:   report.GeneratedAt,
			Responses:    whole(r, schema.ResponsesColumnTitle),
			Sessions:     whole(r, schema.SessionsColumnTitle),
			AvgRelevance: value(r, "Avg "+schema.RatingTitles[schema.RelevanceRating]),
			AvgSupport:   value(r, "Avg "+schema.RatingTitles[schema.SupportRating]),
			AvgUrgency:   value(r, "Avg "+schema.RatingTitles[schema.UrgencyRating]),
			TopPressure:  topValue(r.Partner, schema.PressureTheme),
			TopChallenge: topValue(r.Partner, schema.ChallengeTheme),
			TopObstacle:  topValue(r.Partner, schema.ObstacleTheme),
		})
	}
	return rows
}
