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

// barWidth is the widest trend bar, drawn for a perfect score.
const barWidth = 20

// PrintTrends outputs rating trends, dispatching based on the output format configured.
func PrintTrends(series []schema.TrendSeries, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.XLSXOut:
		t := trendWorkbook(series)
		return writeBinary(cfg.OutputFile, func(w io.Writer) error {
			return xlsx.WriteTable(w, t, cfg.Precision)
		}, func(path string) error {
			return xlsx.SaveTable(path, t, cfg.Precision)
		}, "Wrote XLSX trends")
	case schema.ParquetOut:
		rows := parquet.ConvertTrends(series)
		return writeBinary(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, rows)
		}, nil, "Wrote Parquet trends")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteTrends(w, series, cfg, duration)
		}, fmt.Sprintf("Wrote %s trends", cfg.Output))
	}
}

// WriteTrends writes rating trends as text, CSV or JSON.
func WriteTrends(w io.Writer, series []schema.TrendSeries, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, series)
	case schema.CSVOut:
		var rows [][]string
		for _, s := range series {
			for _, b := range s.Buckets {
				rows = append(rows, []string{
					s.Partner, string(s.Field), string(s.Granularity), b.Period,
					b.Start.Format(schema.DateLayout), fmtFloat(b.Mean),
					strconv.Itoa(b.Valid), strconv.Itoa(b.Responses),
				})
			}
		}
		return writeCSVRows(w, []string{"partner", "field", "granularity", "period", "start", "mean", "valid", "responses"}, rows)
	default:
		label := labelFunc(cfg)
		for _, s := range series {
			scope := s.Partner
			if scope == "" {
				scope = "all partners"
			}
			if _, err := fmt.Fprintf(w, "%s by %s for %s\n", schema.RatingTitles[s.Field], s.Granularity, scope); err != nil {
				return err
			}
			if len(s.Buckets) == 0 {
				if _, err := fmt.Fprintln(w, "  No rated sessions"); err != nil {
					return err
				}
				continue
			}
			data := make([][]string, 0, len(s.Buckets))
			for _, b := range s.Buckets {
				mean := b.Mean
				data = append(data, []string{
					b.Period, fmtFloat(b.Mean), label(&mean),
					strconv.Itoa(b.Valid), strconv.Itoa(b.Responses), trendBar(b.Mean),
				})
			}
			if err := renderTable(w, []string{"Period", "Mean", "Label", "Valid", "Responses", "Trend"}, data, 0, 5); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "Trends built in %v. Cache backend: %s\n", duration, cfg.CacheBackend)
		return err
	}
}

// trendBar draws a mean on the rating scale as a bar of block characters.
func trendBar(mean float64) string {
	n := int(mean / schema.MaxRating * barWidth)
	return strings.Repeat("█", max(0, min(n, barWidth)))
}

func trendWorkbook(series []schema.TrendSeries) xlsx.Table {
	var rows [][]any
	for _, s := range series {
		for _, b := range s.Buckets {
			rows = append(rows, []any{s.Partner, schema.RatingTitles[s.Field], b.Period, b.Mean, b.Valid, b.Responses})
		}
	}
	return xlsx.Table{
		Sheet:  "Trends",
		Title:  "Rating Trends",
		Header: []string{"Partner", "Rating", "Period", "Mean", "Valid", "Responses"},
		Rows:   rows,
	}
}
