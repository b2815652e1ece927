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

// textExcerpts caps the excerpts shown per insight field in text output.
const textExcerpts = 5

// PrintPartnerReport outputs a partner report, dispatching based on the output format configured.
// XLSX writes the full five-sheet workbook; Parquet writes the partner's responses.
func PrintPartnerReport(report schema.PartnerReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.XLSXOut:
		return writeBinary(cfg.OutputFile, func(w io.Writer) error {
			return xlsx.WritePartnerReport(w, report, cfg.Precision)
		}, func(path string) error {
			return xlsx.SavePartnerReport(path, report, cfg.Precision)
		}, "Exported partner report")
	case schema.ParquetOut:
		rows := parquet.ConvertResponses(report.Details)
		return writeBinary(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, rows)
		}, nil, "Wrote Parquet responses")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WritePartnerReport(w, report, cfg, duration)
		}, fmt.Sprintf("Wrote %s partner report", cfg.Output))
	}
}

// WritePartnerReport writes a partner report as text, CSV or JSON.
func WritePartnerReport(w io.Writer, report schema.PartnerReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, report)
	case schema.CSVOut:
		return writeCSVRows(w, []string{"section", "key", "value"}, partnerCSVRows(report, cfg.Precision))
	default:
		return writePartnerText(w, report, cfg, duration)
	}
}

// partnerCSVRows flattens every block of the report into section/key/value rows.
func partnerCSVRows(report schema.PartnerReport, precision int) [][]string {
	s := report.Summary
	rows := [][]string{
		{"summary", "partner", report.Partner},
		{"summary", "responses", strconv.Itoa(s.Responses)},
		{"summary", "sessions", strconv.Itoa(s.Sessions)},
	}
	for _, field := range schema.AllRatingFields {
		stat := s.Rating(field)
		rows = append(rows,
			[]string{"summary", "avg_" + string(field), csvFloat(stat.Mean, precision)},
			[]string{"summary", "median_" + string(field), csvFloat(stat.Median, precision)},
		)
	}
	first, last := s.DateRange()
	rows = append(rows, []string{"summary", "first_date", first}, []string{"summary", "last_date", last})

	for _, block := range report.Themes {
		for _, item := range block.Items {
			rows = append(rows, []string{"theme:" + string(block.Dimension), item.Value, strconv.Itoa(item.Count)})
		}
	}
	for _, series := range report.Trends {
		for _, b := range series.Buckets {
			rows = append(rows, []string{"trend:" + string(series.Field), b.Period, strconv.FormatFloat(b.Mean, 'f', precision, 64)})
		}
	}
	for _, block := range report.Insights {
		for i, text := range block.Excerpts {
			rows = append(rows, []string{"insight:" + string(block.Field), strconv.Itoa(i + 1), text})
		}
	}
	return rows
}

func writePartnerText(w io.Writer, report schema.PartnerReport, cfg *contract.Config, duration time.Duration) error {
	_, fmtMean := createFormatters(cfg.Precision)
	label := labelFunc(cfg)
	s := report.Summary
	first, last := s.DateRange()

	if _, err := fmt.Fprintf(w, "Partner: %s\nResponses: %d, Sessions: %d, Period: %s → %s\n\n", report.Partner, s.Responses, s.Sessions, first, last); err != nil {
		return err
	}

	kpis := make([][]string, 0, len(schema.AllRatingFields))
	for _, field := range schema.AllRatingFields {
		stat := s.Rating(field)
		kpis = append(kpis, []string{
			schema.RatingTitles[field], fmtMean(stat.Mean), fmtMean(stat.Median),
			strconv.Itoa(stat.Valid), strconv.Itoa(stat.Excluded), label(stat.Mean),
		})
	}
	if err := renderTable(w, []string{"Rating", "Mean", "Median", "Valid", "Excluded", "Label"}, kpis, 0); err != nil {
		return err
	}

	if err := writeThemeBlocks(w, report.Themes, cfg); err != nil {
		return err
	}

	if len(report.Periods) > 0 {
		if _, err := fmt.Fprintln(w, "\nRatings by period"); err != nil {
			return err
		}
		headers := []string{"Period"}
		for _, field := range schema.AllRatingFields {
			headers = append(headers, schema.RatingTitles[field])
		}
		headers = append(headers, "Responses")
		data := make([][]string, 0, len(report.Periods))
		for _, p := range report.Periods {
			row := []string{p.Period}
			for _, field := range schema.AllRatingFields {
				row = append(row, fmtMean(p.Means[field]))
			}
			data = append(data, append(row, strconv.Itoa(p.Responses)))
		}
		if err := renderTable(w, headers, data, 0); err != nil {
			return err
		}
	}

	width := getMaxTextWidth(cfg, 6)
	for _, block := range report.Insights {
		if _, err := fmt.Fprintf(w, "\n%s\n", block.Title); err != nil {
			return err
		}
		if len(block.Excerpts) == 0 {
			if _, err := fmt.Fprintln(w, "  No responses"); err != nil {
				return err
			}
			continue
		}
		for i, text := range block.Excerpts {
			if i == textExcerpts {
				if _, err := fmt.Fprintf(w, "  ... %d more\n", len(block.Excerpts)-textExcerpts); err != nil {
					return err
				}
				break
			}
			if _, err := fmt.Fprintf(w, "  %d. %s\n", i+1, contract.TruncateText(text, width)); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w, "\nReport %s built in %v. Cache backend: %s\n", report.ID, duration, cfg.CacheBackend)
	return err
}

// writeThemeBlocks prints one ranked table per theme dimension.
func writeThemeBlocks(w io.Writer, blocks []schema.ThemeBlock, cfg *contract.Config) error {
	width := getMaxTextWidth(cfg, 20)
	for _, block := range blocks {
		if _, err := fmt.Fprintf(w, "\n%s\n", strings.ToUpper(block.Title)); err != nil {
			return err
		}
		if len(block.Items) == 0 {
			if _, err := fmt.Fprintln(w, "  No responses"); err != nil {
				return err
			}
			continue
		}
		data := make([][]string, 0, len(block.Items))
		for i, item := range block.Items {
			data = append(data, []string{strconv.Itoa(i + 1), contract.TruncateText(item.Value, width), strconv.Itoa(item.Count)})
		}
		if err := renderTable(w, []string{"Rank", "Theme", "Count"}, data, 1); err != nil {
			return err
		}
	}
	return nil
}
