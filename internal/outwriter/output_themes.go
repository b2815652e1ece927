package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/debrief/internal/contract"
	"github.com/huangsam/debrief/internal/parquet"
	"github.com/huangsam/debrief/internal/xlsx"
	"github.com/huangsam/debrief/schema"
)

// PrintThemes outputs ranked themes, dispatching based on the output format configured.
func PrintThemes(report schema.ThemeReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.XLSXOut:
		t := themeWorkbook(report)
		return writeBinary(cfg.OutputFile, func(w io.Writer) error {
			return xlsx.WriteTable(w, t, cfg.Precision)
		}, func(path string) error {
			return xlsx.SaveTable(path, t, cfg.Precision)
		}, "Wrote XLSX themes")
	case schema.ParquetOut:
		rows := parquet.ConvertThemes(report.Partner, report.Themes)
		return writeBinary(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, rows)
		}, nil, "Wrote Parquet themes")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteThemes(w, report, cfg, duration)
		}, fmt.Sprintf("Wrote %s themes", cfg.Output))
	}
}

// WriteThemes writes ranked themes as text, CSV or JSON.
func WriteThemes(w io.Writer, report schema.ThemeReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, report)
	case schema.CSVOut:
		var rows [][]string
		for _, block := range report.Themes {
			for i, item := range block.Items {
				rows = append(rows, []string{report.Partner, string(block.Dimension), strconv.Itoa(i + 1), item.Value, strconv.Itoa(item.Count)})
			}
		}
		return writeCSVRows(w, []string{"partner", "dimension", "rank", "theme", "count"}, rows)
	default:
		scope := report.Partner
		if scope == "" {
			scope = "all partners"
		}
		if _, err := fmt.Fprintf(w, "Themes for %s (counted by %s)\n", scope, report.Basis); err != nil {
			return err
		}
		if err := writeThemeBlocks(w, report.Themes, cfg); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\nThemes ranked in %v. Cache backend: %s\n", duration, cfg.CacheBackend)
		return err
	}
}

func themeWorkbook(report schema.ThemeReport) xlsx.Table {
	title := "Themes"
	if report.Partner != "" {
		title = report.Partner + " - Themes"
	}
	var rows [][]any
	for _, block := range report.Themes {
		for i, item := range block.Items {
			rows = append(rows, []any{block.Title, i + 1, item.Value, item.Count})
		}
	}
	return xlsx.Table{Sheet: "Themes", Title: title, Header: []string{"Dimension", "Rank", "Theme", "Count"}, Rows: rows}
}
