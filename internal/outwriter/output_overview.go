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

// PrintOverview outputs the overview, dispatching based on the output format configured.
func PrintOverview(overview schema.Overview, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.XLSXOut:
		t := snapshotWorkbook("Overview", "Partner Overview", overview.Partners)
		return writeBinary(cfg.OutputFile, func(w io.Writer) error {
			return xlsx.WriteTable(w, t, cfg.Precision)
		}, func(path string) error {
			return xlsx.SaveTable(path, t, cfg.Precision)
		}, "Wrote XLSX overview")
	case schema.ParquetOut:
		rows := parquet.ConvertSnapshots(overview.Partners, time.Now().UTC())
		return writeBinary(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, rows)
		}, nil, "Wrote Parquet overview")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteOverview(w, overview, cfg, duration)
		}, fmt.Sprintf("Wrote %s overview", cfg.Output))
	}
}

// WriteOverview writes the overview as text, CSV or JSON.
func WriteOverview(w io.Writer, overview schema.Overview, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, overview)
	case schema.CSVOut:
		rows := [][]string{snapshotCSVRow(overview.Global, cfg.Precision)}
		for _, snap := range overview.Partners {
			rows = append(rows, snapshotCSVRow(snap, cfg.Precision))
		}
		return writeCSVRows(w, snapshotCSVHeader(), rows)
	default:
		return writeOverviewText(w, overview, cfg, duration)
	}
}

func writeOverviewText(w io.Writer, overview schema.Overview, cfg *contract.Config, duration time.Duration) error {
	_, fmtMean := createFormatters(cfg.Precision)
	label := labelFunc(cfg)
	g := overview.Global

	if _, err := fmt.Fprintf(w, "Responses: %d across %d sessions and %d partners\n", g.Responses, g.Sessions, len(overview.Partners)); err != nil {
		return err
	}
	for _, field := range schema.AllRatingFields {
		stat := g.Rating(field)
		if _, err := fmt.Fprintf(w, "  %-10s %s (%s, %d valid, %d excluded)\n",
			schema.RatingTitles[field], fmtMean(stat.Mean), label(stat.Mean), stat.Valid, stat.Excluded); err != nil {
			return err
		}
	}

	if err := writeSnapshotTable(w, overview.Partners, cfg); err != nil {
		return err
	}
	s := overview.Stats
	if _, err := fmt.Fprintf(w, "Rows: %d loaded, %d blank, %d without partner, %d bad dates, %d bad ratings\n",
		s.Loaded, s.BlankRows, s.SkippedRows, s.BadDates, s.BadRatings); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Overview built in %v. Cache backend: %s\n", duration, cfg.CacheBackend)
	return err
}

// PrintPartners outputs the partner list, dispatching based on the output format configured.
func PrintPartners(snaps []schema.MetricSnapshot, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.XLSXOut:
		t := snapshotWorkbook("Partners", "Partners", snaps)
		return writeBinary(cfg.OutputFile, func(w io.Writer) error {
			return xlsx.WriteTable(w, t, cfg.Precision)
		}, func(path string) error {
			return xlsx.SaveTable(path, t, cfg.Precision)
		}, "Wrote XLSX partner list")
	case schema.ParquetOut:
		rows := parquet.ConvertSnapshots(snaps, time.Now().UTC())
		return writeBinary(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, rows)
		}, nil, "Wrote Parquet partner list")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WritePartners(w, snaps, cfg, duration)
		}, fmt.Sprintf("Wrote %s partner list", cfg.Output))
	}
}

// WritePartners writes the partner list as text, CSV or JSON.
func WritePartners(w io.Writer, snaps []schema.MetricSnapshot, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, snaps)
	case schema.CSVOut:
		rows := make([][]string, 0, len(snaps))
		for _, snap := range snaps {
			rows = append(rows, snapshotCSVRow(snap, cfg.Precision))
		}
		return writeCSVRows(w, snapshotCSVHeader(), rows)
	default:
		if err := writeSnapshotTable(w, snaps, cfg); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "Showing %d partners. Built in %v\n", len(snaps), duration)
		return err
	}
}

// writeSnapshotTable prints one row per partner with its headline metrics.
func writeSnapshotTable(w io.Writer, snaps []schema.MetricSnapshot, cfg *contract.Config) error {
	_, fmtMean := createFormatters(cfg.Precision)
	label := labelFunc(cfg)

	headers := []string{"Partner", "Responses", "Sessions"}
	for _, field := range schema.AllRatingFields {
		headers = append(headers, "Avg "+schema.RatingTitles[field])
	}
	headers = append(headers, "Health", "First", "Last")

	nameWidth := getMaxTextWidth(cfg, 12*len(headers))
	data := make([][]string, 0, len(snaps))
	for _, snap := range snaps {
		row := []string{
			contract.TruncateText(snap.Partner, nameWidth),
			strconv.Itoa(snap.Responses),
			strconv.Itoa(snap.Sessions),
		}
		for _, field := range schema.AllRatingFields {
			row = append(row, fmtMean(snap.Rating(field).Mean))
		}
		first, last := snap.DateRange()
		row = append(row, label(overallMean(snap)), first, last)
		data = append(data, row)
	}
	return renderTable(w, headers, data, 0)
}

// overallMean averages the rating means that have data.
func overallMean(snap schema.MetricSnapshot) *float64 {
	var sum float64
	var n int
	for _, field := range schema.AllRatingFields {
		if mean := snap.Rating(field).Mean; mean != nil {
			sum += *mean
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return schema.FloatPtr(sum / float64(n))
}

func snapshotCSVHeader() []string {
	header := []string{"scope", "partner", "responses", "sessions"}
	for _, field := range schema.AllRatingFields {
		f := string(field)
		header = append(header, "avg_"+f, "median_"+f, "valid_"+f, "excluded_"+f)
	}
	return append(header, "first_date", "last_date")
}

// snapshotCSVRow leaves missing means empty rather than printing the no-data label.
func snapshotCSVRow(snap schema.MetricSnapshot, precision int) []string {
	row := []string{snap.Scope, snap.Partner, strconv.Itoa(snap.Responses), strconv.Itoa(snap.Sessions)}
	for _, field := range schema.AllRatingFields {
		stat := snap.Rating(field)
		row = append(row, csvFloat(stat.Mean, precision), csvFloat(stat.Median, precision),
			strconv.Itoa(stat.Valid), strconv.Itoa(stat.Excluded))
	}
	first, last := "", ""
	if !snap.FirstDate.IsZero() {
		first, last = snap.DateRange()
	}
	return append(row, first, last)
}

func csvFloat(v *float64, precision int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', precision, 64)
}

// snapshotWorkbook lays out snapshots for a single-sheet workbook.
func snapshotWorkbook(sheet, title string, snaps []schema.MetricSnapshot) xlsx.Table {
	header := []string{"Partner", "Responses", "Sessions"}
	for _, field := range schema.AllRatingFields {
		header = append(header, "Avg "+schema.RatingTitles[field])
	}
	header = append(header, "First Session", "Last Session")

	rows := make([][]any, 0, len(snaps))
	for _, snap := range snaps {
		row := []any{snap.Partner, snap.Responses, snap.Sessions}
		for _, field := range schema.AllRatingFields {
			row = append(row, snap.Rating(field).Mean)
		}
		first, last := snap.DateRange()
		rows = append(rows, append(row, first, last))
	}
	return xlsx.Table{Sheet: sheet, Title: title, Header: header, Rows: rows}
}
