package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/debrief/internal/contract"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"
)

// ErrBinaryToTerminal is returned when a workbook or Parquet file would be
// written straight to an interactive terminal.
var ErrBinaryToTerminal = errors.New("refusing to write binary output to a terminal: pass --output-file")

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeBinary is writeWithFile for formats that must not reach a terminal.
// save writes straight to a path so it can replace the file atomically.
func writeBinary(outputFile string, write func(io.Writer) error, save func(string) error, successMsg string) error {
	if outputFile == "" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return ErrBinaryToTerminal
		}
		return write(os.Stdout)
	}
	if save == nil {
		return writeWithFile(outputFile, write, successMsg)
	}
	if err := save(outputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader creates a CSV writer, writes a header and then the data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	return writeRows(csvWriter)
}

// writeCSVRows writes a header and precomputed rows.
func writeCSVRows(w io.Writer, header []string, rows [][]string) error {
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range rows {
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// renderTable prints rows with the shared table look. Columns listed in
// left stay left-aligned, everything else is right-aligned.
func renderTable(w io.Writer, headers []string, rows [][]string, left ...int) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
		if len(left) == 0 {
			return
		}
		perColumn := make([]tw.Align, len(headers))
		for i := range perColumn {
			perColumn[i] = tw.AlignRight
		}
		for _, col := range left {
			if col < len(perColumn) {
				perColumn[col] = tw.AlignLeft
			}
		}
		cfg.Row.Alignment.PerColumn = perColumn
	})

	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// createFormatters creates the formatter closures shared by every output type.
func createFormatters(precision int) (fmtFloat func(float64) string, fmtMean func(*float64) string) {
	fmtFloat = func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
	fmtMean = func(v *float64) string {
		return contract.FormatMean(v, precision)
	}
	return fmtFloat, fmtMean
}

// labelFunc picks colored or plain rating labels.
func labelFunc(cfg *contract.Config) func(*float64) string {
	if cfg.UseColors {
		return contract.GetColorLabel
	}
	return contract.GetPlainLabel
}
