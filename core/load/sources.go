package load

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readWorkbook returns the raw cell grid of the chosen sheet and the sheet name.
// Cells are read unformatted so dates arrive as Excel serials.
func readWorkbook(r io.Reader, want string) (rows [][]string, sheet string, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, "", fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	sheet, err = pickSheet(f.GetSheetList(), want)
	if err != nil {
		return nil, "", err
	}
	rows, err = f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, "", fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, sheet, nil
}

// pickSheet selects the configured sheet, else the first default name present,
// else the first sheet in the workbook.
func pickSheet(sheets []string, want string) (string, error) {
	if len(sheets) == 0 {
		return "", errors.New("workbook has no sheets")
	}
	if want != "" {
		if slices.Contains(sheets, want) {
			return want, nil
		}
		return "", fmt.Errorf("sheet %q not found (available: %s)", want, strings.Join(sheets, ", "))
	}
	for _, name := range DefaultSheets {
		if slices.Contains(sheets, name) {
			return name, nil
		}
	}
	return sheets[0], nil
}

// readCSV returns every record of a CSV export. Ragged rows are allowed.
func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}
