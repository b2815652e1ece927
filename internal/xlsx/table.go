package xlsx

import (
	"io"

	"github.com/huangsam/debrief/schema"
)

// Table is a single-sheet workbook of plain rows, used by list-style reports.
type Table struct {
	Sheet  string
	Title  string
	Header []string
	Rows   [][]any // nil cells render as the no-data label
}

// SaveTable writes a single-sheet workbook to path. Failures are returned
// as *schema.ExportError and leave no file behind.
func SaveTable(path string, t Table, precision int) error {
	return save(path, func(w io.Writer) error {
		return WriteTable(w, t, precision)
	})
}

// WriteTable encodes t as a workbook on w.
func WriteTable(w io.Writer, t Table, precision int) error {
	b, err := newBook(precision)
	if err != nil {
		return err
	}
	name := t.Sheet
	if name == "" {
		name = "Report"
	}
	sh := b.sheet(sheetName(name, "", map[string]struct{}{}))
	b.props(t.Title, "")

	row := 1
	if t.Title != "" {
		b.set(sh, 1, row, t.Title)
		b.style(sh, 1, row, 1, row, titleStyle)
		row += 2
	}
	b.header(sh, row, t.Header)
	widths := make([]float64, len(t.Header))
	for i, h := range t.Header {
		widths[i] = float64(len(h) + 4)
	}
	for _, values := range t.Rows {
		row++
		for i, v := range values {
			col := i + 1
			switch v := v.(type) {
			case nil:
				b.set(sh, col, row, schema.NoDataLabel)
				b.style(sh, col, row, col, row, mutedStyle)
			case *float64:
				b.mean(sh, col, row, v)
			case float64:
				b.mean(sh, col, row, &v)
			case int:
				b.set(sh, col, row, v)
				b.style(sh, col, row, col, row, wholeStyle)
			case string:
				b.set(sh, col, row, v)
				if i < len(widths) {
					widths[i] = max(widths[i], float64(min(len(v)+2, 60)))
				}
			default:
				b.set(sh, col, row, v)
			}
		}
	}
	for i, wd := range widths {
		b.width(sh, i+1, wd)
	}
	return b.write(w)
}
