// Package xlsx writes debrief reports as styled Excel workbooks using
// github.com/xuri/excelize/v2.
package xlsx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/debrief/schema"
	"github.com/xuri/excelize/v2"
)

// Palette used across workbooks.
const (
	darkText   = "2C3E50"
	accentBlue = "4A90E2"
	accentTeal = "50C878"
	lightGray  = "ECF0F1"
	white      = "FFFFFF"
)

// DateLong is how report generation dates are written in workbooks.
const DateLong = "January 02, 2006"

// maxSheetName is the Excel limit on sheet name length.
const maxSheetName = 31

// style names
const (
	titleStyle    = "title"
	subtitleStyle = "subtitle"
	bannerStyle   = "banner"
	labelStyle    = "label"
	valueStyle    = "value"
	headerStyle   = "header"
	sectionStyle  = "section"
	insightStyle  = "insight"
	subheadStyle  = "subhead"
	numberStyle   = "number"
	wholeStyle    = "whole"
	wrapStyle     = "wrap"
	mutedStyle    = "muted"
)

// book wraps an excelize file and keeps the first error, so sheet builders
// can write cells without checking every call.
type book struct {
	f      *excelize.File
	styles map[string]int
	named  bool
	err    error
}

func newBook(precision int) (*book, error) {
	b := &book{f: excelize.NewFile(), styles: make(map[string]int)}
	numFmt := "0.00"
	if precision == 1 {
		numFmt = "0.0"
	}
	defs := map[string]*excelize.Style{
		titleStyle:    {Font: &excelize.Font{Bold: true, Size: 20, Color: darkText}},
		subtitleStyle: {Font: &excelize.Font{Size: 16, Color: accentBlue}},
		bannerStyle: {
			Font: &excelize.Font{Bold: true, Size: 12, Color: darkText},
			Fill: excelize.Fill{Type: "pattern", Color: []string{lightGray}, Pattern: 1},
		},
		labelStyle: {Font: &excelize.Font{Bold: true}},
		valueStyle: {
			Font:      &excelize.Font{Bold: true, Color: accentBlue},
			Alignment: &excelize.Alignment{Horizontal: "right"},
		},
		headerStyle: {
			Font:      &excelize.Font{Bold: true, Color: white},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{accentBlue}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		},
		sectionStyle: {
			Font: &excelize.Font{Bold: true, Color: white},
			Fill: excelize.Fill{Type: "pattern", Color: []string{accentBlue}, Pattern: 1},
		},
		insightStyle: {
			Font: &excelize.Font{Bold: true, Color: white},
			Fill: excelize.Fill{Type: "pattern", Color: []string{accentTeal}, Pattern: 1},
		},
		subheadStyle: {
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{lightGray}, Pattern: 1},
		},
		numberStyle: {
			CustomNumFmt: &numFmt,
			Alignment:    &excelize.Alignment{Horizontal: "center"},
		},
		wholeStyle: {
			NumFmt:    1,
			Alignment: &excelize.Alignment{Horizontal: "center"},
		},
		wrapStyle:  {Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}},
		mutedStyle: {Font: &excelize.Font{Italic: true, Color: "7F8C8D"}},
	}
	for name, def := range defs {
		id, err := b.f.NewStyle(def)
		if err != nil {
			_ = b.f.Close()
			return nil, fmt.Errorf("style %s: %w", name, err)
		}
		b.styles[name] = id
	}
	return b, nil
}

// sheet renames the default sheet on the first call and adds sheets after that.
func (b *book) sheet(name string) string {
	if b.err != nil {
		return name
	}
	if !b.named {
		b.named = true
		b.err = b.f.SetSheetName("Sheet1", name)
		return name
	}
	_, b.err = b.f.NewSheet(name)
	return name
}

func (b *book) set(sheet string, col, row int, value any) {
	if b.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		b.err = err
		return
	}
	b.err = b.f.SetCellValue(sheet, cell, value)
}

func (b *book) style(sheet string, fromCol, fromRow, toCol, toRow int, name string) {
	if b.err != nil {
		return
	}
	from, err := excelize.CoordinatesToCellName(fromCol, fromRow)
	if err != nil {
		b.err = err
		return
	}
	to, err := excelize.CoordinatesToCellName(toCol, toRow)
	if err != nil {
		b.err = err
		return
	}
	b.err = b.f.SetCellStyle(sheet, from, to, b.styles[name])
}

func (b *book) merge(sheet string, fromCol, toCol, row int) {
	if b.err != nil {
		return
	}
	from, _ := excelize.CoordinatesToCellName(fromCol, row)
	to, _ := excelize.CoordinatesToCellName(toCol, row)
	b.err = b.f.MergeCell(sheet, from, to)
}

func (b *book) width(sheet string, col int, width float64) {
	if b.err != nil {
		return
	}
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		b.err = err
		return
	}
	b.err = b.f.SetColWidth(sheet, name, name, width)
}

func (b *book) height(sheet string, row int, height float64) {
	if b.err != nil {
		return
	}
	b.err = b.f.SetRowHeight(sheet, row, height)
}

// header writes a styled header row starting at column 1.
func (b *book) header(sheet string, row int, titles []string) {
	for i, title := range titles {
		b.set(sheet, i+1, row, title)
	}
	b.style(sheet, 1, row, len(titles), row, headerStyle)
}

// mean writes an optional mean as a number, or the no-data label.
func (b *book) mean(sheet string, col, row int, v *float64) {
	if v == nil {
		b.set(sheet, col, row, schema.NoDataLabel)
		b.style(sheet, col, row, col, row, mutedStyle)
		return
	}
	b.set(sheet, col, row, *v)
	b.style(sheet, col, row, col, row, numberStyle)
}

func (b *book) props(title, id string) {
	if b.err != nil {
		return
	}
	b.err = b.f.SetDocProps(&excelize.DocProperties{
		Title:      title,
		Creator:    "debrief",
		Identifier: id,
	})
}

// write finishes the workbook and encodes it on w.
func (b *book) write(w io.Writer) error {
	defer func() { _ = b.f.Close() }()
	if b.err != nil {
		return b.err
	}
	b.f.SetActiveSheet(0)
	return b.f.Write(w)
}

// save writes a workbook next to path and renames it into place, so a failed
// export never leaves a partial file behind.
func save(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".debrief-*.xlsx")
	if err != nil {
		return &schema.ExportError{Path: path, Err: err}
	}
	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return &schema.ExportError{Path: path, Err: cause}
	}
	if err := write(tmp); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		return cleanup(err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return cleanup(err)
	}
	return nil
}

// sheetName makes a valid, unique sheet name ending in suffix.
func sheetName(base, suffix string, taken map[string]struct{}) string {
	runes := []rune(strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, base))
	limit := maxSheetName - len([]rune(suffix))
	var name string
	for i := 1; ; i++ {
		tag := ""
		if i > 1 {
			tag = fmt.Sprintf("~%d", i)
		}
		head := runes
		if len(head) > limit-len(tag) {
			head = head[:limit-len(tag)]
		}
		name = string(head) + tag + suffix
		if _, dup := taken[strings.ToLower(name)]; !dup {
			break
		}
	}
	taken[strings.ToLower(name)] = struct{}{}
	return name
}

// fileSafe replaces characters that are awkward in file names.
func fileSafe(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case strings.ContainsRune(`/\:*?"<>|`, r):
			return '-'
		default:
			return r
		}
	}, schema.CollapseSpace(s))
	if s == "" {
		return "partner"
	}
	return s
}

// formatTime renders t with layout, or an empty string when t is unknown.
func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

// blankToEmpty drops placeholder answers such as "nan".
func blankToEmpty(s string) string {
	if schema.IsBlank(s) {
		return ""
	}
	return s
}
