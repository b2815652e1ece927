package load

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// dateLayouts are the textual date formats seen in survey exports.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
}

// Workbook serials outside this range are not survey dates
// (1970-01-01 to 2099-12-31). Bare numbers like a year fall below it.
const (
	minExcelSerial = 25569
	maxExcelSerial = 73050
)

// parseCell parses a date or date-time cell in the location it carries.
// Bare numbers are read as Excel serials only when serials is set, which
// the workbook path does. An empty cell returns a zero time and true.
func parseCell(raw string, serials bool) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	if !serials {
		return time.Time{}, false
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || serial < minExcelSerial || serial > maxExcelSerial {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseTimestamp parses a date or date-time cell into UTC. ok is false when
// the cell is non-empty and unparsable.
func parseTimestamp(raw string, serials bool) (time.Time, bool) {
	t, ok := parseCell(raw, serials)
	if !ok || t.IsZero() {
		return time.Time{}, ok
	}
	return t.UTC(), true
}

// parseSessionDate parses a cell and keeps the calendar day written in it,
// before any offset is applied.
func parseSessionDate(raw string, serials bool) (time.Time, bool) {
	t, ok := parseCell(raw, serials)
	if !ok || t.IsZero() {
		return time.Time{}, ok
	}
	return truncateDay(t), true
}

// truncateDay keeps t's calendar date in its own location, as UTC midnight.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
