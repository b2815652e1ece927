package load

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/huangsam/debrief/schema"
	"go.uber.org/zap"
)

// columnIndex maps canonical columns to their position in the header row.
type columnIndex map[schema.ColumnField]int

// cell returns the trimmed value of a column, or "" when the column is
// absent or the row is short.
func (ci columnIndex) cell(row []string, field schema.ColumnField) string {
	idx, ok := ci[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// resolveHeader matches each header cell against the schema. The first
// matching column wins; later duplicates are ignored.
func resolveHeader(header []string, opts Options) (columnIndex, error) {
	ci := make(columnIndex)
	for i, raw := range header {
		field, ok := opts.Schema.Match(raw)
		if !ok {
			continue
		}
		if _, dup := ci[field]; dup {
			opts.Logger.Debug("ignoring duplicate column", zap.String("field", string(field)), zap.Int("index", i))
			continue
		}
		ci[field] = i
	}

	var missing []string
	for _, field := range opts.Schema.Required {
		if _, ok := ci[field]; !ok {
			missing = append(missing, fmt.Sprintf("%s (%q)", field, opts.Schema.DisplayName(field)))
		}
	}
	if len(missing) > 0 {
		return nil, &schema.SchemaError{Missing: missing}
	}
	return ci, nil
}

// headerRow returns the index of the first row with any content.
func headerRow(rows [][]string) int {
	for i, row := range rows {
		if !blankRow(row) {
			return i
		}
	}
	return -1
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// buildTable turns a raw grid into a normalized table.
// Bare numeric date cells are Excel serials only when serials is set.
func buildTable(rows [][]string, source string, opts Options, serials bool) (*schema.Table, error) {
	h := headerRow(rows)
	if h < 0 {
		missing := make([]string, 0, len(opts.Schema.Required))
		for _, field := range opts.Schema.Required {
			missing = append(missing, fmt.Sprintf("%s (%q)", field, opts.Schema.DisplayName(field)))
		}
		return nil, &schema.SchemaError{Source: source, Missing: missing}
	}

	ci, err := resolveHeader(rows[h], opts)
	if err != nil {
		var se *schema.SchemaError
		if errors.As(err, &se) {
			se.Source = source
		}
		return nil, err
	}

	table := &schema.Table{Source: source}
	for field := range ci {
		table.Columns = append(table.Columns, field)
	}
	slices.Sort(table.Columns)

	log := opts.Logger.With(zap.String("source", source))
	for i, row := range rows[h+1:] {
		sheetRow := h + i + 2 // 1-based, after the header
		table.Stats.TotalRows++
		if blankRow(row) {
			table.Stats.BlankRows++
			continue
		}
		resp, ok := parseRow(row, sheetRow, ci, serials, &table.Stats, log)
		if !ok {
			continue
		}
		table.Responses = append(table.Responses, resp)
	}
	table.Stats.Loaded = len(table.Responses)
	return table, nil
}

// parseRow normalizes one data row. It reports false when the row has to be dropped.
func parseRow(row []string, sheetRow int, ci columnIndex, serials bool, stats *schema.LoadStats, log *zap.Logger) (schema.Response, bool) {
	partner := schema.CollapseSpace(ci.cell(row, schema.PartnerColumn))
	if schema.IsBlank(partner) {
		stats.SkippedRows++
		log.Warn("skipping row without partner", zap.Int("row", sheetRow))
		return schema.Response{}, false
	}

	resp := schema.Response{
		Row:       sheetRow,
		Partner:   partner,
		CoachID:   ci.cell(row, schema.CoachIDColumn),
		Pressure:  ci.cell(row, schema.PressureColumn),
		Challenge: ci.cell(row, schema.ChallengeColumn),
		Obstacle:  ci.cell(row, schema.ObstacleColumn),
		Takeaway:  ci.cell(row, schema.TakeawayColumn),
		Unshared:  ci.cell(row, schema.UnsharedColumn),
		Barrier:   ci.cell(row, schema.BarrierColumn),
	}

	raw := ci.cell(row, schema.SessionDateColumn)
	date, ok := parseSessionDate(raw, serials)
	if !ok {
		stats.BadDates++
		log.Warn("unparsable session date", zap.Int("row", sheetRow), zap.String("value", raw))
	}
	resp.SessionDate = date

	raw = ci.cell(row, schema.TimestampColumn)
	ts, ok := parseTimestamp(raw, serials)
	if !ok {
		stats.BadDates++
		log.Warn("unparsable timestamp", zap.Int("row", sheetRow), zap.String("value", raw))
	}
	resp.Timestamp = ts

	for _, field := range schema.AllRatingFields {
		col := schema.RatingColumns[field]
		if _, present := ci[col]; !present {
			continue
		}
		value := ci.cell(row, col)
		if value == "" {
			continue
		}
		if resp.Ratings == nil {
			resp.Ratings = make(map[schema.RatingField]string, len(schema.AllRatingFields))
		}
		resp.Ratings[field] = value
		if _, valid := schema.ParseRating(value); !valid {
			stats.BadRatings++
			log.Debug("invalid rating", zap.Int("row", sheetRow), zap.String("field", string(field)), zap.String("value", value))
		}
	}
	return resp, true
}
