package schema

import (
	"fmt"
	"time"
)

// Comparison column headers that are not derived from rating fields.
const (
	ResponsesColumnTitle = "Responses"
	SessionsColumnTitle  = "Sessions"
	FirstDateColumnTitle = "First Session"
	LastDateColumnTitle  = "Last Session"
)

// ComparisonColumns returns the fixed metric header used for every partner row.
func ComparisonColumns() []string {
	cols := []string{ResponsesColumnTitle, SessionsColumnTitle}
	for _, field := range AllRatingFields {
		title := RatingTitles[field]
		cols = append(cols, "Avg "+title, "Median "+title)
	}
	return append(cols, FirstDateColumnTitle, LastDateColumnTitle)
}

// ComparisonCell is one metric value. A nil Value with empty Text means no data.
type ComparisonCell struct {
	Value *float64 `json:"value,omitempty"`
	Text  string   `json:"text,omitempty"`
	Whole bool     `json:"-"` // counts render without decimals
}

// Display renders the cell with the given decimal precision.
func (c ComparisonCell) Display(precision int) string {
	switch {
	case c.Text != "":
		return c.Text
	case c.Value == nil:
		return NoDataLabel
	case c.Whole:
		return fmt.Sprintf("%d", int64(*c.Value))
	default:
		return fmt.Sprintf("%.*f", precision, *c.Value)
	}
}

// ComparisonRow holds one partner's values aligned with ComparisonReport.Columns.
type ComparisonRow struct {
	Partner string           `json:"partner"`
	Values  []ComparisonCell `json:"values"`
}

// PartnerThemes holds the theme tallies for one partner in a comparison.
type PartnerThemes struct {
	Partner string       `json:"partner"`
	Themes  []ThemeBlock `json:"themes"`
}

// ComparisonReport lines partners up column for column.
type ComparisonReport struct {
	ID          string          `json:"id"`
	Source      string          `json:"source"`
	GeneratedAt time.Time       `json:"generated_at"`
	Columns     []string        `json:"columns"`
	Rows        []ComparisonRow `json:"rows"`
	Themes      []PartnerThemes `json:"themes"`
}
