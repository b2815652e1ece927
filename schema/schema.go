// Package schema has models, constants and typed errors for all parts of debrief.
package schema

import (
	"slices"
	"sort"
	"time"
)

// DateLayout is the canonical representation of a session date.
const DateLayout = "2006-01-02"

// Response is one survey submission after normalization.
// Blank strings mean the answer was missing. A zero SessionDate means the
// source date was missing or could not be parsed.
type Response struct {
	Row         int                    `json:"row"` // 1-based row in the source sheet
	Timestamp   time.Time              `json:"timestamp"`
	SessionDate time.Time              `json:"session_date"`
	Partner     string                 `json:"partner"`
	CoachID     string                 `json:"coach_id,omitempty"`
	Pressure    string                 `json:"pressure,omitempty"`
	Challenge   string                 `json:"challenge,omitempty"`
	Obstacle    string                 `json:"obstacle,omitempty"`
	Takeaway    string                 `json:"takeaway,omitempty"`
	Unshared    string                 `json:"unshared,omitempty"`
	Barrier     string                 `json:"barrier,omitempty"`
	Ratings     map[RatingField]string `json:"ratings,omitempty"` // raw cell text, validated on use
}

// Theme returns the raw answer for a theme dimension.
func (r Response) Theme(dim ThemeDimension) string {
	switch dim {
	case PressureTheme:
		return r.Pressure
	case ChallengeTheme:
		return r.Challenge
	case ObstacleTheme:
		return r.Obstacle
	case TakeawayTheme:
		return r.Takeaway
	default:
		return ""
	}
}

// Insight returns the raw answer for an insight field.
func (r Response) Insight(field InsightField) string {
	switch field {
	case UnsharedInsight:
		return r.Unshared
	case TakeawayInsight:
		return r.Takeaway
	case BarrierInsight:
		return r.Barrier
	default:
		return ""
	}
}

// Rating returns the validated rating for a field.
func (r Response) Rating(field RatingField) (int, bool) {
	return ParseRating(r.Ratings[field])
}

// HasSessionDate reports whether the session date is known.
func (r Response) HasSessionDate() bool {
	return !r.SessionDate.IsZero()
}

// SessionKey identifies the debrief session this response belongs to.
// It is empty when the session date is unknown.
func (r Response) SessionKey() string {
	if !r.HasSessionDate() {
		return ""
	}
	return r.Partner + "|" + r.SessionDate.Format(DateLayout)
}

// LoadStats counts what the loader kept, dropped and repaired.
type LoadStats struct {
	TotalRows   int `json:"total_rows"`   // data rows seen, excluding the header
	Loaded      int `json:"loaded"`       // rows kept in the table
	BlankRows   int `json:"blank_rows"`   // rows with no values at all
	SkippedRows int `json:"skipped_rows"` // rows without a partner
	BadDates    int `json:"bad_dates"`    // date cells that could not be parsed
	BadRatings  int `json:"bad_ratings"`  // non-empty rating cells outside 1-5 or non-numeric
}

// Table is a normalized, read-only set of responses plus source metadata.
// Operations on a Table never modify it; Filter returns a new Table.
type Table struct {
	Source    string        `json:"source"`
	Sheet     string        `json:"sheet,omitempty"`
	Digest    string        `json:"digest"`
	LoadedAt  time.Time     `json:"loaded_at"`
	Columns   []ColumnField `json:"columns"`
	Stats     LoadStats     `json:"stats"`
	Responses []Response    `json:"responses"`
}

// Len returns the number of responses.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Responses)
}

// HasColumn reports whether the source provided a canonical column.
func (t *Table) HasColumn(field ColumnField) bool {
	return t != nil && slices.Contains(t.Columns, field)
}

// Partners returns the distinct partner names in ascending order.
func (t *Table) Partners() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, r := range t.Responses {
		seen[r.Partner] = struct{}{}
	}
	partners := make([]string, 0, len(seen))
	for p := range seen {
		partners = append(partners, p)
	}
	sort.Strings(partners)
	return partners
}

// Filter returns a new Table holding only the responses of one partner.
// An empty partner returns a copy of the whole table.
func (t *Table) Filter(partner string) *Table {
	out := &Table{}
	if t == nil {
		return out
	}
	*out = *t
	out.Columns = slices.Clone(t.Columns)
	out.Responses = make([]Response, 0, len(t.Responses))
	for _, r := range t.Responses {
		if partner == "" || r.Partner == partner {
			out.Responses = append(out.Responses, r)
		}
	}
	return out
}
