package schema

import "time"

// Snapshot scopes.
const (
	GlobalScope  = "global"
	PartnerScope = "partner"
)

// RatingStat aggregates one rating field. Mean and Median are nil when no
// valid rating exists in scope, which callers must show as "no data".
type RatingStat struct {
	Field    RatingField `json:"field"`
	Valid    int         `json:"valid"`    // ratings used in the aggregate
	Excluded int         `json:"excluded"` // non-empty ratings rejected as invalid
	Mean     *float64    `json:"mean"`
	Median   *float64    `json:"median"`
}

// HasData reports whether the aggregate has at least one valid rating.
func (s RatingStat) HasData() bool {
	return s.Mean != nil
}

// MetricSnapshot holds the scalar metrics for one scope.
type MetricSnapshot struct {
	Scope     string       `json:"scope"`
	Partner   string       `json:"partner,omitempty"`
	Responses int          `json:"responses"`
	Sessions  int          `json:"sessions"`
	Ratings   []RatingStat `json:"ratings"`
	FirstDate time.Time    `json:"first_date"`
	LastDate  time.Time    `json:"last_date"`
}

// Rating returns the aggregate for one rating field.
func (m MetricSnapshot) Rating(field RatingField) RatingStat {
	for _, r := range m.Ratings {
		if r.Field == field {
			return r
		}
	}
	return RatingStat{Field: field}
}

// DateRange renders the first and last session dates, or "N/A".
func (m MetricSnapshot) DateRange() (string, string) {
	if m.FirstDate.IsZero() || m.LastDate.IsZero() {
		return "N/A", "N/A"
	}
	return m.FirstDate.Format(DateLayout), m.LastDate.Format(DateLayout)
}

// ThemeCount is one ranked theme value.
type ThemeCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ThemeBlock is the ranked tally for one dimension.
type ThemeBlock struct {
	Dimension ThemeDimension `json:"dimension"`
	Title     string         `json:"title"`
	Items     []ThemeCount   `json:"items"`
}
