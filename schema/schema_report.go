package schema

import "time"

// InsightBlock holds the qualitative excerpts for one free-text question.
type InsightBlock struct {
	Field    InsightField `json:"field"`
	Title    string       `json:"title"`
	Excerpts []string     `json:"excerpts"`
}

// PartnerReport is everything a partner export needs.
type PartnerReport struct {
	ID          string         `json:"id"`
	Partner     string         `json:"partner"`
	Source      string         `json:"source"`
	GeneratedAt time.Time      `json:"generated_at"`
	Summary     MetricSnapshot `json:"summary"`
	Themes      []ThemeBlock   `json:"themes"`
	Trends      []TrendSeries  `json:"trends"`
	Periods     []PeriodRow    `json:"periods"`
	Insights    []InsightBlock `json:"insights"`
	Details     []Response     `json:"details"`
}

// Overview is the dashboard landing view: global metrics plus one snapshot per partner.
type Overview struct {
	Source   string           `json:"source"`
	Stats    LoadStats        `json:"stats"`
	Global   MetricSnapshot   `json:"global"`
	Partners []MetricSnapshot `json:"partners"`
}

// ThemeReport is the ranked theme tallies for one scope.
type ThemeReport struct {
	Partner string       `json:"partner,omitempty"`
	Basis   ThemeBasis   `json:"basis"`
	Limit   int          `json:"limit"`
	Themes  []ThemeBlock `json:"themes"`
}

// Block returns the tally for one dimension, if present.
func (r ThemeReport) Block(dim ThemeDimension) (ThemeBlock, bool) {
	for _, b := range r.Themes {
		if b.Dimension == dim {
			return b, true
		}
	}
	return ThemeBlock{}, false
}
