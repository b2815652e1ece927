package schema

import "time"

// TimeBucket is the mean rating for one period.
type TimeBucket struct {
	Period    string    `json:"period"` // e.g. 2024-01-01, 2024-W05, 2024-02
	Start     time.Time `json:"start"`
	Mean      float64   `json:"mean"`
	Valid     int       `json:"valid"`     // ratings used in the mean
	Responses int       `json:"responses"` // all responses in the period
}

// TrendSeries is an ordered series of buckets for one rating field.
// Periods without a valid rating are absent, so consecutive buckets may have gaps.
type TrendSeries struct {
	Partner     string       `json:"partner,omitempty"`
	Field       RatingField  `json:"field"`
	Granularity Granularity  `json:"granularity"`
	Buckets     []TimeBucket `json:"buckets"`
}

// PeriodRow lines up the mean of every rating field for one period.
// A nil mean means the period has responses but no valid rating for that field.
type PeriodRow struct {
	Period    string                   `json:"period"`
	Start     time.Time                `json:"start"`
	Means     map[RatingField]*float64 `json:"means"`
	Responses int                      `json:"responses"`
}
