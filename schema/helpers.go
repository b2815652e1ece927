package schema

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// CollapseSpace trims a string and folds every run of whitespace into one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// IsBlank reports whether a free-text answer carries no content.
// Spreadsheet exports sometimes spell an empty cell as "nan".
func IsBlank(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "nan")
}

// ParseRating validates a raw rating cell. Only whole numbers within
// [MinRating, MaxRating] are accepted; "4" and "4.0" are both valid.
func ParseRating(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, false
	}
	if v < MinRating || v > MaxRating {
		return 0, false
	}
	return int(v), true
}

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 {
	return &v
}

// RatingLabel returns a plain label for an average rating on the 1-5 scale.
func RatingLabel(mean float64) string {
	switch {
	case mean >= 4:
		return StrongLabel
	case mean >= 3:
		return SteadyLabel
	case mean >= 2:
		return WatchLabel
	default:
		return ConcernLabel
	}
}

// Rating label values.
const (
	StrongLabel  = "Strong"
	SteadyLabel  = "Steady"
	WatchLabel   = "Watch"
	ConcernLabel = "Concern"
	NoDataLabel  = "No data"
)
