package schema

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ColumnField is a canonical column the loader knows how to read.
type ColumnField string

// All canonical columns.
const (
	TimestampColumn   ColumnField = "timestamp"
	SessionDateColumn ColumnField = "session_date"
	PartnerColumn     ColumnField = "partner"
	CoachIDColumn     ColumnField = "coach_id"
	PressureColumn    ColumnField = "pressure"
	ChallengeColumn   ColumnField = "challenge"
	ObstacleColumn    ColumnField = "obstacle"
	TakeawayColumn    ColumnField = "takeaway"
	RelevanceColumn   ColumnField = "relevance"
	SupportColumn     ColumnField = "support"
	UrgencyColumn     ColumnField = "urgency"
	UnsharedColumn    ColumnField = "unshared"
	BarrierColumn     ColumnField = "barrier"
)

// RequiredColumns must be present in every source.
var RequiredColumns = []ColumnField{
	SessionDateColumn,
	PartnerColumn,
	PressureColumn,
	ChallengeColumn,
	ObstacleColumn,
}

// RatingColumns maps rating fields to their source columns.
var RatingColumns = map[RatingField]ColumnField{
	RelevanceRating: RelevanceColumn,
	SupportRating:   SupportColumn,
	UrgencyRating:   UrgencyColumn,
}

// ThemeColumns maps theme dimensions to their source columns.
var ThemeColumns = map[ThemeDimension]ColumnField{
	PressureTheme:  PressureColumn,
	ChallengeTheme: ChallengeColumn,
	ObstacleTheme:  ObstacleColumn,
	TakeawayTheme:  TakeawayColumn,
}

// InsightColumns maps insight fields to their source columns.
var InsightColumns = map[InsightField]ColumnField{
	UnsharedInsight: UnsharedColumn,
	TakeawayInsight: TakeawayColumn,
	BarrierInsight:  BarrierColumn,
}

// defaultAliases holds the survey question texts and the short names people
// tend to use when they rebuild the sheet by hand.
var defaultAliases = map[ColumnField][]string{
	TimestampColumn:   {"Timestamp", "Submitted At"},
	SessionDateColumn: {"Debrief Session Date", "Session Date", "Date"},
	PartnerColumn:     {"Which partner program was this Debrief connected to?", "Partner", "Partner Program"},
	CoachIDColumn:     {"Coach ID", "Coach"},
	PressureColumn: {
		"What single organizational pressure is most frequently mentioned by your executives right now?",
		"Organizational Pressure", "Pressure",
	},
	ChallengeColumn: {
		"What leadership challenge or development need keeps coming up across multiple executive sessions?",
		"Leadership Challenge", "Challenge",
	},
	ObstacleColumn: {
		"What's the biggest obstacle preventing your executives from implementing what they learn in coaching?",
		"Implementation Obstacle", "Obstacle",
	},
	TakeawayColumn: {
		"What was the most valuable takeaway from today's session for your coaching practice?",
		"Valuable Takeaway", "Takeaway",
	},
	RelevanceColumn: {"How relevant was today's discussion to your current executive coaching challenges?", "Relevance"},
	SupportColumn:   {"How supported do you feel by BetterUp to show up fully in your executive coaching sessions?", "Support"},
	UrgencyColumn:   {"How urgent is the primary pressure/challenge you discussed today?", "Urgency"},
	UnsharedColumn: {
		"Is there anything you didn't get to share in today's session that feels important for the group or BetterUp to know?",
		"Anything Else", "Notes",
	},
	BarrierColumn: {
		"What barriers are you seeing that make it harder for executives to apply what they're learning?",
		"Barriers",
	},
}

// ColumnSchema describes which headers map to which canonical columns and
// which columns a source must provide.
type ColumnSchema struct {
	Aliases  map[ColumnField][]string
	Required []ColumnField
}

// DefaultColumnSchema returns the schema for the standard debrief survey export.
func DefaultColumnSchema() ColumnSchema {
	aliases := make(map[ColumnField][]string, len(defaultAliases))
	for field, names := range defaultAliases {
		aliases[field] = slices.Clone(names)
	}
	return ColumnSchema{
		Aliases:  aliases,
		Required: slices.Clone(RequiredColumns),
	}
}

// WithAliases returns a copy of the schema where the given fields accept the
// extra header names. Overrides are tried before the defaults.
func (s ColumnSchema) WithAliases(overrides map[string][]string) (ColumnSchema, error) {
	out := ColumnSchema{
		Aliases:  make(map[ColumnField][]string, len(s.Aliases)),
		Required: slices.Clone(s.Required),
	}
	for field, names := range s.Aliases {
		out.Aliases[field] = slices.Clone(names)
	}
	for _, key := range slices.Sorted(maps.Keys(overrides)) {
		field := ColumnField(strings.ToLower(strings.TrimSpace(key)))
		if _, ok := defaultAliases[field]; !ok {
			return ColumnSchema{}, fmt.Errorf("unknown column %q in column overrides", key)
		}
		out.Aliases[field] = append(slices.Clone(overrides[key]), out.Aliases[field]...)
	}
	return out, nil
}

// Match resolves a raw sheet header to its canonical column.
func (s ColumnSchema) Match(header string) (ColumnField, bool) {
	want := NormalizeHeader(header)
	if want == "" {
		return "", false
	}
	for _, field := range s.fields() {
		for _, alias := range s.Aliases[field] {
			if NormalizeHeader(alias) == want {
				return field, true
			}
		}
	}
	return "", false
}

// Fingerprint is a stable description of the schema, used in cache keys.
func (s ColumnSchema) Fingerprint() string {
	var b strings.Builder
	for _, field := range s.fields() {
		b.WriteString(string(field))
		b.WriteByte('=')
		for _, alias := range s.Aliases[field] {
			b.WriteString(NormalizeHeader(alias))
			b.WriteByte(';')
		}
		b.WriteByte('\n')
	}
	b.WriteString("required=")
	for _, field := range s.Required {
		b.WriteString(string(field))
		b.WriteByte(',')
	}
	return b.String()
}

// DisplayName returns the first alias of a column, which is how it is named
// in error messages.
func (s ColumnSchema) DisplayName(field ColumnField) string {
	if names := s.Aliases[field]; len(names) > 0 {
		return names[0]
	}
	return string(field)
}

// fields returns the schema's columns in a fixed order.
func (s ColumnSchema) fields() []ColumnField {
	return slices.Sorted(maps.Keys(s.Aliases))
}

// NormalizeHeader trims and case-folds a header and unifies typographic apostrophes.
func NormalizeHeader(h string) string {
	h = strings.NewReplacer("\u2019", "'", "\u2018", "'", "\u00a0", " ").Replace(h)
	return strings.ToLower(CollapseSpace(h))
}
