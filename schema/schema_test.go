package schema

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestTablePartners(t *testing.T) {
	table := &Table{Responses: []Response{
		{Partner: "Zeta"},
		{Partner: "Acme"},
		{Partner: "Zeta"},
		{Partner: "Beta"},
	}}
	assert.Equal(t, []string{"Acme", "Beta", "Zeta"}, table.Partners())

	var empty *Table
	assert.Nil(t, empty.Partners())
	assert.Equal(t, 0, empty.Len())
}

func TestTableFilterDoesNotMutate(t *testing.T) {
	table := &Table{
		Source:  "survey.xlsx",
		Columns: []ColumnField{PartnerColumn},
		Responses: []Response{
			{Row: 2, Partner: "A"},
			{Row: 3, Partner: "B"},
			{Row: 4, Partner: "A"},
		},
	}

	filtered := table.Filter("A")
	require.Equal(t, 2, filtered.Len())
	assert.Equal(t, 2, filtered.Responses[0].Row)
	assert.Equal(t, 4, filtered.Responses[1].Row)
	assert.Equal(t, "survey.xlsx", filtered.Source)

	filtered.Responses[0].Partner = "changed"
	filtered.Columns[0] = BarrierColumn
	assert.Equal(t, "A", table.Responses[0].Partner)
	assert.Equal(t, PartnerColumn, table.Columns[0])
	assert.Equal(t, 3, table.Len())

	assert.Equal(t, 3, table.Filter("").Len())
	assert.Equal(t, 0, table.Filter("missing").Len())
}

func TestResponseAccessors(t *testing.T) {
	r := Response{
		Partner:     "Acme",
		SessionDate: day("2024-01-01"),
		Pressure:    "Talent",
		Challenge:   "Delegation",
		Obstacle:    "Time",
		Takeaway:    "Listen more",
		Unshared:    "Nothing",
		Barrier:     "Meetings",
		Ratings:     map[RatingField]string{RelevanceRating: "4", SupportRating: "9"},
	}

	assert.Equal(t, "Talent", r.Theme(PressureTheme))
	assert.Equal(t, "Delegation", r.Theme(ChallengeTheme))
	assert.Equal(t, "Time", r.Theme(ObstacleTheme))
	assert.Equal(t, "Listen more", r.Theme(TakeawayTheme))
	assert.Equal(t, "", r.Theme("unknown"))
	assert.Equal(t, "Nothing", r.Insight(UnsharedInsight))
	assert.Equal(t, "Listen more", r.Insight(TakeawayInsight))
	assert.Equal(t, "Meetings", r.Insight(BarrierInsight))

	v, ok := r.Rating(RelevanceRating)
	assert.True(t, ok)
	assert.Equal(t, 4, v)
	_, ok = r.Rating(SupportRating)
	assert.False(t, ok)
	_, ok = r.Rating(UrgencyRating)
	assert.False(t, ok)

	assert.Equal(t, "Acme|2024-01-01", r.SessionKey())
	assert.Equal(t, "", Response{Partner: "Acme"}.SessionKey())
}

func TestMetricSnapshotHelpers(t *testing.T) {
	m := MetricSnapshot{
		Ratings: []RatingStat{{Field: SupportRating, Valid: 2, Mean: FloatPtr(3.5)}},
	}
	assert.True(t, m.Rating(SupportRating).HasData())
	assert.False(t, m.Rating(UrgencyRating).HasData())
	assert.Equal(t, UrgencyRating, m.Rating(UrgencyRating).Field)

	first, last := m.DateRange()
	assert.Equal(t, "N/A", first)
	assert.Equal(t, "N/A", last)

	m.FirstDate = day("2024-01-01")
	m.LastDate = day("2024-03-15")
	first, last = m.DateRange()
	assert.Equal(t, "2024-01-01", first)
	assert.Equal(t, "2024-03-15", last)
}

func TestComparisonColumns(t *testing.T) {
	cols := ComparisonColumns()
	assert.Equal(t, []string{
		"Responses", "Sessions",
		"Avg Relevance", "Median Relevance",
		"Avg Support", "Median Support",
		"Avg Urgency", "Median Urgency",
		"First Session", "Last Session",
	}, cols)
}

func TestComparisonCellDisplay(t *testing.T) {
	assert.Equal(t, NoDataLabel, ComparisonCell{}.Display(2))
	assert.Equal(t, "2024-01-01", ComparisonCell{Text: "2024-01-01"}.Display(2))
	assert.Equal(t, "12", ComparisonCell{Value: FloatPtr(12), Whole: true}.Display(2))
	assert.Equal(t, "3.67", ComparisonCell{Value: FloatPtr(11.0 / 3)}.Display(2))
	assert.Equal(t, "3.7", ComparisonCell{Value: FloatPtr(11.0 / 3)}.Display(1))
}

func TestThemeReportBlock(t *testing.T) {
	r := ThemeReport{Themes: []ThemeBlock{{Dimension: PressureTheme, Items: []ThemeCount{{Value: "Talent", Count: 3}}}}}
	b, ok := r.Block(PressureTheme)
	require.True(t, ok)
	assert.Equal(t, "Talent", b.Items[0].Value)
	_, ok = r.Block(ObstacleTheme)
	assert.False(t, ok)
}

func TestErrors(t *testing.T) {
	var schemaErr *SchemaError
	err := fmt.Errorf("load: %w", &SchemaError{Source: "a.xlsx", Missing: []string{"partner", "obstacle"}})
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"partner", "obstacle"}, schemaErr.Missing)
	assert.Contains(t, err.Error(), "missing required column(s) in a.xlsx: partner, obstacle")
	assert.Equal(t, "missing required column(s): partner", (&SchemaError{Missing: []string{"partner"}}).Error())

	assert.Equal(t, `no data for partner "Acme"`, (&EmptyScopeError{Partner: "Acme"}).Error())
	assert.Contains(t, (&EmptyScopeError{}).Error(), "no responses")

	cause := errors.New("permission denied")
	exportErr := &ExportError{Path: "/ro/out.xlsx", Err: cause}
	assert.ErrorIs(t, exportErr, cause)
	assert.Contains(t, exportErr.Error(), "/ro/out.xlsx")
}
