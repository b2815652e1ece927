package algo

import (
	"testing"

	"github.com/huangsam/debrief/schema"
	"github.com/stretchr/testify/assert"
)

// TestRankThemes tests ordering and truncation of theme tallies.
func TestRankThemes(t *testing.T) {
	tests := []struct {
		name     string
		items    []schema.ThemeCount
		limit    int
		expected []schema.ThemeCount
	}{
		{
			name:     "empty",
			items:    []schema.ThemeCount{},
			limit:    5,
			expected: []schema.ThemeCount{},
		},
		{
			name:     "count descending",
			items:    []schema.ThemeCount{{Value: "Budget", Count: 1}, {Value: "Talent", Count: 3}, {Value: "Growth", Count: 2}},
			limit:    10,
			expected: []schema.ThemeCount{{Value: "Talent", Count: 3}, {Value: "Growth", Count: 2}, {Value: "Budget", Count: 1}},
		},
		{
			name:     "ties by value ascending",
			items:    []schema.ThemeCount{{Value: "Zeal", Count: 2}, {Value: "Alpha", Count: 2}, {Value: "Mid", Count: 2}},
			limit:    10,
			expected: []schema.ThemeCount{{Value: "Alpha", Count: 2}, {Value: "Mid", Count: 2}, {Value: "Zeal", Count: 2}},
		},
		{
			name:     "truncated",
			items:    []schema.ThemeCount{{Value: "A", Count: 1}, {Value: "B", Count: 5}, {Value: "C", Count: 3}},
			limit:    2,
			expected: []schema.ThemeCount{{Value: "B", Count: 5}, {Value: "C", Count: 3}},
		},
		{
			name:     "zero limit keeps everything",
			items:    []schema.ThemeCount{{Value: "A", Count: 1}, {Value: "B", Count: 5}},
			limit:    0,
			expected: []schema.ThemeCount{{Value: "B", Count: 5}, {Value: "A", Count: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RankThemes(tt.items, tt.limit))
		})
	}
}

func TestRankSnapshots(t *testing.T) {
	snaps := []schema.MetricSnapshot{{Partner: "Zeta", Responses: 100}, {Partner: "Acme", Responses: 1}}
	ranked := RankSnapshots(snaps)
	assert.Equal(t, "Acme", ranked[0].Partner)
	assert.Equal(t, "Zeta", ranked[1].Partner)
}

// TestMeanMedian tests the basic statistics on rating values.
func TestMeanMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		mean   float64
		median float64
		ok     bool
	}{
		{"empty", nil, 0, 0, false},
		{"single", []int{4}, 4, 4, true},
		{"odd", []int{5, 1, 3}, 3, 3, true},
		{"even", []int{4, 5}, 4.5, 4.5, true},
		{"skewed", []int{1, 1, 1, 5}, 2, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, ok := Mean(tt.values)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.mean, mean, 1e-9)

			median, ok := Median(tt.values)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.median, median, 1e-9)
		})
	}

	values := []int{3, 1, 2}
	_, _ = Median(values)
	assert.Equal(t, []int{3, 1, 2}, values, "median must not reorder the input")
}
