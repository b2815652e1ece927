//go:build basic

// Package integration contains integration tests for debrief.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/huangsam/debrief/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOverviewVerification runs debrief overview --output json and verifies
// counts and rating means against the fixture rows.
func TestOverviewVerification(t *testing.T) {
	t.Setenv("DEBRIEF_CACHE_BACKEND", "none")
	survey := writeSurvey(t)

	cmd := debriefCommand(filepath.Dir(survey), "overview", "--input", survey, "--output", "json")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	require.NoError(t, cmd.Run())

	var overview schema.Overview
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &overview))

	expected := expectedRatings(t)
	require.Len(t, overview.Partners, len(expected))
	for _, snap := range overview.Partners {
		t.Run(snap.Partner, func(t *testing.T) {
			want := expected[snap.Partner]
			assert.Equal(t, want.responses, snap.Responses)
			for _, field := range schema.AllRatingFields {
				stat := snap.Rating(field)
				ratings := want.ratings[field]
				if len(ratings) == 0 {
					assert.Nil(t, stat.Mean, "partner %s, %s", snap.Partner, field)
					continue
				}
				require.NotNil(t, stat.Mean, "partner %s, %s", snap.Partner, field)
				assert.InDelta(t, mean(ratings), *stat.Mean, 1e-9, "partner %s, %s", snap.Partner, field)
				assert.Equal(t, len(ratings), stat.Valid)
			}
		})
	}
	assert.Equal(t, 5, overview.Global.Responses)
}

// TestThemesCSVVerification checks that differently spelled answers are
// tallied under one theme.
func TestThemesCSVVerification(t *testing.T) {
	t.Setenv("DEBRIEF_CACHE_BACKEND", "none")
	survey := writeSurvey(t)

	cmd := debriefCommand(filepath.Dir(survey), "themes", "Acme", "--input", survey, "--output", "csv", "--dimension", "pressure")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	require.NoError(t, cmd.Run())

	records, err := csv.NewReader(&stdout).ReadAll()
	require.NoError(t, err)
	require.Greater(t, len(records), 1)

	counts := make(map[string]int)
	for _, rec := range records[1:] {
		n, err := strconv.Atoi(rec[4])
		require.NoError(t, err)
		counts[rec[3]] = n
	}
	assert.Equal(t, map[string]int{"Talent": 2, "Budget": 1}, counts)
}

type partnerRatings struct {
	responses int
	ratings   map[schema.RatingField][]float64
}

// expectedRatings recomputes per-partner ratings straight from the fixture.
func expectedRatings(t *testing.T) map[string]partnerRatings {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(surveyCSV)).ReadAll()
	require.NoError(t, err)

	columns := map[schema.RatingField]int{
		schema.RelevanceRating: 5,
		schema.SupportRating:   6,
		schema.UrgencyRating:   7,
	}
	out := make(map[string]partnerRatings)
	for _, rec := range records[1:] {
		p, ok := out[rec[1]]
		if !ok {
			p = partnerRatings{ratings: make(map[schema.RatingField][]float64)}
		}
		p.responses++
		for field, col := range columns {
			v, err := strconv.ParseFloat(rec[col], 64)
			if err != nil || v < schema.MinRating || v > schema.MaxRating {
				continue
			}
			p.ratings[field] = append(p.ratings[field], v)
		}
		out[rec[1]] = p
	}
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
