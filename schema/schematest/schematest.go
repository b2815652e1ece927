// Package schematest builds small response tables for tests.
package schematest

import (
	"time"

	"github.com/huangsam/debrief/schema"
)

// Date parses a YYYY-MM-DD string, panicking on malformed input.
func Date(s string) time.Time {
	t, err := time.Parse(schema.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Ratings builds a raw rating map for relevance, support and urgency.
// Empty strings are left out.
func Ratings(relevance, support, urgency string) map[schema.RatingField]string {
	out := make(map[schema.RatingField]string)
	for field, v := range map[schema.RatingField]string{
		schema.RelevanceRating: relevance,
		schema.SupportRating:   support,
		schema.UrgencyRating:   urgency,
	} {
		if v != "" {
			out[field] = v
		}
	}
	return out
}

// Row builds a response. An empty date leaves SessionDate unset.
func Row(partner, date, pressure, challenge, obstacle string, ratings map[schema.RatingField]string) schema.Response {
	r := schema.Response{
		Partner:   partner,
		Pressure:  pressure,
		Challenge: challenge,
		Obstacle:  obstacle,
		Ratings:   ratings,
	}
	if date != "" {
		r.SessionDate = Date(date)
	}
	return r
}

// Table wraps responses in a table, numbering rows like a sheet with a header.
func Table(responses ...schema.Response) *schema.Table {
	for i := range responses {
		if responses[i].Row == 0 {
			responses[i].Row = i + 2
		}
	}
	return &schema.Table{
		Source: "sample.xlsx",
		Digest: "sample",
		Columns: []schema.ColumnField{
			schema.BarrierColumn, schema.ChallengeColumn, schema.ObstacleColumn,
			schema.PartnerColumn, schema.PressureColumn, schema.RelevanceColumn,
			schema.SessionDateColumn, schema.SupportColumn, schema.TakeawayColumn,
			schema.UnsharedColumn, schema.UrgencyColumn,
		},
		Stats:     schema.LoadStats{TotalRows: len(responses), Loaded: len(responses)},
		Responses: responses,
	}
}

// Sample returns two partners. Partner A has three responses over two
// sessions with pressures Talent, Talent and Strategy; partner B has two
// responses in one session with pressures Talent and Budget.
func Sample() *schema.Table {
	a1 := Row("A", "2024-01-01", "Talent", "Delegation", "Time", Ratings("4", "5", "3"))
	a1.Takeaway = "Listen first"
	a1.Unshared = "Loved the group"
	a1.Barrier = "nan"
	a2 := Row("A", "2024-01-01", "Talent", "delegation", "Budget cuts", Ratings("5", "4", ""))
	a2.Takeaway = "Listen first"
	a2.Barrier = "Back to back meetings"
	a3 := Row("A", "2024-02-01", "Strategy", "Focus", "", Ratings("", "9", "2"))
	a3.Takeaway = "Ask better questions"

	b1 := Row("B", "2024-01-15", "Talent", "Delegation", "Time", Ratings("1", "3", "4"))
	b2 := Row("B", "2024-01-15", "Budget", "Hiring", "Politics", Ratings("3", "x", "5"))
	b2.Unshared = "  "

	return Table(a1, a2, a3, b1, b2)
}
