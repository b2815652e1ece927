package agg

import (
	"github.com/huangsam/debrief/core/algo"
	"github.com/huangsam/debrief/schema"
)

// Metrics computes the scalar metrics for one partner, or for the whole
// table when partner is empty. An empty scope yields zero counts and
// "no data" rating aggregates.
func Metrics(table *schema.Table, partner string) schema.MetricSnapshot {
	snap := schema.MetricSnapshot{Scope: schema.GlobalScope, Partner: partner}
	if partner != "" {
		snap.Scope = schema.PartnerScope
	}

	sessions := make(map[string]struct{})
	values := make(map[schema.RatingField][]int, len(schema.AllRatingFields))
	excluded := make(map[schema.RatingField]int, len(schema.AllRatingFields))

	scoped(table, partner, func(r schema.Response) {
		snap.Responses++
		if key := r.SessionKey(); key != "" {
			sessions[key] = struct{}{}
			if snap.FirstDate.IsZero() || r.SessionDate.Before(snap.FirstDate) {
				snap.FirstDate = r.SessionDate
			}
			if r.SessionDate.After(snap.LastDate) {
				snap.LastDate = r.SessionDate
			}
		}
		for _, field := range schema.AllRatingFields {
			if v, ok := r.Rating(field); ok {
				values[field] = append(values[field], v)
			} else if r.Ratings[field] != "" {
				excluded[field]++
			}
		}
	})
	snap.Sessions = len(sessions)

	snap.Ratings = make([]schema.RatingStat, 0, len(schema.AllRatingFields))
	for _, field := range schema.AllRatingFields {
		snap.Ratings = append(snap.Ratings, ratingStat(field, values[field], excluded[field]))
	}
	return snap
}

func ratingStat(field schema.RatingField, values []int, excluded int) schema.RatingStat {
	stat := schema.RatingStat{Field: field, Valid: len(values), Excluded: excluded}
	if mean, ok := algo.Mean(values); ok {
		stat.Mean = schema.FloatPtr(mean)
	}
	if median, ok := algo.Median(values); ok {
		stat.Median = schema.FloatPtr(median)
	}
	return stat
}

// PartnerMetrics computes one snapshot per distinct partner, ordered by name.
func PartnerMetrics(table *schema.Table) []schema.MetricSnapshot {
	partners := table.Partners()
	snaps := make([]schema.MetricSnapshot, 0, len(partners))
	for _, p := range partners {
		snaps = append(snaps, Metrics(table, p))
	}
	return algo.RankSnapshots(snaps)
}
