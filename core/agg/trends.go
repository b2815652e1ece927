package agg

import (
	"fmt"
	"sort"
	"time"

	"github.com/huangsam/debrief/core/algo"
	"github.com/huangsam/debrief/schema"
)

// Period returns the bucket label and start for a session date.
func Period(t time.Time, g schema.Granularity) (string, time.Time) {
	y, m, d := t.Date()
	switch g {
	case schema.WeekGranularity:
		year, week := t.ISOWeek()
		offset := (int(t.Weekday()) + 6) % 7 // days since Monday
		start := time.Date(y, m, d-offset, 0, 0, 0, 0, time.UTC)
		return fmt.Sprintf("%04d-W%02d", year, week), start
	case schema.MonthGranularity:
		start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		return start.Format("2006-01"), start
	default:
		start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return start.Format(schema.DateLayout), start
	}
}

// bucket collects one period's ratings per field.
type bucket struct {
	period    string
	start     time.Time
	responses int
	values    map[schema.RatingField][]int
}

// collect groups dated responses in scope by period, ordered by start.
func collect(table *schema.Table, partner string, g schema.Granularity) []*bucket {
	byPeriod := make(map[string]*bucket)
	scoped(table, partner, func(r schema.Response) {
		if !r.HasSessionDate() {
			return
		}
		label, start := Period(r.SessionDate, g)
		b, ok := byPeriod[label]
		if !ok {
			b = &bucket{period: label, start: start, values: make(map[schema.RatingField][]int)}
			byPeriod[label] = b
		}
		b.responses++
		for _, field := range schema.AllRatingFields {
			if v, ok := r.Rating(field); ok {
				b.values[field] = append(b.values[field], v)
			}
		}
	})

	buckets := make([]*bucket, 0, len(byPeriod))
	for _, b := range byPeriod {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].start.Before(buckets[j].start)
	})
	return buckets
}

// Trend computes the mean of one rating field per period. Periods without
// a valid rating are omitted rather than zero-filled, and undated
// responses are ignored.
func Trend(table *schema.Table, field schema.RatingField, partner string, g schema.Granularity) schema.TrendSeries {
	series := schema.TrendSeries{Partner: partner, Field: field, Granularity: g, Buckets: []schema.TimeBucket{}}
	for _, b := range collect(table, partner, g) {
		values := b.values[field]
		mean, ok := algo.Mean(values)
		if !ok {
			continue
		}
		series.Buckets = append(series.Buckets, schema.TimeBucket{
			Period:    b.period,
			Start:     b.start,
			Mean:      mean,
			Valid:     len(values),
			Responses: b.responses,
		})
	}
	return series
}

// Trends computes Trend for every rating field.
func Trends(table *schema.Table, partner string, g schema.Granularity) []schema.TrendSeries {
	out := make([]schema.TrendSeries, 0, len(schema.AllRatingFields))
	for _, field := range schema.AllRatingFields {
		out = append(out, Trend(table, field, partner, g))
	}
	return out
}

// Periods lines up every rating mean per period, including periods that
// only have responses without valid ratings.
func Periods(table *schema.Table, partner string, g schema.Granularity) []schema.PeriodRow {
	buckets := collect(table, partner, g)
	rows := make([]schema.PeriodRow, 0, len(buckets))
	for _, b := range buckets {
		row := schema.PeriodRow{
			Period:    b.period,
			Start:     b.start,
			Responses: b.responses,
			Means:     make(map[schema.RatingField]*float64, len(schema.AllRatingFields)),
		}
		for _, field := range schema.AllRatingFields {
			if mean, ok := algo.Mean(b.values[field]); ok {
				row.Means[field] = schema.FloatPtr(mean)
			} else {
				row.Means[field] = nil
			}
		}
		rows = append(rows, row)
	}
	return rows
}
