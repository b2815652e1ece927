// Package algo has the pure ranking and statistics helpers behind aggregation.
package algo

import (
	"sort"

	"github.com/huangsam/debrief/schema"
)

// RankThemes sorts theme counts by count in descending order, breaking ties
// by value in ascending order, and returns the top 'limit' entries.
// A limit of zero or less keeps every entry.
func RankThemes(items []schema.ThemeCount, limit int) []schema.ThemeCount {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Value < items[j].Value
	})
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// RankSnapshots orders partner snapshots by partner name so tables stay
// stable regardless of response volume.
func RankSnapshots(snaps []schema.MetricSnapshot) []schema.MetricSnapshot {
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].Partner < snaps[j].Partner
	})
	return snaps
}
