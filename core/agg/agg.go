// Package agg has the pure aggregations over a loaded response table:
// scalar metrics, theme tallies, rating trends and insight excerpts.
// Every function reads the table and never modifies it.
package agg

import (
	"github.com/huangsam/debrief/schema"
)

// inScope reports whether a response belongs to the partner filter.
// An empty partner selects every response.
func inScope(r schema.Response, partner string) bool {
	return partner == "" || r.Partner == partner
}

// scoped calls fn for each response in scope, in source order.
func scoped(table *schema.Table, partner string, fn func(r schema.Response)) {
	if table == nil {
		return
	}
	for _, r := range table.Responses {
		if inScope(r, partner) {
			fn(r)
		}
	}
}

// Insights returns the non-blank answers for a free-text field in source
// order, at most limit of them. A limit of zero or less keeps every answer.
func Insights(table *schema.Table, field schema.InsightField, partner string, limit int) []string {
	out := []string{}
	scoped(table, partner, func(r schema.Response) {
		if limit > 0 && len(out) >= limit {
			return
		}
		if v := r.Insight(field); !schema.IsBlank(v) {
			out = append(out, v)
		}
	})
	return out
}
