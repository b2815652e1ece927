package agg

import (
	"github.com/huangsam/debrief/core/algo"
	"github.com/huangsam/debrief/schema"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// ThemeKey is the tally key for a raw answer: whitespace collapsed,
// NFKC-normalized and case-folded. Blank answers have an empty key.
func ThemeKey(raw string) string {
	v := schema.CollapseSpace(raw)
	if schema.IsBlank(v) {
		return ""
	}
	return cases.Fold().String(norm.NFKC.String(v))
}

// tally accumulates counts and spellings for one theme key.
type tally struct {
	count     int
	spellings map[string]int
}

// display picks the most frequent spelling, ties going to the smallest.
func (t *tally) display() string {
	best, bestN := "", -1
	for s, n := range t.spellings {
		if n > bestN || (n == bestN && s < best) {
			best, bestN = s, n
		}
	}
	return best
}

// Themes tallies one categorical dimension and returns the top N values,
// ordered by count descending then value ascending. Blank answers are not
// counted. With SessionBasis a value counts at most once per session;
// undated responses count as their own session.
func Themes(table *schema.Table, dim schema.ThemeDimension, partner string, topN int, basis schema.ThemeBasis) []schema.ThemeCount {
	tallies := make(map[string]*tally)
	seen := make(map[string]struct{})

	scoped(table, partner, func(r schema.Response) {
		raw := r.Theme(dim)
		key := ThemeKey(raw)
		if key == "" {
			return
		}
		if basis == schema.SessionBasis {
			if session := r.SessionKey(); session != "" {
				id := session + "\x00" + key
				if _, dup := seen[id]; dup {
					return
				}
				seen[id] = struct{}{}
			}
		}
		t, ok := tallies[key]
		if !ok {
			t = &tally{spellings: make(map[string]int)}
			tallies[key] = t
		}
		t.count++
		t.spellings[schema.CollapseSpace(raw)]++
	})

	items := make([]schema.ThemeCount, 0, len(tallies))
	for _, t := range tallies {
		items = append(items, schema.ThemeCount{Value: t.display(), Count: t.count})
	}
	return algo.RankThemes(items, topN)
}

// ThemeBlocks tallies every dimension in dims, titled for display.
func ThemeBlocks(table *schema.Table, dims []schema.ThemeDimension, partner string, topN int, basis schema.ThemeBasis) []schema.ThemeBlock {
	blocks := make([]schema.ThemeBlock, 0, len(dims))
	for _, dim := range dims {
		blocks = append(blocks, schema.ThemeBlock{
			Dimension: dim,
			Title:     schema.ThemeTitles[dim],
			Items:     Themes(table, dim, partner, topN, basis),
		})
	}
	return blocks
}

// Dimensions returns the theme dimensions the table can be tallied on.
// The takeaway dimension is only included when its column was loaded.
func Dimensions(table *schema.Table) []schema.ThemeDimension {
	dims := append([]schema.ThemeDimension{}, schema.CoreThemeDimensions...)
	if table.HasColumn(schema.TakeawayColumn) {
		dims = append(dims, schema.TakeawayTheme)
	}
	return dims
}
