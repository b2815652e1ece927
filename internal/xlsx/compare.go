package xlsx

import (
	"io"
	"strings"

	"github.com/huangsam/debrief/schema"
)

// ComparisonSheet is the first sheet of a comparison workbook.
const ComparisonSheet = "Cross-Partner Analysis"

// themesSuffix ends each per-partner theme sheet name.
const themesSuffix = "_Themes"

// ComparisonFileName is the default workbook name for a comparison export.
func ComparisonFileName(partners []string) string {
	names := make([]string, 0, len(partners))
	for _, p := range partners {
		if p = schema.CollapseSpace(p); p != "" {
			names = append(names, fileSafe(p))
		}
	}
	if len(names) == 0 {
		return "Partner_Comparison.xlsx"
	}
	return "Partner_Comparison_" + strings.Join(names, "_vs_") + ".xlsx"
}

// SaveComparison writes the comparison workbook to path. Failures are
// returned as *schema.ExportError and leave no file behind.
func SaveComparison(path string, report schema.ComparisonReport, precision int) error {
	return save(path, func(w io.Writer) error {
		return WriteComparison(w, report, precision)
	})
}

// WriteComparison encodes the comparison workbook on w: one metrics sheet
// followed by a theme sheet per partner.
func WriteComparison(w io.Writer, report schema.ComparisonReport, precision int) error {
	b, err := newBook(precision)
	if err != nil {
		return err
	}
	partners := make([]string, len(report.Rows))
	for i, row := range report.Rows {
		partners[i] = row.Partner
	}
	b.props("Partner Comparison: "+strings.Join(partners, " vs "), report.ID)

	sh := b.sheet(ComparisonSheet)
	b.set(sh, 1, 1, "Multi-Partner Comparison")
	b.style(sh, 1, 1, 1, 1, titleStyle)
	b.set(sh, 1, 2, "Report Generated: "+report.GeneratedAt.Format(DateLong))
	b.style(sh, 1, 2, 1, 2, mutedStyle)

	b.header(sh, 4, append([]string{"Partner"}, report.Columns...))
	for i, row := range report.Rows {
		r := 5 + i
		b.set(sh, 1, r, row.Partner)
		b.style(sh, 1, r, 1, r, labelStyle)
		for j, cell := range row.Values {
			col := 2 + j
			switch {
			case cell.Text != "":
				b.set(sh, col, r, cell.Text)
			case cell.Whole && cell.Value != nil:
				b.set(sh, col, r, int64(*cell.Value))
				b.style(sh, col, r, col, r, wholeStyle)
			default:
				b.mean(sh, col, r, cell.Value)
			}
		}
	}
	b.width(sh, 1, 25)
	for i := range report.Columns {
		b.width(sh, 2+i, 15)
	}

	taken := map[string]struct{}{strings.ToLower(ComparisonSheet): {}}
	for _, pt := range report.Themes {
		ts := b.sheet(sheetName(pt.Partner, themesSuffix, taken))
		b.set(ts, 1, 1, pt.Partner+" - Themes")
		b.style(ts, 1, 1, 1, 1, titleStyle)
		b.themeSections(ts, 3, pt.Themes, "Count", sectionStyle)
		b.width(ts, 1, 60)
		b.width(ts, 2, 12)
	}
	return b.write(w)
}
