package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/debrief/core"
	"github.com/huangsam/debrief/internal/contract"
	"github.com/huangsam/debrief/schema"
	"github.com/spf13/cobra"
)

// runReport returns a cobra Run function that executes a report and
// flushes metrics before any fatal exit.
func runReport(exec core.ExecutorFunc, failure string) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {
		err := reportOutcome(os.Stdout, exec(rootCtx, cfg, cacheManager))
		writeMetrics()
		if err != nil {
			contract.LogFatal(failure, err)
		}
	}
}

// reportOutcome prints an empty scope as a no-data notice and returns nil
// for it. Any other error is returned unchanged.
func reportOutcome(w io.Writer, err error) error {
	var empty *schema.EmptyScopeError
	if !errors.As(err, &empty) {
		return err
	}
	if empty.Partner == "" {
		_, _ = fmt.Fprintln(w, "No data: the survey has no responses.")
	} else {
		_, _ = fmt.Fprintf(w, "No data for partner %q. Run 'debrief partners' to list known names.\n", empty.Partner)
	}
	return nil
}

// overviewCmd shows the dashboard view across every partner.
var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Summarize ratings and top themes across every partner",
	Long: `Print the global snapshot of the survey followed by one row per partner.

Each row carries response and session counts, rating means and medians,
and the date range covered.

Examples:
  # Overview of a CSV export
  debrief overview --input debriefs.csv

  # Same data as JSON for a dashboard
  debrief overview --input debriefs.xlsx --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runReport(core.ExecuteOverview, "Overview failed"),
}

// partnersCmd lists partners present in the survey.
var partnersCmd = &cobra.Command{
	Use:   "partners",
	Short: "List partners with their response counts",
	Long: `List every partner found in the survey, sorted by name, with the number
of responses and distinct sessions each one has.

Use the names printed here as arguments to partner, compare, themes and trends.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runReport(core.ExecutePartners, "Listing partners failed"),
}

// partnerCmd shows the full report for one partner.
var partnerCmd = &cobra.Command{
	Use:   "partner <name>",
	Short: "Show the full debrief report for one partner",
	Long: `Show ratings, ranked themes, ratings by period and qualitative excerpts
for a single partner.

Partner names are matched exactly. Run 'debrief partners' to see them.

Examples:
  # Partner report bucketed by week
  debrief partner "Acme Corp" --input debriefs.csv --granularity week

  # Count themes once per session
  debrief partner "Acme Corp" --input debriefs.csv --basis sessions`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runReport(core.ExecutePartner, "Partner report failed"),
}

// compareCmd compares partners side by side.
var compareCmd = &cobra.Command{
	Use:   "compare <partner> <partner> [partner...]",
	Short: "Compare two or more partners side by side",
	Long: `Compare key metrics and top themes for two or more partners.

Rows follow the order the partners are given. Duplicate names are ignored.

Examples:
  debrief compare "Acme Corp" "Beta Labs" --input debriefs.csv
  debrief compare "Acme Corp" "Beta Labs" --input debriefs.csv --output csv`,
	Args:    cobra.MinimumNArgs(2),
	PreRunE: sharedSetupWrapper,
	Run:     runReport(core.ExecuteCompare, "Comparison failed"),
}

// themesCmd ranks themes.
var themesCmd = &cobra.Command{
	Use:   "themes [partner]",
	Short: "Rank pressures, challenges and obstacles",
	Long: `Rank the most frequent themes per dimension for one partner, or for all
partners when no name is given.

Multi-select answers count once per mention by default. Use --basis sessions
to count each theme at most once per session.

Examples:
  debrief themes --input debriefs.csv --limit 5
  debrief themes "Acme Corp" --input debriefs.csv --dimension obstacle`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runReport(core.ExecuteThemes, "Themes failed"),
}

// trendsCmd shows ratings over time.
var trendsCmd = &cobra.Command{
	Use:   "trends [partner]",
	Short: "Show rating means over time",
	Long: `Bucket rated sessions by day, week or month and show the mean per bucket.

Examples:
  debrief trends --input debriefs.csv --granularity month
  debrief trends "Acme Corp" --input debriefs.csv --rating support`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runReport(core.ExecuteTrends, "Trends failed"),
}

// exportCmd groups the workbook exports.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export reports as XLSX workbooks",
	Long: `Write partner or comparison reports as formatted XLSX workbooks.

Without --output-file the workbook is named after the partners and written
to the current directory.`,
}

// exportPartnerCmd writes one partner's workbook.
var exportPartnerCmd = &cobra.Command{
	Use:   "partner <name>",
	Short: "Export a partner report workbook",
	Long: `Write the five-sheet partner workbook: Summary, Themes, Trends, Insights
and Details.

Examples:
  debrief export partner "Acme Corp" --input debriefs.csv
  debrief export partner "Acme Corp" --input debriefs.csv --output-file acme.xlsx`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runReport(core.ExecuteExportPartner, "Partner export failed"),
}

// exportCompareCmd writes the comparison workbook.
var exportCompareCmd = &cobra.Command{
	Use:   "compare <partner> <partner> [partner...]",
	Short: "Export a partner comparison workbook",
	Long: `Write the comparison workbook with metrics and top themes for each partner.

Examples:
  debrief export compare "Acme Corp" "Beta Labs" --input debriefs.csv`,
	Args:    cobra.MinimumNArgs(2),
	PreRunE: sharedSetupWrapper,
	Run:     runReport(core.ExecuteExportCompare, "Comparison export failed"),
}
