// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/debrief/internal/contract"
	"github.com/huangsam/debrief/schema"
	"golang.org/x/term"
)

// LogReportHeader prints a concise, 2-line header describing the loaded
// source. It only prints for text output, so machine-readable output on
// stdout stays clean.
func LogReportHeader(cfg *contract.Config, table *schema.Table) {
	if cfg.Output != schema.TextOut && cfg.Output != "" {
		return
	}
	source := filepath.Base(table.Source)
	if table.Sheet != "" {
		fmt.Printf("🔎 Source: %s (Sheet: %s)\n", source, table.Sheet)
	} else {
		fmt.Printf("🔎 Source: %s\n", source)
	}

	first, last := dateSpan(table)
	fmt.Printf("📅 Sessions: %s → %s (%d responses, %d partners, %d rows skipped)\n",
		first, last, table.Len(), len(table.Partners()), table.Stats.SkippedRows+table.Stats.BlankRows)
}

// dateSpan finds the earliest and latest session dates in the table.
func dateSpan(table *schema.Table) (string, string) {
	var snap schema.MetricSnapshot
	for _, r := range table.Responses {
		if !r.HasSessionDate() {
			continue
		}
		if snap.FirstDate.IsZero() || r.SessionDate.Before(snap.FirstDate) {
			snap.FirstDate = r.SessionDate
		}
		if r.SessionDate.After(snap.LastDate) {
			snap.LastDate = r.SessionDate
		}
	}
	return snap.DateRange()
}

// getTerminalWidth returns the width override, the detected terminal width,
// or a conservative default.
func getTerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// getMaxTextWidth calculates how wide a free-text cell may be once the other
// columns of a table (reserved) and the borders are accounted for.
func getMaxTextWidth(cfg *contract.Config, reserved int) int {
	available := getTerminalWidth(cfg) - reserved - 10
	if available < 15 {
		return 15
	}
	if available > 100 {
		return 100
	}
	return available
}
