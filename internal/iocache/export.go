package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/debrief/internal/contract"
	"github.com/huangsam/debrief/internal/parquet"
)

// ExportHistory writes all recorded runs and snapshots to two Parquet files
// named after outputFile.
func ExportHistory(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not configured")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no report history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total report runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total partner snapshots: %d\n", status.TableSizes[partnerSnapshotsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve report runs: %w", err)
	}
	snapshots, err := store.GetAllSnapshots()
	if err != nil {
		return fmt.Errorf("failed to retrieve partner snapshots: %w", err)
	}

	runRows := parquet.ConvertRunRecords(runs)
	runsFile := outputFile + ".report_runs.parquet"
	if err := parquet.WriteReportRunsParquet(runRows, runsFile); err != nil {
		return fmt.Errorf("failed to write report runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d report runs to: %s\n", len(runRows), runsFile)

	snapshotRows := parquet.ConvertSnapshotRecords(snapshots)
	snapshotsFile := outputFile + ".partner_snapshots.parquet"
	if err := parquet.WritePartnerSnapshotsParquet(snapshotRows, snapshotsFile); err != nil {
		return fmt.Errorf("failed to write partner snapshots: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d partner snapshots to: %s\n", len(snapshotRows), snapshotsFile)

	return nil
}
