package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/debrief/internal/contract"
	"github.com/huangsam/debrief/schema"
)

// Table names for report history.
const (
	reportRunsTable       = "debrief_report_runs"
	partnerSnapshotsTable = "debrief_partner_snapshots"
)

// historyTables lists the history tables in creation order.
var historyTables = []string{reportRunsTable, partnerSnapshotsTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}
	for _, table := range historyTables {
		if _, err := db.Exec(getCreateHistoryQuery(table, backend)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// getCreateHistoryQuery returns the CREATE TABLE query for one history table.
func getCreateHistoryQuery(table string, backend schema.DatabaseBackend) string {
	quoted := quoteTableName(table, backend)

	// Column types that differ per backend.
	text, key, stamp, integer, double := "TEXT", "TEXT", "TEXT", "INTEGER", "REAL"
	switch backend {
	case schema.MySQLBackend:
		key, stamp, integer, double = "VARCHAR(255)", "DATETIME(6)", "INT", "DOUBLE"
	case schema.PostgreSQLBackend:
		stamp, double = "TIMESTAMPTZ", "DOUBLE PRECISION"
	}

	if table == reportRunsTable {
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id %s PRIMARY KEY,
				kind %s NOT NULL,
				source %s NOT NULL,
				start_time %s NOT NULL,
				end_time %s,
				run_duration_ms BIGINT,
				total_responses %s NOT NULL DEFAULT 0,
				config_params %s
			);
		`, quoted, key, key, text, stamp, stamp, integer, text)
	}
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			run_id %s NOT NULL,
			partner %s NOT NULL,
			recorded_at %s NOT NULL,
			responses %s NOT NULL,
			sessions %s NOT NULL,
			avg_relevance %s,
			avg_support %s,
			avg_urgency %s,
			top_pressure %s,
			top_challenge %s,
			top_obstacle %s,
			PRIMARY KEY (run_id, partner)
		);
	`, quoted, key, key, stamp, integer, integer, double, double, double, text, text, text)
}

// BeginRun records the start of a report run.
func (hs *HistoryStoreImpl) BeginRun(runID string, kind schema.ReportKind, source string, startTime time.Time, configParams map[string]any) error {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return fmt.Errorf("failed to marshal config params: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, kind, source, start_time, config_params) VALUES (%s)`,
		quoteTableName(reportRunsTable, hs.backend), placeholders(hs.backend, 5))
	if _, err := hs.db.Exec(query, runID, string(kind), source, timeArg(startTime, hs.backend), string(configJSON)); err != nil {
		return fmt.Errorf("failed to insert report run: %w", err)
	}
	return nil
}

// EndRun updates the run with its end time, duration and response count.
func (hs *HistoryStoreImpl) EndRun(runID string, endTime time.Time, totalResponses int) error {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	quoted := quoteTableName(reportRunsTable, hs.backend)
	var start sqlTime
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quoted, placeholders(hs.backend, 1))
	if err := hs.db.QueryRow(query, runID).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}
	durationMs := endTime.Sub(start.Time).Milliseconds()

	var update string
	if hs.backend == schema.PostgreSQLBackend {
		update = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_responses = $3 WHERE run_id = $4`, quoted)
	} else {
		update = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_responses = ? WHERE run_id = ?`, quoted)
	}
	if _, err := hs.db.Exec(update, timeArg(endTime, hs.backend), durationMs, totalResponses, runID); err != nil {
		return fmt.Errorf("failed to update report run: %w", err)
	}
	return nil
}

// RecordSnapshot stores one partner's metrics for a run.
func (hs *HistoryStoreImpl) RecordSnapshot(runID string, record schema.SnapshotRecord) error {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, partner, recorded_at, responses, sessions,
		                avg_relevance, avg_support, avg_urgency,
		                top_pressure, top_challenge, top_obstacle)
		VALUES (%s)
	`, quoteTableName(partnerSnapshotsTable, hs.backend), placeholders(hs.backend, 11))
	_, err := hs.db.Exec(query,
		runID, record.Partner, timeArg(record.RecordedAt, hs.backend), record.Responses, record.Sessions,
		record.AvgRelevance, record.AvgSupport, record.AvgUrgency,
		record.TopPressure, record.TopChallenge, record.TopObstacle,
	)
	if err != nil {
		return fmt.Errorf("failed to insert partner snapshot: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return status, nil
	}

	runs := quoteTableName(reportRunsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*), COALESCE(SUM(total_responses), 0) FROM %s", runs)).
		Scan(&status.TotalRuns, &status.TotalResponses); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last, oldest sqlTime
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC LIMIT 1", runs)
		if err := hs.db.QueryRow(lastQuery).Scan(&status.LastRunID, &last); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC LIMIT 1", runs)
		if err := hs.db.QueryRow(oldestQuery).Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.LastRunTime = last.Time
		status.OldestRunTime = oldest.Time
	}

	for _, table := range historyTables {
		var count int64
		if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllRuns retrieves every report run, oldest first.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, kind, source, start_time, end_time, run_duration_ms, total_responses, config_params
		FROM %s ORDER BY start_time, run_id`, quoteTableName(reportRunsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var start, end sqlTime
		if err := rows.Scan(&record.RunID, &record.Kind, &record.Source, &start, &end,
			&record.RunDurationMs, &record.TotalResponses, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan report run: %w", err)
		}
		record.StartTime = start.Time
		record.EndTime = end.ptr()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report runs: %w", err)
	}
	return results, nil
}

// GetAllSnapshots retrieves every partner snapshot, grouped by run.
func (hs *HistoryStoreImpl) GetAllSnapshots() ([]schema.SnapshotRecord, error) {
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, partner, recorded_at, responses, sessions,
		avg_relevance, avg_support, avg_urgency, top_pressure, top_challenge, top_obstacle
		FROM %s ORDER BY recorded_at, run_id, partner`, quoteTableName(partnerSnapshotsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query partner snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SnapshotRecord
	for rows.Next() {
		var record schema.SnapshotRecord
		var at sqlTime
		if err := rows.Scan(&record.RunID, &record.Partner, &at, &record.Responses, &record.Sessions,
			&record.AvgRelevance, &record.AvgSupport, &record.AvgUrgency,
			&record.TopPressure, &record.TopChallenge, &record.TopObstacle); err != nil {
			return nil, fmt.Errorf("failed to scan partner snapshot: %w", err)
		}
		record.RecordedAt = at.Time
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating partner snapshots: %w", err)
	}
	return results, nil
}
