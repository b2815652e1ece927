package iocache

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/debrief/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteHistory(t *testing.T) *HistoryStoreImpl {
	t.Helper()
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*HistoryStoreImpl)
}

func ptr[T any](v T) *T { return &v }

func TestHistoryStore_NoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	now := time.Now()
	assert.NoError(t, store.BeginRun("run-1", schema.OverviewReport, "survey.csv", now, nil))
	assert.NoError(t, store.RecordSnapshot("run-1", schema.SnapshotRecord{Partner: "Acme"}))
	assert.NoError(t, store.EndRun("run-1", now, 3))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestHistoryStore_RunLifecycle(t *testing.T) {
	store := newSQLiteHistory(t)
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)

	require.NoError(t, store.BeginRun("run-1", schema.PartnerKind, "survey.csv", start, map[string]any{"partners": []string{"Acme"}}))
	require.NoError(t, store.EndRun("run-1", end, 3))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, "run-1", run.RunID)
	assert.Equal(t, "partner", run.Kind)
	assert.Equal(t, "survey.csv", run.Source)
	assert.True(t, run.StartTime.Equal(start))
	require.NotNil(t, run.EndTime)
	assert.True(t, run.EndTime.Equal(end))
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int64(1500), *run.RunDurationMs)
	assert.Equal(t, 3, run.TotalResponses)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"partners":["Acme"]}`, *run.ConfigParams)
}

func TestHistoryStore_UnfinishedRun(t *testing.T) {
	store := newSQLiteHistory(t)
	require.NoError(t, store.BeginRun("run-1", schema.OverviewReport, "survey.csv", time.Now(), nil))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDurationMs)
	assert.Equal(t, 0, runs[0].TotalResponses)
}

func TestHistoryStore_EndUnknownRun(t *testing.T) {
	store := newSQLiteHistory(t)
	assert.Error(t, store.EndRun("missing", time.Now(), 1))
}

func TestHistoryStore_DuplicateRunID(t *testing.T) {
	store := newSQLiteHistory(t)
	now := time.Now()
	require.NoError(t, store.BeginRun("run-1", schema.OverviewReport, "a.csv", now, nil))
	assert.Error(t, store.BeginRun("run-1", schema.OverviewReport, "a.csv", now, nil))
}

func TestHistoryStore_Snapshots(t *testing.T) {
	store := newSQLiteHistory(t)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.BeginRun("run-1", schema.ComparisonKind, "survey.csv", at, nil))

	acme := schema.SnapshotRecord{
		Partner:      "Acme",
		RecordedAt:   at,
		Responses:    3,
		Sessions:     2,
		AvgRelevance: ptr(4.5),
		AvgSupport:   ptr(3.0),
		TopPressure:  ptr("Deadlines"),
	}
	beta := schema.SnapshotRecord{Partner: "Beta", RecordedAt: at.Add(time.Second), Responses: 2, Sessions: 1}
	require.NoError(t, store.RecordSnapshot("run-1", acme))
	require.NoError(t, store.RecordSnapshot("run-1", beta))

	// One snapshot per partner per run
	assert.Error(t, store.RecordSnapshot("run-1", acme))

	snaps, err := store.GetAllSnapshots()
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	got := snaps[0]
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "Acme", got.Partner)
	assert.True(t, got.RecordedAt.Equal(at))
	assert.Equal(t, 3, got.Responses)
	assert.Equal(t, 2, got.Sessions)
	assert.Equal(t, ptr(4.5), got.AvgRelevance)
	assert.Equal(t, ptr(3.0), got.AvgSupport)
	assert.Nil(t, got.AvgUrgency)
	assert.Equal(t, ptr("Deadlines"), got.TopPressure)
	assert.Nil(t, got.TopChallenge)

	assert.Equal(t, "Beta", snaps[1].Partner)
	assert.Nil(t, snaps[1].AvgRelevance)
}

func TestHistoryStore_GetStatus(t *testing.T) {
	store := newSQLiteHistory(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Equal(t, int64(0), status.TableSizes[reportRunsTable])

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	require.NoError(t, store.BeginRun("run-a", schema.OverviewReport, "s.csv", first, nil))
	require.NoError(t, store.EndRun("run-a", first.Add(time.Second), 5))
	require.NoError(t, store.BeginRun("run-b", schema.PartnerKind, "s.csv", second, nil))
	require.NoError(t, store.EndRun("run-b", second.Add(time.Second), 3))
	require.NoError(t, store.RecordSnapshot("run-b", schema.SnapshotRecord{Partner: "Acme", RecordedAt: second}))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, "run-b", status.LastRunID)
	assert.True(t, status.LastRunTime.Equal(second))
	assert.True(t, status.OldestRunTime.Equal(first))
	assert.Equal(t, 8, status.TotalResponses)
	assert.Equal(t, int64(2), status.TableSizes[reportRunsTable])
	assert.Equal(t, int64(1), status.TableSizes[partnerSnapshotsTable])

	var buf bytes.Buffer
	PrintHistoryStatus(&buf, status)
	out := buf.String()
	assert.Contains(t, out, "Total Runs: 2")
	assert.Contains(t, out, "Last Run ID: run-b")
	assert.Contains(t, out, "Total Responses Reported: 8")
	assert.Contains(t, out, "  debrief_partner_snapshots: 1 rows\n  debrief_report_runs: 2 rows")
}

func TestGetCreateHistoryQuery(t *testing.T) {
	assert.Contains(t, getCreateHistoryQuery(reportRunsTable, schema.SQLiteBackend), "start_time TEXT NOT NULL")
	assert.Contains(t, getCreateHistoryQuery(reportRunsTable, schema.MySQLBackend), "run_id VARCHAR(255) PRIMARY KEY")
	assert.Contains(t, getCreateHistoryQuery(reportRunsTable, schema.PostgreSQLBackend), "start_time TIMESTAMPTZ NOT NULL")
	assert.Contains(t, getCreateHistoryQuery(partnerSnapshotsTable, schema.MySQLBackend), "avg_relevance DOUBLE,")
	assert.Contains(t, getCreateHistoryQuery(partnerSnapshotsTable, schema.PostgreSQLBackend), "avg_relevance DOUBLE PRECISION")
	assert.Contains(t, getCreateHistoryQuery(partnerSnapshotsTable, schema.SQLiteBackend), "PRIMARY KEY (run_id, partner)")
}

func TestClearHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.BeginRun("run-1", schema.OverviewReport, "s.csv", time.Now(), nil))
	require.NoError(t, store.Close())

	require.NoError(t, ClearHistory(schema.SQLiteBackend, dbPath, ""))

	store, err = NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestExportHistory(t *testing.T) {
	t.Run("writes both files", func(t *testing.T) {
		store := newSQLiteHistory(t)
		at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		require.NoError(t, store.BeginRun("run-1", schema.OverviewReport, "s.csv", at, nil))
		require.NoError(t, store.RecordSnapshot("run-1", schema.SnapshotRecord{Partner: "Acme", RecordedAt: at, Responses: 3}))
		require.NoError(t, store.EndRun("run-1", at.Add(time.Second), 3))

		out := filepath.Join(t.TempDir(), "history")
		var buf bytes.Buffer
		require.NoError(t, ExportHistory(&buf, store, out))

		assert.Contains(t, buf.String(), "Exported 1 report runs to: "+out+".report_runs.parquet")
		assert.Contains(t, buf.String(), "Exported 1 partner snapshots to: "+out+".partner_snapshots.parquet")
		assert.FileExists(t, out+".report_runs.parquet")
		assert.FileExists(t, out+".partner_snapshots.parquet")
	})

	t.Run("requires output file", func(t *testing.T) {
		assert.ErrorContains(t, ExportHistory(&bytes.Buffer{}, newSQLiteHistory(t), ""), "--output-file")
	})

	t.Run("requires a store", func(t *testing.T) {
		assert.Error(t, ExportHistory(&bytes.Buffer{}, nil, "out"))
	})

	t.Run("empty history", func(t *testing.T) {
		err := ExportHistory(&bytes.Buffer{}, newSQLiteHistory(t), filepath.Join(t.TempDir(), "x"))
		assert.ErrorContains(t, err, "no report history")
	})

	t.Run("store errors surface", func(t *testing.T) {
		store := &MockHistoryStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", TotalRuns: 1}, nil)
		store.On("GetAllRuns").Return([]schema.RunRecord(nil), assert.AnError)
		err := ExportHistory(&bytes.Buffer{}, store, filepath.Join(t.TempDir(), "x"))
		assert.ErrorIs(t, err, assert.AnError)
		store.AssertExpectations(t)
	})
}
