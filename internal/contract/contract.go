// Package contract provides interfaces and shared utilities for debrief's internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/debrief/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetTableStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for recording report runs and partner snapshots.
type HistoryStore interface {
	// BeginRun records the start of a report run under the given ID
	BeginRun(runID string, kind schema.ReportKind, source string, startTime time.Time, configParams map[string]any) error

	// EndRun updates the run with completion data
	EndRun(runID string, endTime time.Time, totalResponses int) error

	// RecordSnapshot stores the metrics and leading themes of one partner for a run
	RecordSnapshot(runID string, record schema.SnapshotRecord) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run, oldest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllSnapshots returns every recorded partner snapshot
	GetAllSnapshots() ([]schema.SnapshotRecord, error)

	// Close closes the underlying connection
	Close() error
}
