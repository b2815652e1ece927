package schema

import "time"

// CacheStatus represents the status of the table cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the report history store.
type HistoryStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	TotalRuns      int              `json:"total_runs"`
	LastRunID      string           `json:"last_run_id"`
	LastRunTime    time.Time        `json:"last_run_time"`
	OldestRunTime  time.Time        `json:"oldest_run_time"`
	TotalResponses int              `json:"total_responses"`
	TableSizes     map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the debrief_report_runs table.
type RunRecord struct {
	RunID          string
	Kind           string
	Source         string
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int64
	TotalResponses int
	ConfigParams   *string
}

// SnapshotRecord represents a row from the debrief_partner_snapshots table.
type SnapshotRecord struct {
	RunID        string
	Partner      string
	RecordedAt   time.Time
	Responses    int
	Sessions     int
	AvgRelevance *float64
	AvgSupport   *float64
	AvgUrgency   *float64
	TopPressure  *string
	TopChallenge *string
	TopObstacle  *string
}
