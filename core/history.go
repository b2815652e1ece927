package core

import (
	"context"
	"time"

	"github.com/huangsam/debrief/internal/contract"
	"github.com/huangsam/debrief/internal/telemetry"
	"github.com/huangsam/debrief/schema"
)

// runTracker records one report run in the history store, when one is configured.
// Tracking failures are logged and never fail the report.
type runTracker struct {
	store contract.HistoryStore
	id    string
	kind  schema.ReportKind
	start time.Time
}

// historyStore returns the configured history store, or nil.
func historyStore(mgr contract.CacheManager) contract.HistoryStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetHistoryStore()
}

// tableStore returns the configured table cache store, or nil.
func tableStore(mgr contract.CacheManager) contract.CacheStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetTableStore()
}

// beginRun starts tracking a run and stores its ID in the returned context.
func beginRun(ctx context.Context, mgr contract.CacheManager, runID string, kind schema.ReportKind, cfg *contract.Config, source string, start time.Time) (context.Context, *runTracker) {
	run := &runTracker{id: runID, kind: kind, start: start}
	store := historyStore(mgr)
	if store == nil {
		return ctx, run
	}
	configParams := map[string]any{
		"partners":     cfg.Partners,
		"result_limit": cfg.ResultLimit,
		"basis":        string(cfg.Basis),
		"granularity":  string(cfg.Granularity),
		"output":       string(cfg.Output),
	}
	if cfg.Rating != "" {
		configParams["rating"] = string(cfg.Rating)
	}
	if cfg.Dimension != "" {
		configParams["dimension"] = string(cfg.Dimension)
	}
	if err := store.BeginRun(runID, kind, source, start, configParams); err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return ctx, run
	}
	run.store = store
	return withRunID(ctx, runID), run
}

// snapshot records a partner's metrics and top themes for the run.
func (r *runTracker) snapshot(ctx context.Context, snap schema.MetricSnapshot, themes []schema.ThemeBlock) {
	if r.store == nil || snap.Partner == "" {
		return
	}
	runID, ok := getRunID(ctx)
	if !ok {
		return
	}
	if err := r.store.RecordSnapshot(runID, snapshotRecord(runID, snap, themes, time.Now())); err != nil {
		contract.LogWarn("Failed to record partner snapshot", err)
	}
}

// finish closes the run and reports its duration to telemetry.
func (r *runTracker) finish(totalResponses int, err error) {
	end := time.Now()
	telemetry.Default.ObserveReport(r.kind, end.Sub(r.start), err)
	if r.store == nil {
		return
	}
	if endErr := r.store.EndRun(r.id, end, totalResponses); endErr != nil {
		contract.LogWarn("Failed to finalize run tracking", endErr)
	}
}

// snapshotRecord flattens a snapshot and its theme blocks into a history row.
func snapshotRecord(runID string, snap schema.MetricSnapshot, themes []schema.ThemeBlock, at time.Time) schema.SnapshotRecord {
	rec := schema.SnapshotRecord{
		RunID:        runID,
		Partner:      snap.Partner,
		RecordedAt:   at,
		Responses:    snap.Responses,
		Sessions:     snap.Sessions,
		AvgRelevance: snap.Rating(schema.RelevanceRating).Mean,
		AvgSupport:   snap.Rating(schema.SupportRating).Mean,
		AvgUrgency:   snap.Rating(schema.UrgencyRating).Mean,
	}
	for _, block := range themes {
		if len(block.Items) == 0 {
			continue
		}
		top := block.Items[0].Value
		switch block.Dimension {
		case schema.PressureTheme:
			rec.TopPressure = &top
		case schema.ChallengeTheme:
			rec.TopChallenge = &top
		case schema.ObstacleTheme:
			rec.TopObstacle = &top
		}
	}
	return rec
}
