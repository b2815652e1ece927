package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/debrief/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveLoad(t *testing.T) {
	r := NewRecorder()
	stats := schema.LoadStats{TotalRows: 10, Loaded: 7, BlankRows: 1, SkippedRows: 2, BadRatings: 3}

	r.ObserveLoad(stats, CacheMiss)
	r.ObserveLoad(stats, MemoryHit)
	r.ObserveLoad(stats, StoreHit)

	assert.InDelta(t, 1, testutil.ToFloat64(r.loads.WithLabelValues(CacheMiss)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.loads.WithLabelValues(MemoryHit)), 0)
	assert.InDelta(t, 7, testutil.ToFloat64(r.rows.WithLabelValues("loaded")), 0, "hits do not add rows")
	assert.InDelta(t, 3, testutil.ToFloat64(r.rows.WithLabelValues("bad_rating")), 0)
}

func TestObserveReport(t *testing.T) {
	r := NewRecorder()
	r.ObserveReport(schema.PartnerKind, 20*time.Millisecond, nil)
	r.ObserveReport(schema.PartnerKind, time.Millisecond, errors.New("boom"))

	assert.InDelta(t, 1, testutil.ToFloat64(r.reports.WithLabelValues("partner", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.reports.WithLabelValues("partner", "error")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(r.last))
	assert.Greater(t, testutil.ToFloat64(r.last.WithLabelValues("partner")), 0.0)
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveReport(schema.OverviewReport, 5*time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "debrief.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `debrief_reports_total{kind="overview",result="ok"} 1`), text)
	assert.Contains(t, text, "debrief_report_duration_seconds_bucket")
}

func TestWriteTextfileBadPath(t *testing.T) {
	err := NewRecorder().WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.Error(t, err)
}
