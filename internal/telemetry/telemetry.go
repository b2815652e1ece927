// Package telemetry records batch metrics for loads and report runs on a
// Prometheus registry, and writes them in the node exporter textfile format.
package telemetry

import (
	"time"

	"github.com/huangsam/debrief/schema"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "debrief"

// Table load outcomes.
const (
	MemoryHit = "memory"
	StoreHit  = "store"
	CacheMiss = "miss"
)

// Recorder holds the collectors of one process.
type Recorder struct {
	registry *prometheus.Registry
	loads    *prometheus.CounterVec
	rows     *prometheus.CounterVec
	reports  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	last     *prometheus.GaugeVec
}

// Default is the process-wide recorder.
var Default = NewRecorder()

// NewRecorder creates a recorder on its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_loads_total",
			Help:      "Survey table loads by cache outcome.",
		}, []string{"outcome"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Source rows seen by the loader, by what happened to them.",
		}, []string{"status"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Reports assembled by kind and result.",
		}, []string{"kind", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Time spent assembling a report.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"kind"}),
		last: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_report_timestamp_seconds",
			Help:      "Unix time of the last successful report by kind.",
		}, []string{"kind"}),
	}
	r.registry.MustRegister(r.loads, r.rows, r.reports, r.duration, r.last)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveLoad counts one table load. Row counters only move when the source
// was actually parsed, so cache hits do not double count.
func (r *Recorder) ObserveLoad(stats schema.LoadStats, outcome string) {
	r.loads.WithLabelValues(outcome).Inc()
	if outcome != CacheMiss {
		return
	}
	r.rows.WithLabelValues("loaded").Add(float64(stats.Loaded))
	r.rows.WithLabelValues("blank").Add(float64(stats.BlankRows))
	r.rows.WithLabelValues("skipped").Add(float64(stats.SkippedRows))
	r.rows.WithLabelValues("bad_date").Add(float64(stats.BadDates))
	r.rows.WithLabelValues("bad_rating").Add(float64(stats.BadRatings))
}

// ObserveReport records the outcome and duration of one report run.
func (r *Recorder) ObserveReport(kind schema.ReportKind, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.reports.WithLabelValues(string(kind), result).Inc()
	r.duration.WithLabelValues(string(kind)).Observe(d.Seconds())
	if err == nil {
		r.last.WithLabelValues(string(kind)).SetToCurrentTime()
	}
}

// WriteTextfile writes every metric to path for the node exporter textfile
// collector. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
