// Package parquet provides data structures and functions for exporting debrief
// responses, report rows and run history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/debrief/schema"
	"github.com/parquet-go/parquet-go"
)

// ReportRun represents a single report run with metadata.
// This struct maps to the debrief_report_runs database table.
type ReportRun struct {
	// RunID is the UUID of the run, shared with the report it produced
	RunID string `parquet:"run_id,snappy"`

	// Kind is the report kind (overview, partner, comparison, ...)
	Kind string `parquet:"kind,snappy"`

	// Source is the survey export the run read
	Source string `parquet:"source,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	// TotalResponses is the number of responses the report covered
	TotalResponses int32 `parquet:"total_responses,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// PartnerSnapshot represents the metrics of one partner, either recorded
// during a run or computed for a report.
// This struct maps to the debrief_partner_snapshots database table.
type PartnerSnapshot struct {
	RunID        string    `parquet:"run_id,snappy"`
	Partner      string    `parquet:"partner,snappy"`
	RecordedAt   time.Time `parquet:"recorded_at,snappy"`
	Responses    int32     `parquet:"responses,snappy"`
	Sessions     int32     `parquet:"sessions,snappy"`
	AvgRelevance *float64  `parquet:"avg_relevance,optional,snappy"`
	AvgSupport   *float64  `parquet:"avg_support,optional,snappy"`
	AvgUrgency   *float64  `parquet:"avg_urgency,optional,snappy"`
	TopPressure  *string   `parquet:"top_pressure,optional,snappy"`
	TopChallenge *string   `parquet:"top_challenge,optional,snappy"`
	TopObstacle  *string   `parquet:"top_obstacle,optional,snappy"`
}

// Response is one normalized survey response. Ratings are kept only when valid.
type Response struct {
	Row         int32      `parquet:"row,snappy"`
	Partner     string     `parquet:"partner,snappy"`
	SessionDate *time.Time `parquet:"session_date,optional,snappy"`
	Timestamp   *time.Time `parquet:"timestamp,optional,snappy"`
	CoachID     *string    `parquet:"coach_id,optional,snappy"`
	Pressure    *string    `parquet:"pressure,optional,snappy"`
	Challenge   *string    `parquet:"challenge,optional,snappy"`
	Obstacle    *string    `parquet:"obstacle,optional,snappy"`
	Takeaway    *string    `parquet:"takeaway,optional,snappy"`
	Relevance   *int32     `parquet:"relevance,optional,snappy"`
	Support     *int32     `parquet:"support,optional,snappy"`
	Urgency     *int32     `parquet:"urgency,optional,snappy"`
	Unshared    *string    `parquet:"unshared,optional,snappy"`
	Barrier     *string    `parquet:"barrier,optional,snappy"`
}

// Theme is one ranked theme value.
type Theme struct {
	Partner   string `parquet:"partner,snappy"` // empty for every partner
	Dimension string `parquet:"dimension,snappy"`
	Rank      int32  `parquet:"rank,snappy"`
	Value     string `parquet:"value,snappy"`
	Count     int32  `parquet:"count,snappy"`
}

// TrendPoint is one period of a rating trend.
type TrendPoint struct {
	Partner   string    `parquet:"partner,snappy"` // empty for every partner
	Field     string    `parquet:"field,snappy"`
	Period    string    `parquet:"period,snappy"`
	Start     time.Time `parquet:"start,snappy"`
	Mean      float64   `parquet:"mean,snappy"`
	Valid     int32     `parquet:"valid,snappy"`
	Responses int32     `parquet:"responses,snappy"`
}

// Write encodes rows as a Parquet file on w. The schema is derived from the
// struct tags of T.
func Write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes rows to a Parquet file at outputPath.
func WriteFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteReportRunsParquet writes a slice of ReportRun structs to a Parquet file.
func WriteReportRunsParquet(data []ReportRun, outputPath string) error {
	return WriteFile(data, outputPath)
}

// WritePartnerSnapshotsParquet writes a slice of PartnerSnapshot structs to a Parquet file.
func WritePartnerSnapshotsParquet(data []PartnerSnapshot, outputPath string) error {
	return WriteFile(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord to ReportRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []ReportRun {
	result := make([]ReportRun, len(records))
	for i, record := range records {
		result[i] = ReportRun{
			RunID:          record.RunID,
			Kind:           record.Kind,
			Source:         record.Source,
			StartTime:      record.StartTime,
			EndTime:        record.EndTime,
			RunDurationMs:  record.RunDurationMs,
			TotalResponses: int32(record.TotalResponses),
			ConfigParams:   record.ConfigParams,
		}
	}
	return result
}

// ConvertSnapshotRecords converts schema.SnapshotRecord to PartnerSnapshot for Parquet export.
func ConvertSnapshotRecords(records []schema.SnapshotRecord) []PartnerSnapshot {
	result := make([]PartnerSnapshot, len(records))
	for i, record := range records {
		result[i] = PartnerSnapshot{
			RunID:        record.RunID,
			Partner:      record.Partner,
			RecordedAt:   record.RecordedAt,
			Responses:    int32(record.Responses),
			Sessions:     int32(record.Sessions),
			AvgRelevance: record.AvgRelevance,
			AvgSupport:   record.AvgSupport,
			AvgUrgency:   record.AvgUrgency,
			TopPressure:  record.TopPressure,
			TopChallenge: record.TopChallenge,
			TopObstacle:  record.TopObstacle,
		}
	}
	return result
}

// ConvertSnapshots converts metric snapshots to PartnerSnapshot rows recorded at the given time.
func ConvertSnapshots(snaps []schema.MetricSnapshot, at time.Time) []PartnerSnapshot {
	result := make([]PartnerSnapshot, 0, len(snaps))
	for _, snap := range snaps {
		result = append(result, PartnerSnapshot{
			Partner:      snap.Partner,
			RecordedAt:   at,
			Responses:    int32(snap.Responses),
			Sessions:     int32(snap.Sessions),
			AvgRelevance: snap.Rating(schema.RelevanceRating).Mean,
			AvgSupport:   snap.Rating(schema.SupportRating).Mean,
			AvgUrgency:   snap.Rating(schema.UrgencyRating).Mean,
		})
	}
	return result
}

// ConvertResponses converts normalized responses to Parquet rows.
func ConvertResponses(responses []schema.Response) []Response {
	result := make([]Response, len(responses))
	for i, r := range responses {
		result[i] = Response{
			Row:         int32(r.Row),
			Partner:     r.Partner,
			SessionDate: optionalTime(r.SessionDate),
			Timestamp:   optionalTime(r.Timestamp),
			CoachID:     optionalText(r.CoachID),
			Pressure:    optionalText(r.Pressure),
			Challenge:   optionalText(r.Challenge),
			Obstacle:    optionalText(r.Obstacle),
			Takeaway:    optionalText(r.Takeaway),
			Relevance:   optionalRating(r, schema.RelevanceRating),
			Support:     optionalRating(r, schema.SupportRating),
			Urgency:     optionalRating(r, schema.UrgencyRating),
			Unshared:    optionalText(r.Unshared),
			Barrier:     optionalText(r.Barrier),
		}
	}
	return result
}

// ConvertThemes flattens theme blocks into ranked rows.
func ConvertThemes(partner string, blocks []schema.ThemeBlock) []Theme {
	var result []Theme
	for _, block := range blocks {
		for i, item := range block.Items {
			result = append(result, Theme{
				Partner:   partner,
				Dimension: string(block.Dimension),
				Rank:      int32(i + 1),
				Value:     item.Value,
				Count:     int32(item.Count),
			})
		}
	}
	return result
}

// ConvertTrends flattens trend series into one row per bucket.
func ConvertTrends(series []schema.TrendSeries) []TrendPoint {
	var result []TrendPoint
	for _, s := range series {
		for _, b := range s.Buckets {
			result = append(result, TrendPoint{
				Partner:   s.Partner,
				Field:     string(s.Field),
				Period:    b.Period,
				Start:     b.Start,
				Mean:      b.Mean,
				Valid:     int32(b.Valid),
				Responses: int32(b.Responses),
			})
		}
	}
	return result
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func optionalText(s string) *string {
	if schema.IsBlank(s) {
		return nil
	}
	return &s
}

func optionalRating(r schema.Response, field schema.RatingField) *int32 {
	v, ok := r.Rating(field)
	if !ok {
		return nil
	}
	n := int32(v)
	return &n
}
