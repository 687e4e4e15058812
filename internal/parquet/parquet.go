// Package parquet provides data structures and functions for exporting cohort
// metric data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/huangsam/cohort/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single tracked calculation run.
// This struct maps to the cohort_runs database table.
type Run struct {
	RunID   int64  `parquet:"run_id,snappy"`
	RunUUID string `parquet:"run_uuid,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is nil for runs that never finished
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int32     `parquet:"run_duration_ms,optional,snappy"`

	TotalPeople  int32 `parquet:"total_people,snappy"`
	TotalPairs   int64 `parquet:"total_pairs,snappy"`
	TotalRecords int32 `parquet:"total_records,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// StoredMetric represents one stored metric record of a run.
// This struct maps to the cohort_metric_records database table.
type StoredMetric struct {
	RunID         int64    `parquet:"run_id,snappy"`
	MetricKey     string   `parquet:"metric_key,snappy"`
	MetricType    string   `parquet:"metric_type,snappy"`
	Methodology   string   `parquet:"methodology,snappy"`
	InstanceCount int64    `parquet:"instance_count,snappy"`
	TotalValue    float64  `parquet:"total_value,snappy"`
	MetricValue   *float64 `parquet:"metric_value,optional,snappy"`
}

// Metric is a calculated metric record with its key flattened into columns.
// Absent dimensions are null.
type Metric struct {
	MetricType          string   `parquet:"metric_type,snappy"`
	Methodology         string   `parquet:"methodology,snappy"`
	AgeBucket           *string  `parquet:"age_bucket,optional,snappy"`
	Gender              *string  `parquet:"gender,optional,snappy"`
	Race                *string  `parquet:"race,optional,snappy"`
	Ethnicity           *string  `parquet:"ethnicity,optional,snappy"`
	ReleaseFacility     *string  `parquet:"release_facility,optional,snappy"`
	StayLengthBucket    *string  `parquet:"stay_length_bucket,optional,snappy"`
	CountyOfResidence   *string  `parquet:"county_of_residence,optional,snappy"`
	PersonID            *int64   `parquet:"person_id,optional,snappy"`
	FollowUpPeriod      *int32   `parquet:"follow_up_period,optional,snappy"`
	Year                *int32   `parquet:"year,optional,snappy"`
	Month               *int32   `parquet:"month,optional,snappy"`
	MetricPeriodMonths  *int32   `parquet:"metric_period_months,optional,snappy"`
	StartDate           *string  `parquet:"start_date,optional,snappy"`
	EndDate             *string  `parquet:"end_date,optional,snappy"`
	ReturnType          *string  `parquet:"return_type,optional,snappy"`
	FromSupervisionType *string  `parquet:"from_supervision_type,optional,snappy"`
	SourceViolationType *string  `parquet:"source_violation_type,optional,snappy"`
	Count               int64    `parquet:"count,snappy"`
	Sum                 float64  `parquet:"sum,snappy"`
	Value               *float64 `parquet:"value,optional,snappy"`
}

// Pair is one raw metric pair, keyed by its encoded metric key.
type Pair struct {
	MetricKey   string  `parquet:"metric_key,snappy"`
	MetricType  string  `parquet:"metric_type,snappy"`
	Methodology string  `parquet:"methodology,snappy"`
	Value       float64 `parquet:"value,snappy"`
}

// writeRows writes every row to w as one Parquet file.
func writeRows[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// writeRowsFile creates outputPath and writes every row to it.
func writeRowsFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return writeRows(file, rows)
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeRowsFile(data, outputPath)
}

// WriteStoredMetricsParquet writes a slice of StoredMetric structs to a Parquet file.
func WriteStoredMetricsParquet(data []StoredMetric, outputPath string) error {
	return writeRowsFile(data, outputPath)
}

// WriteMetrics writes calculated metric records to w.
func WriteMetrics(w io.Writer, records []schema.MetricRecord) error {
	return writeRows(w, ConvertMetricRecords(records))
}

// PairWriter streams metric pairs into a single Parquet file.
type PairWriter struct {
	writer *parquet.GenericWriter[Pair]
	buf    []Pair
}

// NewPairWriter starts a Parquet pair stream on w. Close must be called to finish the file.
func NewPairWriter(w io.Writer) *PairWriter {
	return &PairWriter{writer: parquet.NewGenericWriter[Pair](w)}
}

// Write appends one batch of pairs.
func (pw *PairWriter) Write(pairs []schema.MetricPair) error {
	pw.buf = pw.buf[:0]
	for _, p := range pairs {
		pw.buf = append(pw.buf, Pair{
			MetricKey:   p.Key.Encode(),
			MetricType:  string(p.Key.MetricType),
			Methodology: string(p.Key.Methodology),
			Value:       p.Value,
		})
	}
	if _, err := pw.writer.Write(pw.buf); err != nil {
		return fmt.Errorf("failed to write pairs to parquet file: %w", err)
	}
	return nil
}

// Close flushes the footer.
func (pw *PairWriter) Close() error {
	return pw.writer.Close()
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			RunUUID:       record.RunUUID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalPeople:   record.TotalPeople,
			TotalPairs:    record.TotalPairs,
			TotalRecords:  record.TotalRecords,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertMetricRows converts schema.MetricRow to StoredMetric for Parquet export.
func ConvertMetricRows(rows []schema.MetricRow) []StoredMetric {
	result := make([]StoredMetric, len(rows))
	for i, row := range rows {
		result[i] = StoredMetric{
			RunID:         row.RunID,
			MetricKey:     row.MetricKey,
			MetricType:    row.MetricType,
			Methodology:   row.Methodology,
			InstanceCount: row.InstanceCount,
			TotalValue:    row.TotalValue,
			MetricValue:   row.MetricValue,
		}
	}
	return result
}

// ConvertMetricRecords flattens calculated records for Parquet output.
func ConvertMetricRecords(records []schema.MetricRecord) []Metric {
	result := make([]Metric, len(records))
	for i, r := range records {
		k := r.Key
		m := Metric{
			MetricType:          string(k.MetricType),
			Methodology:         string(k.Methodology),
			AgeBucket:           optString(k.AgeBucket),
			Gender:              optString(string(k.Gender)),
			Race:                optString(string(k.Race)),
			Ethnicity:           optString(string(k.Ethnicity)),
			ReleaseFacility:     optString(k.ReleaseFacility),
			StayLengthBucket:    optString(k.StayLengthBucket),
			CountyOfResidence:   optString(k.CountyOfResidence),
			FollowUpPeriod:      optInt(k.FollowUpPeriod),
			Year:                optInt(k.Year),
			Month:               optInt(k.Month),
			MetricPeriodMonths:  optInt(k.MetricPeriodMonths),
			StartDate:           optString(k.StartDate),
			EndDate:             optString(k.EndDate),
			ReturnType:          optString(string(k.ReturnType)),
			FromSupervisionType: optString(string(k.FromSupervisionType)),
			SourceViolationType: optString(string(k.SourceViolationType)),
			Count:               r.Count,
			Sum:                 r.Sum,
		}
		if k.PersonID != 0 {
			id := k.PersonID
			m.PersonID = &id
		}
		if !math.IsNaN(r.Value) {
			v := r.Value
			m.Value = &v
		}
		result[i] = m
	}
	return result
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optInt(v int) *int32 {
	if v == 0 {
		return nil
	}
	n := int32(v)
	return &n
}
