package parquet

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/cohort/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll[T any](t *testing.T, input io.ReaderAt) []T {
	t.Helper()
	reader := parquet.NewGenericReader[T](input)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		require.NoError(t, err)
	}
	return rows[:n]
}

func readFile[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()
	return readAll[T](t, file)
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		schema  *parquet.Schema
		columns []string
	}{
		{"Run", parquet.SchemaOf(new(Run)), []string{
			"run_id", "run_uuid", "start_time", "end_time", "run_duration_ms",
			"total_people", "total_pairs", "total_records", "config_params",
		}},
		{"StoredMetric", parquet.SchemaOf(new(StoredMetric)), []string{
			"run_id", "metric_key", "metric_type", "methodology", "instance_count", "total_value", "metric_value",
		}},
		{"Metric", parquet.SchemaOf(new(Metric)), []string{
			"metric_type", "methodology", "gender", "person_id", "follow_up_period",
			"start_date", "return_type", "count", "sum", "value",
		}},
		{"Pair", parquet.SchemaOf(new(Pair)), []string{"metric_key", "metric_type", "methodology", "value"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, colName := range tt.columns {
				_, ok := tt.schema.Lookup(colName)
				assert.True(t, ok, "Column %s should exist in schema", colName)
			}
		})
	}
}

func TestWriteRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")

	now := time.Now()
	endTime := now.Add(2 * time.Second)
	durationMs := int32(2000)
	config := `{"workers":4}`
	records := []schema.RunRecord{
		{RunID: 1, RunUUID: "a", StartTime: now, EndTime: &endTime, RunDurationMs: &durationMs,
			TotalPeople: 10, TotalPairs: 500, TotalRecords: 42, ConfigParams: &config},
		{RunID: 2, RunUUID: "b", StartTime: now}, // never finished
	}

	require.NoError(t, WriteRunsParquet(ConvertRunRecords(records), outputPath))

	got := readFile[Run](t, outputPath)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].RunID)
	assert.Equal(t, "a", got[0].RunUUID)
	assert.Equal(t, int64(500), got[0].TotalPairs)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, endTime, *got[0].EndTime, time.Nanosecond)
	require.NotNil(t, got[0].ConfigParams)
	assert.Equal(t, config, *got[0].ConfigParams)

	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].RunDurationMs)
	assert.Nil(t, got[1].ConfigParams)
}

func TestWriteStoredMetricsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "metrics.parquet")
	half := 0.5
	rows := []schema.MetricRow{
		{RunID: 1, MetricKey: `{"metric_type":"RATE"}`, MetricType: "RATE", Methodology: "EVENT", InstanceCount: 4, TotalValue: 2, MetricValue: &half},
		{RunID: 1, MetricKey: `{"metric_type":"LIBERTY"}`, MetricType: "LIBERTY", Methodology: "EVENT"},
	}

	require.NoError(t, WriteStoredMetricsParquet(ConvertMetricRows(rows), outputPath))

	got := readFile[StoredMetric](t, outputPath)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].MetricValue)
	assert.Equal(t, 0.5, *got[0].MetricValue)
	assert.Nil(t, got[1].MetricValue)
}

func TestWriteMetrics(t *testing.T) {
	records := []schema.MetricRecord{
		{
			Key: schema.MetricKey{
				Characteristics: schema.Characteristics{Gender: schema.Female, PersonID: 7},
				Window:          schema.Window{FollowUpPeriod: 2},
				Methodology:     schema.PersonMethodology,
				MetricType:      schema.RateMetric,
			},
			Count: 3, Sum: 1, Value: 1.0 / 3,
		},
		{
			Key: schema.MetricKey{
				Window:      schema.Window{StartDate: "2010-01-01", EndDate: "2010-12-31"},
				Methodology: schema.EventMethodology,
				MetricType:  schema.LibertyMetric,
			},
			Value: math.NaN(),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMetrics(&buf, records))

	got := readAll[Metric](t, bytes.NewReader(buf.Bytes()))
	require.Len(t, got, 2)

	assert.Equal(t, "RATE", got[0].MetricType)
	require.NotNil(t, got[0].Gender)
	assert.Equal(t, "FEMALE", *got[0].Gender)
	require.NotNil(t, got[0].PersonID)
	assert.Equal(t, int64(7), *got[0].PersonID)
	require.NotNil(t, got[0].FollowUpPeriod)
	assert.Equal(t, int32(2), *got[0].FollowUpPeriod)
	assert.Nil(t, got[0].StartDate)
	require.NotNil(t, got[0].Value)
	assert.InDelta(t, 1.0/3, *got[0].Value, 1e-12)

	assert.Nil(t, got[1].Gender)
	assert.Nil(t, got[1].FollowUpPeriod)
	require.NotNil(t, got[1].EndDate)
	assert.Equal(t, "2010-12-31", *got[1].EndDate)
	assert.Nil(t, got[1].Value, "NaN is stored as null")
}

func TestPairWriter(t *testing.T) {
	var buf bytes.Buffer
	pw := NewPairWriter(&buf)

	key := schema.MetricKey{Window: schema.Window{FollowUpPeriod: 1}, Methodology: schema.EventMethodology, MetricType: schema.RateMetric}
	require.NoError(t, pw.Write([]schema.MetricPair{{Key: key, Value: 1}, {Key: key, Value: 0}}))
	require.NoError(t, pw.Write([]schema.MetricPair{{Key: key, Value: 1}}))
	require.NoError(t, pw.Close())

	got := readAll[Pair](t, bytes.NewReader(buf.Bytes()))
	require.Len(t, got, 3)
	assert.Equal(t, key.Encode(), got[0].MetricKey)
	assert.Equal(t, []float64{1, 0, 1}, []float64{got[0].Value, got[1].Value, got[2].Value})
}

func TestWriteParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteRunsParquet([]Run{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "Parquet file with no rows still has a footer")
	assert.Empty(t, readFile[Run](t, outputPath))
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	err := WriteStoredMetricsParquet(nil, "/nonexistent/directory/out.parquet")
	assert.Error(t, err)
}
