package schema

import "time"

// RunStatus represents the status of the run store.
type RunStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunUUID   string           `json:"last_run_uuid"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalPeople   int64            `json:"total_people"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunTotals summarizes a completed calculation run.
type RunTotals struct {
	People  int `json:"people"`
	Pairs   int `json:"pairs"`
	Records int `json:"records"`
}

// RunRecord represents a row from the cohort_runs table.
type RunRecord struct {
	RunID         int64
	RunUUID       string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalPeople   int32
	TotalPairs    int64
	TotalRecords  int32
	ConfigParams  *string
}

// MetricRow represents a row from the cohort_metric_records table.
type MetricRow struct {
	RunID         int64
	MetricKey     string
	MetricType    string
	Methodology   string
	InstanceCount int64
	TotalValue    float64
	MetricValue   *float64 // nil when the metric is undefined
}

// CalculationOutput is the result of a full calculation over many people.
type CalculationOutput struct {
	Records []MetricRecord
	Totals  RunTotals
}
