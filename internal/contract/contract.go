// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/cohort/schema"
)

// StoreManager defines the interface for reaching the run store.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking calculation runs and their metric records.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, runUUID string, configParams map[string]any) (int64, error)

	// RecordMetrics stores the final metric records of a run
	RecordMetrics(runID int64, records []schema.MetricRecord) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totals schema.RunTotals) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every tracked run ordered by ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllMetricRows returns every stored metric record ordered by run and key
	GetAllMetricRows() ([]schema.MetricRow, error)

	// Close closes the underlying connection
	Close() error
}
