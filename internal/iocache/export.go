package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/cohort/internal/contract"
	"github.com/huangsam/cohort/internal/parquet"
)

// ExecuteRunExport exports every tracked run and its metric records to two Parquet files
// named after outputFile.
func ExecuteRunExport(mgr contract.StoreManager, outputFile string) error {
	if outputFile == "" {
		return contract.ErrOutputFileRequired
	}

	store := mgr.GetRunStore()
	if store == nil {
		return errors.New("run tracking is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total metric records: %d\n", status.TableSizes[metricRecordsTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	rows, err := store.GetAllMetricRows()
	if err != nil {
		return fmt.Errorf("failed to retrieve metric records: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	metricsFile := outputFile + ".metric_records.parquet"
	parquetMetrics := parquet.ConvertMetricRows(rows)
	if err := parquet.WriteStoredMetricsParquet(parquetMetrics, metricsFile); err != nil {
		return fmt.Errorf("failed to write metric records: %w", err)
	}
	fmt.Printf("Exported %d metric records to: %s\n", len(parquetMetrics), metricsFile)

	return nil
}
