package cmd

import (
	"fmt"

	"github.com/huangsam/cohort/internal/contract"
	"github.com/huangsam/cohort/internal/iocache"
	"github.com/huangsam/cohort/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsBackend reads and validates the run tracking backend without the full shared setup.
func runsBackend() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(viper.GetString("run-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("run-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads the minimal configuration needed by the runs subcommands and opens the store.
func runsSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runsBackend()
	if err != nil {
		return err
	}
	if err := iocache.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run tracking: %w", err)
	}
	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsMigrateSetup is like runsSetup but never opens the store,
// so migrations can run on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runsBackend()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = iocache.GetRunDBFilePath()
	}
	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	return nil
}

// runsCmd focuses on tracked calculation runs.
//
// Note: runs subcommands use minimal initialization instead of sharedSetup.
// No input files are read.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage tracked calculation runs and exports",
	Long: `Manage the history of calculation runs.

When enabled, every calculate invocation stores:
- Run metadata (timestamp, configuration, duration, totals)
- Every metric record with its encoded key

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations`,
}

// runsClearCmd clears the tracked runs.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all tracked runs and metric records",
	Long: `Delete all stored runs and their metric records.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  cohort runs export --output-file backup
  cohort runs clear`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearRuns(cfg.RunBackend, cfg.RunDBConnect, cfg.RunDBConnect); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsStatusCmd shows run tracking status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show the backend, connection status, run counts, timestamps and table sizes.

Examples:
  cohort runs status
  cohort runs status --run-backend postgresql --run-db-connect "host=localhost dbname=cohort"`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Failed to get run status", fmt.Errorf("run tracking is not initialized"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(status)
	},
}

// runsExportCmd exports tracked data to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tracked runs to Parquet for BI tools and analytics",
	Long: `Export all stored runs and metric records to Parquet.

Two files are written next to --output-file:
- <output-file>.runs.parquet
- <output-file>.metric_records.parquet

Examples:
  cohort runs export --output-file cohort-data
  duckdb -c "SELECT * FROM read_parquet('cohort-data.runs.parquet') LIMIT 10"`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunExport(iocache.Manager, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  cohort runs migrate
  cohort runs migrate --target-version 1
  cohort runs migrate --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunBackend, cfg.RunDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
