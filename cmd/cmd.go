// Package cmd defines the command-line interface for cohort.
package cmd

import (
	"github.com/huangsam/cohort/internal/contract"
	"github.com/huangsam/cohort/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(combinationsCmd)
	rootCmd.AddCommand(keyspaceCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("combination-mode", string(contract.DefaultCombinationMode), "Characteristic expansion: tuple or powerset")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("evaluation-date", "", "Date metrics are evaluated at, YYYY-MM-DD (default today)")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated characteristic dimensions to skip")
	rootCmd.PersistentFlags().String("follow-up-periods", "", "Comma-separated RATE follow-up periods in years (default 1..10)")
	rootCmd.PersistentFlags().String("include", "", "Comma-separated characteristic dimensions to compute (default all)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultLimit, "Number of rows to display in tables (0 = all)")
	rootCmd.PersistentFlags().String("methodologies", "", "Comma-separated methodologies: PERSON, EVENT (default both)")
	rootCmd.PersistentFlags().String("metric-period-months", "", "Comma-separated COUNT window sizes in months (default 1,3,6,12,36)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("person-level", "", "Emit person-level variants of PERSON metrics (yes/no, default yes)")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for metric values")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("run-backend", string(schema.SQLiteBackend), "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for mysql/postgresql, or the SQLite file path")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of keyspaceCmd to Viper
	keyspaceCmd.Flags().String("methodology", string(schema.PersonMethodology), "Methodology: PERSON or EVENT")
	keyspaceCmd.Flags().String("metric-type", string(schema.RateMetric), "Metric type: RATE or COUNT or LIBERTY")
	if err := viper.BindPFlags(keyspaceCmd.Flags()); err != nil {
		contract.LogFatal("Error binding keyspace flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
