package cmd

import (
	"github.com/huangsam/cohort/core"
	"github.com/huangsam/cohort/internal/contract"
	"github.com/spf13/cobra"
)

// calculateCmd runs the full calculation over one or more input files.
var calculateCmd = &cobra.Command{
	Use:   "calculate <people-file>...",
	Short: "Calculate recidivism metrics for every characteristic slice.",
	Long: `Load person histories, score every release event, and reduce the pairs into metric records.

Each person contributes to three metric types:
- RATE: share of releases followed by a reincarceration within N years
- COUNT: reincarcerations inside trailing monthly windows
- LIBERTY: average days at liberty before a return

Both the PERSON and EVENT methodologies are computed unless narrowed with --methodologies.
Characteristic dimensions can be narrowed with --include and --exclude.

Input files may be JSON arrays, JSON Lines (.jsonl) or YAML.

Examples:
  # Calculate everything as a table
  cohort calculate people.json

  # Only gender and race slices, evaluated at a fixed date
  cohort calculate people.json --include gender,race --evaluation-date 2020-01-01

  # Export records for a BI tool
  cohort calculate people.json --output parquet --output-file metrics.parquet`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCalculate(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run calculation", err)
		}
	},
}

// combinationsCmd streams the raw metric pairs.
var combinationsCmd = &cobra.Command{
	Use:   "combinations <people-file>...",
	Short: "Stream the raw metric pairs of every person without reducing them.",
	Long: `Emit one row per (metric key, value) pair produced for each person.

This is the input the calculate command reduces. Use it to audit how a single
person contributes to the final metrics, or to reduce the pairs in another tool.

Examples:
  # Inspect the pairs of a small file
  cohort combinations person.json --limit 50

  # Stream JSON Lines for another reducer
  cohort combinations people.jsonl --output json > pairs.jsonl`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCombinations(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot stream combinations", err)
		}
	},
}

// keyspaceCmd lists the declared key space.
var keyspaceCmd = &cobra.Command{
	Use:   "keyspace",
	Short: "List the metric keys declared for one methodology and metric type.",
	Long: `Print the unsliced key space: every window and return template a metric type reports on.

No input is read.

Examples:
  cohort keyspace --methodology EVENT --metric-type COUNT
  cohort keyspace --metric-type RATE --follow-up-periods 1,3,5 --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteKeySpace(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot list key space", err)
		}
	},
}

// metricsCmd displays the definitions of every metric type.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display the definitions of every metric type and accumulator",
	Long: `Show what each metric type measures, which window fields it uses and
which named fields its accumulator reports.

No input is read - this is purely informational.

Examples:
  cohort metrics
  cohort metrics --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
