package cmd

import (
	"runtime"
	"strings"

	"github.com/huangsam/cohort/schema"
	"github.com/spf13/cobra"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cohort.",
	Long: `Display version information including build details and the supported metric types.

Useful for reporting bugs with version details.`,
	Run: func(cmd *cobra.Command, _ []string) {
		types := make([]string, len(schema.AllMetricTypes))
		for i, t := range schema.AllMetricTypes {
			types[i] = string(t)
		}
		cmd.Printf("cohort CLI\n")
		cmd.Printf("  Version: %s\n", version)
		cmd.Printf("  Commit:  %s\n", commit)
		cmd.Printf("  Built:   %s\n", date)
		cmd.Printf("  Runtime: %s\n", runtime.Version())
		cmd.Printf("  Metrics: %s\n", strings.Join(types, ", "))
	},
}
