package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tptload [project_dir]",
	Short: "Bulk-load CSV files into Teradata with TPT",
	Long: `tptload discovers the data files of a project, resolves each one to a
target table, renders Teradata Parallel Transporter job scripts for it and
runs tbuild for every stage (drop, create, load by default).

A failed stage skips the remaining stages of that table only; the run
continues with the next file and ends with a summary of every table.

Running tptload with no subcommand is the same as 'tptload run'.

Exit Codes:
  0  - Run completed (individual table failures are reported in the summary)
  1  - General error or run interrupted
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid or missing configuration, templates or data directory`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeDirectories,
	RunE:              runLoad,
	SilenceUsage:      true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for tptload")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to tptload.yaml (default: <project_dir>/tptload.yaml)")
	rootCmd.PersistentFlags().StringSlice("env-file", nil,
		"Load credentials from .env files (can be specified multiple times)\n"+
			"Earlier files win; already-set environment variables win over all files")

	registerRunFlags(rootCmd)
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
