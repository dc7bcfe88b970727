package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mortie23/tptload/internal/history"
	"github.com/mortie23/tptload/internal/report"
)

var historyCmd = &cobra.Command{
	Use:   "history [run_id]",
	Short: "List recorded runs, or the tables of one run",
	Long: `History reads the run history database of the project in the current
directory (or --project) and lists the most recent runs. With a run ID it
lists every table of that run with its status and row counts.

Examples:
  tptload history
  tptload history --limit 5 --json
  tptload history 3f1c2a9e-...`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeRunIDs,
	RunE:              runHistory,
}

type historyFlagValues struct {
	project string
	limit   int
	json    bool
}

var historyFlags historyFlagValues

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVarP(&historyFlags.project, "project", "p", ".", "Project directory")
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "Maximum number of runs to list")
	historyCmd.Flags().BoolVar(&historyFlags.json, "json", false, "Print as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadProjectConfig(cmd, historyFlags.project)
	if err != nil {
		return fmt.Errorf("failed to load project config: %w", err)
	}

	store, err := history.Open(cfg.Path(cfg.History.Path))
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		run, err := store.Run(ctx, args[0])
		if err != nil {
			return err
		}
		loads, err := store.TableLoads(ctx, run.ID)
		if err != nil {
			return err
		}
		if historyFlags.json {
			return writeJSON(out, map[string]any{"run": run, "tables": loads})
		}
		report.RenderHistory(out, []history.RunRecord{run})
		report.RenderTableLoads(out, loads, colorFor(out))
		return nil
	}

	runs, err := store.RecentRuns(ctx, historyFlags.limit)
	if err != nil {
		return err
	}
	if historyFlags.json {
		if runs == nil {
			runs = []history.RunRecord{}
		}
		return writeJSON(out, runs)
	}
	report.RenderHistory(out, runs)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
