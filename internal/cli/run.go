package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mortie23/tptload/internal/history"
	"github.com/mortie23/tptload/internal/report"
	"github.com/mortie23/tptload/pkg/tptload"
)

var runCmd = &cobra.Command{
	Use:   "run [project_dir]",
	Short: "Load every data file of a project",
	Long: `Run discovers the data files of the project (default: current directory),
renders the TPT scripts for each table and runs tbuild once per stage.

For each table:
1. Render <table>.vars and <table>_<stage>.script into the scripts directory
2. Run each stage in order (default: drop, create, load)
3. Stop that table at the first failing stage and move on to the next file
4. Extract "rows sent" and "rows applied" from the load output

Credentials come from the environment, then .env files, then the
connection section of tptload.yaml:
  DDL_USERNAME, DDL_PASSWORD, TARGET_USERNAME, TARGET_PASSWORD,
  DDL_HOST, TARGET_HOST, DDL_LOGON_MECH, TARGET_LOGON_MECH, WORKING_DATABASE

Examples:
  # Load the project in the current directory
  tptload run

  # Load another project with credentials from a specific env file
  tptload run ./nrl --env-file prod.env

  # Machine-readable summary, without recording history
  tptload run ./nrl --json --no-history`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeDirectories,
	RunE:              runLoad,
}

type runFlagValues struct {
	json      bool
	noHistory bool
}

var runFlags runFlagValues

func init() {
	rootCmd.AddCommand(runCmd)
	registerRunFlags(runCmd)
}

func registerRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&runFlags.json, "json", false, "Print the run summary as JSON")
	cmd.Flags().BoolVar(&runFlags.noHistory, "no-history", false, "Do not record this run in the history database")
}

func projectDirArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func runLoad(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd, projectDirArg(args))
	if err != nil {
		return err
	}
	defer p.Close()

	svc, err := p.newLoadService()
	if err != nil {
		return err
	}
	units, skipped, err := p.discover()
	if err != nil {
		return err
	}
	if len(units) == 0 {
		p.logger.Warn("No data files to load")
	}

	// Setup context with signal handling for graceful shutdown
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, stopping after the current table...")
			cancel()
		case <-ctx.Done():
		}
	}()

	summary, runErr := svc.Run(ctx, units, p.creds)
	summary.Skipped = skipped

	if p.fileLog != nil {
		p.fileLog.Info("Run %s: %s", summary.RunID, summary.String())
	}
	recordHistory(p, summary)

	out := cmd.OutOrStdout()
	if runFlags.json {
		if err := report.RenderJSON(out, summary); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	} else {
		report.RenderSummary(out, summary, colorFor(out))
	}

	return runErr
}

// recordHistory stores the summary unless history is disabled. Failures are
// warnings; the load itself already happened.
func recordHistory(p *project, summary tptload.RunSummary) {
	if p.cfg.History.Disabled || runFlags.noHistory {
		return
	}
	store, err := history.Open(p.cfg.Path(p.cfg.History.Path))
	if err != nil {
		p.logger.Warn("Run history not recorded: %v", err)
		return
	}
	defer store.Close()

	// recording must finish even when the run was interrupted
	if err := store.RecordRun(context.Background(), summary); err != nil {
		p.logger.Warn("Run history not recorded: %v", err)
		return
	}
	p.logger.Verbose("Run %s recorded in %s", summary.RunID, store.Path())
}
