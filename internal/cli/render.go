package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mortie23/tptload/pkg/tptload"
)

var renderCmd = &cobra.Command{
	Use:   "render [project_dir]",
	Short: "Render TPT scripts without running tbuild",
	Long: `Render writes <table>.vars and one <table>_<stage>.script per stage for
every data file of the project, exactly as 'tptload run' would, and prints
the generated paths. Nothing is executed.

Useful for reviewing templates and schemas before a load.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeDirectories,
	RunE:              runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd, projectDirArg(args))
	if err != nil {
		return err
	}
	defer p.Close()

	generator, err := p.newGenerator()
	if err != nil {
		return err
	}
	units, _, err := p.discover()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var failed int
	for _, unit := range units {
		set, err := generator.Generate(unit, p.creds)
		if err != nil {
			p.logger.Error("Failed to render %s: %v", unit.Table, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "%s -> %s\n", unit.File.Path, unit.Table)
		fmt.Fprintf(out, "  %s\n", set.VarsPath)
		for _, path := range orderedScripts(set, p.cfg.Loader.Stages) {
			fmt.Fprintf(out, "  %s\n", path)
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to render scripts for %d of %d table(s)", failed, len(units))
	}
	p.logger.Success("Rendered scripts for %d table(s)", len(units))
	return nil
}

// orderedScripts lists script paths in stage order, then any extras by name.
func orderedScripts(set tptload.ScriptSet, stages []tptload.Stage) []string {
	seen := make(map[tptload.Stage]bool, len(stages))
	paths := make([]string, 0, len(set.Scripts))
	for _, s := range stages {
		if path, ok := set.Scripts[s]; ok {
			paths = append(paths, path)
			seen[s] = true
		}
	}
	var extra []string
	for s, path := range set.Scripts {
		if !seen[s] {
			extra = append(extra, path)
		}
	}
	sort.Strings(extra)
	return append(paths, extra...)
}
