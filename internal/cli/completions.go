package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mortie23/tptload/internal/history"
)

// completeDirectories provides shell completion for directory paths.
func completeDirectories(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveFilterDirs
}

// completeRunIDs completes recorded run IDs from the history of the project
// in the current directory.
func completeRunIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	cfg, err := loadProjectConfig(cmd, ".")
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	store, err := history.Open(cfg.Path(cfg.History.Path))
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer store.Close()

	runs, err := store.RecentRuns(context.Background(), 50)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var matches []string
	for _, r := range runs {
		if strings.HasPrefix(r.ID, toComplete) {
			matches = append(matches, r.ID)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}
