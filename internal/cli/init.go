package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mortie23/tptload/internal/logging"
	"github.com/mortie23/tptload/internal/scaffold"
)

var initCmd = &cobra.Command{
	Use:   "init <target_path>",
	Short: "Initialize a new tptload project",
	Long: `Initialize a tptload project into the specified directory.

The project contains:
- tptload.yaml with a sample table mapping
- .env.example listing the credential variables
- data/ with a sample CSV file and schemas/ with its column definitions
- templates/ with editable copies of the built-in TPT templates

Target directory must be empty or non-existent.

Examples:
  tptload init .                 # Initialize in current directory
  tptload init ./nrl             # Initialize in ./nrl`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeDirectories,
	RunE:              runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	projectName := filepath.Base(targetPath)
	if projectName == "." || projectName == ".." {
		cwd, err := os.Getwd()
		if err == nil {
			projectName = filepath.Base(cwd)
		} else {
			projectName = "project"
		}
	}

	scaffolder := scaffold.NewScaffolder(logging.NewConsoleLogger(getVerboseFlag(cmd)))
	if err := scaffolder.CreateProject(projectName, targetPath); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	errOut := cmd.ErrOrStderr()
	tree, err := scaffold.BuildFileTree(targetPath)
	if err != nil {
		fmt.Fprintf(errOut, "\n✓ Project initialized successfully in '%s'\n\n", targetPath)
	} else {
		fmt.Fprintf(errOut, "\n✓ Project initialized successfully\n\n")
		fmt.Fprintln(errOut, "Created structure:")
		fmt.Fprint(errOut, tree)
	}

	fmt.Fprintln(errOut, "\nNext steps:")
	if targetPath != "." {
		fmt.Fprintf(errOut, "  cd %s\n", targetPath)
	}
	fmt.Fprintln(errOut, "  cp .env.example .env   # fill in usernames and passwords")
	fmt.Fprintln(errOut, "  tptload render         # review the generated TPT scripts")
	fmt.Fprintln(errOut, "  tptload run")
	return nil
}
