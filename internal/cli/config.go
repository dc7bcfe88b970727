package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mortie23/tptload/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [project_dir]",
	Short: "Show the effective configuration and credentials",
	Long: `Config loads tptload.yaml and .env files exactly as 'tptload run' does and
prints the resulting configuration with every default filled in, followed
by the resolved credentials with passwords masked.

Examples:
  tptload config
  tptload config ./nrl --env-file prod.env`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeDirectories,
	RunE:              runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// effectiveConfig is the printed form: the project config plus credentials.
type effectiveConfig struct {
	Root        string               `yaml:"root"`
	Config      config.ProjectConfig `yaml:",inline"`
	Credentials map[string]string    `yaml:"credentials"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd, projectDirArg(args))
	if err != nil {
		return err
	}
	defer p.Close()

	view := effectiveConfig{
		Root:        p.cfg.Root,
		Config:      *p.cfg,
		Credentials: p.creds.Redacted().Variables(),
	}
	data, err := yaml.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
