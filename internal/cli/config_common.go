package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mortie23/tptload/internal/config"
	"github.com/mortie23/tptload/internal/credentials"
	"github.com/mortie23/tptload/internal/executor"
	"github.com/mortie23/tptload/internal/logging"
	"github.com/mortie23/tptload/internal/metrics"
	"github.com/mortie23/tptload/internal/resolver"
	"github.com/mortie23/tptload/internal/scripts"
	"github.com/mortie23/tptload/internal/services"
	"github.com/mortie23/tptload/internal/tui"
	"github.com/mortie23/tptload/pkg/tptload"
)

// project bundles everything resolved from a project directory before any
// table is processed.
type project struct {
	cfg     *config.ProjectConfig
	logger  tptload.Logger
	fileLog *logging.FileLogger
	creds   tptload.Credentials
}

func (p *project) Close() {
	if p.fileLog != nil {
		p.fileLog.Close()
	}
}

// loadProjectConfig reads --config when given, otherwise
// <projectDir>/tptload.yaml.
func loadProjectConfig(cmd *cobra.Command, projectDir string) (*config.ProjectConfig, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		return config.Load(projectDir)
	}
	return config.LoadFile(configPath)
}

// openProject loads env files, config, loggers and credentials.
// Explicit --env-file values are loaded before the project .env, and
// godotenv never overrides a variable that is already set, so the earliest
// source wins.
func openProject(cmd *cobra.Command, projectDir string) (*project, error) {
	verbose := getVerboseFlag(cmd)

	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	if err := credentials.LoadEnvFiles(envFiles, true); err != nil {
		return nil, err
	}

	cfg, err := loadProjectConfig(cmd, projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", tptload.ConfigFileName, err)
	}
	if err := credentials.LoadEnvFiles([]string{cfg.Path(".env")}, false); err != nil {
		return nil, err
	}

	console := logging.NewConsoleLogger(verbose)
	p := &project{cfg: cfg, logger: console}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tptload.ErrInvalidConfig, err)
	}
	if verbose {
		level = min(level, slog.LevelDebug)
	}
	fileLog, err := logging.NewFileLogger(cfg.Path(cfg.Logging.File), level)
	if err != nil {
		console.Warn("File logging disabled: %v", err)
	} else {
		p.fileLog = fileLog
		p.logger = logging.NewMultiLogger(console, fileLog)
	}

	creds, err := credentials.NewEnvProvider(cfg.Connection).Credentials()
	if err != nil {
		p.Close()
		return nil, err
	}
	p.creds = creds

	p.logger.Verbose("Config: %s", filepath.Join(cfg.Root, tptload.ConfigFileName))
	redacted := creds.Redacted()
	p.logger.Verbose("Credentials: ddl=%s@%s (%s, password %s) target=%s@%s (%s, password %s) database=%s",
		redacted.DDLUsername, redacted.DDLHost, redacted.DDLLogonMech, redacted.DDLPassword,
		redacted.TargetUsername, redacted.TargetHost, redacted.TargetLogonMech, redacted.TargetPassword,
		redacted.WorkingDatabase)
	return p, nil
}

// discover lists the data files and pairs them with tables.
func (p *project) discover() ([]tptload.LoadUnit, []tptload.DataFile, error) {
	dataDir := p.cfg.Path(p.cfg.Data.Dir)
	p.logger.Info("Looking for data files in: %s", dataDir)

	files, err := resolver.Discover(dataDir, p.cfg.Data.Pattern)
	if err != nil {
		return nil, nil, err
	}
	p.logger.Verbose("Table mapping: %v", p.cfg.Tables)

	units, skipped := resolver.BuildUnits(files, p.cfg.Mapping(), p.cfg.Data.SkipUnmapped)
	for _, f := range skipped {
		p.logger.Warn("No table mapping for %s, skipping", f.Path)
	}
	p.logger.Info("Found %d data file(s), %d to load", len(files), len(units))
	return units, skipped, nil
}

// newGenerator builds the script generator from the templates and schemas
// directories. A configured but missing templates directory is fatal.
func (p *project) newGenerator() (*scripts.Generator, error) {
	cfg := scripts.Config{
		OutputDir: p.cfg.Path(p.cfg.Output.ScriptsDir),
		Stages:    p.cfg.Loader.Stages,
	}

	if p.cfg.Templates.Dir != "" {
		dir := p.cfg.Path(p.cfg.Templates.Dir)
		if !isDir(dir) {
			return nil, fmt.Errorf("%w: templates directory %s", tptload.ErrTemplateNotFound, dir)
		}
		cfg.Templates = os.DirFS(dir)
		p.logger.Verbose("Using templates from %s", dir)
	} else {
		p.logger.Verbose("Using built-in templates")
	}

	if p.cfg.Schemas.Dir != "" {
		dir := p.cfg.Path(p.cfg.Schemas.Dir)
		if isDir(dir) {
			cfg.Schemas = os.DirFS(dir)
		} else {
			p.logger.Warn("Schemas directory %s not found; table_schema will be empty", dir)
		}
	}

	return scripts.NewGenerator(cfg)
}

// newLoadService wires generator, executor and extractor into a LoadService.
func (p *project) newLoadService() (*services.LoadService, error) {
	generator, err := p.newGenerator()
	if err != nil {
		return nil, err
	}
	extractor, err := metrics.NewRegexExtractor(p.cfg.Metrics.RowsSentPattern, p.cfg.Metrics.RowsAppliedPattern)
	if err != nil {
		return nil, err
	}
	exec := executor.New(executor.Config{
		Executable: p.cfg.Loader.Executable,
		ScriptFlag: p.cfg.Loader.ScriptFlag,
		VarsFlag:   p.cfg.Loader.VarsFlag,
		LogsDir:    p.cfg.Path(p.cfg.Output.LogsDir),
		StageLogs:  p.cfg.StageLogsEnabled(),
	}, executor.ExecRunner{Dir: p.cfg.Root}, p.logger)

	plan := services.StagePlan{Stages: p.cfg.Loader.Stages, MetricsStage: p.cfg.Loader.MetricsStage}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return services.NewLoadService(generator, exec, extractor, p.logger, plan), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// colorFor reports whether w is a colour-capable terminal.
func colorFor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && tui.ColorEnabled(f)
}
