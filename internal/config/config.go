// Package config loads and validates the tptload.yaml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/mortie23/tptload/internal/logging"
	"github.com/mortie23/tptload/internal/resolver"
	"github.com/mortie23/tptload/pkg/tptload"
)

// DataConfig locates the input files.
type DataConfig struct {
	Dir     string `yaml:"dir"`
	Pattern string `yaml:"pattern,omitempty"`

	// SkipUnmapped drops files missing from the table mapping instead of
	// loading them into the upper-cased table name.
	SkipUnmapped bool `yaml:"skip_unmapped,omitempty"`
}

// ConnectionConfig holds non-secret connection parameters. Environment
// variables take precedence; passwords are only read from the environment.
type ConnectionConfig struct {
	DDLHost         string `yaml:"ddl_host,omitempty"`
	TargetHost      string `yaml:"target_host,omitempty"`
	DDLLogonMech    string `yaml:"ddl_logon_mech,omitempty"`
	TargetLogonMech string `yaml:"target_logon_mech,omitempty"`
	WorkingDatabase string `yaml:"working_database,omitempty"`
	DDLUsername     string `yaml:"ddl_username,omitempty"`
	TargetUsername  string `yaml:"target_username,omitempty"`
}

// LoaderConfig is the command-line contract of the load utility.
type LoaderConfig struct {
	Executable   string          `yaml:"executable,omitempty"`
	ScriptFlag   string          `yaml:"script_flag,omitempty"`
	VarsFlag     string          `yaml:"vars_flag,omitempty"`
	Stages       []tptload.Stage `yaml:"stages,omitempty"`
	MetricsStage tptload.Stage   `yaml:"metrics_stage,omitempty"`
}

type OutputConfig struct {
	ScriptsDir string `yaml:"scripts_dir,omitempty"`
	LogsDir    string `yaml:"logs_dir,omitempty"`
	StageLogs  *bool  `yaml:"stage_logs,omitempty"`
}

type TemplatesConfig struct {
	// Dir overrides the built-in templates when set.
	Dir string `yaml:"dir,omitempty"`
}

type SchemasConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

type MetricsConfig struct {
	RowsSentPattern    string `yaml:"rows_sent_pattern,omitempty"`
	RowsAppliedPattern string `yaml:"rows_applied_pattern,omitempty"`
}

type LoggingConfig struct {
	File  string `yaml:"file,omitempty"`
	Level string `yaml:"level,omitempty"`
}

type HistoryConfig struct {
	Path     string `yaml:"path,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

type ProjectConfig struct {
	Data       DataConfig        `yaml:"data"`
	Tables     map[string]string `yaml:"tables"`
	Connection ConnectionConfig  `yaml:"connection"`
	Loader     LoaderConfig      `yaml:"loader"`
	Output     OutputConfig      `yaml:"output"`
	Templates  TemplatesConfig   `yaml:"templates"`
	Schemas    SchemasConfig     `yaml:"schemas"`
	Metrics    MetricsConfig     `yaml:"metrics"`
	Logging    LoggingConfig     `yaml:"logging"`
	History    HistoryConfig     `yaml:"history"`

	// Root is the directory relative paths are resolved against: the
	// directory holding the config file.
	Root string `yaml:"-"`
}

const ConfigFileName = tptload.ConfigFileName

// Load reads tptload.yaml from sourcePath.
func Load(sourcePath string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(sourcePath, ConfigFileName))
}

// LoadFile reads a config file, applies defaults and validates it.
func LoadFile(configPath string) (*ProjectConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", tptload.ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", tptload.ErrInvalidConfig, configPath, err)
	}

	root, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directory: %w", err)
	}
	cfg.Root = root
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills every unset field with its default.
func (c *ProjectConfig) ApplyDefaults() {
	setDefault(&c.Data.Dir, tptload.DefaultDataDir)
	setDefault(&c.Data.Pattern, tptload.DefaultDataPattern)
	setDefault(&c.Loader.Executable, tptload.DefaultExecutable)
	setDefault(&c.Loader.ScriptFlag, tptload.DefaultScriptFlag)
	setDefault(&c.Loader.VarsFlag, tptload.DefaultVarsFlag)
	if len(c.Loader.Stages) == 0 {
		c.Loader.Stages = tptload.DefaultStages()
		if c.Loader.MetricsStage == "" {
			c.Loader.MetricsStage = tptload.StageLoad
		}
	}
	setDefault(&c.Output.ScriptsDir, tptload.DefaultScriptsDir)
	setDefault(&c.Output.LogsDir, tptload.DefaultLogsDir)
	if c.Output.StageLogs == nil {
		enabled := true
		c.Output.StageLogs = &enabled
	}
	setDefault(&c.Logging.File, filepath.Join(c.Output.LogsDir, tptload.DefaultLogFile))
	setDefault(&c.Logging.Level, tptload.DefaultLogLevel)
	setDefault(&c.History.Path, filepath.Join(c.Output.LogsDir, tptload.DefaultHistoryFile))
	if c.Tables == nil {
		c.Tables = map[string]string{}
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Validate reports every configuration problem at once.
func (c *ProjectConfig) Validate() error {
	var errs []error

	if c.Data.Dir == "" {
		errs = append(errs, fmt.Errorf("data.dir is required: %w", tptload.ErrInvalidConfig))
	}
	if _, err := filepath.Match(c.Data.Pattern, ""); err != nil {
		errs = append(errs, fmt.Errorf("data.pattern %q is malformed: %w", c.Data.Pattern, tptload.ErrInvalidConfig))
	}
	for logical, table := range c.Tables {
		switch {
		case table == "":
			errs = append(errs, fmt.Errorf("tables.%s maps to an empty table name: %w", logical, tptload.ErrInvalidConfig))
		case !resolver.IsFileName(table):
			errs = append(errs, fmt.Errorf("tables.%s: %q is not a plain table name: %w", logical, table, tptload.ErrInvalidConfig))
		}
	}
	if c.Loader.Executable == "" {
		errs = append(errs, fmt.Errorf("loader.executable is required: %w", tptload.ErrInvalidConfig))
	}

	seen := make(map[tptload.Stage]bool, len(c.Loader.Stages))
	for _, s := range c.Loader.Stages {
		switch {
		case s == "":
			errs = append(errs, fmt.Errorf("loader.stages contains an empty name: %w", tptload.ErrInvalidConfig))
		case !resolver.IsFileName(string(s)):
			errs = append(errs, fmt.Errorf("loader.stages: %q is not a plain stage name: %w", s, tptload.ErrInvalidConfig))
		case s == tptload.StageGenerate:
			errs = append(errs, fmt.Errorf("loader.stages: %q is reserved: %w", s, tptload.ErrInvalidConfig))
		case seen[s]:
			errs = append(errs, fmt.Errorf("loader.stages: duplicate stage %q: %w", s, tptload.ErrInvalidConfig))
		}
		seen[s] = true
	}
	if c.Loader.MetricsStage != "" && !seen[c.Loader.MetricsStage] {
		errs = append(errs, fmt.Errorf("loader.metrics_stage %q is not one of loader.stages: %w", c.Loader.MetricsStage, tptload.ErrInvalidConfig))
	}

	for name, pattern := range map[string]string{
		"metrics.rows_sent_pattern":    c.Metrics.RowsSentPattern,
		"metrics.rows_applied_pattern": c.Metrics.RowsAppliedPattern,
	} {
		if pattern == "" {
			continue
		}
		if _, err := regexp.Compile(pattern); err != nil {
			errs = append(errs, fmt.Errorf("%s: %v: %w", name, err, tptload.ErrInvalidConfig))
		}
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %v: %w", err, tptload.ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// Path resolves p against the config directory. Absolute paths are returned
// unchanged.
func (c *ProjectConfig) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// Mapping returns the table mapping.
func (c *ProjectConfig) Mapping() tptload.TableMapping {
	return tptload.TableMapping(c.Tables)
}

// StageLogsEnabled reports whether per-stage log artifacts are written.
func (c *ProjectConfig) StageLogsEnabled() bool {
	return c.Output.StageLogs == nil || *c.Output.StageLogs
}
