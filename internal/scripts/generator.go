// Package scripts renders the per-table control documents consumed by the
// load utility.
package scripts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mortie23/tptload/internal/resolver"
	"github.com/mortie23/tptload/pkg/tptload"
)

//go:embed templates/*.tmpl
var builtinTemplates embed.FS

// VarsTemplate is the template name of the job variables document.
const VarsTemplate = "vars.tmpl"

// DefaultTemplates returns the built-in template set.
func DefaultTemplates() fs.FS {
	sub, err := fs.Sub(builtinTemplates, "templates")
	if err != nil {
		panic(fmt.Sprintf("embedded templates missing: %v", err))
	}
	return sub
}

// TemplateName returns the template file name for a stage.
func TemplateName(stage tptload.Stage) string {
	return string(stage) + ".tmpl"
}

// Config configures a Generator.
type Config struct {
	// Templates holds vars.tmpl and one <stage>.tmpl per stage.
	// Nil selects the built-in set.
	Templates fs.FS

	// Schemas holds optional <lower(table)>.sql column fragments. May be nil.
	Schemas fs.FS

	OutputDir string
	Stages    []tptload.Stage

	// Substituter defaults to TextTemplateSubstituter.
	Substituter Substituter
}

// Generator writes the vars document and one script per stage for a LoadUnit.
type Generator struct {
	schemas   fs.FS
	outputDir string
	stages    []tptload.Stage
	vars      Renderer
	scripts   map[tptload.Stage]Renderer
}

var _ tptload.ScriptGenerator = (*Generator)(nil)

// NewGenerator loads and compiles every required template. A missing or
// malformed template is a configuration error.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("%w: scripts output directory is required", tptload.ErrInvalidConfig)
	}
	if len(cfg.Stages) == 0 {
		return nil, fmt.Errorf("%w: at least one stage is required", tptload.ErrInvalidConfig)
	}
	templates := cfg.Templates
	if templates == nil {
		templates = DefaultTemplates()
	}
	sub := cfg.Substituter
	if sub == nil {
		sub = TextTemplateSubstituter{}
	}

	var errs []error
	compile := func(name string) Renderer {
		body, err := fs.ReadFile(templates, name)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s", tptload.ErrTemplateNotFound, name))
			return nil
		}
		r, err := sub.Compile(name, string(body))
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: template %s: %v", tptload.ErrInvalidConfig, name, err))
			return nil
		}
		return r
	}

	g := &Generator{
		schemas:   cfg.Schemas,
		outputDir: cfg.OutputDir,
		stages:    cfg.Stages,
		vars:      compile(VarsTemplate),
		scripts:   make(map[tptload.Stage]Renderer, len(cfg.Stages)),
	}
	for _, stage := range cfg.Stages {
		g.scripts[stage] = compile(TemplateName(stage))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return g, nil
}

// Variables returns the substitution map shared by every document of unit.
func (g *Generator) Variables(unit tptload.LoadUnit, creds tptload.Credentials) (map[string]string, error) {
	schema, err := g.schema(unit.Table)
	if err != nil {
		return nil, err
	}
	csvPath, err := filepath.Abs(unit.File.Path)
	if err != nil {
		csvPath = unit.File.Path
	}

	vars := creds.Variables()
	vars["table_name"] = unit.Table
	vars["logical_name"] = unit.File.LogicalName
	vars["csv_file_path"] = csvPath
	vars["table_schema"] = schema
	return vars, nil
}

// Generate renders and writes {table}.vars and {table}_{stage}.script files,
// overwriting previous output.
func (g *Generator) Generate(unit tptload.LoadUnit, creds tptload.Credentials) (tptload.ScriptSet, error) {
	if !resolver.IsFileName(unit.Table) {
		return tptload.ScriptSet{}, fmt.Errorf("%w: table %q is not a plain file name", tptload.ErrInvalidConfig, unit.Table)
	}
	vars, err := g.Variables(unit, creds)
	if err != nil {
		return tptload.ScriptSet{}, err
	}
	if err := g.prepareOutputDir(); err != nil {
		return tptload.ScriptSet{}, err
	}

	set := tptload.ScriptSet{
		VarsPath: filepath.Join(g.outputDir, unit.Table+tptload.VarsExtension),
		Scripts:  make(map[tptload.Stage]string, len(g.stages)),
	}
	if err := g.write(set.VarsPath, g.vars, vars); err != nil {
		return tptload.ScriptSet{}, err
	}
	for _, stage := range g.stages {
		path := filepath.Join(g.outputDir, fmt.Sprintf("%s_%s%s", unit.Table, stage, tptload.ScriptExtension))
		if err := g.write(path, g.scripts[stage], vars); err != nil {
			return tptload.ScriptSet{}, err
		}
		set.Scripts[stage] = path
	}
	return set, nil
}

func (g *Generator) schema(table string) (string, error) {
	if g.schemas == nil {
		return "", nil
	}
	name := strings.ToLower(table) + ".sql"
	content, err := fs.ReadFile(g.schemas, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read schema %s: %w", name, err)
	}
	return strings.TrimSpace(string(content)), nil
}

func (g *Generator) prepareOutputDir() error {
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create scripts directory: %w", err)
	}
	ignore := filepath.Join(g.outputDir, ".gitignore")
	if _, err := os.Stat(ignore); os.IsNotExist(err) {
		if err := os.WriteFile(ignore, []byte("*\n"), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", ignore, err)
		}
	}
	return nil
}

// Generated documents contain passwords, so they are owner-readable only.
func (g *Generator) write(path string, r Renderer, vars map[string]string) error {
	content, err := r.Render(vars)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
