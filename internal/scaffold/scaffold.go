// Package scaffold creates new tptload project directories.
package scaffold

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mortie23/tptload/internal/scripts"
	"github.com/mortie23/tptload/pkg/tptload"
)

//go:embed all:project
var projectFS embed.FS

const projectRoot = "project"

// TemplatesDir is where the editable copy of the built-in templates goes.
const TemplatesDir = "templates"

// Scaffolder writes the project skeleton and the built-in templates.
type Scaffolder struct {
	logger tptload.Logger
}

// NewScaffolder creates a new Scaffolder instance
func NewScaffolder(logger tptload.Logger) *Scaffolder {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Scaffolder{logger: logger}
}

// CreateProject creates a project named projectName at targetPath, which
// must be empty or absent.
func (s *Scaffolder) CreateProject(projectName, targetPath string) error {
	isEmpty, err := isDirectoryEmpty(targetPath)
	if err != nil {
		return fmt.Errorf("failed to check target directory: %w", err)
	}
	if !isEmpty {
		return fmt.Errorf("target directory '%s' is not empty\n\ntptload init requires an empty directory to avoid overwriting existing files", targetPath)
	}
	if err := os.MkdirAll(targetPath, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	s.logger.Verbose("Creating project '%s' at %s", projectName, targetPath)

	project, err := fs.Sub(projectFS, projectRoot)
	if err != nil {
		return err
	}
	if err := s.copyFiles(project, targetPath, projectName); err != nil {
		return fmt.Errorf("failed to copy project files: %w", err)
	}
	if err := s.copyFiles(scripts.DefaultTemplates(), filepath.Join(targetPath, TemplatesDir), projectName); err != nil {
		return fmt.Errorf("failed to copy templates: %w", err)
	}

	s.logger.Verbose("Project created successfully")
	return nil
}

func (s *Scaffolder) copyFiles(src fs.FS, targetPath, projectName string) error {
	return fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(targetPath, filepath.FromSlash(path))

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		content, err := fs.ReadFile(src, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		s.logger.Verbose("Creating file: %s", target)
		if err := os.WriteFile(target, []byte(processTemplate(string(content), projectName)), 0644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", target, err)
		}
		return nil
	})
}

// processTemplate substitutes {{PROJECT_NAME}}. Load-script placeholders use
// the {{.name}} form and pass through unchanged.
func processTemplate(content, projectName string) string {
	return strings.ReplaceAll(content, "{{PROJECT_NAME}}", projectName)
}

// isDirectoryEmpty reports true for a missing or empty directory.
func isDirectoryEmpty(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check directory: %w", err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("path exists but is not a directory")
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return false, fmt.Errorf("failed to read directory: %w", err)
	}
	return len(entries) == 0, nil
}

// BuildFileTree renders the directory tree under rootPath.
func BuildFileTree(rootPath string) (string, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		absPath = rootPath
	}

	var sb strings.Builder
	sb.WriteString(absPath + "/\n")
	if err := writeTree(&sb, rootPath, ""); err != nil {
		return "", fmt.Errorf("failed to build file tree: %w", err)
	}
	return sb.String(), nil
}

func writeTree(sb *strings.Builder, dir, indent string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for i, entry := range entries {
		branch, childIndent := "├── ", indent+"│   "
		if i == len(entries)-1 {
			branch, childIndent = "└── ", indent+"    "
		}
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		sb.WriteString(indent + branch + name + "\n")

		if entry.IsDir() {
			if err := writeTree(sb, filepath.Join(dir, entry.Name()), childIndent); err != nil {
				return err
			}
		}
	}
	return nil
}
