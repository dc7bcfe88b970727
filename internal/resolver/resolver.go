// Package resolver maps data files to target tables.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mortie23/tptload/pkg/tptload"
)

// Resolve returns the table identifier for a logical name: the mapped value
// when present, otherwise the logical name in upper case.
func Resolve(logicalName string, mapping tptload.TableMapping) string {
	if table, ok := mapping[logicalName]; ok {
		return table
	}
	return strings.ToUpper(logicalName)
}

// IsFileName reports whether name can be used as a single file name inside a
// directory: non-empty, no separators, not "." or "..".
func IsFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// LogicalName returns the base name of path without its extension.
func LogicalName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Discover lists the regular files in dir matching pattern, in lexical order.
func Discover(dir, pattern string) ([]tptload.DataFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", tptload.ErrDataDirNotFound, dir)
		}
		return nil, fmt.Errorf("failed to stat data directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", tptload.ErrDataDirNotFound, dir)
	}

	if pattern == "" {
		pattern = tptload.DefaultDataPattern
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid data pattern %q: %v", tptload.ErrInvalidConfig, pattern, err)
	}
	sort.Strings(matches)

	files := make([]tptload.DataFile, 0, len(matches))
	for _, path := range matches {
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, tptload.DataFile{Path: path, LogicalName: LogicalName(path)})
	}
	return files, nil
}

// BuildUnits pairs every file with its target table. With skipUnmapped set,
// files absent from the mapping are returned as skipped instead of falling
// back to the upper-cased name.
func BuildUnits(files []tptload.DataFile, mapping tptload.TableMapping, skipUnmapped bool) ([]tptload.LoadUnit, []tptload.DataFile) {
	units := make([]tptload.LoadUnit, 0, len(files))
	var skipped []tptload.DataFile
	for _, f := range files {
		if _, ok := mapping[f.LogicalName]; !ok && skipUnmapped {
			skipped = append(skipped, f)
			continue
		}
		units = append(units, tptload.LoadUnit{File: f, Table: Resolve(f.LogicalName, mapping)})
	}
	return units, skipped
}
