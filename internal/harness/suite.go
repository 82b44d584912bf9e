package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FindScenarios returns the .yaml and .yml files under dir, sorted. A
// non-empty filter is a glob matched against the file name without its
// extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		switch strings.ToLower(ext) {
		case ".yaml", ".yml":
		default:
			return nil
		}
		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(filepath.Base(path), ext))
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find scenarios in %s: %w", dir, err)
	}
	slices.Sort(paths)
	return paths, nil
}

// GoldenPath is where the golden snapshot of the scenario at path lives:
// a golden/ directory next to the scenario file.
func GoldenPath(path, name string) string {
	return filepath.Join(filepath.Dir(path), "golden", name+".golden")
}
