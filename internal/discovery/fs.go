package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PipelineFileName is the file dvc reads stage declarations from.
const PipelineFileName = "dvc.yaml"

// ErrNoPipelines indicates that no pipeline files were found during discovery.
var ErrNoPipelines = errors.New("no pipelines discovered")

var skipDirs = map[string]struct{}{
	".git":         {},
	".dvc":         {},
	".venv":        {},
	"venv":         {},
	"node_modules": {},
	"__pycache__":  {},
}

// Pipelines returns dvc.yaml paths relative to root. If explicit paths are
// provided they are validated and returned in the order given. Otherwise root
// is walked and results are sorted lexicographically.
func Pipelines(root string, explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		return resolveExplicit(root, explicit)
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == PipelineFileName {
			paths = append(paths, mustRelOrClean(root, path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", root, err)
	}

	if len(paths) == 0 {
		return nil, ErrNoPipelines
	}
	sort.Strings(paths)
	return paths, nil
}

func resolveExplicit(root string, explicit []string) ([]string, error) {
	seen := make(map[string]struct{})
	resolved := make([]string, 0, len(explicit))
	for _, input := range explicit {
		cleaned := input
		if !filepath.IsAbs(cleaned) {
			cleaned = filepath.Join(root, cleaned)
		}
		info, err := os.Stat(cleaned)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("pipeline %q not found", input)
			}
			return nil, fmt.Errorf("stat %q: %w", input, err)
		}
		if info.IsDir() {
			cleaned = filepath.Join(cleaned, PipelineFileName)
			if _, err := os.Stat(cleaned); err != nil {
				return nil, fmt.Errorf("pipeline directory %q has no %s", input, PipelineFileName)
			}
		}
		rel := mustRelOrClean(root, cleaned)
		if _, ok := seen[rel]; ok {
			continue
		}
		seen[rel] = struct{}{}
		resolved = append(resolved, rel)
	}
	if len(resolved) == 0 {
		return nil, ErrNoPipelines
	}
	return resolved, nil
}

func mustRelOrClean(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Clean(path)
	}
	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return filepath.Clean(path)
	}
	return rel
}
