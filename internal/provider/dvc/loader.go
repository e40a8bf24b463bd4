package dvc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bgricker/stagelens/internal/ctxlog"
	"github.com/bgricker/stagelens/internal/pipeline"
	"github.com/bgricker/stagelens/internal/provider"
	"golang.org/x/sync/errgroup"
)

// Loader reads dvc.yaml files from disk.
type Loader struct {
	Root string
	Jobs int
}

// NewLoader constructs a Loader that resolves pipeline paths relative to root
// and reads at most jobs files at once.
func NewLoader(root string, jobs int) *Loader {
	if jobs <= 0 {
		jobs = 1
	}
	return &Loader{Root: root, Jobs: jobs}
}

// Load reads and extracts every path concurrently. Results keep the order of paths.
func (l *Loader) Load(ctx context.Context, paths []string) ([]provider.Pipeline, []provider.Warning, error) {
	pipelines := make([]provider.Pipeline, len(paths))
	warnings := make([][]provider.Warning, len(paths))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(l.Jobs)
	for i, relPath := range paths {
		i, relPath := i, relPath
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, w, err := l.loadFile(relPath)
			if err != nil {
				return err
			}
			ctxlog.FromContext(ctx).Debug("extracted stages", "pipeline", relPath, "stages", len(p.Stages))
			pipelines[i] = p
			warnings[i] = w
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	var all []provider.Warning
	for _, w := range warnings {
		all = append(all, w...)
	}
	return pipelines, all, nil
}

func (l *Loader) loadFile(relPath string) (provider.Pipeline, []provider.Warning, error) {
	full := relPath
	if !filepath.IsAbs(full) {
		full = filepath.Join(l.Root, relPath)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return provider.Pipeline{}, nil, fmt.Errorf("read pipeline %q: %w", relPath, err)
	}
	p, warnings := Decode(string(data), relPath)
	p.Dir = filepath.Dir(full)
	return p, warnings, nil
}

// Decode extracts the stages of text and reports shapes dvc would not expand
// the way the declaration suggests.
func Decode(text, displayPath string) (provider.Pipeline, []provider.Warning) {
	p := provider.Pipeline{
		Path:   displayPath,
		Dir:    filepath.Dir(displayPath),
		Stages: pipeline.ExtractStages(text),
	}

	warnings := make([]provider.Warning, 0)
	if len(p.Stages) == 0 {
		warnings = append(warnings, provider.Warning{
			Pipeline: displayPath,
			Message:  "no stages found",
		})
	}

	for _, stage := range p.Stages {
		switch stage.Type {
		case pipeline.TypeMatrix:
			if stage.Matrix == nil {
				warnings = append(warnings, provider.Warning{
					Pipeline: displayPath,
					Stage:    stage.Name,
					Message:  "matrix has no list-valued axes",
				})
			}
		case pipeline.TypeForeach:
			if len(stage.Foreach) == 0 {
				warnings = append(warnings, provider.Warning{
					Pipeline: displayPath,
					Stage:    stage.Name,
					Message:  "foreach items are not a literal list or mapping",
				})
			}
		}
		if dup := firstDuplicate(pipeline.SubStageNames(stage)); dup != "" {
			warnings = append(warnings, provider.Warning{
				Pipeline: displayPath,
				Stage:    stage.Name,
				Message:  fmt.Sprintf("sub-stage address %q is generated more than once", dup),
			})
		}
	}

	return p, warnings
}

func firstDuplicate(names []string) string {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return n
		}
		seen[n] = struct{}{}
	}
	return ""
}
