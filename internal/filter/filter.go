package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bgricker/stagelens/internal/pipeline"
	"github.com/bgricker/stagelens/internal/provider"
)

// Pattern represents a compiled filter condition supporting substring and regex matching.
type Pattern struct {
	raw   string
	regex *regexp.Regexp
	lower string
}

// Compile transforms raw pattern strings into Pattern values.
func Compile(patterns []string) ([]Pattern, error) {
	result := make([]Pattern, 0, len(patterns))
	for _, raw := range patterns {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, "/") && strings.HasSuffix(raw, "/") && len(raw) >= 2 {
			expr := raw[1 : len(raw)-1]
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("compile regexp %q: %w", raw, err)
			}
			result = append(result, Pattern{raw: raw, regex: re})
			continue
		}
		result = append(result, Pattern{raw: raw, lower: strings.ToLower(raw)})
	}
	return result, nil
}

// String returns the pattern as it was written.
func (p Pattern) String() string {
	return p.raw
}

// Match reports whether the pattern matches the supplied string.
func (p Pattern) Match(s string) bool {
	if s == "" {
		return false
	}
	if p.regex != nil {
		return p.regex.MatchString(s)
	}
	return strings.Contains(strings.ToLower(s), p.lower)
}

// FilterPipelines keeps the stages whose name or any sub-stage address
// matches. Pipelines left without stages are dropped. No patterns keeps everything.
func FilterPipelines(pipelines []provider.Pipeline, patterns []Pattern) []provider.Pipeline {
	if len(pipelines) == 0 {
		return nil
	}
	if len(patterns) == 0 {
		return pipelines
	}

	result := make([]provider.Pipeline, 0, len(pipelines))
	for _, p := range pipelines {
		stages := make([]pipeline.Stage, 0, len(p.Stages))
		for _, stage := range p.Stages {
			if matchesStage(stage, patterns) {
				stages = append(stages, stage)
			}
		}
		if len(stages) == 0 {
			continue
		}
		pCopy := p
		pCopy.Stages = stages
		result = append(result, pCopy)
	}
	return result
}

// Addresses returns the stage's sub-stage addresses selected by patterns.
// A stage whose own name matches keeps every address.
func Addresses(stage pipeline.Stage, patterns []Pattern) []string {
	all := pipeline.SubStageNames(stage)
	if len(patterns) == 0 || matchesAny(stage.Name, patterns) {
		return all
	}
	out := make([]string, 0, len(all))
	for _, addr := range all {
		if matchesAny(addr, patterns) {
			out = append(out, addr)
		}
	}
	return out
}

func matchesStage(stage pipeline.Stage, patterns []Pattern) bool {
	if matchesAny(stage.Name, patterns) {
		return true
	}
	for _, addr := range pipeline.SubStageNames(stage) {
		if matchesAny(addr, patterns) {
			return true
		}
	}
	return false
}

func matchesAny(s string, patterns []Pattern) bool {
	for _, pattern := range patterns {
		if pattern.Match(s) {
			return true
		}
	}
	return false
}
