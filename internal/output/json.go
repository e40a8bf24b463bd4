package output

import (
	"encoding/json"
	"io"

	"github.com/bgricker/stagelens/internal/provider"
	"github.com/bgricker/stagelens/internal/report"
)

// JSONRenderer emits structured data.
type JSONRenderer struct {
	out io.Writer
}

// NewJSON creates a JSON renderer writing to out.
func NewJSON(out io.Writer) *JSONRenderer {
	return &JSONRenderer{out: out}
}

// Report captures JSON output schema.
type Report struct {
	Pipelines []provider.Pipeline  `json:"pipelines"`
	Results   []report.StageResult `json:"results,omitempty"`
	Summary   *report.Summary      `json:"summary,omitempty"`
	Warnings  []string             `json:"warnings,omitempty"`
}

// Render encodes the report as JSON.
func (j *JSONRenderer) Render(report Report) error {
	return j.Encode(report)
}

// Encode writes any value as indented JSON.
func (j *JSONRenderer) Encode(v any) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WarningStrings flattens loader warnings for the report.
func WarningStrings(warnings []provider.Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.String())
	}
	return out
}
