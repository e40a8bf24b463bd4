package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/bgricker/stagelens/internal/pipeline"
	"github.com/bgricker/stagelens/internal/provider"
	"github.com/bgricker/stagelens/internal/report"
)

func init() {
	color.NoColor = true
}

func TestPrettyRenderList(t *testing.T) {
	pl := provider.Pipeline{
		Path: "dvc.yaml",
		Stages: []pipeline.Stage{
			{Name: "prepare", Type: pipeline.TypeSimple, Line: 2, Cmd: "python prepare.py"},
			{
				Name: "train",
				Type: pipeline.TypeMatrix,
				Line: 9,
				Matrix: pipeline.Axes{
					{Name: "model", Values: []string{"cnn", "rnn"}},
					{Name: "feature", Values: []string{"feat1"}},
				},
			},
		},
	}

	buf := &bytes.Buffer{}
	if err := NewPretty(buf).RenderList([]provider.Pipeline{pl}); err != nil {
		t.Fatalf("render list: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Pipeline dvc.yaml",
		"• prepare (line 2) simple",
		"$ python prepare.py",
		"• train (line 9) matrix [model, feature]",
		"- train@cnn-feat1",
		"- train@rnn-feat1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
}

func TestPrettyRenderListEmptyPipeline(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := NewPretty(buf).RenderList([]provider.Pipeline{{Path: "sub/dvc.yaml", Stages: []pipeline.Stage{}}}); err != nil {
		t.Fatalf("render list: %v", err)
	}
	if !strings.Contains(buf.String(), "(no stages)") {
		t.Fatalf("expected empty marker, got %q", buf.String())
	}
}

func TestPrettyRenderResults(t *testing.T) {
	results := []report.StageResult{
		{
			Pipeline: "dvc.yaml",
			Address:  "prepare",
			Command:  "repro",
			Status:   report.StatusPassed,
			Duration: 123456789,
		},
		{
			Pipeline: "dvc.yaml",
			Address:  "train@cnn",
			Command:  "repro",
			Status:   report.StatusFailed,
			Stderr:   "boom",
		},
	}

	summary := report.Summary{Passed: 1, Failed: 1, Duration: 123456789, DurationMS: 123}

	buf := &bytes.Buffer{}
	if err := NewPretty(buf).RenderResults(results, summary); err != nil {
		t.Fatalf("render results: %v", err)
	}

	out := buf.String()
	if strings.Count(out, "Pipeline dvc.yaml") != 1 {
		t.Fatalf("expected one pipeline header, got %q", out)
	}
	if !strings.Contains(out, "✓ repro prepare (123ms)") {
		t.Fatalf("expected success glyph, got %q", out)
	}
	if !strings.Contains(out, "✗ repro train@cnn") {
		t.Fatalf("expected failure glyph, got %q", out)
	}
	if !strings.Contains(out, "stderr:") || !strings.Contains(out, "boom") {
		t.Fatalf("expected stderr output, got %q", out)
	}
	if !strings.Contains(out, "SUMMARY: 1 passed, 1 failed, 0 skipped") {
		t.Fatalf("expected summary line, got %q", out)
	}
}

func TestPrettyRenderDryRun(t *testing.T) {
	results := []report.StageResult{{
		Pipeline: "dvc.yaml",
		Address:  "prepare",
		Command:  "status",
		Argv:     []string{"dvc", "status", "prepare"},
		Status:   report.StatusSkipped,
		DryRun:   true,
	}}
	buf := &bytes.Buffer{}
	if err := NewPretty(buf).RenderResults(results, report.Summary{Skipped: 1}); err != nil {
		t.Fatalf("render results: %v", err)
	}
	if !strings.Contains(buf.String(), "command: dvc status prepare") {
		t.Fatalf("expected dry-run command, got %q", buf.String())
	}
}

func TestPrettyRenderWarnings(t *testing.T) {
	buf := &bytes.Buffer{}
	err := NewPretty(buf).RenderWarnings([]provider.Warning{{Pipeline: "dvc.yaml", Stage: "x", Message: "no stages found"}})
	if err != nil {
		t.Fatalf("render warnings: %v", err)
	}
	if buf.String() != "warning: dvc.yaml:x: no stages found\n" {
		t.Fatalf("unexpected warnings output %q", buf.String())
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(0); got != "0s" {
		t.Fatalf("formatDuration(0) = %q", got)
	}
	if got := formatDuration(1500123456); got != "1.5s" {
		t.Fatalf("formatDuration(1.5s) = %q", got)
	}
}
