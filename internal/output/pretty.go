package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/bgricker/stagelens/internal/pipeline"
	"github.com/bgricker/stagelens/internal/provider"
	"github.com/bgricker/stagelens/internal/report"
)

var (
	headerColor = color.New(color.Bold)
	dimColor    = color.New(color.Faint)
	passColor   = color.New(color.FgGreen)
	failColor   = color.New(color.FgRed)
	skipColor   = color.New(color.FgYellow)
	typeColor   = color.New(color.FgCyan)
)

// PrettyRenderer renders stages and run results in a human-friendly format.
type PrettyRenderer struct {
	out io.Writer
}

// NewPretty creates a PrettyRenderer writing to the provided writer.
func NewPretty(out io.Writer) *PrettyRenderer {
	return &PrettyRenderer{out: out}
}

// RenderList renders pipelines, their stages and the sub-stage addresses of group stages.
func (p *PrettyRenderer) RenderList(pipelines []provider.Pipeline) error {
	var buf bytes.Buffer
	for _, pl := range pipelines {
		fmt.Fprintf(&buf, "Pipeline %s\n", headerColor.Sprint(pl.Path))
		if len(pl.Stages) == 0 {
			fmt.Fprintf(&buf, "  %s\n", dimColor.Sprint("(no stages)"))
			continue
		}
		for _, st := range pl.Stages {
			fmt.Fprintf(&buf, "  • %s %s %s\n", st.Name, dimColor.Sprintf("(line %d)", st.Line), describeType(st))
			if st.Cmd != "" {
				fmt.Fprintf(&buf, "%s\n", indent(st.Cmd, "      $ "))
			}
			if !st.Type.IsGroup() {
				continue
			}
			for _, name := range pipeline.SubStageNames(st) {
				fmt.Fprintf(&buf, "      - %s\n", name)
			}
		}
	}
	_, err := buf.WriteTo(p.out)
	return err
}

// RenderWarnings prints non-fatal loader warnings.
func (p *PrettyRenderer) RenderWarnings(warnings []provider.Warning) error {
	for _, w := range warnings {
		if _, err := fmt.Fprintf(p.out, "%s %s\n", skipColor.Sprint("warning:"), w.String()); err != nil {
			return err
		}
	}
	return nil
}

// RenderResults shows invocation outcomes grouped by pipeline with a summary.
func (p *PrettyRenderer) RenderResults(results []report.StageResult, summary report.Summary) error {
	var current string
	var buffer bytes.Buffer

	flush := func() error {
		if buffer.Len() == 0 {
			return nil
		}
		if _, err := buffer.WriteTo(p.out); err != nil {
			return err
		}
		buffer.Reset()
		return nil
	}

	for i, res := range results {
		if i == 0 || current != res.Pipeline {
			if err := flush(); err != nil {
				return err
			}
			current = res.Pipeline
			fmt.Fprintf(&buffer, "Pipeline %s\n", headerColor.Sprint(res.Pipeline))
		}

		fmt.Fprintf(&buffer, "  %s %s %s (%s)\n", statusGlyph(res.Status), res.Command, res.Address, formatDuration(res.Duration))
		if res.Status == report.StatusFailed && res.Stderr != "" {
			fmt.Fprintf(&buffer, "    stderr:\n%s\n", indent(res.Stderr, "      "))
		}
		if res.DryRun {
			fmt.Fprintf(&buffer, "    command: %s\n", strings.Join(res.Argv, " "))
		}
		if res.LogFile != "" {
			fmt.Fprintf(&buffer, "    log: %s\n", res.LogFile)
		}
	}

	if err := flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(p.out, "SUMMARY: %d passed, %d failed, %d skipped (%s)\n", summary.Passed, summary.Failed, summary.Skipped, formatDuration(summary.Duration))
	return err
}

func describeType(st pipeline.Stage) string {
	switch st.Type {
	case pipeline.TypeMatrix:
		return typeColor.Sprintf("matrix [%s]", strings.Join(st.Matrix.Names(), ", "))
	case pipeline.TypeForeach:
		return typeColor.Sprintf("foreach (%d items)", len(st.Foreach))
	default:
		return typeColor.Sprint(st.Type.String())
	}
}

func statusGlyph(status string) string {
	switch status {
	case report.StatusPassed:
		return passColor.Sprint("✓")
	case report.StatusFailed:
		return failColor.Sprint("✗")
	case report.StatusSkipped:
		return skipColor.Sprint("-")
	default:
		return "?"
	}
}

func indent(s, pad string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Truncate(time.Millisecond).String()
}
