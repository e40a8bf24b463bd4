package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bgricker/stagelens/internal/actions"
	"github.com/bgricker/stagelens/internal/config"
	"github.com/bgricker/stagelens/internal/lens"
	"github.com/bgricker/stagelens/internal/output"
	"github.com/bgricker/stagelens/internal/pipeline"
	"github.com/bgricker/stagelens/internal/runner"
)

// writerClipboard prints copied text, one entry per line.
type writerClipboard struct {
	out io.Writer
}

func (c writerClipboard) WriteText(text string) error {
	_, err := fmt.Fprintln(c.out, text)
	return err
}

func newActionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions <file> <stage>",
		Short: "Show the action menu for a stage, or perform one with --select",
		Args:  cobra.ExactArgs(2),
		RunE:  runActions,
	}
	cmd.Flags().Int("select", 0, "perform the Nth selectable action (1-based)")
	return cmd
}

func runActions(cmd *cobra.Command, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}

	arg, ok := findStageArg(path, string(data), args[1])
	if !ok {
		return fmt.Errorf("stage %q not found in %s", args[1], path)
	}
	items := actions.Menu(arg)

	selected, err := cmd.Flags().GetInt("select")
	if err != nil {
		return fmt.Errorf("parse --select: %w", err)
	}
	if selected == 0 {
		return renderMenu(cmd, cfg, items)
	}

	item, ok := nthSelectable(items, selected)
	if !ok {
		return fmt.Errorf("--select %d out of range", selected)
	}

	launcher := runner.New(runner.Options{
		Root:   root,
		DVC:    cfg.DVC,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
		DryRun: cfg.DryRun,
	})
	dispatcher := &actions.Dispatcher{
		Launcher:  launcher,
		Clipboard: writerClipboard{out: cmd.OutOrStdout()},
	}
	return dispatcher.Dispatch(cmd.Context(), arg, item)
}

func findStageArg(path, text, name string) (lens.StageArg, bool) {
	for _, st := range pipeline.ExtractStages(text) {
		if st.Name == name {
			return lens.NewStageArg(path, st), true
		}
	}
	return lens.StageArg{}, false
}

func nthSelectable(items []actions.Item, n int) (actions.Item, bool) {
	if n < 1 {
		return actions.Item{}, false
	}
	count := 0
	for _, item := range items {
		if !item.Selectable() {
			continue
		}
		count++
		if count == n {
			return item, true
		}
	}
	return actions.Item{}, false
}

func renderMenu(cmd *cobra.Command, cfg config.Config, items []actions.Item) error {
	switch strings.ToLower(cfg.Format) {
	case config.FormatJSON:
		return output.NewJSON(cmd.OutOrStdout()).Encode(items)
	case config.FormatPretty:
		out := cmd.OutOrStdout()
		n := 0
		for _, item := range items {
			if !item.Selectable() {
				fmt.Fprintf(out, "  %s\n", item.Label)
				continue
			}
			n++
			fmt.Fprintf(out, "%3d. %s", n, item.Label)
			if item.Description != "" {
				fmt.Fprintf(out, "  (%s)", item.Description)
			}
			fmt.Fprintln(out)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}
}
