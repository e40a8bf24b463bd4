// Package actions builds the per-stage action menu and routes a selected
// item to the launcher or the clipboard.
package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/bgricker/stagelens/internal/lens"
)

var (
	// ErrNoCommand indicates neither dvc nor the stage declaration yielded a command.
	ErrNoCommand = errors.New("no command found for this stage")
	// ErrUnknownAction indicates an item kind the dispatcher cannot route.
	ErrUnknownAction = errors.New("unknown action")
)

// Kind identifies what selecting an item does.
type Kind string

const (
	KindRun            Kind = "run"
	KindStatus         Kind = "status"
	KindCopyName       Kind = "copy_name"
	KindCopyCommand    Kind = "copy_command"
	KindSeparator      Kind = "separator"
	KindRunSub         Kind = "run_sub"
	KindStatusSub      Kind = "status_sub"
	KindCopySubName    Kind = "copy_sub_name"
	KindCopySubCommand Kind = "copy_sub_command"
)

// Item is a single menu entry. Target is the stage address it acts on.
type Item struct {
	Kind        Kind   `json:"kind"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Target      string `json:"target,omitempty"`
}

// Selectable reports whether the item performs an action.
func (i Item) Selectable() bool {
	return i.Kind != KindSeparator
}

// Launcher runs dvc commands for a stage address.
type Launcher interface {
	Repro(ctx context.Context, cwd, address string) error
	Status(ctx context.Context, cwd, address string) error
	ResolvedCommand(ctx context.Context, cwd, address string) (string, error)
}

// Clipboard receives copied text.
type Clipboard interface {
	WriteText(text string) error
}

// Menu returns the actions offered for a stage. Group stages get a sub-stage
// section with four entries per resolved address.
func Menu(arg lens.StageArg) []Item {
	group := arg.Type.IsGroup()

	runLabel := "$(play) Run Stage"
	if group {
		runLabel = "$(run-all) Run All"
	}

	items := []Item{
		{Kind: KindRun, Label: runLabel, Description: "dvc repro " + arg.StageName, Target: arg.StageName},
		{Kind: KindStatus, Label: "$(search) Check Status", Description: "dvc status " + arg.StageName, Target: arg.StageName},
		{Kind: KindCopyName, Label: "$(clippy) Copy Stage Name", Description: arg.StageName, Target: arg.StageName},
	}

	if !group && arg.Cmd != "" {
		items = append(items, Item{Kind: KindCopyCommand, Label: "$(copy) Copy Command", Description: arg.Cmd, Target: arg.StageName})
	}

	if !group {
		return items
	}

	items = append(items, Item{Kind: KindSeparator, Label: "Sub-stages"})
	for _, name := range arg.SubStageNames() {
		items = append(items,
			Item{Kind: KindRunSub, Label: "$(play) Run " + name, Description: "dvc repro " + name, Target: name},
			Item{Kind: KindStatusSub, Label: "$(search) Status " + name, Description: "dvc status " + name, Target: name},
			Item{Kind: KindCopySubName, Label: "$(clippy) Copy Name: " + name, Description: name, Target: name},
			Item{Kind: KindCopySubCommand, Label: "$(copy) Copy Cmd: " + name, Description: "(fetches resolved command from DVC)", Target: name},
		)
	}
	return items
}

// Dispatcher routes selected items.
type Dispatcher struct {
	Launcher  Launcher
	Clipboard Clipboard
}

// Run reproduces the whole stage, as the run lens does.
func (d *Dispatcher) Run(ctx context.Context, arg lens.StageArg) error {
	return d.Launcher.Repro(ctx, arg.Cwd, arg.StageName)
}

// Dispatch performs the action behind item for the stage described by arg.
func (d *Dispatcher) Dispatch(ctx context.Context, arg lens.StageArg, item Item) error {
	switch item.Kind {
	case KindRun, KindRunSub:
		return d.Launcher.Repro(ctx, arg.Cwd, item.Target)
	case KindStatus, KindStatusSub:
		return d.Launcher.Status(ctx, arg.Cwd, item.Target)
	case KindCopyName, KindCopySubName:
		return d.Clipboard.WriteText(item.Target)
	case KindCopyCommand:
		return d.copyCommand(ctx, arg)
	case KindCopySubCommand:
		resolved, err := d.Launcher.ResolvedCommand(ctx, arg.Cwd, item.Target)
		if err != nil || resolved == "" {
			return fmt.Errorf("resolve command for %s: %w", item.Target, ErrNoCommand)
		}
		return d.Clipboard.WriteText(resolved)
	case KindSeparator:
		return fmt.Errorf("%q is not selectable: %w", item.Label, ErrUnknownAction)
	default:
		return fmt.Errorf("%q: %w", item.Kind, ErrUnknownAction)
	}
}

// copyCommand prefers the command dvc resolves and falls back to the
// declared one.
func (d *Dispatcher) copyCommand(ctx context.Context, arg lens.StageArg) error {
	resolved, err := d.Launcher.ResolvedCommand(ctx, arg.Cwd, arg.StageName)
	if err == nil && resolved != "" {
		return d.Clipboard.WriteText(resolved)
	}
	if arg.Cmd != "" {
		return d.Clipboard.WriteText(arg.Cmd)
	}
	return ErrNoCommand
}
