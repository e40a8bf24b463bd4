package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/bgricker/stagelens/internal/lens"
	"github.com/bgricker/stagelens/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op      string
	cwd     string
	address string
}

type fakeLauncher struct {
	calls    []call
	resolved map[string]string
	err      error
}

func (f *fakeLauncher) Repro(_ context.Context, cwd, address string) error {
	f.calls = append(f.calls, call{"repro", cwd, address})
	return f.err
}

func (f *fakeLauncher) Status(_ context.Context, cwd, address string) error {
	f.calls = append(f.calls, call{"status", cwd, address})
	return f.err
}

func (f *fakeLauncher) ResolvedCommand(_ context.Context, cwd, address string) (string, error) {
	f.calls = append(f.calls, call{"resolve", cwd, address})
	if cmd, ok := f.resolved[address]; ok {
		return cmd, nil
	}
	return "", errors.New("dvc failed")
}

type fakeClipboard struct {
	texts []string
}

func (f *fakeClipboard) WriteText(text string) error {
	f.texts = append(f.texts, text)
	return nil
}

func simpleArg() lens.StageArg {
	return lens.StageArg{StageName: "prepare", Cwd: "/project", Cmd: "python prepare.py", Type: pipeline.TypeSimple}
}

func matrixArg() lens.StageArg {
	return lens.StageArg{
		StageName: "train",
		Cwd:       "/project",
		Cmd:       "python train.py",
		Type:      pipeline.TypeMatrix,
		Matrix:    pipeline.Axes{{Name: "model", Values: []string{"cnn", "xgb"}}},
	}
}

func TestMenuSimpleStage(t *testing.T) {
	items := Menu(simpleArg())
	require.Len(t, items, 4)
	assert.Equal(t, "$(play) Run Stage", items[0].Label)
	assert.Equal(t, "dvc repro prepare", items[0].Description)
	assert.Equal(t, KindStatus, items[1].Kind)
	assert.Equal(t, KindCopyName, items[2].Kind)
	assert.Equal(t, Item{Kind: KindCopyCommand, Label: "$(copy) Copy Command", Description: "python prepare.py", Target: "prepare"}, items[3])
}

func TestMenuSimpleStageWithoutCommand(t *testing.T) {
	arg := simpleArg()
	arg.Cmd = ""
	items := Menu(arg)
	assert.Len(t, items, 3)
}

func TestMenuGroupStage(t *testing.T) {
	items := Menu(matrixArg())
	require.Len(t, items, 4+2*4)

	assert.Equal(t, "$(run-all) Run All", items[0].Label)
	assert.Equal(t, KindSeparator, items[3].Kind)
	assert.False(t, items[3].Selectable())

	assert.Equal(t, Item{Kind: KindRunSub, Label: "$(play) Run train@cnn", Description: "dvc repro train@cnn", Target: "train@cnn"}, items[4])
	assert.Equal(t, KindStatusSub, items[5].Kind)
	assert.Equal(t, "$(clippy) Copy Name: train@cnn", items[6].Label)
	assert.Equal(t, "$(copy) Copy Cmd: train@cnn", items[7].Label)
	assert.Equal(t, "train@xgb", items[8].Target)
}

func TestDispatchRoutesToLauncher(t *testing.T) {
	launcher := &fakeLauncher{}
	d := &Dispatcher{Launcher: launcher, Clipboard: &fakeClipboard{}}
	ctx := context.Background()
	items := Menu(matrixArg())

	require.NoError(t, d.Dispatch(ctx, matrixArg(), items[0]))
	require.NoError(t, d.Dispatch(ctx, matrixArg(), items[1]))
	require.NoError(t, d.Dispatch(ctx, matrixArg(), items[4]))
	require.NoError(t, d.Dispatch(ctx, matrixArg(), items[9]))

	assert.Equal(t, []call{
		{"repro", "/project", "train"},
		{"status", "/project", "train"},
		{"repro", "/project", "train@cnn"},
		{"status", "/project", "train@xgb"},
	}, launcher.calls)
}

func TestDispatchCopyName(t *testing.T) {
	clip := &fakeClipboard{}
	d := &Dispatcher{Launcher: &fakeLauncher{}, Clipboard: clip}
	items := Menu(matrixArg())

	require.NoError(t, d.Dispatch(context.Background(), matrixArg(), items[2]))
	require.NoError(t, d.Dispatch(context.Background(), matrixArg(), items[6]))
	assert.Equal(t, []string{"train", "train@cnn"}, clip.texts)
}

func TestDispatchCopyCommandPrefersResolved(t *testing.T) {
	clip := &fakeClipboard{}
	launcher := &fakeLauncher{resolved: map[string]string{"prepare": "python prepare.py --seed 1"}}
	d := &Dispatcher{Launcher: launcher, Clipboard: clip}

	require.NoError(t, d.Dispatch(context.Background(), simpleArg(), Menu(simpleArg())[3]))
	assert.Equal(t, []string{"python prepare.py --seed 1"}, clip.texts)
}

func TestDispatchCopyCommandFallsBack(t *testing.T) {
	clip := &fakeClipboard{}
	d := &Dispatcher{Launcher: &fakeLauncher{}, Clipboard: clip}

	require.NoError(t, d.Dispatch(context.Background(), simpleArg(), Menu(simpleArg())[3]))
	assert.Equal(t, []string{"python prepare.py"}, clip.texts)

	arg := simpleArg()
	arg.Cmd = ""
	err := d.Dispatch(context.Background(), arg, Item{Kind: KindCopyCommand, Target: "prepare"})
	assert.ErrorIs(t, err, ErrNoCommand)
}

func TestDispatchCopySubCommand(t *testing.T) {
	clip := &fakeClipboard{}
	launcher := &fakeLauncher{resolved: map[string]string{"train@cnn": "python train.py --model cnn"}}
	d := &Dispatcher{Launcher: launcher, Clipboard: clip}
	items := Menu(matrixArg())

	require.NoError(t, d.Dispatch(context.Background(), matrixArg(), items[7]))
	assert.Equal(t, []string{"python train.py --model cnn"}, clip.texts)

	err := d.Dispatch(context.Background(), matrixArg(), items[11])
	assert.ErrorIs(t, err, ErrNoCommand)
}

func TestDispatchRejectsSeparatorAndUnknown(t *testing.T) {
	d := &Dispatcher{Launcher: &fakeLauncher{}, Clipboard: &fakeClipboard{}}
	assert.ErrorIs(t, d.Dispatch(context.Background(), matrixArg(), Item{Kind: KindSeparator}), ErrUnknownAction)
	assert.ErrorIs(t, d.Dispatch(context.Background(), matrixArg(), Item{Kind: "bogus"}), ErrUnknownAction)
}

func TestRunUsesStageName(t *testing.T) {
	launcher := &fakeLauncher{}
	d := &Dispatcher{Launcher: launcher}
	require.NoError(t, d.Run(context.Background(), matrixArg()))
	assert.Equal(t, []call{{"repro", "/project", "train"}}, launcher.calls)
}
