package lens

import (
	"testing"

	"github.com/bgricker/stagelens/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `stages:
  prepare:
    cmd: python prepare.py
  train:
    matrix:
      model: [cnn, xgb]
    cmd: python train.py --model ${item.model}
  cleanup:
    foreach: [a, b]
    do:
      cmd: rm -rf ${item}
`

func TestProvideIgnoresOtherFiles(t *testing.T) {
	lenses := Provide("/project/other.yaml", doc)
	require.NotNil(t, lenses)
	assert.Empty(t, lenses)
}

func TestProvideTwoLensesPerStage(t *testing.T) {
	lenses := Provide("/project/dvc.yaml", doc)
	require.Len(t, lenses, 6)

	assert.Equal(t, TitleRun, lenses[0].Title)
	assert.Equal(t, CommandRun, lenses[0].Command)
	assert.Equal(t, TitleMore, lenses[1].Title)
	assert.Equal(t, CommandShowActions, lenses[1].Command)
	assert.Equal(t, TitleRunAll, lenses[2].Title)
	assert.Equal(t, TitleRunAll, lenses[4].Title)

	assert.Equal(t, Position{Line: 1}, lenses[0].Position)
	assert.Equal(t, Position{Line: 3}, lenses[2].Position)
	assert.Equal(t, Position{Line: 7}, lenses[4].Position)
}

func TestProvideArgument(t *testing.T) {
	lenses := Provide("/project/sub/dvc.yaml", doc)
	require.Len(t, lenses, 6)

	arg := lenses[2].Arg
	assert.Equal(t, "train", arg.StageName)
	assert.Equal(t, "/project/sub", arg.Cwd)
	assert.Equal(t, pipeline.TypeMatrix, arg.Type)
	assert.Equal(t, "python train.py --model ${item.model}", arg.Cmd)
	assert.Equal(t, []string{"train@cnn", "train@xgb"}, arg.SubStageNames())

	assert.Equal(t, []string{"cleanup@a", "cleanup@b"}, lenses[4].Arg.SubStageNames())
	assert.Equal(t, []string{"prepare"}, lenses[0].Arg.SubStageNames())
}

func TestProvideUnparsableDocument(t *testing.T) {
	assert.Empty(t, Provide("dvc.yaml", "invalid: yaml: content:"))
}
