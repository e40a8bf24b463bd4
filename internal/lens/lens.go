// Package lens turns extracted stages into positioned editor affordances.
package lens

import (
	"path/filepath"

	"github.com/bgricker/stagelens/internal/pipeline"
)

// PipelineFileName is the only file name lenses are produced for.
const PipelineFileName = "dvc.yaml"

// Command identifiers attached to lenses.
const (
	CommandRun         = "dvc.stage.run"
	CommandShowActions = "dvc.stage.showActions"
)

// Lens titles.
const (
	TitleRun    = "$(play) Run"
	TitleRunAll = "$(run-all) Run All"
	TitleMore   = "$(ellipsis) More"
)

// StageArg is the argument every lens and menu action carries.
type StageArg struct {
	StageName string             `json:"stage_name"`
	Cwd       string             `json:"cwd"`
	Cmd       string             `json:"cmd,omitempty"`
	Type      pipeline.StageType `json:"type"`
	Matrix    pipeline.Axes      `json:"matrix,omitempty"`
	Foreach   []string           `json:"foreach"`
}

// Stage rebuilds the stage record the argument was derived from.
func (a StageArg) Stage() pipeline.Stage {
	return pipeline.Stage{
		Name:    a.StageName,
		Type:    a.Type,
		Cmd:     a.Cmd,
		Matrix:  a.Matrix,
		Foreach: a.Foreach,
	}
}

// SubStageNames returns the addresses the argument's stage expands to.
func (a StageArg) SubStageNames() []string {
	return pipeline.SubStageNames(a.Stage())
}

// Position is a zero-based line/column pair.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Lens is a clickable affordance anchored at a stage's key.
type Lens struct {
	Position Position `json:"position"`
	Title    string   `json:"title"`
	Command  string   `json:"command"`
	Arg      StageArg `json:"arg"`
}

// NewStageArg builds the lens argument for a stage found in the file at path.
func NewStageArg(path string, s pipeline.Stage) StageArg {
	return StageArg{
		StageName: s.Name,
		Cwd:       filepath.Dir(path),
		Cmd:       s.Cmd,
		Type:      s.Type,
		Matrix:    s.Matrix,
		Foreach:   s.Foreach,
	}
}

// Provide returns two lenses per stage of the dvc.yaml at path: a run lens and
// a lens opening the action menu. Other files get none.
func Provide(path, text string) []Lens {
	if filepath.Base(path) != PipelineFileName {
		return []Lens{}
	}
	return ForStages(path, pipeline.ExtractStages(text))
}

// ForStages builds lenses for already extracted stages.
func ForStages(path string, stages []pipeline.Stage) []Lens {
	lenses := make([]Lens, 0, len(stages)*2)
	for _, s := range stages {
		pos := Position{Line: s.Line - 1}
		arg := NewStageArg(path, s)

		title := TitleRun
		if s.Type.IsGroup() {
			title = TitleRunAll
		}
		lenses = append(lenses,
			Lens{Position: pos, Title: title, Command: CommandRun, Arg: arg},
			Lens{Position: pos, Title: TitleMore, Command: CommandShowActions, Arg: arg},
		)
	}
	return lenses
}
