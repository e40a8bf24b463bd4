package provider

import "github.com/bgricker/stagelens/internal/pipeline"

// Pipeline is one dvc.yaml file and the stages declared in it.
type Pipeline struct {
	Path   string           `json:"path"`
	Dir    string           `json:"-"`
	Stages []pipeline.Stage `json:"stages"`
}

// Warning captures non-fatal issues encountered while loading pipelines.
type Warning struct {
	Pipeline string `json:"pipeline"`
	Stage    string `json:"stage,omitempty"`
	Message  string `json:"message"`
}

// String formats the warning as path:stage: message.
func (w Warning) String() string {
	return w.Pipeline + ":" + w.Stage + ": " + w.Message
}
