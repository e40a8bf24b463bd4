package report

import "time"

// Status values recorded for a stage invocation.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// StageResult captures the outcome of a single dvc invocation.
type StageResult struct {
	Pipeline   string        `json:"pipeline"`
	Address    string        `json:"address"`
	Command    string        `json:"command"`
	Argv       []string      `json:"argv"`
	Status     string        `json:"status"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
	Stdout     string        `json:"stdout,omitempty"`
	Stderr     string        `json:"stderr,omitempty"`
	ExitCode   int           `json:"exit_code"`
	DryRun     bool          `json:"dry_run"`
	LogFile    string        `json:"log_file,omitempty"`
}

// Summary aggregates results of one run.
type Summary struct {
	RunID          string        `json:"run_id,omitempty"`
	TotalPipelines int           `json:"total_pipelines"`
	TotalStages    int           `json:"total_stages"`
	TotalAddresses int           `json:"total_addresses"`
	Passed         int           `json:"passed"`
	Failed         int           `json:"failed"`
	Skipped        int           `json:"skipped"`
	Duration       time.Duration `json:"-"`
	DurationMS     int64         `json:"duration_ms"`
	ExitCode       int           `json:"exit_code"`
}
