package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgricker/stagelens/internal/config"
)

func gatherFlags(cmd *cobra.Command) (config.FlagValues, error) {
	flags := cmd.Flags()
	var values config.FlagValues

	if flags.Changed("pipeline") {
		v, err := flags.GetStringArray("pipeline")
		if err != nil {
			return values, fmt.Errorf("parse --pipeline: %w", err)
		}
		values.Pipelines = config.SliceFlag{Values: append([]string{}, v...)}
	}

	if flags.Changed("stage") {
		v, err := flags.GetStringArray("stage")
		if err != nil {
			return values, fmt.Errorf("parse --stage: %w", err)
		}
		values.Stages = config.SliceFlag{Values: append([]string{}, v...)}
	}

	stringFlags := []struct {
		name string
		dst  *config.StringFlag
	}{
		{"format", &values.Format},
		{"log-dir", &values.LogDir},
		{"dvc-cli", &values.DVCCLI},
		{"python", &values.Python},
		{"addr", &values.Addr},
	}
	for _, f := range stringFlags {
		if !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetString(f.name)
		if err != nil {
			return values, fmt.Errorf("parse --%s: %w", f.name, err)
		}
		*f.dst = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("dry-run") {
		v, err := flags.GetBool("dry-run")
		if err != nil {
			return values, fmt.Errorf("parse --dry-run: %w", err)
		}
		values.DryRun = config.BoolFlag{Value: v, Set: true}
	}

	if flags.Changed("verbose") {
		v, err := flags.GetBool("verbose")
		if err != nil {
			return values, fmt.Errorf("parse --verbose: %w", err)
		}
		values.Verbose = config.BoolFlag{Value: v, Set: true}
	}

	if flags.Changed("jobs") {
		v, err := flags.GetInt("jobs")
		if err != nil {
			return values, fmt.Errorf("parse --jobs: %w", err)
		}
		values.Jobs = config.IntFlag{Value: v, Set: true}
	}

	return values, nil
}
