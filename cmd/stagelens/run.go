package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bgricker/stagelens/internal/config"
	"github.com/bgricker/stagelens/internal/filter"
	"github.com/bgricker/stagelens/internal/output"
	"github.com/bgricker/stagelens/internal/pipeline"
	"github.com/bgricker/stagelens/internal/provider"
	"github.com/bgricker/stagelens/internal/runner"
)

var errStagesFailed = errors.New("one or more stages failed")

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [address...]",
		Short: "Reproduce stages with `dvc repro`",
		Long: "Reproduce the given stage addresses, or every selected stage when none are given.\n" +
			"Group stages run as a whole unless --stage narrows them to individual sub-stages.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDVC(cmd, runner.CommandRepro, args)
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [address...]",
		Short: "Check stage status with `dvc status`",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDVC(cmd, runner.CommandStatus, args)
		},
	}
}

func runDVC(cmd *cobra.Command, command string, args []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	data, err := loadPipeline(cmd.Context(), root, cfg)
	if err != nil {
		return err
	}

	var targets []runner.Target
	stageCount := 0
	if len(args) > 0 {
		targets, err = targetsForAddresses(data.pipelines, args)
		if err != nil {
			return err
		}
		stageCount = len(targets)
	} else {
		filtered, patterns, err := applyFilters(data, cfg)
		if err != nil {
			return err
		}
		data = filtered
		targets = selectTargets(filtered.pipelines, patterns)
		for _, p := range filtered.pipelines {
			stageCount += len(p.Stages)
		}
	}

	if len(targets) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching stages")
		return nil
	}

	execRunner := runner.New(runner.Options{
		Root:      root,
		DVC:       cfg.DVC,
		Stdout:    cmd.OutOrStdout(),
		Stderr:    cmd.ErrOrStderr(),
		Verbose:   cfg.Verbose,
		DryRun:    cfg.DryRun,
		TailLines: 20,
		LogDir:    cfg.LogDir,
	})
	results, summary, err := execRunner.Run(cmd.Context(), command, targets)
	if err != nil {
		return err
	}
	summary.TotalStages = stageCount

	switch strings.ToLower(cfg.Format) {
	case config.FormatPretty:
		if err := output.NewPretty(cmd.OutOrStdout()).RenderResults(results, summary); err != nil {
			return err
		}
		if err := output.NewPretty(cmd.ErrOrStderr()).RenderWarnings(data.warnings); err != nil {
			return err
		}
	case config.FormatJSON:
		rep := output.Report{
			Pipelines: data.pipelines,
			Results:   results,
			Summary:   &summary,
			Warnings:  output.WarningStrings(data.warnings),
		}
		if err := output.NewJSON(cmd.OutOrStdout()).Render(rep); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}

	if summary.ExitCode != 0 {
		return errStagesFailed
	}
	return nil
}

// selectTargets runs a stage by name when it is selected as a whole and falls
// back to the matching sub-stage addresses otherwise.
func selectTargets(pipelines []provider.Pipeline, patterns []filter.Pattern) []runner.Target {
	var targets []runner.Target
	for _, p := range pipelines {
		for _, st := range p.Stages {
			addresses := filter.Addresses(st, patterns)
			if len(addresses) == len(pipeline.SubStageNames(st)) {
				addresses = []string{st.Name}
			}
			for _, addr := range addresses {
				targets = append(targets, runner.Target{Pipeline: p.Path, Dir: p.Dir, Address: addr})
			}
		}
	}
	return targets
}

// targetsForAddresses locates the pipeline declaring each address.
func targetsForAddresses(pipelines []provider.Pipeline, addresses []string) ([]runner.Target, error) {
	targets := make([]runner.Target, 0, len(addresses))
	for _, addr := range addresses {
		p, ok := findPipeline(pipelines, addr)
		if !ok {
			return nil, fmt.Errorf("unknown stage address %q", addr)
		}
		targets = append(targets, runner.Target{Pipeline: p.Path, Dir: p.Dir, Address: addr})
	}
	return targets, nil
}

func findPipeline(pipelines []provider.Pipeline, addr string) (provider.Pipeline, bool) {
	for _, p := range pipelines {
		for _, st := range p.Stages {
			if st.Name == addr {
				return p, true
			}
			for _, name := range pipeline.SubStageNames(st) {
				if name == addr {
					return p, true
				}
			}
		}
	}
	return provider.Pipeline{}, false
}
