package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bgricker/stagelens/internal/config"
	"github.com/bgricker/stagelens/internal/output"
	"github.com/bgricker/stagelens/internal/pipeline"
	"github.com/bgricker/stagelens/internal/provider"
	"github.com/bgricker/stagelens/internal/report"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pipeline stages and their sub-stage addresses",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, root, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	data, err := loadPipeline(cmd.Context(), root, cfg)
	if err != nil {
		return err
	}

	filtered, _, err := applyFilters(data, cfg)
	if err != nil {
		return err
	}

	return renderList(cmd, cfg, filtered.pipelines, filtered.warnings)
}

func renderList(cmd *cobra.Command, cfg config.Config, pipelines []provider.Pipeline, warnings []provider.Warning) error {
	if len(pipelines) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching stages")
		return nil
	}

	switch strings.ToLower(cfg.Format) {
	case config.FormatPretty:
		renderer := output.NewPretty(cmd.OutOrStdout())
		if err := renderer.RenderList(pipelines); err != nil {
			return err
		}
		return output.NewPretty(cmd.ErrOrStderr()).RenderWarnings(warnings)
	case config.FormatJSON:
		summary := computeListSummary(pipelines)
		rep := output.Report{
			Pipelines: pipelines,
			Summary:   &summary,
			Warnings:  output.WarningStrings(warnings),
		}
		return output.NewJSON(cmd.OutOrStdout()).Render(rep)
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}
}

func computeListSummary(pipelines []provider.Pipeline) report.Summary {
	var stages, addresses int
	for _, p := range pipelines {
		stages += len(p.Stages)
		for _, st := range p.Stages {
			addresses += len(pipeline.SubStageNames(st))
		}
	}
	return report.Summary{
		TotalPipelines: len(pipelines),
		TotalStages:    stages,
		TotalAddresses: addresses,
	}
}
