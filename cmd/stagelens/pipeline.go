package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bgricker/stagelens/internal/config"
	"github.com/bgricker/stagelens/internal/discovery"
	"github.com/bgricker/stagelens/internal/filter"
	"github.com/bgricker/stagelens/internal/provider"
	dvcprovider "github.com/bgricker/stagelens/internal/provider/dvc"
	"github.com/bgricker/stagelens/internal/runner"
	"github.com/bgricker/stagelens/internal/version"
)

// pipelineData bundles extracted pipelines with warnings.
type pipelineData struct {
	pipelines []provider.Pipeline
	warnings  []provider.Warning
}

func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	root, err := os.Getwd()
	if err != nil {
		return config.Config{}, "", fmt.Errorf("determine working directory: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return config.Config{}, "", err
	}

	flags, err := gatherFlags(cmd)
	if err != nil {
		return config.Config{}, "", err
	}
	config.ApplyFlags(&cfg, flags)
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, "", err
	}

	return cfg, root, nil
}

func loadPipeline(ctx context.Context, root string, cfg config.Config) (pipelineData, error) {
	paths, err := discovery.Pipelines(root, cfg.Pipelines)
	if err != nil {
		if errors.Is(err, discovery.ErrNoPipelines) {
			return pipelineData{}, fmt.Errorf("no dvc.yaml found; specify --pipeline to provide files")
		}
		return pipelineData{}, err
	}

	loader := dvcprovider.NewLoader(root, cfg.Jobs)
	pipelines, warnings, err := loader.Load(ctx, paths)
	if err != nil {
		return pipelineData{}, err
	}
	warnings = append(warnings, detectVersionWarnings(ctx, cfg)...)
	return pipelineData{pipelines: pipelines, warnings: warnings}, nil
}

func applyFilters(data pipelineData, cfg config.Config) (pipelineData, []filter.Pattern, error) {
	patterns, err := filter.Compile(cfg.Stages)
	if err != nil {
		return pipelineData{}, nil, err
	}
	filtered := filter.FilterPipelines(data.pipelines, patterns)
	return pipelineData{pipelines: filtered, warnings: data.warnings}, patterns, nil
}

func detectVersionWarnings(ctx context.Context, cfg config.Config) []provider.Warning {
	if !cfg.Warn.VersionMismatchEnabled() || cfg.RequiredDVCVersion == "" {
		return nil
	}

	info, detectErr := version.DetectDVC(ctx, runner.Invocation(cfg.DVC, "--version"))
	warn := buildVersionWarning("dvc", cfg.RequiredDVCVersion, info.Version, detectErr)
	if warn == "" {
		return nil
	}
	return []provider.Warning{{Pipeline: config.FileName, Message: warn}}
}

func buildVersionWarning(name, required, actual string, detectErr error) string {
	if detectErr != nil {
		if version.Missing(detectErr) {
			return fmt.Sprintf("%s executable not found; required %s", name, required)
		}
		return fmt.Sprintf("unable to detect %s version: %v", name, detectErr)
	}
	if !version.CompareMajorMinor(required, actual) {
		return fmt.Sprintf("%s version mismatch: required %s (from %s) but found %s", name, required, config.FileName, actual)
	}
	return ""
}
