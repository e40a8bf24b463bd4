package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/bgricker/stagelens/internal/runner"
	"github.com/bgricker/stagelens/internal/version"
)

// buildVersion is overridden with -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the stagelens version and the detected dvc version",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
}

func runVersion(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "stagelens %s\n", resolveBuildVersion())

	info, err := version.DetectDVC(cmd.Context(), runner.Invocation(cfg.DVC, "--version"))
	switch {
	case err == nil:
		fmt.Fprintf(out, "dvc %s\n", info.Version)
	case version.Missing(err):
		fmt.Fprintln(out, "dvc not found")
	default:
		fmt.Fprintf(out, "dvc unknown (%v)\n", err)
	}
	return nil
}

func resolveBuildVersion() string {
	if buildVersion != "dev" {
		return buildVersion
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return buildVersion
}
