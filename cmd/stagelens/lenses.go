package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bgricker/stagelens/internal/lens"
	"github.com/bgricker/stagelens/internal/output"
)

func newLensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lenses <file>",
		Short: "Print editor lenses for a dvc.yaml as JSON (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE:  runLenses,
	}
	cmd.Flags().String("path", lens.PipelineFileName, "file path reported for stdin input")
	return cmd
}

func runLenses(cmd *cobra.Command, args []string) error {
	path := args[0]
	var data []byte
	var err error
	if path == "-" {
		path, err = cmd.Flags().GetString("path")
		if err != nil {
			return fmt.Errorf("parse --path: %w", err)
		}
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}

	return output.NewJSON(cmd.OutOrStdout()).Encode(lens.Provide(path, string(data)))
}
