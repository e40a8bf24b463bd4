package main

import (
	"github.com/spf13/cobra"

	"github.com/bgricker/stagelens/internal/ctxlog"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stagelens",
		Short:         "Stagelens inspects and runs dvc.yaml pipeline stages",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			logger := ctxlog.New(cmd.ErrOrStderr(), verbose)
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
			return nil
		},
	}

	persistent := cmd.PersistentFlags()
	persistent.StringArray("pipeline", nil, "dvc.yaml file or directory to include (repeatable)")
	persistent.StringArray("stage", nil, "stage name or address filter, substring or /regex/ (repeatable)")
	persistent.Bool("dry-run", false, "print dvc commands without executing them")
	persistent.BoolP("verbose", "v", false, "stream dvc output and enable debug logging")
	persistent.String("format", "pretty", "output format (pretty|json)")
	persistent.Int("jobs", 4, "number of pipeline files read concurrently")
	persistent.String("dvc-cli", "", "path to the dvc executable")
	persistent.String("python", "", "python interpreter used to run `python -m dvc`")
	persistent.String("log-dir", "", "directory receiving one log file per stage address")

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newLensesCmd())
	cmd.AddCommand(newActionsCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
