package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/bgricker/stagelens/internal/config"
	"github.com/bgricker/stagelens/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stage extraction over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("addr", config.DefaultServeAddr, "listen address")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return server.Serve(cmd.Context(), cfg.Serve.Addr, func(addr net.Addr) {
		fmt.Fprintf(cmd.ErrOrStderr(), "listening on http://%s\n", addr)
	})
}
