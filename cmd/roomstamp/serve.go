package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ghjez/ba-backend/internal/pipeline"
	"github.com/ghjez/ba-backend/internal/server"
)

func serveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server on stdin/stdout",
		Long: `Serve the room stamp tools over MCP (JSON-RPC 2.0, one message per line)
on stdin and stdout. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, err := pipeline.New(a.cfg)
			if err != nil {
				return err
			}
			defer pipe.Close()

			server.Version = Version
			return server.New(a.cfg, pipe).Run(cmd.Context(), os.Stdin, os.Stdout)
		},
	}
}
