package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func configCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config <path>",
		Short: "Write the effective configuration as YAML",
		Long: `Write the configuration in effect (defaults, config file, .env and
ROOMSTAMP_ environment variables) to a YAML file, e.g. to start a new config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.WriteYAML(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
}
