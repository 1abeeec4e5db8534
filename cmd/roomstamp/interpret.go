package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ghjez/ba-backend/internal/conf"
	"github.com/ghjez/ba-backend/internal/pipeline"
)

func interpretCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interpret <results.json>",
		Short: "Parse the fields of an earlier run again",
		Long: `Read results.json from an earlier extract run and parse its fields into
rooms again, rewriting floor.json, the floor tables and, where the copy of
the drawing is still present, the floor overlays.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.cfg
			// Parsing needs no recognizer.
			cfg.Recognizer.Mode = conf.RecognizerNone

			pipe, err := pipeline.New(&cfg)
			if err != nil {
				return err
			}
			defer pipe.Close()

			floors, err := pipe.Reinterpret(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for name, floor := range floors {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rooms\n", name, len(floor))
			}
			return nil
		},
	}
}
