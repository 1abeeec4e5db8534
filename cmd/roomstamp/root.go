package main

import (
	"github.com/spf13/cobra"

	"github.com/ghjez/ba-backend/internal/conf"
	"github.com/ghjez/ba-backend/internal/logger"
)

// app carries the state shared by all subcommands.
type app struct {
	configFile string
	output     string
	logLevel   string
	logFile    string

	cfg *conf.Config
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "roomstamp",
		Short:         "Extract room stamps from scanned architectural drawings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Path to configuration file")
	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", "", "Output directory (overrides paths.output)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "Also write JSON logs to this file")

	cmd.AddCommand(
		extractCommand(a),
		parseCommand(a),
		interpretCommand(a),
		tilesCommand(a),
		serveCommand(a),
		configCommand(a),
		versionCommand(),
	)
	return cmd
}

// init loads the configuration and sets up logging. Flags win over the
// config file and the environment.
func (a *app) init() error {
	cfg, err := conf.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.output != "" {
		cfg.Paths.Output = a.output
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFile != "" {
		cfg.Logging.FilePath = a.logFile
	}
	a.cfg = cfg

	return logger.Init(logger.Config{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.FilePath,
	})
}
