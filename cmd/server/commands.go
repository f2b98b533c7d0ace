package main

import (
	"projecthub/internal/config"
	"projecthub/internal/logger"
	"projecthub/internal/server"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	port     string
	logLevel string
}

// newRootCommand builds the CLI. With no subcommand it behaves like serve.
func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "projecthub",
		Short:         "ProjectHub API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.port, "port", "", "listen port (overrides SERVER_PORT)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(opts)
			db, err := server.OpenDB(cfg)
			if err != nil {
				return err
			}
			return server.Migrate(db)
		},
	}
}

func loadConfig(opts *rootOptions) *config.Config {
	cfg := config.Load()
	if opts.port != "" {
		cfg.ServerPort = opts.port
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	logger.Init(cfg.LogLevel)
	return cfg
}

func runServe(opts *rootOptions) error {
	s, err := server.Init(loadConfig(opts))
	if err != nil {
		return err
	}
	return s.Run()
}
