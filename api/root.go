package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/neu-csye6225/webapp/internal/config"
	"github.com/neu-csye6225/webapp/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

var opts rootOptions

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "webapp",
		Short:         "File storage service",
		Long:          "Stores uploaded files in an S3 bucket and keeps their metadata in PostgreSQL or SQLite.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       fmt.Sprintf("%s.%s", version, commit),
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (yaml, json or .env); environment variables take precedence")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "overrides LOG_LEVEL (debug, info, warn, error)")

	return cmd
}

// loadConfig loads configuration and builds the logger every command shares.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	return cfg, logging.New(cfg.Log), nil
}
