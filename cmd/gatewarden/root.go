// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/gatewarden/gatewarden/internal/config"
	"github.com/gatewarden/gatewarden/internal/logging"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Gatewarden CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gatewarden",
		Short: "Gatewarden - username/password authentication core",
		Long: `Gatewarden is an authentication core for server-rendered web
applications: credential verification, durable session identity, and the
accept/reject decision flow, backed by PostgreSQL.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentFlags().String("database-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL)")
	cmd.PersistentFlags().String("log-format", "", "log format (json or text)")

	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewUserCmd())

	return cmd
}

// loadConfig resolves configuration from the config file and flags, and sets
// up the default logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Root().PersistentFlags())
	if err != nil {
		return nil, err
	}
	logging.SetDefault("gatewarden", Version, cfg.LogFormat)
	return cfg, nil
}
