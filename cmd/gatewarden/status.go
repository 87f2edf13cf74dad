// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package main

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gatewarden/gatewarden/internal/store"
)

const defaultStatusTimeout = 10 * time.Second

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show database connectivity and migration state",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (flag, config file, or DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultStatusTimeout)
	defer cancel()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()
	cmd.Println("Database: reachable")

	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return oops.Code("STATUS_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		_ = migrator.Close() //nolint:errcheck // Best effort cleanup after status is reported
	}()

	version, dirty, err := migrator.Version()
	if err != nil {
		return oops.Code("STATUS_FAILED").With("operation", "read migration version").Wrap(err)
	}
	if version == 0 {
		cmd.Println("Migrations: none applied")
	} else {
		cmd.Printf("Migrations: version %d (dirty: %t)\n", version, dirty)
	}
	return nil
}
