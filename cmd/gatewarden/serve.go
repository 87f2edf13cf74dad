// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gatewarden/gatewarden/internal/observability"
	"github.com/gatewarden/gatewarden/internal/store"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the observability endpoints",
		Long: `Run the metrics and health-probe HTTP server against the configured
database. Readiness reflects database connectivity, so orchestrators can gate
traffic on the pool being reachable.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (flag, config file, or DATABASE_URL)")
	}

	ctx := cmd.Context()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	obsServer := observability.NewServer(cfg.MetricsAddr, store.Readiness(pool))
	errCh, err := obsServer.Start()
	if err != nil {
		return oops.Code("SERVE_FAILED").With("addr", cfg.MetricsAddr).Wrap(err)
	}
	slog.Info("serving observability endpoints", "addr", obsServer.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig.String())
	case serveErr, ok := <-errCh:
		if ok && serveErr != nil {
			return oops.Code("SERVE_FAILED").Wrap(serveErr)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := obsServer.Stop(shutdownCtx); err != nil {
		return oops.Code("SERVE_FAILED").With("operation", "stop observability server").Wrap(err)
	}
	return nil
}
