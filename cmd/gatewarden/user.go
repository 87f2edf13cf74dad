// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gatewarden/gatewarden/internal/auth"
	authpg "github.com/gatewarden/gatewarden/internal/auth/postgres"
	"github.com/gatewarden/gatewarden/internal/config"
	"github.com/gatewarden/gatewarden/internal/store"
)

const defaultUserTimeout = 30 * time.Second

// NewUserCmd creates the user subcommand group.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserAddCmd())
	cmd.AddCommand(newUserCheckCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <username>",
		Short: "Register a new user",
		Long: `Register a new user. The password is read from the first line of
stdin so it never appears in the process arguments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, pool, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer pool.Close()

			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), defaultUserTimeout)
			defer cancel()

			user, err := svc.SignUp(ctx, args[0], password)
			if err != nil {
				if errors.Is(err, auth.ErrUsernameTaken) {
					return oops.Code("USER_ADD_FAILED").Errorf("username %q is already taken", args[0])
				}
				return oops.Code("USER_ADD_FAILED").Wrap(err)
			}

			cmd.Printf("Created user %s (id %s)\n", user.Username, user.ID.String())
			return nil
		},
	}
}

func newUserCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <username>",
		Short: "Verify a username/password pair",
		Long: `Verify a username/password pair against the store, exercising the
same pipeline the web layer uses. The password is read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, pool, err := buildService(cmd)
			if err != nil {
				return err
			}
			defer pool.Close()

			password, err := readPassword(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), defaultUserTimeout)
			defer cancel()

			user, err := svc.LogIn(ctx, args[0], password)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidCredentials) {
					cmd.Println("Credentials: invalid")
					return nil
				}
				return oops.Code("USER_CHECK_FAILED").Wrap(err)
			}

			cmd.Printf("Credentials: valid (user id %s)\n", user.ID.String())
			return nil
		},
	}
}

// buildService wires the auth service onto a live pool. The caller owns the
// returned pool and must close it.
func buildService(cmd *cobra.Command) (*auth.Service, interface{ Close() }, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, oops.Code("CONFIG_INVALID").Errorf("database URL is required (flag, config file, or DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultUserTimeout)
	defer cancel()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}

	key, err := sessionKey(cfg)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	users := authpg.NewUserRepository(pool)
	hasher := auth.NewArgon2idHasherWithParams(auth.HasherParams{
		Time:    cfg.HasherTime,
		Memory:  cfg.HasherMemory,
		Threads: cfg.HasherThreads,
	})
	codec, err := auth.NewSessionCodec(users, key, cfg.SessionTTL)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	svc, err := auth.NewService(users, hasher, codec)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return svc, pool, nil
}

// sessionKey returns the configured signing key, or an ephemeral one for
// commands that never hand out tokens.
func sessionKey(cfg *config.Config) ([]byte, error) {
	if cfg.SessionKey != "" {
		return cfg.SessionKeyBytes()
	}
	key := make([]byte, auth.MinSessionKeyLen)
	if _, err := rand.Read(key); err != nil {
		return nil, oops.Code("SESSION_KEY_FAILED").Wrap(err)
	}
	return key, nil
}

// readPassword reads the password from the first line of the command's stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", oops.Code("PASSWORD_READ_FAILED").Wrap(err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
