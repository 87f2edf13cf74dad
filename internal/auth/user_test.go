// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/auth"
	"github.com/gatewarden/gatewarden/pkg/errutil"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid simple", "alice", false},
		{"valid with numbers", "alice42", false},
		{"valid with underscore", "alice_b", false},
		{"valid mixed case", "AliceB", false},
		{"valid minimum length", "abc", false},
		{"valid maximum length", strings.Repeat("a", auth.MaxUsernameLength), false},
		{"empty", "", true},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", auth.MaxUsernameLength+1), true},
		{"starts with number", "1alice", true},
		{"starts with underscore", "_alice", true},
		{"contains space", "alice b", true},
		{"contains hyphen", "alice-b", true},
		{"contains unicode", "alicé", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidateUsername(tt.username)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "AUTH_INVALID_USERNAME")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	t.Run("accepts minimum length", func(t *testing.T) {
		assert.NoError(t, auth.ValidatePassword(strings.Repeat("x", auth.MinPasswordLength)))
	})

	t.Run("rejects empty", func(t *testing.T) {
		err := auth.ValidatePassword("")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_PASSWORD")
	})

	t.Run("rejects too short", func(t *testing.T) {
		err := auth.ValidatePassword("short")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_PASSWORD")
	})
}

func TestNewUser(t *testing.T) {
	t.Run("assigns id and timestamps", func(t *testing.T) {
		user, err := auth.NewUser("alice", "$argon2id$v=19$m=65536,t=1,p=4$salt$hash")
		require.NoError(t, err)
		assert.NotEqual(t, ulid.ULID{}, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.False(t, user.CreatedAt.IsZero())
		assert.Equal(t, user.CreatedAt, user.UpdatedAt)
	})

	t.Run("assigns distinct ids", func(t *testing.T) {
		u1, err := auth.NewUser("alice", "hash")
		require.NoError(t, err)
		u2, err := auth.NewUser("bob", "hash")
		require.NoError(t, err)
		assert.NotEqual(t, u1.ID, u2.ID)
	})

	t.Run("rejects invalid username", func(t *testing.T) {
		_, err := auth.NewUser("", "hash")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_USERNAME")
	})

	t.Run("rejects empty hash", func(t *testing.T) {
		_, err := auth.NewUser("alice", "")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_EMPTY_HASH")
	})
}
