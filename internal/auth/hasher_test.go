// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatewarden/gatewarden/internal/auth"
)

// testHasherParams keeps argon2 cheap so the suite stays fast. Production
// defaults are exercised once in TestHashPassword_DefaultParams.
var testHasherParams = auth.HasherParams{
	Time:    1,
	Memory:  1024, // 1 MiB
	Threads: 1,
	SaltLen: 16,
	KeyLen:  32,
}

func TestHashPassword(t *testing.T) {
	hasher := auth.NewArgon2idHasherWithParams(testHasherParams)

	t.Run("produces valid hash", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	})

	t.Run("different passwords produce different hashes", func(t *testing.T) {
		hash1, err := hasher.Hash("password1")
		require.NoError(t, err)
		hash2, err := hasher.Hash("password2")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)

		ok, err := hasher.Verify("samepassword", hash1)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = hasher.Verify("samepassword", hash2)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.Error(t, err)
	})
}

func TestHashPassword_DefaultParams(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	hash, err := hasher.Hash("correcthorse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))

	ok, err := hasher.Verify("correcthorse", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPassword(t *testing.T) {
	hasher := auth.NewArgon2idHasherWithParams(testHasherParams)

	t.Run("correct password verifies", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)

		ok, err := hasher.Verify("correctpassword", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("incorrect password fails", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)

		ok, err := hasher.Verify("wrongpassword", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("cost is read from the hash itself", func(t *testing.T) {
		// A hash produced with one work factor still verifies with a hasher
		// configured for another.
		hash, err := hasher.Hash("portable")
		require.NoError(t, err)

		other := auth.NewArgon2idHasherWithParams(auth.HasherParams{
			Time: 2, Memory: 2048, Threads: 2, SaltLen: 16, KeyLen: 32,
		})
		ok, err := other.Verify("portable", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	// Malformed hashes must be indistinguishable from a wrong password.
	t.Run("invalid hash format verifies false without error", func(t *testing.T) {
		tests := []struct {
			name string
			hash string
		}{
			{"not a hash", "not-a-valid-hash"},
			{"empty", ""},
			{"wrong algorithm", "$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
			{"bad version", "$argon2id$vXX$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
			{"bad params", "$argon2id$v=19$mXX$c2FsdA$aGFzaA"},
			{"bad salt encoding", "$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA"},
			{"bad digest encoding", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!"},
			{"too many threads", "$argon2id$v=19$m=65536,t=1,p=300$c2FsdA$aGFzaA"},
			{"zero iterations", "$argon2id$v=19$m=65536,t=0,p=4$c2FsdA$aGFzaA"},
			{"zero parallelism", "$argon2id$v=19$m=65536,t=1,p=0$c2FsdA$aGFzaA"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ok, err := hasher.Verify("password", tt.hash)
				require.NoError(t, err)
				assert.False(t, ok)
			})
		}
	})
}

func TestVerifyPassword_BcryptFallback(t *testing.T) {
	hasher := auth.NewArgon2idHasherWithParams(testHasherParams)

	legacy, err := bcrypt.GenerateFromPassword([]byte("legacypass"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("correct password verifies against bcrypt hash", func(t *testing.T) {
		ok, err := hasher.Verify("legacypass", string(legacy))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("incorrect password fails against bcrypt hash", func(t *testing.T) {
		ok, err := hasher.Verify("wrongpass", string(legacy))
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestNeedsUpgrade(t *testing.T) {
	hasher := auth.NewArgon2idHasherWithParams(testHasherParams)

	t.Run("argon2id hash does not need upgrade", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.False(t, hasher.NeedsUpgrade(hash))
	})

	t.Run("bcrypt hash needs upgrade", func(t *testing.T) {
		legacy, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
		require.NoError(t, err)
		assert.True(t, hasher.NeedsUpgrade(string(legacy)))
	})
}

func TestHasherParams_ZeroFieldsUseDefaults(t *testing.T) {
	hasher := auth.NewArgon2idHasherWithParams(auth.HasherParams{})

	hash, err := hasher.Hash("password123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))
}
