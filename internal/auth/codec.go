// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	// MinSessionKeyLen is the minimum HMAC key length in bytes.
	MinSessionKeyLen = 32

	// DefaultSessionTTL is the default token lifetime.
	DefaultSessionTTL = 24 * time.Hour
)

// SessionCodec maps an authenticated identity to an opaque token and back.
// The token payload is exactly the user id: no password material and no
// mutable profile fields, which bounds token size and avoids staleness.
// Deserialize re-queries the repository on every resolution instead of
// caching a user snapshot in the token; this trades a per-request read for
// correctness under concurrent account changes and revocation-by-deletion.
type SessionCodec struct {
	users UserRepository
	key   []byte
	ttl   time.Duration
}

// NewSessionCodec creates a SessionCodec. The key signs tokens with
// HMAC-SHA256 and must be at least MinSessionKeyLen bytes. A non-positive ttl
// falls back to DefaultSessionTTL.
func NewSessionCodec(users UserRepository, key []byte, ttl time.Duration) (*SessionCodec, error) {
	if users == nil {
		return nil, oops.Code("SESSION_CODEC_INVALID").Errorf("user repository is required")
	}
	if len(key) < MinSessionKeyLen {
		return nil, oops.Code("SESSION_CODEC_INVALID").
			With("min_bytes", MinSessionKeyLen).
			Errorf("signing key must be at least %d bytes", MinSessionKeyLen)
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionCodec{users: users, key: key, ttl: ttl}, nil
}

// Serialize produces a signed token for the user. The subject claim is the
// user id and nothing else crosses into the token.
func (c *SessionCodec) Serialize(user *User) (string, error) {
	if user == nil {
		return "", oops.Code("SESSION_SERIALIZE_FAILED").Errorf("user cannot be nil")
	}
	if user.ID.Compare(ulid.ULID{}) == 0 {
		return "", oops.Code("SESSION_SERIALIZE_FAILED").Errorf("user id cannot be zero")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	})

	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", oops.Code("SESSION_SERIALIZE_FAILED").
			With("operation", "sign token").
			Wrap(err)
	}
	return signed, nil
}

// Deserialize resolves a token back to a user. Absent is (nil, nil): a
// malformed, tampered, or expired token, and a user deleted after issuance,
// are all identical to "never logged in". Only repository failure is an
// error, so callers never mistake infrastructure trouble for a logged-out
// visitor.
func (c *SessionCodec) Deserialize(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, nil
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, nil
	}

	id, err := ulid.Parse(claims.Subject)
	if err != nil {
		return nil, nil
	}

	user, err := c.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code("SESSION_RESOLVE_FAILED").
			With("operation", "get user by id").
			Wrap(err)
	}
	return user, nil
}
