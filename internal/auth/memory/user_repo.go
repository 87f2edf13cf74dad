// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package memory provides an in-memory auth.UserRepository for tests and for
// embedding without a database. It enforces the same case-insensitive
// username uniqueness as the PostgreSQL implementation, atomically under a
// single mutex, so racing sign-ups behave identically.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gatewarden/gatewarden/internal/auth"
)

// UserRepository implements auth.UserRepository in memory.
type UserRepository struct {
	mu         sync.RWMutex
	byID       map[ulid.ULID]*auth.User
	byUsername map[string]ulid.ULID // key is lowercased username
}

// NewUserRepository creates an empty in-memory repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[ulid.ULID]*auth.User),
		byUsername: make(map[string]ulid.ULID),
	}
}

// Create stores a new user. The uniqueness check and the insert happen under
// one lock, so exactly one of two concurrent duplicate sign-ups succeeds.
func (r *UserRepository) Create(_ context.Context, user *auth.User) error {
	key := strings.ToLower(user.Username)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[key]; exists {
		return auth.ErrUsernameTaken
	}

	clone := *user
	r.byID[user.ID] = &clone
	r.byUsername[key] = user.ID
	return nil
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

// GetByUsername retrieves a user by username (case-insensitive).
func (r *UserRepository) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, auth.ErrNotFound
	}
	clone := *r.byID[id]
	return &clone, nil
}

// UpdatePassword updates only the password hash for a user.
func (r *UserRepository) UpdatePassword(_ context.Context, id ulid.ULID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()
	return nil
}

// Delete removes a user.
func (r *UserRepository) Delete(_ context.Context, id ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	delete(r.byUsername, strings.ToLower(user.Username))
	delete(r.byID, id)
	return nil
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
