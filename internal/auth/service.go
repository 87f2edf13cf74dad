// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/gatewarden/gatewarden/internal/observability"
)

// Service orchestrates credential verification and session resolution.
// Each call is an independent unit of work; the only shared mutable state
// is whatever backs the injected UserRepository.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	codec  *SessionCodec
	logger *slog.Logger

	// dummyHash is verified against when a user doesn't exist, so response
	// time does not reveal whether the username is registered. It is produced
	// by the injected hasher at construction so the dummy verification costs
	// the same work as a real one under whatever parameters are configured.
	// The underlying secret is random and discarded; it can never match.
	dummyHash string
}

// NewService creates a Service. All dependencies are required.
func NewService(users UserRepository, hasher PasswordHasher, codec *SessionCodec) (*Service, error) {
	return NewServiceWithLogger(users, hasher, codec, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, hasher PasswordHasher, codec *SessionCodec, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("password hasher is required")
	}
	if codec == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("session codec is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("logger is required")
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").
			With("operation", "generate dummy secret").
			Wrap(err)
	}
	dummyHash, err := hasher.Hash(base64.RawStdEncoding.EncodeToString(secret))
	if err != nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").
			With("operation", "hash dummy secret").
			Wrap(err)
	}

	return &Service{
		users:     users,
		hasher:    hasher,
		codec:     codec,
		logger:    logger,
		dummyHash: dummyHash,
	}, nil
}

// SignUp registers a new user. Validation happens before any store access;
// the hash and the insert are both awaited before returning, so a successful
// result means the row exists. Returns ErrUsernameTaken (wrapped) when the
// username is already registered, including the losing side of a race.
func (s *Service) SignUp(ctx context.Context, username, password string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		observability.RecordAuthOutcome("signup", "invalid_input")
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		observability.RecordAuthOutcome("signup", "invalid_input")
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		observability.RecordAuthOutcome("signup", "error")
		return nil, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(username, hash)
	if err != nil {
		observability.RecordAuthOutcome("signup", "error")
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			observability.RecordAuthOutcome("signup", "username_taken")
			s.logger.Debug("sign-up rejected, username taken", "username", username)
			return nil, oops.Code("AUTH_USERNAME_TAKEN").
				With("username", username).
				Wrap(err)
		}
		observability.RecordAuthOutcome("signup", "error")
		return nil, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}

	observability.RecordAuthOutcome("signup", "success")
	s.logger.Info("user registered", "user_id", user.ID.String(), "username", user.Username)
	return user, nil
}

// LogIn authenticates a username/password pair. Lookup strictly precedes
// verification; a lookup miss still verifies against a dummy hash so the
// response time stays flat. An unknown username and a wrong password carry
// distinct codes internally but both wrap ErrInvalidCredentials, and neither
// is logged above debug. Infrastructure failure is a separate error and must
// never be treated as a credential mismatch.
func (s *Service) LogIn(ctx context.Context, username, password string) (*User, error) {
	user, lookupErr := s.users.GetByUsername(ctx, username)

	targetHash := s.dummyHash
	userExists := false

	switch {
	case lookupErr == nil:
		targetHash = user.PasswordHash
		userExists = true
	case errors.Is(lookupErr, ErrNotFound):
		// Fall through with the dummy hash to keep timing constant.
	default:
		observability.RecordAuthOutcome("login", "error")
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by username").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		observability.RecordAuthOutcome("login", "error")
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !userExists {
		observability.RecordAuthOutcome("login", "unknown_username")
		s.logger.Debug("login rejected, unknown username", "username", username)
		return nil, oops.Code("AUTH_UNKNOWN_USERNAME").Wrap(ErrInvalidCredentials)
	}
	if !valid {
		observability.RecordAuthOutcome("login", "wrong_password")
		s.logger.Debug("login rejected, wrong password", "user_id", user.ID.String())
		return nil, oops.Code("AUTH_WRONG_PASSWORD").Wrap(ErrInvalidCredentials)
	}

	// Transparent re-hash for credentials stored with a legacy algorithm.
	// Best effort: the login succeeds even if the upgrade write fails.
	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		if newHash, hashErr := s.hasher.Hash(password); hashErr == nil {
			if updateErr := s.users.UpdatePassword(ctx, user.ID, newHash); updateErr == nil {
				user.PasswordHash = newHash
			} else {
				s.logger.Warn("password hash upgrade failed", "user_id", user.ID.String(), "error", updateErr)
			}
		}
	}

	observability.RecordAuthOutcome("login", "success")
	s.logger.Info("user logged in", "user_id", user.ID.String())
	return user, nil
}

// IssueSession serializes the authenticated user into a session token for
// the transport layer to deliver (typically as a cookie).
func (s *Service) IssueSession(user *User) (string, error) {
	return s.codec.Serialize(user)
}

// ResolveSession resolves a token to its user. Absent is (nil, nil) and the
// caller must treat it identically to "never logged in". Repeated calls with
// the same valid token return equal users until the record changes.
func (s *Service) ResolveSession(ctx context.Context, token string) (*User, error) {
	user, err := s.codec.Deserialize(ctx, token)
	if err != nil {
		observability.RecordAuthOutcome("resolve", "error")
		return nil, err
	}
	if user == nil {
		observability.RecordAuthOutcome("resolve", "absent")
		return nil, nil
	}
	observability.RecordAuthOutcome("resolve", "resolved")
	return user, nil
}

// LogOut ends a session. Tokens are stateless, so durable invalidation is
// the transport's cookie removal plus the store's revocation-by-deletion;
// the core records the event and succeeds. Idempotent: logging out an
// already-invalid token is not an error.
func (s *Service) LogOut(ctx context.Context, token string) error {
	user, err := s.codec.Deserialize(ctx, token)
	if err != nil {
		return err
	}
	if user != nil {
		s.logger.Info("user logged out", "user_id", user.ID.String())
	}
	observability.RecordAuthOutcome("logout", "success")
	return nil
}
