// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package auth is the authentication core of Gatewarden.
//
// # Domain Types
//
// User represents a registered principal and should be created through
// NewUser, which validates the username and assigns the id. Direct struct
// initialization bypasses validation and may create invalid state.
//
// # Services
//
// Service orchestrates the pipeline: credential verification (SignUp, LogIn)
// and session-identity resolution (ResolveSession, LogOut). It depends on a
// UserRepository, a PasswordHasher, and a SessionCodec, all injected through
// NewService so the core is testable with a fake store.
//
// # Sessions
//
// SessionCodec maps an authenticated identity to an opaque token and back.
// The token payload is exactly the user id; every resolution re-queries the
// repository so deleting a user revokes their sessions immediately.
package auth
