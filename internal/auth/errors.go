// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameTaken is returned when a sign-up collides with an existing
// username. Repositories map the store's unique-constraint violation to this
// sentinel so racing sign-ups surface as a typed, user-facing outcome.
var ErrUsernameTaken = errors.New("username already taken")

// ErrInvalidCredentials is returned by LogIn for both an unknown username and
// a wrong password. The two cases carry distinct oops codes for logs and
// metrics, but callers rendering a message should only test against this
// sentinel; surfacing the difference to the end user leaks account existence.
var ErrInvalidCredentials = errors.New("invalid username or password")
