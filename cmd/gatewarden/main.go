// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Command gatewarden manages the authentication core: schema migrations,
// database status, and user administration.
package main

import (
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
