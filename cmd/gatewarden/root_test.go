// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	t.Run("registers subcommands", func(t *testing.T) {
		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		assert.Contains(t, names, "migrate")
		assert.Contains(t, names, "serve")
		assert.Contains(t, names, "status")
		assert.Contains(t, names, "user")
	})

	t.Run("declares persistent flags", func(t *testing.T) {
		for _, name := range []string{"config", "database-url", "log-format"} {
			assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing flag %q", name)
		}
	})

	t.Run("user group has add and check", func(t *testing.T) {
		user, _, err := cmd.Find([]string{"user"})
		require.NoError(t, err)
		names := make([]string, 0, len(user.Commands()))
		for _, sub := range user.Commands() {
			names = append(names, sub.Name())
		}
		assert.Contains(t, names, "add")
		assert.Contains(t, names, "check")
	})
}

func TestRootCmd_Help(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "authentication core")
}

func TestUserAdd_RequiresUsernameArg(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"user", "add"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arg")
}

func TestReadPassword(t *testing.T) {
	cmd := NewRootCmd()

	t.Run("reads first line", func(t *testing.T) {
		cmd.SetIn(strings.NewReader("hunter22\nsecond line\n"))
		password, err := readPassword(cmd)
		require.NoError(t, err)
		assert.Equal(t, "hunter22", password)
	})

	t.Run("strips trailing CRLF", func(t *testing.T) {
		cmd.SetIn(strings.NewReader("hunter22\r\n"))
		password, err := readPassword(cmd)
		require.NoError(t, err)
		assert.Equal(t, "hunter22", password)
	})

	t.Run("accepts input without newline", func(t *testing.T) {
		cmd.SetIn(strings.NewReader("hunter22"))
		password, err := readPassword(cmd)
		require.NoError(t, err)
		assert.Equal(t, "hunter22", password)
	})

	t.Run("fails on empty input", func(t *testing.T) {
		cmd.SetIn(strings.NewReader(""))
		_, err := readPassword(cmd)
		assert.Error(t, err)
	})
}
