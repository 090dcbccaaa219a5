// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ArgumentValueAssertionFunc returns an [assert.ComparisonAssertionFunc] that
// can be used to assert the value of the Argument with the given name.
func ArgumentValueAssertionFunc(
	name string,
	assertion assert.ComparisonAssertionFunc,
) assert.ComparisonAssertionFunc {
	return func(t assert.TestingT, arg1, arg2 any, arg3 ...any) bool {
		args, ok := arg1.([]Argument)
		if !assert.True(t, ok, "first argument should be []Argument") {
			return false
		}

		for _, arg := range args {
			if arg.name != name {
				continue
			}

			return assertion(t, arg.value(), arg2, arg3...)
		}

		return assert.Fail(t, "Argument not found")
	}
}

// FakeExecutable writes a shell script with the given body into a temporary
// directory and returns its path. It stands in for a QEMU binary in tests.
func FakeExecutable(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "qemu-system-fake")

	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755) //nolint:gosec
	require.NoError(t, err)

	return path
}

// FakeFirmware writes an empty firmware file into a temporary directory and
// returns its path.
func FakeFirmware(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "OVMF.fd")

	err := os.WriteFile(path, nil, 0o600)
	require.NoError(t, err)

	return path
}
