// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd_test

import (
	"os"
	"testing"
	"testing/fstest"

	"github.com/aibor/uefi-run/internal/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(env map[string]string) cmd.LookupEnvFunc {
	return func(key string) (string, bool) {
		value, exists := env[key]
		return value, exists
	}
}

func TestEnvArgs(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		output []string
	}{
		{
			name:   "unset",
			output: []string{},
		},
		{
			name:   "empty",
			env:    map[string]string{"UEFI_RUN_ARGS": ""},
			output: []string{},
		},
		{
			name:   "multiple args",
			env:    map[string]string{"UEFI_RUN_ARGS": "-bios /usr/share/OVMF.fd  -debug"},
			output: []string{"-bios", "/usr/share/OVMF.fd", "-debug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.output, cmd.EnvArgs(mapLookup(tt.env)))
		})
	}
}

func TestLocalConfigArgs(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		env      map[string]string
		expected []string
	}{
		{
			name:     "empty",
			content:  "",
			expected: []string{},
		},
		{
			name:     "single line",
			content:  "-arg1=3\n-arg2=4 5",
			expected: []string{"-arg1=3", "-arg2=4 5"},
		},
		{
			name:     "multiple lines",
			content:  "-arg1\n3\n-arg2\n4\n",
			expected: []string{"-arg1", "3", "-arg2", "4"},
		},
		{
			name:     "with env vars",
			content:  "-arg1=${VAR1}\n-arg2=$VAR2--\n-arg3=${VAR3}/more\n",
			env:      map[string]string{"VAR1": "42", "VAR2": "__"},
			expected: []string{"-arg1=42", "-arg2=__--", "-arg3=/more"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testFS := fstest.MapFS{
				"conf": &fstest.MapFile{
					Data: []byte(tt.content),
				},
			}

			content, err := cmd.LocalConfigArgs(testFS, "conf", mapLookup(tt.env))
			require.NoError(t, err)

			assert.Equal(t, tt.expected, content)
		})
	}
}

func TestLocalConfigArgs_Missing(t *testing.T) {
	content, err := cmd.LocalConfigArgs(fstest.MapFS{}, "conf", mapLookup(nil))
	require.NoError(t, err)
	assert.Nil(t, content)
}

func TestLocalEnv(t *testing.T) {
	testFS := fstest.MapFS{
		".uefi-run.env": &fstest.MapFile{
			Data: []byte("# defaults\nUEFI_RUN_BIOS=/fw/OVMF.fd\n" +
				"export UEFI_RUN_ARGS=\"-debug -nokvm\"\n"),
		},
	}

	env, err := cmd.LocalEnv(testFS, ".uefi-run.env")
	require.NoError(t, err)

	expected := map[string]string{
		"UEFI_RUN_BIOS": "/fw/OVMF.fd",
		"UEFI_RUN_ARGS": "-debug -nokvm",
	}
	assert.Equal(t, expected, env)

	env, err = cmd.LocalEnv(testFS, "missing.env")
	require.NoError(t, err)
	assert.Nil(t, env)
}

func TestEnvLookup(t *testing.T) {
	t.Setenv("UEFI_RUN_TEST_SET", "env")
	t.Setenv("UEFI_RUN_TEST_EMPTY", "")
	t.Setenv("UEFI_RUN_TEST_DEFAULT", "")
	require.NoError(t, os.Unsetenv("UEFI_RUN_TEST_DEFAULT"))

	lookup := cmd.EnvLookup(map[string]string{
		"UEFI_RUN_TEST_SET":     "dotenv",
		"UEFI_RUN_TEST_EMPTY":   "dotenv",
		"UEFI_RUN_TEST_DEFAULT": "dotenv",
	})

	value, exists := lookup("UEFI_RUN_TEST_SET")
	assert.True(t, exists)
	assert.Equal(t, "env", value)

	value, exists = lookup("UEFI_RUN_TEST_EMPTY")
	assert.True(t, exists)
	assert.Empty(t, value)

	value, exists = lookup("UEFI_RUN_TEST_DEFAULT")
	assert.True(t, exists)
	assert.Equal(t, "dotenv", value)

	_, exists = lookup("UEFI_RUN_TEST_UNKNOWN")
	assert.False(t, exists)
}

func TestMergedArgs(t *testing.T) {
	testFS := fstest.MapFS{
		".uefi-run-args": &fstest.MapFile{
			Data: []byte("-memory=512\n-bios=${FW_DIR}/OVMF.fd\n"),
		},
	}

	env := map[string]string{
		"UEFI_RUN_ARGS": "-debug -memory 1024",
		"FW_DIR":        "/fw",
	}

	args, err := cmd.MergedArgs([]string{"-memory=2048", "app.efi"}, testFS, mapLookup(env))
	require.NoError(t, err)

	expected := []string{
		"-memory=512",
		"-bios=/fw/OVMF.fd",
		"-debug",
		"-memory",
		"1024",
		"-memory=2048",
		"app.efi",
	}
	assert.Equal(t, expected, args)
}
