// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aibor/uefi-run/internal/cmd"
	"github.com/aibor/uefi-run/internal/qemu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeQemuBody = `for arg; do
  case "$arg" in
    file=*,index=0,*) img="${arg#file=}"; img="${img%%,*}" ;;
  esac
done
test -s "$img" || exit 99
printf '%s\n' "$*"
exit ${FAKE_QEMU_EXIT:-0}`

type runEnv struct {
	workDir    string
	tempDir    string
	qemu       string
	firmware   string
	executable string
}

// setupRunEnv prepares an isolated working and temp directory, a fake QEMU
// and a fake firmware.
func setupRunEnv(t *testing.T) runEnv {
	t.Helper()

	env := runEnv{
		workDir:  t.TempDir(),
		tempDir:  t.TempDir(),
		qemu:     qemu.FakeExecutable(t, fakeQemuBody),
		firmware: qemu.FakeFirmware(t),
	}

	env.executable = filepath.Join(env.workDir, "app.efi")
	require.NoError(t, os.WriteFile(env.executable, []byte("not really PE"), 0o600))

	t.Chdir(env.workDir)
	t.Setenv("TMPDIR", env.tempDir)
	t.Setenv("FAKE_QEMU_EXIT", "")

	for _, key := range []string{"UEFI_RUN_ARGS", "UEFI_RUN_BIOS"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	return env
}

func (e runEnv) args(extra ...string) []string {
	return append([]string{
		"-qemuBin=" + e.qemu,
		"-bios=" + e.firmware,
		"-arch=amd64",
		"-nokvm",
	}, extra...)
}

func (e runEnv) assertNoImageLeft(t *testing.T) {
	t.Helper()

	entries, err := os.ReadDir(e.tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "image should be removed")
}

func TestRun(t *testing.T) {
	env := setupRunEnv(t)

	var stdout, stderr bytes.Buffer

	exitCode := cmd.Run(t.Context(), env.args("app.efi", "-serial", "stdio"), cmd.IO{
		Stdout: &stdout,
		Stderr: &stderr,
	})

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "-machine q35")
	assert.Contains(t, stdout.String(), "-bios "+env.firmware)
	assert.Contains(t, stdout.String(), "-net none -serial stdio\n")
	assert.Empty(t, stderr.String())

	env.assertNoImageLeft(t)
}

func TestRun_ExitCode(t *testing.T) {
	env := setupRunEnv(t)
	t.Setenv("FAKE_QEMU_EXIT", "3")

	var stderr bytes.Buffer

	exitCode := cmd.Run(t.Context(), env.args("app.efi"), cmd.IO{
		Stdout: &bytes.Buffer{},
		Stderr: &stderr,
	})

	assert.Equal(t, 3, exitCode)
	assert.Empty(t, stderr.String(), "non-zero exit code should be silent")

	env.assertNoImageLeft(t)
}

func TestRun_KeepImage(t *testing.T) {
	env := setupRunEnv(t)

	var stderr bytes.Buffer

	exitCode := cmd.Run(t.Context(), env.args("-keepImage", "app.efi"), cmd.IO{
		Stdout: &bytes.Buffer{},
		Stderr: &stderr,
	})

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stderr.String(), "Keep image")

	entries, err := os.ReadDir(env.tempDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRun_LocalConfig(t *testing.T) {
	env := setupRunEnv(t)

	dotenv := "UEFI_RUN_BIOS=" + env.firmware + "\n" +
		"UEFI_RUN_ARGS=\"-arch=amd64 -qemuBin=" + env.qemu + "\"\n"
	require.NoError(t, os.WriteFile(".uefi-run.env", []byte(dotenv), 0o600))
	require.NoError(t, os.WriteFile(".uefi-run-args", []byte("-nokvm\n-memory=512\n"), 0o600))

	var stdout bytes.Buffer

	exitCode := cmd.Run(t.Context(), []string{"app.efi"}, cmd.IO{
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
	})

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "-m 512")
	assert.Contains(t, stdout.String(), "-bios "+env.firmware)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name             string
		args             func(env runEnv) []string
		prepare          func(t *testing.T, env runEnv)
		expectedExitCode int
	}{
		{
			name: "help",
			args: func(runEnv) []string {
				return []string{"-help"}
			},
			expectedExitCode: 0,
		},
		{
			name: "no executable",
			args: func(env runEnv) []string {
				return env.args()
			},
			expectedExitCode: cmd.ExitCodeUsage,
		},
		{
			name: "invalid flag value",
			args: func(env runEnv) []string {
				return env.args("-smp=0", "app.efi")
			},
			expectedExitCode: cmd.ExitCodeUsage,
		},
		{
			name: "missing executable",
			args: func(env runEnv) []string {
				return env.args("missing.efi")
			},
			expectedExitCode: cmd.ExitCodeInput,
		},
		{
			name: "missing additional file",
			args: func(env runEnv) []string {
				return env.args("-addFile=missing.txt", "app.efi")
			},
			expectedExitCode: cmd.ExitCodeInput,
		},
		{
			name: "empty executable",
			args: func(env runEnv) []string {
				return env.args("app.efi")
			},
			prepare: func(t *testing.T, env runEnv) {
				t.Helper()
				require.NoError(t, os.WriteFile(env.executable, nil, 0o600))
			},
			expectedExitCode: cmd.ExitCodeBuild,
		},
		{
			name: "image too large",
			args: func(env runEnv) []string {
				return env.args("-size=5G", "app.efi")
			},
			expectedExitCode: cmd.ExitCodeBuild,
		},
		{
			name: "missing qemu",
			args: func(env runEnv) []string {
				return []string{
					"-qemuBin=/nonexistent/qemu",
					"-bios=" + env.firmware,
					"-arch=amd64",
					"app.efi",
				}
			},
			expectedExitCode: cmd.ExitCodeSpawn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupRunEnv(t)

			if tt.prepare != nil {
				tt.prepare(t, env)
			}

			exitCode := cmd.Run(t.Context(), tt.args(env), cmd.IO{
				Stdout: &bytes.Buffer{},
				Stderr: &bytes.Buffer{},
			})

			assert.Equal(t, tt.expectedExitCode, exitCode)
			env.assertNoImageLeft(t)
		})
	}
}

func TestRun_Version(t *testing.T) {
	setupRunEnv(t)

	var stdout bytes.Buffer

	exitCode := cmd.Run(t.Context(), []string{"-version"}, cmd.IO{
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
	})

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "Version: ")
}
