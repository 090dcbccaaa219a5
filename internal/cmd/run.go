// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/aibor/uefi-run/internal/qemu"
	"github.com/aibor/uefi-run/internal/uefirun"
)

// Exit codes used if QEMU did not provide one.
const (
	ExitCodeFailure = 1
	ExitCodeUsage   = 2
	ExitCodeInput   = 124
	ExitCodeBuild   = 125
	ExitCodeSpawn   = 126
)

// IO provides input and output details for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func loadFlags(args []string, cfg IO, fsys fs.FS) (*flags, error) {
	env, err := LocalEnv(fsys, localEnvFile)
	if err != nil {
		return nil, err
	}

	lookup := EnvLookup(env)

	args, err = MergedArgs(args, fsys, lookup)
	if err != nil {
		return nil, err
	}

	flags, err := parseArgs(args, cfg.Stderr, lookup)
	if err != nil {
		return nil, fmt.Errorf("parse args: %w", err)
	}

	return flags, nil
}

func handleParseArgsError(err error) int {
	// [ErrHelp] is returned when help is requested. So exit without error
	// in this case.
	if errors.Is(err, ErrHelp) {
		return 0
	}

	// ParseArgs already prints its errors.
	if !errors.Is(err, &ParseArgsError{}) {
		slog.Error(err.Error())
	}

	return ExitCodeUsage
}

func handleRunError(err error) int {
	var qemuErr *qemu.CommandError

	switch {
	case errors.As(err, &qemuErr):
		// Do not print the error in case QEMU ran and just exited with a
		// non-zero exit code. The code is the result of the run.
		if !errors.Is(err, qemu.ErrNonZeroExitCode) {
			slog.Error(err.Error())
		}

		if qemuErr.ExitCode > 0 {
			return qemuErr.ExitCode
		}

		return ExitCodeFailure
	case errors.Is(err, &uefirun.InputError{}):
		slog.Error(err.Error())
		return ExitCodeInput
	case errors.Is(err, &uefirun.BuildError{}):
		slog.Error(err.Error())
		return ExitCodeBuild
	case errors.Is(err, &qemu.SpawnError{}):
		slog.Error(err.Error())
		return ExitCodeSpawn
	case errors.Is(err, &qemu.ArgumentError{}):
		slog.Error(err.Error())
		return ExitCodeUsage
	default:
		slog.Error(err.Error())
		return ExitCodeFailure
	}
}

// Run is the main entry point for the CLI command.
//
// It returns QEMU's exit code if QEMU ran. Otherwise, it returns one of the
// ExitCode* constants.
func Run(ctx context.Context, args []string, cfg IO) int {
	setupLogging(cfg.Stderr, false)

	flags, err := loadFlags(args, cfg, os.DirFS("."))
	if err != nil {
		return handleParseArgsError(err)
	}

	setupLogging(cfg.Stderr, flags.debug)

	if flags.version {
		buildInfo, err := getBuildInfo()
		if err != nil {
			slog.Error(err.Error())
			return ExitCodeFailure
		}

		fmt.Fprintf(cfg.Stdout, "Version: %s\n", buildInfo.Main.Version)

		return 0
	}

	err = uefirun.Run(ctx, &flags.spec, cfg.Stdin, cfg.Stdout, cfg.Stderr)
	if err != nil {
		return handleRunError(err)
	}

	return 0
}

func getBuildInfo() (*debug.BuildInfo, error) {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, ErrReadBuildInfo
	}

	return buildInfo, nil
}
