// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

const (
	argsEnvVar = "UEFI_RUN_ARGS"
	biosEnvVar = "UEFI_RUN_BIOS"

	localConfigFile = ".uefi-run-args"
	localEnvFile    = ".uefi-run.env"
)

// LookupEnvFunc looks up the value of an environment variable, like
// [os.LookupEnv].
type LookupEnvFunc func(key string) (string, bool)

// EnvArgs returns uefi-run arguments from the environment.
func EnvArgs(lookup LookupEnvFunc) []string {
	value, _ := lookup(argsEnvVar)
	return strings.Fields(value)
}

// LocalConfigArgs returns uefi-run arguments from a local config file.
//
// The file's format is one argument per line. Environment variables may be used
// and are expanded with lookup.
func LocalConfigArgs(
	fsys fs.FS,
	file string,
	lookup LookupEnvFunc,
) ([]string, error) {
	conf, err := fs.ReadFile(fsys, file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read file: %w", err)
	}

	args := []string{}

	expandedConf := os.Expand(string(conf), func(key string) string {
		value, _ := lookup(key)
		return value
	})

	for line := range strings.SplitSeq(expandedConf, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			args = append(args, line)
		}
	}

	return args, nil
}

// LocalEnv reads variables from a dotenv file. A missing file is not an
// error.
func LocalEnv(fsys fs.FS, file string) (map[string]string, error) {
	content, err := fs.ReadFile(fsys, file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read file: %w", err)
	}

	env, err := godotenv.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}

	return env, nil
}

// EnvLookup returns a [LookupEnvFunc] that falls back to the given defaults
// for variables that are not set in the process environment.
func EnvLookup(defaults map[string]string) LookupEnvFunc {
	return func(key string) (string, bool) {
		if value, exists := os.LookupEnv(key); exists {
			return value, true
		}

		value, exists := defaults[key]

		return value, exists
	}
}

// MergedArgs returns the arguments from the local config file, the
// environment and the given args in this order. Flags given later take
// precedence.
func MergedArgs(
	args []string,
	fsys fs.FS,
	lookup LookupEnvFunc,
) ([]string, error) {
	localArgs, err := LocalConfigArgs(fsys, localConfigFile, lookup)
	if err != nil {
		return nil, fmt.Errorf("local config args: %w", err)
	}

	return lo.Flatten([][]string{localArgs, EnvArgs(lookup), args}), nil
}
