// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build !unix

package qemu

import (
	"fmt"
	"os"
)

func exitError(state *os.ProcessState) error {
	return &CommandError{
		Err:      fmt.Errorf("%w: %d", ErrNonZeroExitCode, state.ExitCode()),
		ExitCode: state.ExitCode(),
	}
}
