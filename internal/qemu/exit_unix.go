// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build unix

package qemu

import (
	"fmt"
	"os"
	"syscall"
)

const signalExitCodeBase = 128

func exitError(state *os.ProcessState) error {
	status, ok := state.Sys().(syscall.WaitStatus)
	if ok && status.Signaled() {
		return &CommandError{
			Err:      fmt.Errorf("%w: %s", ErrSignaled, status.Signal()),
			ExitCode: signalExitCodeBase + int(status.Signal()),
		}
	}

	return &CommandError{
		Err:      fmt.Errorf("%w: %d", ErrNonZeroExitCode, state.ExitCode()),
		ExitCode: state.ExitCode(),
	}
}
