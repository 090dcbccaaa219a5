// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/aibor/uefi-run/internal/sys"
)

// terminateGracePeriod is the time QEMU is given to exit after it has been
// asked to terminate, before it is killed.
const terminateGracePeriod = time.Second

// Command is a single QEMU command that can be run.
type Command struct {
	name     string
	args     []string
	firmware []string
}

// NewCommand creates a new [Command] that runs the given [LaunchPlan].
func NewCommand(plan LaunchPlan) *Command {
	return &Command{
		name:     plan.Executable,
		args:     plan.Args(),
		firmware: plan.Firmware,
	}
}

// Name returns the QEMU executable name or path.
func (c *Command) Name() string {
	return c.name
}

// Args returns the arguments QEMU is invoked with.
func (c *Command) Args() []string {
	return c.args
}

// String prints the human readable string representation of the command.
//
// It just joins the name and all arguments with spaces, so it is not suitable
// for copy & paste into a shell if arguments contain spaces.
func (c *Command) String() string {
	elems := append([]string{c.name}, c.args...)
	return strings.Join(elems, " ")
}

// Run the QEMU command with the given context and IO streams.
//
// It returns a [SpawnError] if the QEMU executable or any firmware file can
// not be found, or QEMU fails to start. Firmware given as bare file name is
// not checked, as QEMU searches its data directories for it. If QEMU exits
// with a non zero exit code, a [CommandError] carrying the exit code is
// returned. Once the context is cancelled, QEMU is asked to terminate and
// killed if it does not exit in time. QEMU's exit status is the result even
// then.
func (c *Command) Run(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
) error {
	path, err := exec.LookPath(c.name)
	if err != nil {
		return &SpawnError{Err: fmt.Errorf("find executable: %w", err)}
	}

	for _, file := range c.firmware {
		// Bare file names are looked up by QEMU in its data directories.
		if !strings.ContainsRune(file, filepath.Separator) {
			continue
		}

		err := sys.CheckRegularFile(file)
		if err != nil {
			return &SpawnError{Err: fmt.Errorf("firmware: %w", err)}
		}
	}

	cmd := exec.CommandContext(ctx, path, c.args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = terminateGracePeriod

	slog.Debug("Run QEMU", slog.String("command", cmd.String()))

	err = cmd.Start()
	if err != nil {
		return &SpawnError{Err: fmt.Errorf("start: %w", err)}
	}

	err = cmd.Wait()
	if err == nil {
		return nil
	}

	// After cancellation, Wait returns the context error even if QEMU exited
	// on its own terms. Its exit status is still the result.
	if cmd.ProcessState != nil {
		if cmd.ProcessState.Success() {
			return nil
		}

		return exitError(cmd.ProcessState)
	}

	return &CommandError{Err: fmt.Errorf("wait: %w", err), ExitCode: -1}
}
