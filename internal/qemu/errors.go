// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"errors"
)

var (
	// ErrArgumentCollision is returned if two [Argument]s are considered equal.
	ErrArgumentCollision = errors.New("colliding args")

	// ErrNonZeroExitCode is returned if QEMU did not exit with code 0.
	ErrNonZeroExitCode = errors.New("exit code not 0")

	// ErrSignaled is returned if QEMU was terminated by a signal.
	ErrSignaled = errors.New("terminated by signal")
)

// ArgumentError indicates an issue with an input argument.
type ArgumentError struct {
	msg string
}

// Error implements the [error] interface.
func (e *ArgumentError) Error() string {
	return "argument error: " + e.msg
}

// Is implements the [errors.Is] interface.
func (*ArgumentError) Is(other error) bool {
	_, ok := other.(*ArgumentError)
	return ok
}

// SpawnError is returned if QEMU could not be started at all. This includes
// missing QEMU executable and missing firmware files.
type SpawnError struct {
	Err error
}

// Error implements the [error] interface.
func (e *SpawnError) Error() string {
	return "spawn qemu: " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*SpawnError) Is(other error) bool {
	_, ok := other.(*SpawnError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *SpawnError) Unwrap() error {
	return e.Err
}

// CommandError wraps any error occurred after QEMU has been started.
//
// ExitCode is the exit code QEMU terminated with. If QEMU was terminated by a
// signal, it is 128 plus the signal number, like shells report it.
type CommandError struct {
	Err      error
	ExitCode int
}

// Error implements the [error] interface.
func (e *CommandError) Error() string {
	return "qemu: " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*CommandError) Is(other error) bool {
	_, ok := other.(*CommandError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *CommandError) Unwrap() error {
	return e.Err
}
