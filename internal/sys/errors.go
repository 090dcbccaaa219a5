// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import "errors"

var (
	// ErrNotPEFile is returned if the file does not carry a PE/COFF header.
	ErrNotPEFile = errors.New("is not a PE file")

	// ErrMachineNotSupported is returned if the machine type of a PE file
	// is not supported.
	ErrMachineNotSupported = errors.New("machine type not supported")

	// ErrEmptyPath is returned if an empty path is given.
	ErrEmptyPath = errors.New("path must not be empty")

	// ErrNotRegularFile is returned if a path exists but is not a regular
	// file.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrArchNotSupported is returned if the requested architecture is not
	// supported for the requested operation.
	ErrArchNotSupported = errors.New("architecture not supported")

	// ErrFirmwareNotFound is returned if none of the conventional firmware
	// locations exists.
	ErrFirmwareNotFound = errors.New("no firmware found")
)
