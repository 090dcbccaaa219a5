// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bootimg

import "errors"

var (
	// ErrEmptyExecutable is returned if the executable has no content.
	ErrEmptyExecutable = errors.New("executable is empty")

	// ErrInvalidExecutableName is returned if the executable name is empty
	// after sanitizing.
	ErrInvalidExecutableName = errors.New("invalid executable name")
)
