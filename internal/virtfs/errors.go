// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package virtfs

import (
	"errors"
	"io/fs"
)

var (
	ErrFileExist      = fs.ErrExist
	ErrFileNotExist   = fs.ErrNotExist
	ErrFileInvalid    = fs.ErrInvalid
	ErrFileNotDir     = errors.New("not a directory")
	ErrFileNotRegular = errors.New("not a regular file")
)

// PathError records an error and the operation and file path that caused it.
type PathError = fs.PathError
