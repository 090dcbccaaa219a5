// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fat

import "errors"

var (
	// ErrImageTooLarge is returned if the content does not fit into the
	// largest FAT16 volume.
	ErrImageTooLarge = errors.New("image exceeds FAT16 capacity")

	// ErrInvalidName is returned if a file name or volume label can not be
	// represented in a FAT directory entry.
	ErrInvalidName = errors.New("invalid name")

	// ErrNameCollision is returned if two names in the same directory are
	// equal when compared case-insensitively.
	ErrNameCollision = errors.New("name collision")

	// ErrRootDirFull is returned if the root directory has more entries than
	// its fixed size allows.
	ErrRootDirFull = errors.New("root directory full")

	// ErrUnsupportedFileType is returned for files that are neither regular
	// files nor directories.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrSizeMismatch is returned if a file's size changed between layout and
	// writing.
	ErrSizeMismatch = errors.New("file size changed")

	// ErrOutOfBounds is returned if a write exceeds the image size.
	ErrOutOfBounds = errors.New("write out of bounds")
)
