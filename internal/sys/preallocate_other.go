// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build !linux

package sys

import (
	"fmt"
	"os"
)

// Preallocate sets the length of the given file to size bytes.
func Preallocate(file *os.File, size int64) error {
	err := file.Truncate(size)
	if err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	return nil
}
