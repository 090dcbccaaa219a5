// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Preallocate reserves size bytes of disk space for the given file and sets
// its length accordingly.
//
// Running out of disk space is reported here instead of in the middle of
// writing the content. File systems without fallocate support fall back to a
// sparse [os.File.Truncate].
func Preallocate(file *os.File, size int64) error {
	err := unix.Fallocate(int(file.Fd()), 0, 0, size)
	if err == nil {
		return nil
	}

	if !errors.Is(err, unix.EOPNOTSUPP) && !errors.Is(err, unix.ENOSYS) {
		return fmt.Errorf("fallocate: %w", err)
	}

	err = file.Truncate(size)
	if err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	return nil
}
