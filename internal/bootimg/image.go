// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bootimg

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// Image is a bootable disk image on the host file system.
//
// The image is owned by the caller of [Build] who is responsible for calling
// [Image.Remove] once it is not needed anymore.
type Image struct {
	path           string
	size           int64
	executablePath string
}

// Path returns the host path of the image file.
func (i *Image) Path() string {
	return i.path
}

// Size returns the size of the image in bytes.
func (i *Image) Size() int64 {
	return i.size
}

// ExecutablePath returns the path of the executable inside the image, using
// "/" as separator.
func (i *Image) ExecutablePath() string {
	return i.executablePath
}

// Remove deletes the image file. Removing an image that is gone already is
// not an error.
func (i *Image) Remove() error {
	slog.Debug("Remove image", slog.String("path", i.path))

	err := os.Remove(i.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}

	return nil
}
