// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"encoding/binary"
	"testing"
)

const peHeaderOffset = 0x80

// MinimalPE returns the smallest byte sequence [debug/pe.NewFile] accepts: an
// MS-DOS header pointing to a PE signature followed by a COFF file header with
// the given machine type and no sections.
func MinimalPE(machine uint16) []byte {
	const coffHeaderSize = 20

	data := make([]byte, peHeaderOffset+4+coffHeaderSize)
	copy(data, "MZ")
	binary.LittleEndian.PutUint32(data[0x3c:], peHeaderOffset)
	copy(data[peHeaderOffset:], "PE\x00\x00")
	binary.LittleEndian.PutUint16(data[peHeaderOffset+4:], machine)

	return data
}

// MustAbsolutePath returns the absolute path for the given path. It fails the
// test on errors.
func MustAbsolutePath(tb testing.TB, path string) string {
	tb.Helper()

	abs, err := AbsolutePath(path)
	if err != nil {
		tb.Fatalf("failed to get absolute path %s: %v", path, err)
	}

	return abs
}
