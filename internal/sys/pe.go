// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"bytes"
	"debug/pe"
	"fmt"
	"io"
)

// ReadPEArch returns the [Arch] of the given PE/COFF executable as found in
// its file header.
//
// Only the machine field is looked at. The file is not validated as a proper
// EFI application.
func ReadPEArch(data []byte) (Arch, error) {
	return readPEArch(bytes.NewReader(data))
}

func readPEArch(reader io.ReaderAt) (Arch, error) {
	file, err := pe.NewFile(reader)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotPEFile, err)
	}
	defer file.Close()

	switch file.Machine {
	case pe.IMAGE_FILE_MACHINE_AMD64:
		return AMD64, nil
	case pe.IMAGE_FILE_MACHINE_ARM64:
		return ARM64, nil
	case pe.IMAGE_FILE_MACHINE_RISCV64:
		return RISCV64, nil
	default:
		return "", fmt.Errorf("%w: %#04x", ErrMachineNotSupported, file.Machine)
	}
}
