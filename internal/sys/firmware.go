// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"fmt"
	"io/fs"
)

// DefaultFirmware is used if no firmware is given and none is found at the
// conventional locations. It is looked up relative to the working directory.
const DefaultFirmware = "OVMF.fd"

// firmwareLocations are the install locations of UEFI firmware images usable
// with "-bios" as shipped by common distributions and QEMU itself. Paths are
// relative to the root directory.
var firmwareLocations = map[Arch][]string{
	AMD64: {
		"usr/share/ovmf/OVMF.fd",
		"usr/share/OVMF/OVMF.fd",
		"usr/share/qemu/OVMF.fd",
		"usr/share/edk2/x64/OVMF.fd",
		"usr/share/edk2-ovmf/x64/OVMF.fd",
	},
	ARM64: {
		"usr/share/qemu-efi-aarch64/QEMU_EFI.fd",
		"usr/share/edk2/aarch64/QEMU_EFI.fd",
		"usr/share/AAVMF/QEMU_EFI.fd",
	},
	RISCV64: {
		"usr/share/qemu-efi-riscv64/RISCV_VIRT_CODE.fd",
		"usr/share/edk2/riscv/RISCV_VIRT_CODE.fd",
	},
}

// FindFirmware returns the first conventional firmware location for the given
// [Arch] that exists as regular file in fsys. The returned path is absolute,
// assuming fsys is rooted at "/".
//
// It returns [ErrFirmwareNotFound] if none exists.
func FindFirmware(fsys fs.FS, arch Arch) (string, error) {
	locations, exists := firmwareLocations[arch]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrArchNotSupported, arch)
	}

	for _, location := range locations {
		info, err := fs.Stat(fsys, location)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		return "/" + location, nil
	}

	return "", fmt.Errorf("%w for %s", ErrFirmwareNotFound, arch)
}
