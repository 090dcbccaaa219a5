// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bootimg

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/aibor/uefi-run/internal/sys"
)

const bootDir = "EFI/BOOT"

// FallbackName returns the removable media boot file name the firmware looks
// for on the given architecture.
func FallbackName(arch sys.Arch) (string, error) {
	switch arch {
	case sys.AMD64:
		return "BOOTX64.EFI", nil
	case sys.ARM64:
		return "BOOTAA64.EFI", nil
	case sys.RISCV64:
		return "BOOTRISCV64.EFI", nil
	default:
		return "", fmt.Errorf("%w: %s", sys.ErrArchNotSupported, arch)
	}
}

// sanitizeName reduces the given name to its base name without trailing dots
// and spaces, as FAT does not store them.
func sanitizeName(name string) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	base = strings.TrimRight(base, ". ")

	if base == "" || base == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q", ErrInvalidExecutableName, name)
	}

	return base, nil
}

// shellPath returns the path of the given volume path in the notation of the
// UEFI shell.
func shellPath(volumePath string) string {
	return `\` + strings.ReplaceAll(volumePath, "/", `\`)
}

// StartupScript returns the content of the startup.nsh script that runs the
// executable with the given file name.
func StartupScript(name string) []byte {
	return []byte(shellPath(path.Join(bootDir, name)) + "\r\n")
}
