// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"runtime"
)

// Arch is a guest architecture UEFI firmware is available for.
type Arch string

// Supported guest architectures.
const (
	AMD64   Arch = "amd64"
	ARM64   Arch = "arm64"
	RISCV64 Arch = "riscv64"
)

// Native is the architecture of the host. Using the same architecture for the
// guest allows using KVM, if available. Use [Arch.KVMAvailable] to check.
const Native Arch = Arch(runtime.GOARCH)

// String implements [fmt.Stringer] and [flag.Value].
func (a *Arch) String() string {
	return string(*a)
}

// Set implements [flag.Value]. Besides the Go names, the names used by QEMU
// and the UEFI specification are accepted.
func (a *Arch) Set(s string) error {
	switch s {
	case string(AMD64), "x86_64", "x64":
		*a = AMD64
	case string(ARM64), "aarch64", "aa64":
		*a = ARM64
	case string(RISCV64):
		*a = RISCV64
	default:
		return ErrArchNotSupported
	}

	return nil
}

// IsNative returns true if the architecture matches the host's.
func (a *Arch) IsNative() bool {
	return Native == *a
}

// IsSupported returns true if the architecture is one of the known ones.
func (a *Arch) IsSupported() bool {
	switch *a {
	case AMD64, ARM64, RISCV64:
		return true
	default:
		return false
	}
}

// KVMAvailable checks if KVM support is available for the given architecture.
func (a *Arch) KVMAvailable() bool {
	if !a.IsNative() {
		return false
	}

	return kvmAccessible()
}
