// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build !linux

package sys

// KVM is a Linux only facility.
func kvmAccessible() bool {
	return false
}
