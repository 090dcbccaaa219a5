// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import "golang.org/x/sys/unix"

const kvmDevice = "/dev/kvm"

func kvmAccessible() bool {
	return unix.Access(kvmDevice, unix.R_OK|unix.W_OK) == nil
}
