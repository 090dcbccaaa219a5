// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package uefirun runs a UEFI executable in QEMU.
//
// [Run] builds a bootable disk image containing the executable, boots it with
// QEMU and UEFI firmware, and removes the image once QEMU has exited. Errors
// are classified by the stage that failed: [InputError], [BuildError] and
// [qemu.SpawnError]. If QEMU ran, its exit code is carried by a
// [qemu.CommandError].
package uefirun
