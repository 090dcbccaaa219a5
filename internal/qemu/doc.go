// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package qemu provides utilities for composing and running QEMU system
// virtualization commands that boot a UEFI disk image. It expects the
// required QEMU binary and UEFI firmware to be present on the system.
//
// A [LaunchSpec] is turned into a [LaunchPlan] by [PlanLaunch] without any
// I/O. The plan is run by a [Command], which passes the exit code of QEMU
// through to the caller.
package qemu
