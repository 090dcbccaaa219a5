// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package bootimg builds bootable UEFI disk images.
//
// An image is a FAT16 volume that contains the executable at
// EFI/BOOT/<name>, a copy at the removable media fallback path of the
// architecture and a startup.nsh script that runs the executable from the UEFI
// shell. So the executable is started by the firmware's boot manager as well
// as by a UEFI shell.
package bootimg
