// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package fat writes FAT16 volume images from an [io/fs.FS]. The image is laid
// out entirely in-process. No formatting tool, loop device or mount is
// required.
//
// The volume is sized to fit the given tree with some slack. Files are stored
// in contiguous cluster chains. Names that are not valid 8.3 names are stored
// as VFAT long names along with a generated short alias. Names that are valid
// 8.3 names in a single case per part are stored without long name entries,
// using the case flags common FAT implementations understand.
//
// All timestamps are taken from [Options.ModTime], so the same input always
// results in the same image.
package fat
