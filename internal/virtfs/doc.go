// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package virtfs provides a virtual file tree that declares the content of a
// new file system image. The image writer consumes it as an [io/fs.FS].
//
// Regular files are either held in memory, if added with [FS.WriteFile], or
// reference a host file, if added with [FS.AddHostFile]. Host file content is
// not copied into the tree. Opening the virtual file opens the host file.
package virtfs
