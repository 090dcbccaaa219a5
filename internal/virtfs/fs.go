// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package virtfs

import (
	"io/fs"
	"os"
	"path"
	"strings"
)

// FSAdder is the set of operations required to declare an image tree.
type FSAdder interface {
	AddHostFile(name, source string) error
	WriteFile(name string, data []byte) error
	MkdirAll(name string) error
}

var (
	_ fs.FS        = (*FS)(nil)
	_ fs.StatFS    = (*FS)(nil)
	_ fs.ReadDirFS = (*FS)(nil)
	_ FSAdder      = (*FS)(nil)
)

// FS is an [fs.FS] of directories and regular files.
//
// Host files are referenced with [FS.AddHostFile], content that exists only in
// memory is added with [FS.WriteFile]. Adding a regular file under an existing
// name replaces the file. Parent directories must exist, see [FS.MkdirAll].
type FS struct {
	root *directory
}

// New creates a new empty [FS].
func New() *FS {
	return &FS{root: newDirectory()}
}

// Open opens the named file.
//
// It returns a [PathError] in case of errors.
func (fsys *FS) Open(name string) (fs.File, error) {
	n, err := fsys.lookup(name)
	if err != nil {
		return nil, &PathError{Op: "open", Path: name, Err: err}
	}

	file, err := n.open(path.Base(name))
	if err != nil {
		return nil, &PathError{Op: "open", Path: name, Err: err}
	}

	return file, nil
}

// Stat returns information about the named file.
//
// It returns a [PathError] in case of errors.
func (fsys *FS) Stat(name string) (fs.FileInfo, error) {
	n, err := fsys.lookup(name)
	if err != nil {
		return nil, &PathError{Op: "stat", Path: name, Err: err}
	}

	return n.stat(path.Base(name)), nil
}

// ReadDir returns the entries of the named directory sorted by name.
//
// It returns a [PathError] in case of errors.
func (fsys *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	dir, err := fsys.directory(name)
	if err != nil {
		return nil, &PathError{Op: "readdir", Path: name, Err: err}
	}

	return dir.entries(), nil
}

// Mkdir creates a new directory. The parent must exist.
//
// It returns [PathError] in case of errors.
func (fsys *FS) Mkdir(name string) error {
	err := fsys.put(name, newDirectory())
	if err != nil {
		return &PathError{Op: "mkdir", Path: name, Err: err}
	}

	return nil
}

// MkdirAll creates a directory along with all missing parents. Existing
// directories are fine.
//
// It returns a [PathError] in case of errors.
func (fsys *FS) MkdirAll(name string) error {
	cleaned := clean(name)
	if cleaned == "." {
		return nil
	}

	if !fs.ValidPath(cleaned) {
		return &PathError{Op: "mkdir", Path: name, Err: ErrFileInvalid}
	}

	dir := fsys.root

	for elem := range strings.SplitSeq(cleaned, "/") {
		child, exists := dir.children[elem]
		if !exists {
			child = newDirectory()
			dir.children[elem] = child
		}

		sub, isDir := child.(*directory)
		if !isDir {
			return &PathError{Op: "mkdir", Path: name, Err: ErrFileNotDir}
		}

		dir = sub
	}

	return nil
}

// AddHostFile adds a reference to the regular host file source under the given
// name. Its content is read only when the file is opened. The size is
// recorded now.
//
// It returns a [PathError] in case of errors.
func (fsys *FS) AddHostFile(name, source string) error {
	info, err := os.Stat(source)
	if err != nil {
		return &PathError{Op: "add", Path: name, Err: err}
	}

	if !info.Mode().IsRegular() {
		return &PathError{Op: "add", Path: name, Err: ErrFileNotRegular}
	}

	err = fsys.put(name, &hostFile{path: source, size: info.Size()})
	if err != nil {
		return &PathError{Op: "add", Path: name, Err: err}
	}

	return nil
}

// WriteFile adds a regular file with the given content. The data is not
// copied, so it must not be modified afterwards.
//
// It returns a [PathError] in case of errors.
func (fsys *FS) WriteFile(name string, data []byte) error {
	err := fsys.put(name, memoryFile(data))
	if err != nil {
		return &PathError{Op: "write", Path: name, Err: err}
	}

	return nil
}

func (fsys *FS) put(name string, n node) error {
	dirName, base := path.Split(clean(name))

	parent, err := fsys.directory(clean(dirName))
	if err != nil {
		return err
	}

	return parent.put(base, n)
}

func (fsys *FS) directory(name string) (*directory, error) {
	n, err := fsys.lookup(name)
	if err != nil {
		return nil, err
	}

	dir, isDir := n.(*directory)
	if !isDir {
		return nil, ErrFileNotDir
	}

	return dir, nil
}

func (fsys *FS) lookup(name string) (node, error) {
	if !fs.ValidPath(name) {
		return nil, ErrFileInvalid
	}

	var n node = fsys.root

	if name == "." {
		return n, nil
	}

	for elem := range strings.SplitSeq(name, "/") {
		dir, isDir := n.(*directory)
		if !isDir {
			return nil, ErrFileNotExist
		}

		child, exists := dir.children[elem]
		if !exists {
			return nil, ErrFileNotExist
		}

		n = child
	}

	return n, nil
}

// clean returns the name relative to the root.
func clean(name string) string {
	cleaned := strings.TrimPrefix(path.Clean("/"+name), "/")
	if cleaned == "" {
		return "."
	}

	return cleaned
}
