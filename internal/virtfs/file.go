// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package virtfs

import (
	"bytes"
	"io"
	"io/fs"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/samber/lo"
)

const (
	fileMode fs.FileMode = 0o644
	dirMode              = fs.ModeDir | 0o755
)

// node is a regular file or a directory in the tree.
type node interface {
	stat(name string) *fileInfo
	open(name string) (fs.File, error)
}

var (
	_ fs.FileInfo = (*fileInfo)(nil)
	_ fs.DirEntry = (*fileInfo)(nil)
)

// fileInfo serves as both [fs.FileInfo] and [fs.DirEntry]. All information is
// known without opening the file.
type fileInfo struct {
	name string
	size int64
	mode fs.FileMode
}

func (i *fileInfo) Name() string               { return i.name }
func (i *fileInfo) Size() int64                { return i.size }
func (i *fileInfo) Mode() fs.FileMode          { return i.mode }
func (*fileInfo) ModTime() time.Time           { return time.Time{} }
func (i *fileInfo) IsDir() bool                { return i.mode.IsDir() }
func (*fileInfo) Sys() any                     { return nil }
func (i *fileInfo) Type() fs.FileMode          { return i.mode.Type() }
func (i *fileInfo) Info() (fs.FileInfo, error) { return i, nil }
func (i *fileInfo) String() string             { return fs.FormatFileInfo(i) }

var (
	_ node = (*hostFile)(nil)
	_ node = memoryFile(nil)
	_ node = (*directory)(nil)
)

// hostFile references a regular file on the host. The size is recorded when
// the file is added, so listing the tree does not touch the host file.
type hostFile struct {
	path string
	size int64
}

func (f *hostFile) stat(name string) *fileInfo {
	return &fileInfo{name: name, size: f.size, mode: fileMode}
}

func (f *hostFile) open(name string) (fs.File, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &openFile{info: f.stat(name), reader: file}, nil
}

// memoryFile is a regular file with its content held in memory.
type memoryFile []byte

func (f memoryFile) stat(name string) *fileInfo {
	return &fileInfo{name: name, size: int64(len(f)), mode: fileMode}
}

func (f memoryFile) open(name string) (fs.File, error) {
	return &openFile{info: f.stat(name), reader: bytes.NewReader(f)}, nil
}

type directory struct {
	children map[string]node
}

func newDirectory() *directory {
	return &directory{children: make(map[string]node)}
}

func (*directory) stat(name string) *fileInfo {
	return &fileInfo{name: name, mode: dirMode}
}

func (d *directory) open(name string) (fs.File, error) {
	return &openFile{info: d.stat(name), entries: d.entries()}, nil
}

// entries returns the children sorted by name.
func (d *directory) entries() []fs.DirEntry {
	names := slices.Sorted(maps.Keys(d.children))

	return lo.Map(names, func(name string, _ int) fs.DirEntry {
		return d.children[name].stat(name)
	})
}

// put links the child under the given name. An existing regular file is
// replaced. Directories are neither replaced nor replace anything.
func (d *directory) put(name string, child node) error {
	switch name {
	case "", ".", "..":
		return ErrFileInvalid
	}

	if existing, exists := d.children[name]; exists {
		_, wasDir := existing.(*directory)
		_, isDir := child.(*directory)

		if wasDir || isDir {
			return ErrFileExist
		}
	}

	d.children[name] = child

	return nil
}

var (
	_ fs.File        = (*openFile)(nil)
	_ fs.ReadDirFile = (*openFile)(nil)
)

type openFile struct {
	info    *fileInfo
	reader  io.Reader
	entries []fs.DirEntry
}

// Stat implements [fs.File].
func (f *openFile) Stat() (fs.FileInfo, error) {
	return f.info, nil
}

// Read implements [fs.File].
func (f *openFile) Read(b []byte) (int, error) {
	if f.reader == nil {
		return 0, ErrFileNotRegular
	}

	return f.reader.Read(b) //nolint:wrapcheck
}

// Close implements [fs.File].
func (f *openFile) Close() error {
	if closer, ok := f.reader.(io.Closer); ok {
		return closer.Close() //nolint:wrapcheck
	}

	return nil
}

// ReadDir implements [fs.ReadDirFile]. Each call continues where the last one
// stopped.
func (f *openFile) ReadDir(count int) ([]fs.DirEntry, error) {
	if !f.info.IsDir() {
		return nil, ErrFileNotDir
	}

	if count <= 0 {
		rest := f.entries
		f.entries = nil

		return rest, nil
	}

	if len(f.entries) == 0 {
		return nil, io.EOF
	}

	count = min(count, len(f.entries))
	batch := f.entries[:count]
	f.entries = f.entries[count:]

	return batch, nil
}
