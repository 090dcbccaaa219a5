// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fat

import (
	"fmt"
	"io/fs"
	"math"
	"path"
	"strings"
)

// node is a file or directory of the volume.
type node struct {
	name     string
	path     string
	short    shortName
	ntRes    byte
	longName bool
	dir      bool
	size     int64
	children []*node

	// First cluster and number of clusters. Empty files have none.
	cluster  uint32
	clusters uint32
}

// slots returns the number of directory entries the node occupies in its
// parent directory.
func (n *node) slots() int {
	if !n.longName {
		return 1
	}

	return 1 + longNameEntries(n.name)
}

// entryCount returns the number of directory entries of a directory node,
// including "." and "..".
func (n *node) entryCount() int {
	count := 2

	for _, child := range n.children {
		count += child.slots()
	}

	return count
}

// clustersNeeded returns the number of clusters all children of the node need
// for the given cluster size, recursively.
func (n *node) clustersNeeded(clusterSize int64) uint64 {
	var count uint64

	for _, child := range n.children {
		if child.dir {
			count += child.dirClusters(clusterSize)
			count += child.clustersNeeded(clusterSize)
		} else {
			count += ceilDiv(child.size, clusterSize)
		}
	}

	return count
}

func (n *node) dirClusters(clusterSize int64) uint64 {
	return max(1, ceilDiv(int64(n.entryCount()*dirEntrySize), clusterSize))
}

// allocate assigns contiguous cluster ranges to all children recursively,
// starting at the given cluster. It returns the next free cluster.
func (n *node) allocate(next uint32, clusterSize int64) uint32 {
	for _, child := range n.children {
		if child.dir {
			child.clusters = uint32(child.dirClusters(clusterSize))
		} else {
			child.clusters = uint32(ceilDiv(child.size, clusterSize))
		}

		if child.clusters > 0 {
			child.cluster = next
			next += child.clusters
		}

		if child.dir {
			next = child.allocate(next, clusterSize)
		}
	}

	return next
}

// walk calls fn for the node and all its descendants, parents first.
func (n *node) walk(fn func(parent, child *node) error) error {
	for _, child := range n.children {
		err := fn(n, child)
		if err != nil {
			return err
		}

		if child.dir {
			err = child.walk(fn)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// scanDir reads the directory at dirPath into dir recursively.
func scanDir(fsys fs.FS, dirPath string, dir *node) error {
	entries, err := fs.ReadDir(fsys, dirPath)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}

	seen := make(map[string]string, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		child := &node{
			name: name,
			path: path.Join(dirPath, name),
		}

		err := validateLongName(name)
		if err != nil {
			return fmt.Errorf("%s: %w", child.path, err)
		}

		key := strings.ToUpper(name)
		if other, exists := seen[key]; exists {
			return fmt.Errorf("%w: %s and %s",
				ErrNameCollision, path.Join(dirPath, other), child.path)
		}

		seen[key] = name

		switch {
		case entry.IsDir():
			child.dir = true

			err := scanDir(fsys, child.path, child)
			if err != nil {
				return err
			}
		case entry.Type().IsRegular():
			info, err := entry.Info()
			if err != nil {
				return fmt.Errorf("%s: %w", child.path, err)
			}

			if info.Size() > math.MaxUint32 {
				return fmt.Errorf("%w: %s is larger than 4GiB",
					ErrImageTooLarge, child.path)
			}

			child.size = info.Size()
		default:
			return fmt.Errorf("%w: %s (%s)",
				ErrUnsupportedFileType, child.path, entry.Type())
		}

		dir.children = append(dir.children, child)
	}

	return assignShortNames(dir.children)
}

// assignShortNames sets the short names of all nodes of a directory. Lossless
// short names are reserved first, so generated aliases never take them.
func assignShortNames(nodes []*node) error {
	used := make(map[shortName]bool, len(nodes))

	var needAlias []*node

	for _, n := range nodes {
		short, ntRes, ok := losslessShortName(n.name)
		if !ok {
			needAlias = append(needAlias, n)
			continue
		}

		n.short = short
		n.ntRes = ntRes
		used[short] = true
	}

	for _, n := range needAlias {
		alias, err := aliasFor(n.name, used)
		if err != nil {
			return err
		}

		n.short = alias
		n.longName = true
		used[alias] = true
	}

	return nil
}
