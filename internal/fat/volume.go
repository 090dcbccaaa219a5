// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fat

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"
)

const (
	defaultLabel = "NO NAME"
	oemName      = "MSWIN4.1"
	fsType       = "FAT16"
	mediaFixed   = 0xf8
	driveNumber  = 0x80
	bootSig      = 0x29

	fatEndOfChain = 0xffff
)

// Options for a new [Volume].
type Options struct {
	// MinSize is the minimum size of the volume in bytes. The volume is
	// larger if the content requires it.
	MinSize int64

	// Label is the volume label. At most 11 characters allowed in short
	// names or spaces. Lowercase letters are converted to uppercase.
	Label string

	// VolumeID is the volume serial number.
	VolumeID uint32

	// ModTime is used for all timestamps of the volume.
	ModTime time.Time
}

// Volume is the layout of a FAT16 volume for a given file tree.
//
// It holds only metadata. File content is read from the source [fs.FS] when
// the volume is written.
type Volume struct {
	fsys     fs.FS
	geometry geometry
	root     *node
	label    shortName
	volumeID uint32
	ts       timestamp
}

// New lays out a new [Volume] for the given file tree.
//
// The tree must only contain directories and regular files with names that
// are valid FAT long names. The file content is not read, but must not change
// until [Volume.WriteTo] is called.
func New(fsys fs.FS, opts Options) (*Volume, error) {
	label, err := volumeLabel(opts.Label)
	if err != nil {
		return nil, err
	}

	root := &node{dir: true, path: "."}

	err = scanDir(fsys, ".", root)
	if err != nil {
		return nil, err
	}

	// The root directory holds the volume label instead of dot entries.
	rootEntries := root.entryCount() - 1
	if rootEntries > rootEntryCount {
		return nil, fmt.Errorf("%w: %d entries", ErrRootDirFull, rootEntries)
	}

	geo, err := computeGeometry(root.clustersNeeded, opts.MinSize)
	if err != nil {
		return nil, err
	}

	root.allocate(2, geo.clusterSize())

	volume := &Volume{
		fsys:     fsys,
		geometry: geo,
		root:     root,
		label:    label,
		volumeID: opts.VolumeID,
		ts:       newTimestamp(opts.ModTime),
	}

	return volume, nil
}

// Size returns the size of the volume in bytes.
func (v *Volume) Size() int64 {
	return v.geometry.size()
}

// ClusterSize returns the size of a cluster in bytes.
func (v *Volume) ClusterSize() int64 {
	return v.geometry.clusterSize()
}

// Clusters returns the number of data clusters of the volume.
func (v *Volume) Clusters() int {
	return int(v.geometry.clusters)
}

// WriteTo writes the volume to w. The range of w that is not written is
// expected to be zeroed already, as it is the case for a new file.
//
// File content is read from the source [fs.FS].
func (v *Volume) WriteTo(w io.WriterAt) error {
	err := v.writeAt(w, v.bootSector(), 0)
	if err != nil {
		return fmt.Errorf("write boot sector: %w", err)
	}

	fat := v.fat()
	for idx := range uint32(numFATs) {
		err := v.writeAt(w, fat, v.geometry.fatOffset(idx))
		if err != nil {
			return fmt.Errorf("write FAT %d: %w", idx, err)
		}
	}

	err = v.writeAt(w, v.rootDir(), v.geometry.rootDirOffset())
	if err != nil {
		return fmt.Errorf("write root directory: %w", err)
	}

	return v.root.walk(func(parent, child *node) error {
		if child.dir {
			err := v.writeAt(w, v.subDir(parent, child), v.offset(child))
			if err != nil {
				return fmt.Errorf("write directory %s: %w", child.path, err)
			}

			return nil
		}

		err := v.writeFile(w, child)
		if err != nil {
			return fmt.Errorf("write file %s: %w", child.path, err)
		}

		return nil
	})
}

// Bytes returns the complete volume image.
func (v *Volume) Bytes() ([]byte, error) {
	buf := make(byteWriterAt, v.Size())

	err := v.WriteTo(buf)
	if err != nil {
		return nil, err
	}

	return buf, nil
}

func (v *Volume) offset(n *node) int64 {
	return v.geometry.clusterOffset(n.cluster)
}

func (v *Volume) writeAt(w io.WriterAt, data []byte, offset int64) error {
	_, err := w.WriteAt(data, offset)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return nil
}

func (v *Volume) writeFile(w io.WriterAt, n *node) error {
	if n.size == 0 {
		return nil
	}

	file, err := v.fsys.Open(n.path)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer file.Close()

	writer := io.NewOffsetWriter(w, v.offset(n))

	_, err = io.CopyN(writer, file, n.size)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ErrSizeMismatch
		}

		return err //nolint:wrapcheck
	}

	// Content that grew would overwrite the following clusters.
	extra, _ := file.Read(make([]byte, 1))
	if extra > 0 {
		return ErrSizeMismatch
	}

	return nil
}

func (v *Volume) bootSector() []byte {
	sector := make([]byte, sectorSize)
	geo := v.geometry

	copy(sector[0:3], []byte{0xeb, 0x3c, 0x90})
	copy(sector[3:11], oemName)
	binary.LittleEndian.PutUint16(sector[11:], sectorSize)
	sector[13] = byte(geo.sectorsPerCluster)
	binary.LittleEndian.PutUint16(sector[14:], reservedSectors)
	sector[16] = numFATs
	binary.LittleEndian.PutUint16(sector[17:], rootEntryCount)

	if geo.totalSectors <= 0xffff {
		binary.LittleEndian.PutUint16(sector[19:], uint16(geo.totalSectors))
	} else {
		binary.LittleEndian.PutUint32(sector[32:], geo.totalSectors)
	}

	sector[21] = mediaFixed
	binary.LittleEndian.PutUint16(sector[22:], uint16(geo.fatSectors))
	binary.LittleEndian.PutUint16(sector[24:], 32) // sectors per track
	binary.LittleEndian.PutUint16(sector[26:], 64) // heads
	sector[36] = driveNumber
	sector[38] = bootSig
	binary.LittleEndian.PutUint32(sector[39:], v.volumeID)
	copy(sector[43:54], v.label[:])
	copy(sector[54:62], fmt.Sprintf("%-8s", fsType))
	sector[510] = 0x55
	sector[511] = 0xaa

	return sector
}

func (v *Volume) fat() []byte {
	fat := make([]byte, v.geometry.fatSectors*sectorSize)

	binary.LittleEndian.PutUint16(fat[0:], 0xff00|mediaFixed)
	binary.LittleEndian.PutUint16(fat[2:], fatEndOfChain)

	_ = v.root.walk(func(_, child *node) error {
		for idx := range child.clusters {
			cluster := child.cluster + idx

			next := uint16(cluster + 1)
			if idx == child.clusters-1 {
				next = fatEndOfChain
			}

			binary.LittleEndian.PutUint16(fat[cluster*2:], next)
		}

		return nil
	})

	return fat
}

func (v *Volume) rootDir() []byte {
	buf := make([]byte, rootDirSectors*sectorSize)
	dir := dirWriter{buf: buf, ts: v.ts}

	dir.putShort(v.label, attrVolumeID, 0, 0, 0)

	for _, child := range v.root.children {
		dir.putNode(child)
	}

	return buf
}

func (v *Volume) subDir(parent, n *node) []byte {
	buf := make([]byte, int64(n.clusters)*v.ClusterSize())
	dir := dirWriter{buf: buf, ts: v.ts}

	// Parent cluster 0 refers to the root directory.
	dir.putShort(dotName, attrDirectory, 0, n.cluster, 0)
	dir.putShort(dotDotName, attrDirectory, 0, parent.cluster, 0)

	for _, child := range n.children {
		dir.putNode(child)
	}

	return buf
}

func volumeLabel(label string) (shortName, error) {
	if label == "" {
		label = defaultLabel
	}

	if len(label) > shortNameLen {
		return shortName{}, fmt.Errorf("%w: label too long: %q",
			ErrInvalidName, label)
	}

	for idx := range len(label) {
		if label[idx] != ' ' && !isShortChar(label[idx]) {
			return shortName{}, fmt.Errorf("%w: label character %q",
				ErrInvalidName, label[idx])
		}
	}

	var name shortName

	copy(name[:], fmt.Sprintf("%-11s", strings.ToUpper(label)))

	return name, nil
}

// byteWriterAt is an [io.WriterAt] on a fixed size byte slice.
type byteWriterAt []byte

func (b byteWriterAt) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(b)) {
		return 0, ErrOutOfBounds
	}

	return copy(b[off:], p), nil
}
