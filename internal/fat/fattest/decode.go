// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package fattest provides a minimal FAT12/16 reader for verifying images in
// tests. It is deliberately independent of the writer in the parent package.
package fattest

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf16"
)

var (
	ErrNoBootSignature = errors.New("missing boot sector signature")
	ErrInvalidBPB      = errors.New("invalid BIOS parameter block")
	ErrBrokenChain     = errors.New("broken cluster chain")
	ErrFATMismatch     = errors.New("FAT copies differ")
)

// BootSector holds the decoded BIOS parameter block.
type BootSector struct {
	OEMName           string
	BytesPerSector    int
	SectorsPerCluster int
	ReservedSectors   int
	NumFATs           int
	RootEntries       int
	TotalSectors      int
	Media             byte
	FATSectors        int
	BootSignature     byte
	VolumeID          uint32
	Label             string
	FSType            string
}

// Entry is a decoded directory entry.
type Entry struct {
	// Path of the entry within the volume, using "/" as separator.
	Path string

	// ShortName is the 8.3 name as stored, e.g. "BOOTX64.EFI".
	ShortName string

	// HasLongName is true if valid long name entries precede the short
	// entry.
	HasLongName bool

	IsDir   bool
	Size    int
	Date    uint16
	Time    uint16
	Chain   []int
	Content []byte
}

// Volume is a decoded FAT volume.
type Volume struct {
	BootSector BootSector
	Clusters   int
	Label      string
	Entries    map[string]*Entry
}

// Files returns the paths of all regular files.
func (v *Volume) Files() []string {
	var files []string

	for name, entry := range v.Entries {
		if !entry.IsDir {
			files = append(files, name)
		}
	}

	return files
}

type decoder struct {
	data       []byte
	bs         BootSector
	fat        []byte
	dataOffset int
	clusterLen int
	clusters   int
	volume     *Volume
}

// Decode reads the FAT volume in data.
//
// It fails if the boot sector is invalid, the FAT copies are not identical or
// any cluster chain is broken or looping.
func Decode(data []byte) (*Volume, error) {
	bs, err := decodeBootSector(data)
	if err != nil {
		return nil, err
	}

	fatLen := bs.FATSectors * bs.BytesPerSector
	fatStart := bs.ReservedSectors * bs.BytesPerSector
	rootStart := fatStart + bs.NumFATs*fatLen
	rootLen := bs.RootEntries * 32
	dataOffset := rootStart + (rootLen+bs.BytesPerSector-1)/
		bs.BytesPerSector*bs.BytesPerSector

	if dataOffset > len(data) || bs.TotalSectors*bs.BytesPerSector > len(data) {
		return nil, fmt.Errorf("%w: layout exceeds data", ErrInvalidBPB)
	}

	fat := data[fatStart : fatStart+fatLen]
	for idx := 1; idx < bs.NumFATs; idx++ {
		other := data[fatStart+idx*fatLen : fatStart+(idx+1)*fatLen]
		if !bytes.Equal(fat, other) {
			return nil, fmt.Errorf("%w: FAT %d", ErrFATMismatch, idx)
		}
	}

	clusterLen := bs.SectorsPerCluster * bs.BytesPerSector
	dataSectors := bs.TotalSectors - dataOffset/bs.BytesPerSector

	dec := &decoder{
		data:       data,
		bs:         bs,
		fat:        fat,
		dataOffset: dataOffset,
		clusterLen: clusterLen,
		clusters:   dataSectors / bs.SectorsPerCluster,
		volume: &Volume{
			BootSector: bs,
			Entries:    make(map[string]*Entry),
		},
	}
	dec.volume.Clusters = dec.clusters

	err = dec.readDir("", data[rootStart:rootStart+rootLen], true)
	if err != nil {
		return nil, err
	}

	return dec.volume, nil
}

func decodeBootSector(data []byte) (BootSector, error) {
	if len(data) < 512 {
		return BootSector{}, fmt.Errorf("%w: too short", ErrInvalidBPB)
	}

	if data[510] != 0x55 || data[511] != 0xaa {
		return BootSector{}, ErrNoBootSignature
	}

	le := binary.LittleEndian
	bs := BootSector{
		OEMName:           string(data[3:11]),
		BytesPerSector:    int(le.Uint16(data[11:])),
		SectorsPerCluster: int(data[13]),
		ReservedSectors:   int(le.Uint16(data[14:])),
		NumFATs:           int(data[16]),
		RootEntries:       int(le.Uint16(data[17:])),
		TotalSectors:      int(le.Uint16(data[19:])),
		Media:             data[21],
		FATSectors:        int(le.Uint16(data[22:])),
		BootSignature:     data[38],
		VolumeID:          le.Uint32(data[39:]),
		Label:             strings.TrimRight(string(data[43:54]), " "),
		FSType:            strings.TrimRight(string(data[54:62]), " "),
	}

	if bs.TotalSectors == 0 {
		bs.TotalSectors = int(le.Uint32(data[32:]))
	}

	switch {
	case bs.BytesPerSector == 0,
		bs.SectorsPerCluster == 0,
		bs.NumFATs == 0,
		bs.FATSectors == 0,
		bs.TotalSectors == 0:
		return BootSector{}, fmt.Errorf("%w: zero field", ErrInvalidBPB)
	}

	return bs, nil
}

func (d *decoder) next(cluster int) int {
	if d.clusters < 4085 {
		offset := cluster * 3 / 2
		value := int(binary.LittleEndian.Uint16(d.fat[offset:]))

		if cluster%2 == 1 {
			value >>= 4
		}

		value &= 0xfff
		if value >= 0xff8 {
			return -1
		}

		return value
	}

	value := int(binary.LittleEndian.Uint16(d.fat[cluster*2:]))
	if value >= 0xfff8 {
		return -1
	}

	return value
}

func (d *decoder) chain(first int) ([]int, error) {
	var chain []int

	seen := make(map[int]bool)

	for cluster := first; cluster != -1; cluster = d.next(cluster) {
		if cluster < 2 || cluster >= d.clusters+2 {
			return nil, fmt.Errorf("%w: cluster %d out of range", ErrBrokenChain, cluster)
		}

		if seen[cluster] {
			return nil, fmt.Errorf("%w: loop at cluster %d", ErrBrokenChain, cluster)
		}

		seen[cluster] = true
		chain = append(chain, cluster)
	}

	return chain, nil
}

func (d *decoder) readChain(chain []int) []byte {
	content := make([]byte, 0, len(chain)*d.clusterLen)

	for _, cluster := range chain {
		offset := d.dataOffset + (cluster-2)*d.clusterLen
		content = append(content, d.data[offset:offset+d.clusterLen]...)
	}

	return content
}

type longName struct {
	parts    map[int][]uint16
	checksum byte
	count    int
}

func (d *decoder) readDir(dirPath string, raw []byte, isRoot bool) error {
	var long *longName

	for offset := 0; offset+32 <= len(raw); offset += 32 {
		entry := raw[offset : offset+32]

		switch entry[0] {
		case 0x00:
			return nil
		case 0xe5:
			long = nil
			continue
		}

		attr := entry[11]

		if attr&0x3f == 0x0f {
			long = addLongPart(long, entry)
			continue
		}

		shortRaw := entry[0:11]
		name := shortNameString(shortRaw, entry[12])
		hasLong := false

		if long != nil && long.checksum == checksum(shortRaw) &&
			len(long.parts) == long.count {
			name = long.String()
			hasLong = true
		}

		long = nil

		if attr&0x08 != 0 {
			if isRoot {
				d.volume.Label = strings.TrimRight(string(shortRaw), " ")
			}

			continue
		}

		if name == "." || name == ".." {
			continue
		}

		err := d.addEntry(dirPath, name, hasLong, entry)
		if err != nil {
			return err
		}
	}

	return nil
}

func (d *decoder) addEntry(dirPath, name string, hasLong bool, raw []byte) error {
	le := binary.LittleEndian
	attr := raw[11]

	entry := &Entry{
		Path:        path.Join(dirPath, name),
		ShortName:   shortNameString(raw[0:11], 0),
		HasLongName: hasLong,
		IsDir:       attr&0x10 != 0,
		Size:        int(le.Uint32(raw[28:])),
		Time:        le.Uint16(raw[22:]),
		Date:        le.Uint16(raw[24:]),
	}

	first := int(le.Uint16(raw[26:]))

	if _, exists := d.volume.Entries[entry.Path]; exists {
		return fmt.Errorf("duplicate entry %s", entry.Path)
	}

	d.volume.Entries[entry.Path] = entry

	if first == 0 {
		if entry.IsDir || entry.Size > 0 {
			return fmt.Errorf("%w: %s has no cluster", ErrBrokenChain, entry.Path)
		}

		entry.Content = []byte{}

		return nil
	}

	chain, err := d.chain(first)
	if err != nil {
		return fmt.Errorf("%s: %w", entry.Path, err)
	}

	entry.Chain = chain
	content := d.readChain(chain)

	if entry.IsDir {
		return d.readDir(entry.Path, content, false)
	}

	if entry.Size > len(content) {
		return fmt.Errorf("%w: %s chain shorter than size", ErrBrokenChain, entry.Path)
	}

	entry.Content = content[:entry.Size]

	return nil
}

func addLongPart(long *longName, entry []byte) *longName {
	seq := int(entry[0] & 0x1f)

	if entry[0]&0x40 != 0 {
		long = &longName{
			parts:    make(map[int][]uint16),
			checksum: entry[13],
			count:    seq,
		}
	}

	if long == nil || long.checksum != entry[13] {
		return nil
	}

	units := make([]uint16, 0, 13)

	for _, offset := range []int{1, 3, 5, 7, 9, 14, 16, 18, 20, 22, 24, 28, 30} {
		units = append(units, binary.LittleEndian.Uint16(entry[offset:]))
	}

	long.parts[seq] = units

	return long
}

// String returns the assembled long name.
func (l *longName) String() string {
	var units []uint16

	for seq := 1; seq <= l.count; seq++ {
		for _, unit := range l.parts[seq] {
			if unit == 0 || unit == 0xffff {
				return string(utf16.Decode(units))
			}

			units = append(units, unit)
		}
	}

	return string(utf16.Decode(units))
}

func checksum(short []byte) byte {
	var sum byte
	for _, c := range short {
		var carry byte
		if sum&1 == 1 {
			carry = 0x80
		}

		sum = carry + (sum >> 1) + c
	}

	return sum
}

// shortNameString formats a raw 8.3 name and applies the lowercase flags.
func shortNameString(raw []byte, ntRes byte) string {
	base := strings.TrimRight(string(raw[0:8]), " ")
	ext := strings.TrimRight(string(raw[8:11]), " ")

	if ntRes&0x08 != 0 {
		base = strings.ToLower(base)
	}

	if ntRes&0x10 != 0 {
		ext = strings.ToLower(ext)
	}

	if ext == "" {
		return base
	}

	return base + "." + ext
}
