// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fat

import (
	"encoding/binary"
	"time"
	"unicode/utf16"
)

// Directory entry attributes.
const (
	attrVolumeID  = 0x08
	attrDirectory = 0x10
	attrArchive   = 0x20
	attrLongName  = 0x0f
)

const lastLongEntry = 0x40

var (
	dotName    = newShortName(".", "")
	dotDotName = newShortName("..", "")
)

// timestamp is a date and time in MS-DOS format.
type timestamp struct {
	date uint16
	time uint16
}

// newTimestamp converts t into MS-DOS format. Times before 1980 and after 2107
// are clamped as the format can not represent them. The zero time results in
// 1980-01-01 00:00:00.
func newTimestamp(t time.Time) timestamp {
	var (
		lowest  = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)
		highest = time.Date(2107, time.December, 31, 23, 59, 58, 0, time.UTC)
	)

	if t.IsZero() || t.Before(lowest) {
		t = lowest
	}

	if t.After(highest) {
		t = highest
	}

	return timestamp{
		date: uint16((t.Year()-1980)<<9 | int(t.Month())<<5 | t.Day()),
		time: uint16(t.Hour()<<11 | t.Minute()<<5 | t.Second()/2),
	}
}

// dirWriter encodes directory entries into a buffer.
type dirWriter struct {
	buf []byte
	ts  timestamp
}

func (w *dirWriter) next() []byte {
	entry := w.buf[:dirEntrySize]
	w.buf = w.buf[dirEntrySize:]

	return entry
}

func (w *dirWriter) putShort(
	name shortName,
	attr byte,
	ntRes byte,
	cluster uint32,
	size uint32,
) {
	entry := w.next()

	copy(entry[0:11], name[:])
	entry[11] = attr
	entry[12] = ntRes
	binary.LittleEndian.PutUint16(entry[14:], w.ts.time)
	binary.LittleEndian.PutUint16(entry[16:], w.ts.date)
	binary.LittleEndian.PutUint16(entry[18:], w.ts.date)
	binary.LittleEndian.PutUint16(entry[20:], uint16(cluster>>16))
	binary.LittleEndian.PutUint16(entry[22:], w.ts.time)
	binary.LittleEndian.PutUint16(entry[24:], w.ts.date)
	binary.LittleEndian.PutUint16(entry[26:], uint16(cluster))
	binary.LittleEndian.PutUint32(entry[28:], size)
}

// putLong writes the long name entries for name, last part first.
func (w *dirWriter) putLong(name string, short shortName) {
	units := utf16.Encode([]rune(name))
	count := longNameEntries(name)
	checksum := short.checksum()

	// The name is terminated by 0x0000 if it does not fill the last entry
	// completely. Remaining characters are padded with 0xffff.
	padded := make([]uint16, count*longNameEntryLen)
	copy(padded, units)

	for idx := len(units); idx < len(padded); idx++ {
		padded[idx] = 0xffff
	}

	if len(units) < len(padded) {
		padded[len(units)] = 0
	}

	for seq := count; seq > 0; seq-- {
		entry := w.next()
		part := padded[(seq-1)*longNameEntryLen : seq*longNameEntryLen]

		entry[0] = byte(seq)
		if seq == count {
			entry[0] |= lastLongEntry
		}

		entry[11] = attrLongName
		entry[13] = checksum

		for idx, unit := range part {
			var offset int

			switch {
			case idx < 5:
				offset = 1 + idx*2
			case idx < 11:
				offset = 14 + (idx-5)*2
			default:
				offset = 28 + (idx-11)*2
			}

			binary.LittleEndian.PutUint16(entry[offset:], unit)
		}
	}
}

func (w *dirWriter) putNode(n *node) {
	if n.longName {
		w.putLong(n.name, n.short)
	}

	if n.dir {
		w.putShort(n.short, attrDirectory, n.ntRes, n.cluster, 0)
	} else {
		w.putShort(n.short, attrArchive, n.ntRes, n.cluster, uint32(n.size))
	}
}
