// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fat

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const (
	shortBaseLen = 8
	shortExtLen  = 3
	shortNameLen = shortBaseLen + shortExtLen

	maxLongNameLen   = 255
	longNameEntryLen = 13

	// Case flags in the NTRes field of short entries.
	ntResLowerBase = 0x08
	ntResLowerExt  = 0x10

	// Characters besides letters and digits allowed in short names.
	shortSpecialChars = "!#$%&'()-@^_`{}~"

	// Characters not allowed in long names.
	longInvalidChars = "\"*/:<>?\\|"

	maxNumericTail = 999999
)

type shortName [shortNameLen]byte

func (s shortName) String() string {
	base := strings.TrimRight(string(s[:shortBaseLen]), " ")
	ext := strings.TrimRight(string(s[shortBaseLen:]), " ")

	if ext == "" {
		return base
	}

	return base + "." + ext
}

func newShortName(base, ext string) shortName {
	var name shortName

	copy(name[:], strings.Repeat(" ", shortNameLen))
	copy(name[:shortBaseLen], base)
	copy(name[shortBaseLen:], ext)

	return name
}

// checksum calculates the short name checksum stored in each long name entry.
func (s shortName) checksum() byte {
	var sum byte

	for _, c := range s {
		sum = (sum&1)<<7 + sum>>1 + c
	}

	return sum
}

// validateLongName checks that the given name can be stored as FAT long name.
func validateLongName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.HasSuffix(name, "."), strings.HasSuffix(name, " "):
		return fmt.Errorf("%w: trailing dot or space: %q", ErrInvalidName, name)
	case !utf8.ValidString(name):
		return fmt.Errorf("%w: not valid UTF-8: %q", ErrInvalidName, name)
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(longInvalidChars, r) {
			return fmt.Errorf("%w: character %q in %q", ErrInvalidName, r, name)
		}
	}

	if longNameLen(name) > maxLongNameLen {
		return fmt.Errorf("%w: too long: %q", ErrInvalidName, name)
	}

	return nil
}

// longNameLen returns the length of the name in UTF-16 code units.
func longNameLen(name string) int {
	return len(utf16.Encode([]rune(name)))
}

func isShortChar(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z',
		'a' <= c && c <= 'z',
		'0' <= c && c <= '9':
		return true
	default:
		return strings.IndexByte(shortSpecialChars, c) >= 0
	}
}

// caseFlag returns flag if s is all lowercase, 0 if s is all uppercase or
// has no letters at all. It returns false if s has mixed case or contains
// characters not allowed in short names.
func caseFlag(s string, flag byte) (byte, bool) {
	var hasUpper, hasLower bool

	for idx := range len(s) {
		c := s[idx]
		if !isShortChar(c) {
			return 0, false
		}

		hasUpper = hasUpper || 'A' <= c && c <= 'Z'
		hasLower = hasLower || 'a' <= c && c <= 'z'
	}

	switch {
	case hasUpper && hasLower:
		return 0, false
	case hasLower:
		return flag, true
	default:
		return 0, true
	}
}

// losslessShortName returns the short name and case flags for names that are
// valid 8.3 names. It returns false if a long name is required.
func losslessShortName(name string) (shortName, byte, bool) {
	base, ext, hasExt := strings.Cut(name, ".")

	switch {
	case base == "", len(base) > shortBaseLen,
		hasExt && ext == "", len(ext) > shortExtLen:
		return shortName{}, 0, false
	}

	baseFlag, ok := caseFlag(base, ntResLowerBase)
	if !ok {
		return shortName{}, 0, false
	}

	extFlag, ok := caseFlag(ext, ntResLowerExt)
	if !ok {
		return shortName{}, 0, false
	}

	short := newShortName(strings.ToUpper(base), strings.ToUpper(ext))

	return short, baseFlag | extFlag, true
}

// basisName derives the base and extension of a short alias for a long name.
// Characters not allowed in short names are replaced by "_".
func basisName(name string) (string, string) {
	name = strings.ReplaceAll(name, " ", "")
	name = strings.TrimLeft(name, ".")

	base, ext := name, ""
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		base, ext = name[:idx], name[idx+1:]
	}

	base = shortChars(strings.ReplaceAll(base, ".", ""), shortBaseLen)
	ext = shortChars(ext, shortExtLen)

	if base == "" {
		base = "_"
	}

	return base, ext
}

func shortChars(s string, maxLen int) string {
	var builder strings.Builder

	for _, r := range s {
		if builder.Len() == maxLen {
			break
		}

		c := byte('_')
		if r < utf8.RuneSelf && isShortChar(byte(r)) {
			c = byte(r)
		}

		builder.WriteByte(c)
	}

	return strings.ToUpper(builder.String())
}

// aliasFor generates a short name alias with a numeric tail that is not
// present in used.
func aliasFor(name string, used map[shortName]bool) (shortName, error) {
	base, ext := basisName(name)

	for num := 1; num <= maxNumericTail; num++ {
		tail := "~" + strconv.Itoa(num)
		prefix := base[:min(len(base), shortBaseLen-len(tail))]

		alias := newShortName(prefix+tail, ext)
		if !used[alias] {
			return alias, nil
		}
	}

	return shortName{}, fmt.Errorf("%w: no short alias left for %q",
		ErrNameCollision, name)
}

// longNameEntries returns the number of long name entries required for the
// given name.
func longNameEntries(name string) int {
	return (longNameLen(name) + longNameEntryLen - 1) / longNameEntryLen
}
