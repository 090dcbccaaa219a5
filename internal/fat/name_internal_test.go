// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLosslessShortName(t *testing.T) {
	tests := []struct {
		name          string
		expectedShort string
		expectedNTRes byte
		expectedOK    bool
	}{
		{name: "BOOTX64.EFI", expectedShort: "BOOTX64 EFI", expectedOK: true},
		{name: "test.efi", expectedShort: "TEST    EFI", expectedNTRes: 0x18, expectedOK: true},
		{name: "startup.nsh", expectedShort: "STARTUP NSH", expectedNTRes: 0x18, expectedOK: true},
		{name: "TEST.efi", expectedShort: "TEST    EFI", expectedNTRes: 0x10, expectedOK: true},
		{name: "test.EFI", expectedShort: "TEST    EFI", expectedNTRes: 0x08, expectedOK: true},
		{name: "README", expectedShort: "README     ", expectedOK: true},
		{name: "efi", expectedShort: "EFI        ", expectedNTRes: 0x08, expectedOK: true},
		{name: "100%.txt", expectedShort: "100%    TXT", expectedNTRes: 0x10, expectedOK: true},
		{name: "Test.efi"},
		{name: "verylongname.efi"},
		{name: "file.html"},
		{name: "a.b.c"},
		{name: ".hidden"},
		{name: "my file.txt"},
		{name: "a+b.txt"},
		{name: "ÄÖÜ.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			short, ntRes, ok := losslessShortName(tt.name)
			assert.Equal(t, tt.expectedOK, ok)

			if !tt.expectedOK {
				return
			}

			assert.Equal(t, tt.expectedShort, string(short[:]))
			assert.Equal(t, tt.expectedNTRes, ntRes)
		})
	}
}

func TestAliasFor(t *testing.T) {
	tests := []struct {
		name     string
		used     []string
		expected string
	}{
		{name: "Hello World.efi", expected: "HELLOW~1.EFI"},
		{name: "a.b.c", expected: "AB~1.C"},
		{name: ".bashrc", expected: "BASHRC~1"},
		{name: "ÄÖÜ.txt", expected: "___~1.TXT"},
		{name: "verylongname.efi", expected: "VERYLO~1.EFI"},
		{
			name:     "verylongname.efi",
			used:     []string{"VERYLO~1EFI", "VERYLO~2EFI"},
			expected: "VERYLO~3.EFI",
		},
		{name: "...", expected: "_~1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			used := make(map[shortName]bool)

			for _, name := range tt.used {
				var short shortName

				copy(short[:], name)
				used[short] = true
			}

			alias, err := aliasFor(tt.name, used)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, alias.String())
		})
	}
}

func TestAliasFor_TailShortensBase(t *testing.T) {
	used := make(map[shortName]bool)

	for range 9 {
		alias, err := aliasFor("verylongname.efi", used)
		require.NoError(t, err)

		used[alias] = true
	}

	alias, err := aliasFor("verylongname.efi", used)
	require.NoError(t, err)
	assert.Equal(t, "VERYL~10.EFI", alias.String())
}

func TestShortName_Checksum(t *testing.T) {
	assert.Equal(t, byte(0x43), newShortName("HELLOW~1", "EFI").checksum())
	assert.Equal(t, byte(0xb7), newShortName("TEST", "EFI").checksum())
}

func TestValidateLongName(t *testing.T) {
	valid := []string{
		"test.efi",
		"Hello World.efi",
		"ÄÖÜ.txt",
		".hidden",
		"a.b.c",
		strings.Repeat("x", 255),
		"emoji-😀",
	}

	for _, name := range valid {
		assert.NoError(t, validateLongName(name), name)
	}

	invalid := []string{
		"",
		".",
		"..",
		"trailing.",
		"trailing ",
		"with:colon",
		"with*star",
		"with\\backslash",
		"with\x01control",
		strings.Repeat("x", 256),
		strings.Repeat("😀", 128),
		"\xff\xfe",
	}

	for _, name := range invalid {
		assert.ErrorIs(t, validateLongName(name), ErrInvalidName, name)
	}
}

func TestLongNameEntries(t *testing.T) {
	assert.Equal(t, 1, longNameEntries("a"))
	assert.Equal(t, 1, longNameEntries(strings.Repeat("a", 13)))
	assert.Equal(t, 2, longNameEntries(strings.Repeat("a", 14)))
	assert.Equal(t, 20, longNameEntries(strings.Repeat("a", 255)))
	assert.Equal(t, 1, longNameEntries("😀"), "surrogate pair counts twice")
}
