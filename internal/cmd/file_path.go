// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"strings"

	"github.com/aibor/uefi-run/internal/bootimg"
	"github.com/aibor/uefi-run/internal/sys"
	"github.com/samber/lo"
)

// FilePath is a [flag.Value] for a file path that is made absolute.
type FilePath string

func (f *FilePath) String() string {
	return string(*f)
}

func (f *FilePath) Set(s string) error {
	path, err := sys.AbsolutePath(s)
	if err != nil {
		return err //nolint:wrapcheck
	}

	*f = FilePath(path)

	return nil
}

// AddFileList is a [flag.Value] for additional files of the image.
//
// Each value is an "outer[:inner]" pair. The outer path is the host file,
// inner the path in the image. An empty value clears the list.
type AddFileList []bootimg.File

func (l *AddFileList) String() string {
	return strings.Join(lo.Map(*l, func(file bootimg.File, _ int) string {
		if file.Target == "" {
			return file.Source
		}

		return file.Source + ":" + file.Target
	}), ",")
}

func (l *AddFileList) Set(s string) error {
	if s == "" {
		*l = nil
		return nil
	}

	outer, inner, _ := strings.Cut(s, ":")

	source, err := sys.AbsolutePath(outer)
	if err != nil {
		return err //nolint:wrapcheck
	}

	*l = append(*l, bootimg.File{Source: source, Target: inner})

	return nil
}
