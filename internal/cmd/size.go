// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"math"
	"strconv"

	"github.com/c2h5oh/datasize"
)

// SizeValue is a [flag.Value] for a size in bytes. It accepts the formats of
// [datasize.ByteSize], like "64MB" or "1G". Plain numbers are MiB.
type SizeValue struct {
	Value *int64
}

func (s *SizeValue) String() string {
	if s.Value == nil || *s.Value == 0 {
		return ""
	}

	return datasize.ByteSize(*s.Value).String() //nolint:gosec
}

func (s *SizeValue) Set(value string) error {
	var size datasize.ByteSize

	if mib, err := strconv.ParseUint(value, 10, 64); err == nil {
		value = strconv.FormatUint(mib, 10) + "MB"
	}

	err := size.UnmarshalText([]byte(value))
	if err != nil {
		return fmt.Errorf("parse size: %w", err)
	}

	if size.Bytes() > math.MaxInt64 {
		return fmt.Errorf("%s: %w", value, ErrValueOutOfRange)
	}

	*s.Value = int64(size.Bytes()) //nolint:gosec

	return nil
}
