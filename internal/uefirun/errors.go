// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package uefirun

// InputError is returned if an input file does not exist, is not readable or
// is not a regular file.
type InputError struct {
	Path string
	Err  error
}

// Error implements the [error] interface.
func (e *InputError) Error() string {
	return "input " + e.Path + ": " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*InputError) Is(other error) bool {
	_, ok := other.(*InputError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *InputError) Unwrap() error {
	return e.Err
}

// BuildError is returned if the disk image can not be built. This includes
// content that does not fit into the image, names that can not be
// represented and failures writing the image file.
type BuildError struct {
	Err error
}

// Error implements the [error] interface.
func (e *BuildError) Error() string {
	return "build image: " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*BuildError) Is(other error) bool {
	_, ok := other.(*BuildError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *BuildError) Unwrap() error {
	return e.Err
}
