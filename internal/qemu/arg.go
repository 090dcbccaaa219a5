// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"fmt"
	"strings"
)

// Argument is a QEMU command line flag with an optional comma separated
// option list.
type Argument struct {
	name       string
	options    []string
	repeatable bool
}

// Flag returns an [Argument] that may be present only once in a
// [LaunchPlan].
func Flag(name string, options ...string) Argument {
	return Argument{
		name:    name,
		options: options,
	}
}

// RepeatedFlag returns an [Argument] that may be present multiple times in a
// [LaunchPlan], as long as the option lists differ.
func RepeatedFlag(name string, options ...string) Argument {
	return Argument{
		name:       name,
		options:    options,
		repeatable: true,
	}
}

// KeyValue returns the option "key=value". Commas in the value are doubled,
// so QEMU does not split paths that contain commas.
func KeyValue(key, value string) string {
	return key + "=" + strings.ReplaceAll(value, ",", ",,")
}

// String implements [fmt.Stringer].
func (a Argument) String() string {
	return strings.Join(a.words(), " ")
}

func (a Argument) value() string {
	return strings.Join(a.options, ",")
}

func (a Argument) words() []string {
	words := []string{"-" + a.name}

	if value := a.value(); value != "" {
		words = append(words, value)
	}

	return words
}

// key identifies the argument in a list. Two arguments with the same key
// collide.
func (a Argument) key() string {
	if a.repeatable {
		return a.name + " " + a.value()
	}

	return a.name
}

// argumentStrings renders the arguments into command line words in order.
//
// It returns [ErrArgumentCollision] if any two arguments have the same key.
func argumentStrings(args []Argument) ([]string, error) {
	words := make([]string, 0, 2*len(args))
	seen := make(map[string]Argument, len(args))

	for _, arg := range args {
		if prev, exists := seen[arg.key()]; exists {
			return nil, fmt.Errorf("%w: %s, %s", ErrArgumentCollision, arg, prev)
		}

		seen[arg.key()] = arg
		words = append(words, arg.words()...)
	}

	return words, nil
}
