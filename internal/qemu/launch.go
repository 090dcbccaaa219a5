// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"slices"
	"strconv"

	"github.com/aibor/uefi-run/internal/sys"
	"github.com/samber/lo"
)

const (
	machineTypeQ35  = "q35"
	machineTypeVirt = "virt"
	cpuTypeMax      = "max"
)

// LaunchSpec defines the parameters for a [LaunchPlan].
type LaunchSpec struct {
	// Path to the qemu-system binary.
	Executable string

	// Path to the UEFI firmware image. Without FirmwareVars it is loaded with
	// "-bios". Otherwise, it is attached as read-only pflash drive.
	Firmware string

	// Path to a UEFI variable store. If set, it is attached as writable
	// pflash drive after the firmware, so variables persist.
	FirmwareVars string

	// Path to the raw disk image to boot from.
	Image string

	// QEMU machine type to use. Depends on the QEMU binary used.
	Machine string

	// CPU type to use. Depends on machine type and QEMU binary used.
	CPU string

	// Number of CPUs for the guest.
	SMP uint64

	// Memory for the machine in MB.
	Memory uint64

	// Disable KVM support.
	NoKVM bool

	// Keep QEMU's default network device. By default networking is
	// disabled.
	Network bool

	// ExtraArgs are passed to QEMU verbatim after all derived arguments.
	// They are neither validated nor modified.
	ExtraArgs []string
}

// AddDefaultsFor adds architecture specific default values to the given spec
// if the fields are not set yet.
func (s *LaunchSpec) AddDefaultsFor(arch sys.Arch) error {
	var (
		executable string
		machine    string
		cpu        string
	)

	switch arch {
	case sys.AMD64:
		executable = "qemu-system-x86_64"
		machine = machineTypeQ35
	case sys.ARM64:
		executable = "qemu-system-aarch64"
		machine = machineTypeVirt
		cpu = cpuTypeMax
	case sys.RISCV64:
		executable = "qemu-system-riscv64"
		machine = machineTypeVirt
	default:
		return sys.ErrArchNotSupported
	}

	if s.Executable == "" {
		s.Executable = executable
	}

	if s.Machine == "" {
		s.Machine = machine
	}

	if s.CPU == "" {
		s.CPU = cpu
	}

	if !s.NoKVM {
		s.NoKVM = !arch.KVMAvailable()
	}

	return nil
}

// LaunchPlan is the complete QEMU invocation for booting a disk image.
type LaunchPlan struct {
	// Executable is the QEMU binary to run.
	Executable string

	// Firmware are the firmware files that must exist for the plan to be
	// runnable.
	Firmware []string

	// Image is the path to the disk image.
	Image string

	// Derived are the arguments derived from the [LaunchSpec].
	Derived []Argument

	// ExtraArgs are the verbatim passthrough arguments.
	ExtraArgs []string
}

// Args returns the derived arguments followed by the passthrough arguments.
func (p LaunchPlan) Args() []string {
	// Derived arguments are validated by PlanLaunch already.
	args, _ := argumentStrings(p.Derived)

	return append(args, p.ExtraArgs...)
}

// PlanLaunch transforms the given spec into a [LaunchPlan]. It does not access
// any files.
//
// It returns an [ArgumentError] if the firmware or image path is empty, or if
// derived arguments collide.
func PlanLaunch(spec LaunchSpec) (LaunchPlan, error) {
	if spec.Firmware == "" {
		return LaunchPlan{}, &ArgumentError{"firmware path must not be empty"}
	}

	if spec.Image == "" {
		return LaunchPlan{}, &ArgumentError{"image path must not be empty"}
	}

	derived := spec.arguments()

	_, err := argumentStrings(derived)
	if err != nil {
		return LaunchPlan{}, &ArgumentError{err.Error()}
	}

	plan := LaunchPlan{
		Executable: spec.Executable,
		Firmware:   lo.Compact([]string{spec.Firmware, spec.FirmwareVars}),
		Image:      spec.Image,
		Derived:    derived,
		ExtraArgs:  slices.Clone(spec.ExtraArgs),
	}

	return plan, nil
}

// arguments compiles the derived argument list for the QEMU command.
func (s *LaunchSpec) arguments() []Argument {
	var args []Argument

	if s.Machine != "" {
		args = append(args, Flag("machine", s.Machine))
	}

	if s.CPU != "" {
		args = append(args, Flag("cpu", s.CPU))
	}

	if s.Memory != 0 {
		args = append(args, Flag("m", strconv.FormatUint(s.Memory, 10)))
	}

	if s.SMP != 0 {
		args = append(args, Flag("smp", strconv.FormatUint(s.SMP, 10)))
	}

	if !s.NoKVM {
		args = append(args, Flag("enable-kvm"))
	}

	if s.FirmwareVars == "" {
		args = append(args, Flag("bios", s.Firmware))
	} else {
		args = append(args,
			RepeatedFlag("drive", pflashDrive(0, s.Firmware, true)...),
			RepeatedFlag("drive", pflashDrive(1, s.FirmwareVars, false)...),
		)
	}

	args = append(args, RepeatedFlag("drive",
		KeyValue("file", s.Image),
		"index=0",
		"media=disk",
		"format=raw",
	))

	if !s.Network {
		args = append(args, Flag("net", "none"))
	}

	return args
}

func pflashDrive(unit int, file string, readOnly bool) []string {
	opts := []string{
		"if=pflash",
		"format=raw",
		KeyValue("unit", strconv.Itoa(unit)),
		KeyValue("file", file),
	}

	if readOnly {
		opts = append(opts, "readonly=on")
	}

	return opts
}
