// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu_test

import (
	"testing"

	"github.com/aibor/uefi-run/internal/qemu"
	"github.com/aibor/uefi-run/internal/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanLaunch(t *testing.T) {
	tests := []struct {
		name     string
		spec     qemu.LaunchSpec
		expected []string
	}{
		{
			name: "minimal",
			spec: qemu.LaunchSpec{
				Firmware: "OVMF.fd",
				Image:    "/tmp/img",
				NoKVM:    true,
			},
			expected: []string{
				"-bios", "OVMF.fd",
				"-drive", "file=/tmp/img,index=0,media=disk,format=raw",
				"-net", "none",
			},
		},
		{
			name: "full",
			spec: qemu.LaunchSpec{
				Executable: "qemu-system-x86_64",
				Firmware:   "/fw/OVMF.fd",
				Image:      "/tmp/img",
				Machine:    "q35",
				CPU:        "host",
				Memory:     512,
				SMP:        2,
				Network:    true,
				ExtraArgs:  []string{"-serial", "stdio", "-bios", "other.fd"},
			},
			expected: []string{
				"-machine", "q35",
				"-cpu", "host",
				"-m", "512",
				"-smp", "2",
				"-enable-kvm",
				"-bios", "/fw/OVMF.fd",
				"-drive", "file=/tmp/img,index=0,media=disk,format=raw",
				"-serial", "stdio",
				"-bios", "other.fd",
			},
		},
		{
			name: "pflash",
			spec: qemu.LaunchSpec{
				Firmware:     "/fw/OVMF_CODE.fd",
				FirmwareVars: "/tmp/OVMF_VARS.fd",
				Image:        "/tmp/my,img",
				NoKVM:        true,
			},
			expected: []string{
				"-drive", "if=pflash,format=raw,unit=0,file=/fw/OVMF_CODE.fd,readonly=on",
				"-drive", "if=pflash,format=raw,unit=1,file=/tmp/OVMF_VARS.fd",
				"-drive", "file=/tmp/my,,img,index=0,media=disk,format=raw",
				"-net", "none",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := qemu.PlanLaunch(tt.spec)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, plan.Args())
			assert.Equal(t, tt.spec.Executable, plan.Executable)
			assert.Equal(t, tt.spec.Image, plan.Image)
		})
	}
}

func TestPlanLaunch_ExtraArgsVerbatim(t *testing.T) {
	extraArgs := []string{"", " spaced ", "-drive", "file=x", "--", "-net", "none"}

	plan, err := qemu.PlanLaunch(qemu.LaunchSpec{
		Firmware:  "OVMF.fd",
		Image:     "img",
		ExtraArgs: extraArgs,
	})
	require.NoError(t, err)

	args := plan.Args()
	require.GreaterOrEqual(t, len(args), len(extraArgs))
	assert.Equal(t, extraArgs, args[len(args)-len(extraArgs):])

	// The plan does not share the input slice.
	extraArgs[0] = "mutated"
	assert.Empty(t, plan.ExtraArgs[0])
}

func TestPlanLaunch_Firmware(t *testing.T) {
	plan, err := qemu.PlanLaunch(qemu.LaunchSpec{
		Firmware: "code.fd",
		Image:    "img",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"code.fd"}, plan.Firmware)
	qemu.ArgumentValueAssertionFunc("bios", assert.Equal)(t, plan.Derived, "code.fd")

	plan, err = qemu.PlanLaunch(qemu.LaunchSpec{
		Firmware:     "code.fd",
		FirmwareVars: "vars.fd",
		Image:        "img",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"code.fd", "vars.fd"}, plan.Firmware)
	assert.NotContains(t, plan.Args(), "-bios")
}

func TestPlanLaunch_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec qemu.LaunchSpec
	}{
		{
			name: "no firmware",
			spec: qemu.LaunchSpec{Image: "img"},
		},
		{
			name: "no image",
			spec: qemu.LaunchSpec{Firmware: "OVMF.fd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := qemu.PlanLaunch(tt.spec)
			require.ErrorIs(t, err, &qemu.ArgumentError{})
		})
	}
}

func TestLaunchSpec_AddDefaultsFor(t *testing.T) {
	tests := []struct {
		arch     sys.Arch
		expected qemu.LaunchSpec
	}{
		{
			arch: sys.AMD64,
			expected: qemu.LaunchSpec{
				Executable: "qemu-system-x86_64",
				Machine:    "q35",
				NoKVM:      true,
			},
		},
		{
			arch: sys.ARM64,
			expected: qemu.LaunchSpec{
				Executable: "qemu-system-aarch64",
				Machine:    "virt",
				CPU:        "max",
				NoKVM:      true,
			},
		},
		{
			arch: sys.RISCV64,
			expected: qemu.LaunchSpec{
				Executable: "qemu-system-riscv64",
				Machine:    "virt",
				NoKVM:      true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.arch), func(t *testing.T) {
			spec := qemu.LaunchSpec{NoKVM: true}

			err := spec.AddDefaultsFor(tt.arch)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, spec)
		})
	}

	t.Run("keeps set values", func(t *testing.T) {
		spec := qemu.LaunchSpec{
			Executable: "/usr/local/bin/qemu",
			Machine:    "pc",
			CPU:        "host",
			NoKVM:      true,
		}
		expected := spec

		require.NoError(t, spec.AddDefaultsFor(sys.AMD64))
		assert.Equal(t, expected, spec)
	})

	t.Run("unsupported", func(t *testing.T) {
		spec := qemu.LaunchSpec{}
		require.ErrorIs(t, spec.AddDefaultsFor("mips"), sys.ErrArchNotSupported)
	})
}
