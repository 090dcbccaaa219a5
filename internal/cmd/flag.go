// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"flag"
	"fmt"
	"io"

	"github.com/aibor/uefi-run/internal/sys"
	"github.com/aibor/uefi-run/internal/uefirun"
)

const (
	name = "uefi-run"

	memDefault = 256
	memMin     = 128
	memMax     = 16384

	smpDefault = 1
	smpMin     = 1
	smpMax     = 16

	usageMessage = `Usage of 'uefi-run':
    uefi-run [flags...] executable [qemu args...]

Using it directly:
	uefi-run -bios=/path/to/OVMF.fd ./app.efi -serial stdio

All arguments after the executable are passed to QEMU unchanged. Use "--"
before the executable if QEMU arguments could be mistaken for uefi-run flags.

All uefi-run flags can also be provided via environment variable
UEFI_RUN_ARGS:
	UEFI_RUN_ARGS="-bios=/path/to/OVMF.fd -debug" uefi-run ./app.efi

All uefi-run flags can also be provided via file ./.uefi-run-args, with one
argument per line. Variables UEFI_RUN_ARGS and UEFI_RUN_BIOS are read from
file ./.uefi-run.env, if they are not set in the environment.
`
)

type flags struct {
	spec    uefirun.Spec
	flagSet *flag.FlagSet

	version bool
	debug   bool
}

func newFlags(output io.Writer, lookup LookupEnvFunc) *flags {
	flags := &flags{
		spec: uefirun.Spec{},
	}

	flags.spec.Qemu.Memory = memDefault
	flags.spec.Qemu.SMP = smpDefault

	if bios, _ := lookup(biosEnvVar); bios != "" {
		// An invalid path is reported once QEMU is started.
		_ = (*FilePath)(&flags.spec.Qemu.Firmware).Set(bios)
	}

	flags.initFlagset(output)

	return flags
}

func parseArgs(args []string, output io.Writer, lookup LookupEnvFunc) (*flags, error) {
	flags := newFlags(output, lookup)

	err := flags.ParseArgs(args)
	if err != nil {
		return nil, err
	}

	return flags, nil
}

func (f *flags) ParseArgs(args []string) error {
	// Parses arguments up to the first one that is not prefixed with a "-" or
	// is "--".
	err := f.flagSet.Parse(args)
	if err != nil {
		return &ParseArgsError{msg: "flag parse", err: err}
	}

	if f.version {
		return nil
	}

	positionalArgs := f.flagSet.Args()

	// First positional argument is supposed to be the UEFI executable.
	if len(positionalArgs) < 1 {
		return f.fail("no executable given", nil)
	}

	executable, err := sys.AbsolutePath(positionalArgs[0])
	if err != nil {
		return f.fail("executable path", err)
	}

	f.spec.Executable = executable

	// All further positional arguments are passed to QEMU as they are.
	f.spec.Qemu.ExtraArgs = positionalArgs[1:]

	return nil
}

func (f *flags) initFlagset(output io.Writer) {
	flagSet := flag.NewFlagSet(name, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = f.usage

	flagSet.Var(
		(*FilePath)(&f.spec.Qemu.Firmware),
		"bios",
		"UEFI firmware image to use (default from UEFI_RUN_BIOS or "+
			"well-known locations)",
	)

	flagSet.Var(
		(*FilePath)(&f.spec.Qemu.FirmwareVars),
		"biosVars",
		"UEFI variable store. Firmware and variables are attached as pflash "+
			"drives if set",
	)

	flagSet.StringVar(
		&f.spec.Qemu.Executable,
		"qemuBin",
		f.spec.Qemu.Executable,
		"QEMU binary to use (default depends on arch: qemu-system-*)",
	)

	flagSet.Var(
		&f.spec.Arch,
		"arch",
		"guest architecture: amd64, arm64, riscv64 (default read from the "+
			"executable, else host arch)",
	)

	flagSet.StringVar(
		&f.spec.Qemu.Machine,
		"machine",
		f.spec.Qemu.Machine,
		"QEMU machine type to use (default depends on arch)",
	)

	flagSet.StringVar(
		&f.spec.Qemu.CPU,
		"cpu",
		f.spec.Qemu.CPU,
		"QEMU CPU type to use (default depends on arch)",
	)

	flagSet.Var(
		&LimitedUintValue{
			Value: &f.spec.Qemu.Memory,
			Lower: memMin,
			Upper: memMax,
		},
		"memory",
		"memory (in MB) for the QEMU VM",
	)

	flagSet.Var(
		&LimitedUintValue{
			Value: &f.spec.Qemu.SMP,
			Lower: smpMin,
			Upper: smpMax,
		},
		"smp",
		"number of CPUs for the QEMU VM",
	)

	flagSet.BoolVar(
		&f.spec.Qemu.NoKVM,
		"nokvm",
		f.spec.Qemu.NoKVM,
		"disable hardware support (default is enabled if present and arch "+
			"matches the host arch)",
	)

	flagSet.BoolVar(
		&f.spec.Qemu.Network,
		"network",
		f.spec.Qemu.Network,
		"keep QEMU's default network device",
	)

	flagSet.Var(
		&SizeValue{Value: &f.spec.Image.MinSize},
		"size",
		"minimum size of the disk image, like 64MB or 1G. Plain numbers "+
			"are MB (default fits the content)",
	)

	flagSet.Var(
		(*AddFileList)(&f.spec.Image.Files),
		"addFile",
		"file to add to the image as outer[:inner] (default inner is the "+
			"file's name in the image root). Replaces files already in the "+
			"image at the same path. Flag may be used more than once. "+
			"Empty value clears the list.",
	)

	flagSet.BoolVar(
		&f.spec.Image.Keep,
		"keepImage",
		f.spec.Image.Keep,
		"do not delete the disk image on exit. Intended for debugging. "+
			"The path to the file is printed on stderr",
	)

	flagSet.BoolVar(
		&f.debug,
		"debug",
		f.debug,
		"enable debug output",
	)

	flagSet.BoolVar(
		&f.version,
		"version",
		f.version,
		"show version and exit",
	)

	f.flagSet = flagSet
}

// fail fails like flag does. It prints the error first and then usage.
func (f *flags) fail(msg string, err error) error {
	err = &ParseArgsError{msg: msg, err: err}
	fmt.Fprintln(f.flagSet.Output(), err.Error())

	f.flagSet.Usage()

	return err
}

func (f *flags) usage() {
	fmt.Fprint(f.flagSet.Output(), usageMessage)
	fmt.Fprintln(f.flagSet.Output(), "\nFlags:")
	f.flagSet.PrintDefaults()
}
