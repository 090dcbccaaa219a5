// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package uefirun

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aibor/uefi-run/internal/bootimg"
	"github.com/aibor/uefi-run/internal/qemu"
	"github.com/aibor/uefi-run/internal/sys"
)

// Image specifies the disk image built for a [Run].
type Image struct {
	// Files are additional host files added to the image.
	Files []bootimg.File

	// MinSize is the minimum image size in bytes.
	MinSize int64

	// TempDir is the directory the image file is created in.
	TempDir string

	// Keep the image file after the run instead of removing it.
	Keep bool
}

// Spec describes a single [Run].
type Spec struct {
	// Executable is the host path of the UEFI executable to run.
	Executable string

	// Arch is the guest architecture. If empty, it is read from the PE header
	// of the executable. If that fails, the host architecture is used.
	Arch sys.Arch

	Image Image

	// Qemu is the base for the QEMU invocation. Image path and architecture
	// defaults are filled in by [Run]. If no firmware is set, it is looked up
	// in FirmwareFS.
	Qemu qemu.LaunchSpec

	// FirmwareFS is searched for firmware at conventional locations. The
	// host's root directory is used if nil.
	FirmwareFS fs.FS
}

// Run runs the executable given in the [Spec].
//
// A disk image is built and booted with QEMU. It returns no error if QEMU
// exits with code 0. Otherwise the returned error wraps a [qemu.CommandError]
// carrying QEMU's exit code. The image file is removed on every path, unless
// [Image.Keep] is set to true.
func Run(
	ctx context.Context,
	spec *Spec,
	stdin io.Reader,
	stdout, stderr io.Writer,
) error {
	executable, err := readInput(spec.Executable)
	if err != nil {
		return err
	}

	for _, file := range spec.Image.Files {
		err := sys.CheckRegularFile(file.Source)
		if err != nil {
			return &InputError{Path: file.Source, Err: err}
		}
	}

	arch := resolveArch(spec.Arch, executable)
	if !arch.IsSupported() {
		return &InputError{
			Path: spec.Executable,
			Err:  fmt.Errorf("%w: %s", sys.ErrArchNotSupported, arch),
		}
	}

	launchSpec := spec.Qemu

	err = launchSpec.AddDefaultsFor(arch)
	if err != nil {
		return &InputError{Path: spec.Executable, Err: err}
	}

	if launchSpec.Firmware == "" {
		launchSpec.Firmware = findFirmware(spec.FirmwareFS, arch)
	}

	image, err := bootimg.Build(executable, filepath.Base(spec.Executable),
		bootimg.Options{
			Arch:    arch,
			MinSize: spec.Image.MinSize,
			Files:   spec.Image.Files,
			TempDir: spec.Image.TempDir,
		})
	if err != nil {
		return &BuildError{Err: err}
	}
	defer release(image, spec.Image.Keep)

	launchSpec.Image = image.Path()

	slog.Debug("Boot image",
		slog.String("path", image.Path()),
		slog.String("executable", image.ExecutablePath()),
	)

	plan, err := qemu.PlanLaunch(launchSpec)
	if err != nil {
		return fmt.Errorf("plan launch: %w", err)
	}

	cmd := qemu.NewCommand(plan)

	slog.Debug("QEMU command", slog.String("command", cmd.String()))

	err = cmd.Run(ctx, stdin, stdout, stderr)
	if err != nil {
		return fmt.Errorf("qemu run: %w", err)
	}

	return nil
}

func readInput(path string) ([]byte, error) {
	err := sys.CheckRegularFile(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}

	return data, nil
}

// resolveArch returns the architecture to run the executable with.
func resolveArch(requested sys.Arch, executable []byte) sys.Arch {
	detected, err := sys.ReadPEArch(executable)
	if err != nil {
		slog.Debug("Architecture detection failed", slog.Any("error", err))
	}

	switch {
	case requested != "":
		if detected != "" && detected != requested {
			slog.Warn("Executable architecture differs from requested one",
				slog.String("detected", string(detected)),
				slog.String("requested", string(requested)),
			)
		}

		return requested
	case detected != "":
		return detected
	default:
		return sys.Native
	}
}

// findFirmware returns the first firmware found at the conventional locations
// for the architecture. If none is found, [sys.DefaultFirmware] is returned
// and QEMU's search path applies.
func findFirmware(fsys fs.FS, arch sys.Arch) string {
	if fsys == nil {
		fsys = os.DirFS("/")
	}

	path, err := sys.FindFirmware(fsys, arch)
	if err != nil {
		slog.Debug("No firmware found", slog.Any("error", err))
		return sys.DefaultFirmware
	}

	slog.Debug("Firmware found", slog.String("path", path))

	return path
}

// release removes the image, or keeps it and logs its path. Failing to
// remove the image is not an error of the run.
func release(image *bootimg.Image, keep bool) {
	if keep {
		slog.Warn("Keep image", slog.String("path", image.Path()))
		return
	}

	err := image.Remove()
	if err != nil {
		slog.Warn("Failed to remove image",
			slog.String("path", image.Path()),
			slog.Any("error", err),
		)
	}
}
