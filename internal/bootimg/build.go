// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bootimg

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aibor/uefi-run/internal/fat"
	"github.com/aibor/uefi-run/internal/sys"
	"github.com/aibor/uefi-run/internal/virtfs"
	"github.com/c2h5oh/datasize"
)

const (
	volumeLabel    = "UEFI-RUN"
	startupName    = "startup.nsh"
	tempFilePrefix = "uefi-run-*.img"
)

// File is an additional host file that is added to the image.
type File struct {
	// Source is the path of the file on the host.
	Source string

	// Target is the path of the file in the image. If empty, the file is
	// placed in the root directory with the base name of Source.
	Target string
}

// Options for [Build].
type Options struct {
	// Arch selects the removable media fallback boot file name. The host
	// architecture is used if empty.
	Arch sys.Arch

	// MinSize is the minimum size of the image in bytes. The image is larger
	// if the content requires it.
	MinSize int64

	// Files are additional files added to the image. A file replaces any
	// earlier file at the same path, including the generated startup script.
	Files []File

	// TempDir is the directory the image file is created in. If empty, the
	// default directory is used as returned by [os.TempDir].
	TempDir string

	// ModTime is used for all timestamps in the image. The current time is
	// used if zero.
	ModTime time.Time
}

// Build creates a new bootable image file containing the given executable
// under the given name.
//
// The name is reduced to its base name. On success, the caller owns the
// returned [Image] and must remove it. On failure, no file is left behind.
func Build(executable []byte, name string, opts Options) (*Image, error) {
	if len(executable) == 0 {
		return nil, ErrEmptyExecutable
	}

	name, err := sanitizeName(name)
	if err != nil {
		return nil, err
	}

	arch := opts.Arch
	if arch == "" {
		arch = sys.Native
	}

	fallback, err := FallbackName(arch)
	if err != nil {
		return nil, err
	}

	modTime := opts.ModTime
	if modTime.IsZero() {
		modTime = time.Now()
	}

	fsys := virtfs.New()
	builder := fsBuilder{fsys}

	err = builder.addExecutable(name, fallback, executable)
	if err != nil {
		return nil, fmt.Errorf("add executable: %w", err)
	}

	err = builder.addFiles(opts.Files)
	if err != nil {
		return nil, fmt.Errorf("add files: %w", err)
	}

	volume, err := fat.New(fsys, fat.Options{
		MinSize:  opts.MinSize,
		Label:    volumeLabel,
		VolumeID: uint32(modTime.Unix()), //nolint:gosec
		ModTime:  modTime,
	})
	if err != nil {
		return nil, fmt.Errorf("layout volume: %w", err)
	}

	imagePath, err := WriteVolumeToTempFile(volume, opts.TempDir)
	if err != nil {
		return nil, fmt.Errorf("write image file: %w", err)
	}

	slog.Debug("Image created",
		slog.String("path", imagePath),
		slog.String("size", datasize.ByteSize(volume.Size()).HR()),
		slog.Int64("cluster_size", volume.ClusterSize()),
		slog.Int("clusters", volume.Clusters()),
	)

	image := &Image{
		path:           imagePath,
		size:           volume.Size(),
		executablePath: path.Join(bootDir, name),
	}

	return image, nil
}

// WriteVolumeToTempFile writes the given [fat.Volume] into a new temporary
// file in the given directory.
//
// The file is preallocated before writing, so lack of disk space is reported
// early. It returns the path to the created file. If tmpDir is the empty
// string the default directory is used as returned by [os.TempDir].
//
// The caller is responsible for removing the file once it is not needed
// anymore.
func WriteVolumeToTempFile(volume *fat.Volume, tmpDir string) (string, error) {
	file, err := os.CreateTemp(tmpDir, tempFilePrefix)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	err = writeVolume(file, volume)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())

		return "", err
	}

	err = file.Close()
	if err != nil {
		_ = os.Remove(file.Name())
		return "", fmt.Errorf("close: %w", err)
	}

	return file.Name(), nil
}

func writeVolume(file *os.File, volume *fat.Volume) error {
	err := sys.Preallocate(file, volume.Size())
	if err != nil {
		return fmt.Errorf("preallocate: %w", err)
	}

	err = volume.WriteTo(file)
	if err != nil {
		return fmt.Errorf("write volume: %w", err)
	}

	err = file.Sync()
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	return nil
}

type fsBuilder struct {
	virtfs.FSAdder
}

func (b *fsBuilder) addExecutable(name, fallback string, executable []byte) error {
	err := b.MkdirAll(bootDir)
	if err != nil {
		return err //nolint:wrapcheck
	}

	err = b.WriteFile(path.Join(bootDir, name), executable)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if !strings.EqualFold(name, fallback) {
		err = b.WriteFile(path.Join(bootDir, fallback), executable)
		if err != nil {
			return err //nolint:wrapcheck
		}
	}

	return b.WriteFile(startupName, StartupScript(name)) //nolint:wrapcheck
}

// addFiles adds the host files in order. Later files replace earlier ones.
func (b *fsBuilder) addFiles(files []File) error {
	for _, file := range files {
		target := targetPath(file)

		dir := path.Dir(target)
		if dir != "." {
			err := b.MkdirAll(dir)
			if err != nil {
				return err //nolint:wrapcheck
			}
		}

		err := b.AddHostFile(target, file.Source)
		if err != nil {
			return err //nolint:wrapcheck
		}
	}

	return nil
}

func targetPath(file File) string {
	target := filepath.ToSlash(file.Target)
	target = strings.ReplaceAll(target, `\`, "/")
	target = strings.TrimPrefix(path.Clean("/"+target), "/")

	if target == "" {
		return filepath.Base(file.Source)
	}

	return target
}
