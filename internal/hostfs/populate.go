package hostfs

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/desertwitch/boxfs/internal/boxpath"
	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"
)

// Populate copies the contents of the host directory hostDir into the
// container directory internal, creating internal first if needed. Existing
// container directories are merged into and existing files are overwritten.
func (h *Handler) Populate(ctx context.Context, box boxProvider, hostDir string, internal boxpath.Path) (Report, error) {
	var report Report

	if err := h.isHostDirectory(hostDir); err != nil {
		return report, err
	}

	if err := h.ensureBoxDirectory(box, internal); err != nil {
		return report, err
	}

	entries, err := h.osHandler.ReadDir(hostDir)
	if err != nil {
		return report, fmt.Errorf("(hostfs) failed to readdir %s: %w", hostDir, err)
	}

	if err := h.populateDirectory(ctx, box, hostDir, internal, entries, &report); err != nil {
		return report, err
	}

	slog.Info("Populated container",
		"source", hostDir,
		"target", internal,
		"directories", report.Directories,
		"files", report.Files,
		"size", humanize.Bytes(report.Bytes),
		"skipped", report.Skipped,
	)

	return report, nil
}

func (h *Handler) ensureBoxDirectory(box boxProvider, internal boxpath.Path) error {
	isDir, err := box.IsDirectory(internal)
	if err != nil {
		return fmt.Errorf("(hostfs) failed to check %s: %w", internal, err)
	}

	if isDir {
		return nil
	}

	if _, err := box.CreateDirectories(internal); err != nil {
		return fmt.Errorf("(hostfs) failed to create %s: %w", internal, err)
	}

	isDir, err = box.IsDirectory(internal)
	if err != nil {
		return fmt.Errorf("(hostfs) failed to check %s: %w", internal, err)
	}

	if !isDir {
		return fmt.Errorf("(hostfs) %w: %s", ErrNotADirectory, internal)
	}

	return nil
}

func (h *Handler) populateDirectory(ctx context.Context, box boxProvider, hostDir string, internal boxpath.Path, entries []os.DirEntry, report *Report) error {
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("(hostfs) populate canceled: %w", err)
		}

		hostPath := filepath.Join(hostDir, entry.Name())

		target, err := internal.With(entry.Name())
		if err != nil {
			h.skip(report, hostPath, err)

			continue
		}

		switch {
		case entry.IsDir():
			if err := h.populateSubdirectory(ctx, box, hostPath, target, report); err != nil {
				return err
			}

		case entry.Type().IsRegular():
			if err := h.populateFile(ctx, box, hostPath, target, report); err != nil {
				return err
			}

		default:
			h.skip(report, hostPath, ErrUnsupportedType)
		}
	}

	return nil
}

func (h *Handler) populateSubdirectory(ctx context.Context, box boxProvider, hostPath string, target boxpath.Path, report *Report) error {
	entries, err := h.osHandler.ReadDir(hostPath)
	if err != nil {
		h.skip(report, hostPath, err)

		return nil
	}

	created, err := box.CreateDirectory(target)
	if err != nil {
		return fmt.Errorf("(hostfs) failed to create %s: %w", target, err)
	}

	if created {
		report.Directories++
	} else {
		isDir, err := box.IsDirectory(target)
		if err != nil {
			return fmt.Errorf("(hostfs) failed to check %s: %w", target, err)
		}

		if !isDir {
			h.skip(report, hostPath, ErrEntryExists)

			return nil
		}
	}

	return h.populateDirectory(ctx, box, hostPath, target, entries, report)
}

func (h *Handler) populateFile(ctx context.Context, box boxProvider, hostPath string, target boxpath.Path, report *Report) error {
	content, checksum, err := h.readHostFile(ctx, hostPath)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		h.skip(report, hostPath, err)

		return nil
	}

	if _, err := box.CreateFile(target, len(content)); err != nil {
		return fmt.Errorf("(hostfs) failed to create %s: %w", target, err)
	}

	written, err := box.WriteFile(target, content)
	if err != nil {
		return fmt.Errorf("(hostfs) failed to write %s: %w", target, err)
	}

	if !written {
		h.skip(report, hostPath, ErrEntryExists)

		return nil
	}

	if h.verify {
		stored, _, err := box.ReadFile(target)
		if err != nil {
			return fmt.Errorf("(hostfs) failed to read back %s: %w", target, err)
		}

		storedSum := blake3.Sum256(stored)
		storedChecksum := hex.EncodeToString(storedSum[:])

		if checksum != storedChecksum {
			return fmt.Errorf("(hostfs) %w: %s: %s (src) != %s (dst)", ErrHashMismatch, target, checksum, storedChecksum)
		}
	}

	report.Files++
	report.Bytes += uint64(len(content))

	return nil
}

// readHostFile returns the content of a host file along with its blake3
// checksum.
func (h *Handler) readHostFile(ctx context.Context, path string) ([]byte, string, error) {
	f, err := h.osHandler.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("(hostfs) failed to open source file: %w", err)
	}
	defer f.Close()

	hasher := blake3.New()

	ctxReader := &contextReader{
		ctx:    ctx,
		reader: io.TeeReader(f, hasher),
	}

	content, err := io.ReadAll(ctxReader)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, "", fmt.Errorf("(hostfs) transfer canceled: %w", err)
		}

		return nil, "", fmt.Errorf("(hostfs) failed to read source file: %w", err)
	}

	return content, hex.EncodeToString(hasher.Sum(nil)), nil
}
