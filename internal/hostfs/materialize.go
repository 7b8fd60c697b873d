package hostfs

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/desertwitch/boxfs/internal/boxfs"
	"github.com/desertwitch/boxfs/internal/boxpath"
	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"
	"golang.org/x/sys/unix"
)

// Materialize copies everything below the container directory internal into
// the existing host directory hostDir. Existing host directories are merged
// into, existing host files are left alone and reported as skipped.
func (h *Handler) Materialize(ctx context.Context, box boxProvider, internal boxpath.Path, hostDir string) (Report, error) {
	var report Report

	if err := h.isHostDirectory(hostDir); err != nil {
		return report, err
	}

	isDir, err := box.IsDirectory(internal)
	if err != nil {
		return report, fmt.Errorf("(hostfs) failed to check %s: %w", internal, err)
	}

	if !isDir {
		return report, fmt.Errorf("(hostfs) %w: %s", ErrNotADirectory, internal)
	}

	required, err := h.TreeSize(box, internal)
	if err != nil {
		return report, err
	}

	enoughSpace, err := h.HasEnoughFreeSpace(hostDir, h.minFree, required)
	if err != nil {
		return report, err
	}

	if !enoughSpace {
		return report, fmt.Errorf("(hostfs) %w: %s needs %s", ErrNotEnoughSpace, hostDir, humanize.Bytes(required))
	}

	v := &materializeVisitor{
		ctx:      ctx,
		handler:  h,
		box:      box,
		internal: internal,
		hostDir:  hostDir,
		report:   &report,
	}

	if _, err := box.VisitFileTree(internal, v); err != nil {
		return report, err
	}

	slog.Info("Materialized container",
		"source", internal,
		"target", hostDir,
		"directories", report.Directories,
		"files", report.Files,
		"size", humanize.Bytes(report.Bytes),
		"skipped", report.Skipped,
	)

	return report, nil
}

// TreeSize returns the summed content length of all files below the
// container directory internal.
func (h *Handler) TreeSize(box boxProvider, internal boxpath.Path) (uint64, error) {
	var total uint64

	_, err := box.VisitFileTree(internal, boxfs.VisitorFuncs{
		VisitFileFunc: func(file boxpath.Path) (boxfs.VisitResult, error) {
			size, _, err := box.FileSize(file)
			if err != nil {
				return boxfs.Terminate, err
			}
			total += uint64(size) //nolint:gosec

			return boxfs.Continue, nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("(hostfs) failed to size %s: %w", internal, err)
	}

	return total, nil
}

//nolint:containedctx
type materializeVisitor struct {
	ctx      context.Context
	handler  *Handler
	box      boxProvider
	internal boxpath.Path
	hostDir  string
	report   *Report
}

func (v *materializeVisitor) hostPath(p boxpath.Path) string {
	return filepath.Join(append([]string{v.hostDir}, p.RemovePrefix(v.internal).Segments()...)...)
}

func (v *materializeVisitor) PreVisitDirectory(dir boxpath.Path) (boxfs.VisitResult, error) {
	if err := v.ctx.Err(); err != nil {
		return boxfs.Terminate, fmt.Errorf("(hostfs) materialize canceled: %w", err)
	}

	hostPath := v.hostPath(dir)

	if err := v.handler.unixHandler.Mkdir(hostPath, dirPerms); err != nil {
		if errors.Is(err, unix.EEXIST) && v.handler.isHostDirectory(hostPath) == nil {
			return boxfs.Continue, nil
		}
		v.handler.skip(v.report, hostPath, err)

		return boxfs.SkipSubtree, nil
	}
	v.report.Directories++

	return boxfs.Continue, nil
}

func (v *materializeVisitor) VisitFile(file boxpath.Path) (boxfs.VisitResult, error) {
	if err := v.ctx.Err(); err != nil {
		return boxfs.Terminate, fmt.Errorf("(hostfs) materialize canceled: %w", err)
	}

	hostPath := v.hostPath(file)

	content, ok, err := v.box.ReadFile(file)
	if err != nil {
		return boxfs.Terminate, fmt.Errorf("(hostfs) failed to read %s: %w", file, err)
	}

	if !ok {
		v.handler.skip(v.report, hostPath, fs.ErrNotExist)

		return boxfs.Continue, nil
	}

	if err := v.handler.writeHostFile(v.ctx, hostPath, content); err != nil {
		if errors.Is(err, context.Canceled) {
			return boxfs.Terminate, err
		}
		v.handler.skip(v.report, hostPath, err)

		return boxfs.Continue, nil
	}

	v.report.Files++
	v.report.Bytes += uint64(len(content))

	return boxfs.Continue, nil
}

func (v *materializeVisitor) PostVisitDirectory(_ boxpath.Path) (boxfs.VisitResult, error) {
	return boxfs.Continue, nil
}

// writeHostFile writes content to a temporary file next to path, verifies it
// and renames it into place. An existing file at path is never replaced.
func (h *Handler) writeHostFile(ctx context.Context, path string, content []byte) error {
	var transferComplete bool

	tmpPath := path + TempSuffix
	defer func() {
		if !transferComplete {
			h.osHandler.Remove(tmpPath) //nolint:errcheck
		}
	}()

	dstFile, err := h.osHandler.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, filePerms)
	if err != nil {
		return fmt.Errorf("(hostfs) failed to open destination file %s: %w", tmpPath, err)
	}
	defer dstFile.Close()

	srcHasher := blake3.New()
	dstHasher := blake3.New()

	ctxReader := &contextReader{
		ctx:    ctx,
		reader: io.TeeReader(bytes.NewReader(content), srcHasher),
	}
	multiWriter := io.MultiWriter(dstFile, dstHasher)

	if _, err := io.Copy(multiWriter, ctxReader); err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("(hostfs) transfer canceled: %w", err)
		}

		return fmt.Errorf("(hostfs) failed to copy file: %w", err)
	}

	if err := dstFile.Sync(); err != nil {
		return fmt.Errorf("(hostfs) failed to sync destination fs: %w", err)
	}

	if h.verify {
		srcChecksum := hex.EncodeToString(srcHasher.Sum(nil))
		dstChecksum := hex.EncodeToString(dstHasher.Sum(nil))

		if srcChecksum != dstChecksum {
			return fmt.Errorf("(hostfs) %w: %s (src) != %s (dst)", ErrHashMismatch, srcChecksum, dstChecksum)
		}
	}

	if _, err := h.osHandler.Stat(path); err == nil {
		return ErrRenameExists
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("(hostfs) failed to check rename destination existence: %w", err)
	}

	if err := h.osHandler.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("(hostfs) failed to rename temporary file to destination file: %w", err)
	}

	transferComplete = true

	return nil
}
