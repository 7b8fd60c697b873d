// Package hostfs mirrors directory trees between the host filesystem and a
// container. Failing entries are logged and skipped, while container errors
// and cancellation abort the whole transfer.
package hostfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/desertwitch/boxfs/internal/boxfs"
	"github.com/desertwitch/boxfs/internal/boxpath"
	"golang.org/x/sys/unix"
)

const (
	// TempSuffix is appended to host files while they are being materialized.
	TempSuffix = ".boxfs"

	dirPerms  = 0o755
	filePerms = 0o644
)

type boxProvider interface {
	IsDirectory(p boxpath.Path) (bool, error)
	CreateDirectory(p boxpath.Path) (bool, error)
	CreateDirectories(p boxpath.Path) (bool, error)
	CreateFile(p boxpath.Path, sizeHint int) (bool, error)
	WriteFile(p boxpath.Path, data []byte) (bool, error)
	ReadFile(p boxpath.Path) ([]byte, bool, error)
	FileSize(p boxpath.Path) (int64, bool, error)
	VisitFileTree(p boxpath.Path, v boxfs.Visitor) (bool, error)
}

type osProvider interface {
	Open(name string) (*os.File, error)
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
	ReadDir(name string) ([]os.DirEntry, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (os.FileInfo, error)
}

type unixProvider interface {
	Mkdir(path string, mode uint32) error
	Statfs(path string, buf *unix.Statfs_t) error
}

// Report sums up a transfer.
type Report struct {
	Directories int
	Files       int
	Bytes       uint64
	Skipped     int
}

// Handler is the principal implementation for the host bridge.
type Handler struct {
	osHandler   osProvider
	unixHandler unixProvider
	verify      bool
	minFree     uint64
}

// NewHandler returns a pointer to a new [Handler]. With verify set, every
// transferred file is compared by its blake3 checksum. minFree is the amount
// of space that has to stay free on the host filesystem when materializing.
func NewHandler(osHandler osProvider, unixHandler unixProvider, verify bool, minFree uint64) *Handler {
	return &Handler{
		osHandler:   osHandler,
		unixHandler: unixHandler,
		verify:      verify,
		minFree:     minFree,
	}
}

// HasEnoughFreeSpace checks if the host filesystem holding path has more free
// space than the larger of minFree and fileSize.
func (h *Handler) HasEnoughFreeSpace(path string, minFree uint64, fileSize uint64) (bool, error) {
	var stat unix.Statfs_t
	if err := h.unixHandler.Statfs(path, &stat); err != nil {
		return false, fmt.Errorf("(hostfs) failed to statfs: %w", err)
	}

	freeSpace := stat.Bavail * handleSize(stat.Bsize)

	requiredFree := minFree
	if minFree <= fileSize {
		requiredFree = fileSize
	}

	return freeSpace > requiredFree, nil
}

func (h *Handler) isHostDirectory(path string) error {
	info, err := h.osHandler.Stat(path)
	if err != nil {
		return fmt.Errorf("(hostfs) failed to stat %s: %w", path, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("(hostfs) %w: %s", ErrNotADirectory, path)
	}

	return nil
}

func (h *Handler) skip(report *Report, path string, err error) {
	report.Skipped++

	slog.Warn("Skipped entry due to failure",
		"path", path,
		"err", err,
	)
}

//nolint:containedctx
type contextReader struct {
	ctx    context.Context
	reader io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	select {
	case <-cr.ctx.Done():
		return 0, context.Canceled
	default:
		return cr.reader.Read(p)
	}
}

// handleSize converts a Statfs block size to an unsigned value.
func handleSize(size int64) uint64 {
	if size < 0 {
		return 0
	}

	return uint64(size)
}
