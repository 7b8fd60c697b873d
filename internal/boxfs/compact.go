package boxfs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/desertwitch/boxfs/internal/block"
	"github.com/desertwitch/boxfs/internal/boxpath"
	"github.com/desertwitch/boxfs/internal/storage"
	"github.com/dustin/go-humanize"
)

// CompactSuffix is appended to the container path while the old container
// is kept aside during [FS.Compact].
const CompactSuffix = ".compacting"

// Compact rewrites the container into a fresh host file that holds only the
// entries still reachable from the root, reclaiming the space of deleted
// entries, outgrown blocks and replaced names. Every copied file is verified
// with its blake3 checksum. On failure before the final swap, the original
// container is restored and stays open.
func (f *FS) Compact() error {
	before := f.store.Length()
	asidePath := f.path + CompactSuffix

	if err := f.store.Close(); err != nil {
		return fmt.Errorf("(boxfs) failed to close for compaction: %w", err)
	}

	if err := os.Rename(f.path, asidePath); err != nil {
		return f.rollback(asidePath, false, fmt.Errorf("(boxfs) failed to move container aside: %w", err))
	}

	old, err := Open(asidePath)
	if err != nil {
		return f.rollback(asidePath, true, err)
	}

	fresh, err := Create(f.path)
	if err != nil {
		old.Close()

		return f.rollback(asidePath, true, err)
	}

	v := newCopyVisitor(old, fresh, boxpath.Root(), boxpath.Root(), true)
	if _, err := old.VisitFileTree(boxpath.Root(), v); err != nil {
		old.Close()
		fresh.Close()
		os.Remove(f.path)

		return f.rollback(asidePath, true, fmt.Errorf("(boxfs) failed to copy tree: %w", err))
	}

	if err := old.Close(); err != nil {
		slog.Warn("Failed to close the old container after compaction",
			"path", asidePath,
			"err", err,
		)
	}

	if err := os.Remove(asidePath); err != nil {
		slog.Warn("Failed to remove the old container after compaction",
			"path", asidePath,
			"err", err,
		)
	}

	f.store = fresh.store
	f.catalog = fresh.catalog

	slog.Info("Compacted container",
		"path", f.path,
		"directories", v.directories,
		"files", v.files,
		"content", humanize.Bytes(uint64(v.bytes)), //nolint:gosec
		"before", humanize.Bytes(uint64(before)), //nolint:gosec
		"after", humanize.Bytes(uint64(f.store.Length())), //nolint:gosec
	)

	return nil
}

// rollback moves the original container back into place if it was moved
// aside, and reopens it. The passed error is returned along with any error
// of the rollback itself.
func (f *FS) rollback(asidePath string, movedAside bool, cause error) error {
	if movedAside {
		if err := os.Rename(asidePath, f.path); err != nil {
			return errors.Join(cause, fmt.Errorf("(boxfs) failed to restore container from %s: %w", asidePath, err))
		}
	}

	store, err := storage.Open(f.path)
	if err != nil {
		return errors.Join(cause, fmt.Errorf("(boxfs) failed to reopen container: %w", err))
	}

	f.store = store
	f.catalog = block.NewCatalog(store)

	slog.Warn("Compaction failed, original container restored",
		"path", f.path,
		"err", cause,
	)

	return cause
}
