package boxfs

import (
	"fmt"
	"log/slog"

	"github.com/desertwitch/boxfs/internal/block"
	"github.com/desertwitch/boxfs/internal/boxpath"
)

// Exists reports whether an entry of any kind exists at p. The root path
// always exists.
func (f *FS) Exists(p boxpath.Path) (bool, error) {
	if p.IsEmpty() {
		return true, nil
	}

	_, ok, err := f.resolve(p)

	return ok, err
}

// IsDirectory reports whether p is a directory. The root path is one.
func (f *FS) IsDirectory(p boxpath.Path) (bool, error) {
	if p.IsEmpty() {
		return true, nil
	}

	c, ok, err := f.resolve(p)
	if err != nil || !ok {
		return false, err
	}

	return c.kind == block.TypeDirectory, nil
}

// IsFile reports whether p is a file.
func (f *FS) IsFile(p boxpath.Path) (bool, error) {
	c, ok, err := f.resolve(p)
	if err != nil || !ok {
		return false, err
	}

	return c.kind == block.TypeFile, nil
}

// CreateDirectory creates an empty directory at p. It returns false when the
// parent directory does not exist or an entry named like p already exists.
func (f *FS) CreateDirectory(p boxpath.Path) (bool, error) {
	return f.createEntry(p, func() (int64, error) {
		db, err := f.catalog.CreateDirectoryBlock(block.InitialDirectoryPayloadSize(0))
		if err != nil {
			return 0, err
		}

		return db.Offset(), nil
	})
}

// CreateDirectories creates every missing directory along p, in order. It
// returns the result of the last directory it actually tried to create, so
// false when all of p already existed.
func (f *FS) CreateDirectories(p boxpath.Path) (bool, error) {
	var created bool

	current := boxpath.Root()
	for _, segment := range p.Segments() {
		next, err := current.With(segment)
		if err != nil {
			return false, err
		}
		current = next

		exists, err := f.Exists(current)
		if err != nil {
			return false, err
		}

		if exists {
			continue
		}

		created, err = f.CreateDirectory(current)
		if err != nil {
			return false, err
		}
	}

	return created, nil
}

// CreateFile creates an empty file at p whose first block can hold sizeHint
// bytes. It returns false when the parent directory does not exist or an
// entry named like p already exists.
func (f *FS) CreateFile(p boxpath.Path, sizeHint int) (bool, error) {
	hint := min(max(sizeHint, 0), block.MaxPayloadSize-block.FileInfoSize)

	return f.createEntry(p, func() (int64, error) {
		fb, err := f.catalog.CreateFileBlock(block.InitialFilePayloadSize(hint))
		if err != nil {
			return 0, err
		}

		return fb.Offset(), nil
	})
}

func (f *FS) createEntry(p boxpath.Path, createChild func() (int64, error)) (bool, error) {
	parent, name, ok, err := f.resolveParent(p)
	if err != nil || !ok {
		return false, err
	}

	if _, exists, err := f.lookup(parent, name); err != nil || exists {
		return false, err
	}

	nb, err := f.catalog.CreateNameBlock(name)
	if err != nil {
		return false, fmt.Errorf("(boxfs) failed to create name for %s: %w", p, err)
	}

	childOffset, err := createChild()
	if err != nil {
		return false, fmt.Errorf("(boxfs) failed to create %s: %w", p, err)
	}

	if err := f.appendEntry(parent, block.Entry{NameOffset: nb.Offset(), ChildOffset: childOffset}); err != nil {
		return false, fmt.Errorf("(boxfs) failed to link %s: %w", p, err)
	}

	return true, nil
}

// Delete unlinks the entry at p from its parent. A directory is removed with
// everything below it. The space stays allocated until the next compaction.
func (f *FS) Delete(p boxpath.Path) (bool, error) {
	parent, name, ok, err := f.resolveParent(p)
	if err != nil || !ok {
		return false, err
	}

	c, ok, err := f.lookup(parent, name)
	if err != nil || !ok {
		return false, err
	}

	if err := f.removeEntry(parent, c.entry); err != nil {
		return false, fmt.Errorf("(boxfs) failed to delete %s: %w", p, err)
	}

	slog.Debug("Deleted entry", "path", p, "type", c.kind)

	return true, nil
}

// Move relocates the entry at from to to, which may live in another
// directory. It returns false when from does not exist, the parent of to does
// not exist, to already exists, or a directory would be moved into itself.
func (f *FS) Move(from, to boxpath.Path) (bool, error) {
	srcParent, _, ok, err := f.resolveParent(from)
	if err != nil || !ok {
		return false, err
	}

	src, ok, err := f.resolve(from)
	if err != nil || !ok {
		return false, err
	}

	if src.kind == block.TypeDirectory && to.HasPrefix(from) {
		return false, nil
	}

	dstParent, dstName, ok, err := f.resolveParent(to)
	if err != nil || !ok {
		return false, err
	}

	if _, exists, err := f.lookup(dstParent, dstName); err != nil || exists {
		return false, err
	}

	if err := f.removeEntry(srcParent, src.entry); err != nil {
		return false, fmt.Errorf("(boxfs) failed to unlink %s: %w", from, err)
	}

	moved, err := f.renameEntry(src.entry, dstName)
	if err != nil {
		return false, fmt.Errorf("(boxfs) failed to rename %s: %w", from, err)
	}

	if err := f.appendEntry(dstParent, moved); err != nil {
		return false, fmt.Errorf("(boxfs) failed to link %s: %w", to, err)
	}

	slog.Debug("Moved entry", "from", from, "to", to)

	return true, nil
}

// Rename changes the name of the entry at from to the last segment of to.
// Both paths must share the same parent, otherwise Rename returns false.
func (f *FS) Rename(from, to boxpath.Path) (bool, error) {
	fromParent, err := from.WithoutLast()
	if err != nil {
		return false, nil //nolint:nilerr
	}

	toParent, err := to.WithoutLast()
	if err != nil || !fromParent.Equal(toParent) {
		return false, nil //nolint:nilerr
	}

	parent, name, ok, err := f.resolveParent(to)
	if err != nil || !ok {
		return false, err
	}

	src, ok, err := f.resolve(from)
	if err != nil || !ok {
		return false, err
	}

	if _, exists, err := f.lookup(parent, name); err != nil || exists {
		return false, err
	}

	renamed, err := f.renameEntry(src.entry, name)
	if err != nil {
		return false, fmt.Errorf("(boxfs) failed to rename %s: %w", from, err)
	}

	if renamed == src.entry {
		return true, nil
	}

	entries, err := f.entries(parent)
	if err != nil {
		return false, err
	}

	for i := range entries {
		if entries[i] == src.entry {
			entries[i] = renamed
		}
	}

	if err := f.rewriteEntries(parent, entries); err != nil {
		return false, fmt.Errorf("(boxfs) failed to relink %s: %w", to, err)
	}

	return true, nil
}

// Copy duplicates the entry at from to to. Directories are copied with
// everything below them. It returns false when from does not exist, to
// cannot be created, or a directory would be copied into itself.
func (f *FS) Copy(from, to boxpath.Path) (bool, error) {
	src, ok, err := f.resolve(from)
	if err != nil || !ok {
		return false, err
	}

	switch src.kind {
	case block.TypeDirectory:
		if to.HasPrefix(from) {
			return false, nil
		}

		created, err := f.CreateDirectory(to)
		if err != nil || !created {
			return false, err
		}

		if _, err := f.VisitFileTree(from, newCopyVisitor(f, f, from, to, false)); err != nil {
			return false, fmt.Errorf("(boxfs) failed to copy %s to %s: %w", from, to, err)
		}

		return true, nil

	case block.TypeFile:
		content, ok, err := f.ReadFile(from)
		if err != nil || !ok {
			return false, err
		}

		created, err := f.CreateFile(to, len(content))
		if err != nil || !created {
			return false, err
		}

		return f.WriteFile(to, content)

	default:
		return false, nil
	}
}

// ListDirectory returns the paths of the immediate children of the directory
// at p, in storage order.
func (f *FS) ListDirectory(p boxpath.Path) ([]boxpath.Path, bool, error) {
	dir, ok, err := f.resolveDirectory(p)
	if err != nil || !ok {
		return nil, false, err
	}

	children, err := f.children(dir)
	if err != nil {
		return nil, false, err
	}

	paths := make([]boxpath.Path, 0, len(children))

	for _, c := range children {
		cp, err := p.With(c.name)
		if err != nil {
			return nil, false, fmt.Errorf("(boxfs) stored name in %s: %w", p, err)
		}
		paths = append(paths, cp)
	}

	return paths, true, nil
}
