package boxfs

import (
	"fmt"

	"github.com/desertwitch/boxfs/internal/block"
	"github.com/desertwitch/boxfs/internal/boxpath"
)

// child is a decoded directory entry.
type child struct {
	name  string
	kind  block.Type
	entry block.Entry
}

func (f *FS) directoryChain(offset int64) ([]*block.DirectoryBlock, error) {
	var chain []*block.DirectoryBlock

	for offset != 0 {
		db, err := f.catalog.DirectoryBlock(offset)
		if err != nil {
			return nil, err
		}
		chain = append(chain, db)

		offset, err = db.NextOffset()
		if err != nil {
			return nil, err
		}
	}

	return chain, nil
}

// entries returns the full entry set of the directory at offset, in chain
// order.
func (f *FS) entries(dir int64) ([]block.Entry, error) {
	chain, err := f.directoryChain(dir)
	if err != nil {
		return nil, err
	}

	var entries []block.Entry

	for _, db := range chain {
		blockEntries, err := db.Entries()
		if err != nil {
			return nil, err
		}
		entries = append(entries, blockEntries...)
	}

	return entries, nil
}

func (f *FS) children(dir int64) ([]child, error) {
	entries, err := f.entries(dir)
	if err != nil {
		return nil, err
	}

	children := make([]child, 0, len(entries))

	for _, e := range entries {
		nb, err := f.catalog.NameBlock(e.NameOffset)
		if err != nil {
			return nil, err
		}

		name, err := nb.Name()
		if err != nil {
			return nil, err
		}

		kind, err := f.catalog.BlockType(e.ChildOffset)
		if err != nil {
			return nil, err
		}

		children = append(children, child{name: name, kind: kind, entry: e})
	}

	return children, nil
}

// lookup scans the whole entry set of dir for name. When kinds are given, only
// children of those kinds match. The last match wins.
func (f *FS) lookup(dir int64, name string, kinds ...block.Type) (child, bool, error) {
	children, err := f.children(dir)
	if err != nil {
		return child{}, false, err
	}

	var found child
	var ok bool

	for _, c := range children {
		if c.name != name || !matchesKind(c.kind, kinds) {
			continue
		}
		found, ok = c, true
	}

	return found, ok, nil
}

func matchesKind(kind block.Type, kinds []block.Type) bool {
	if len(kinds) == 0 {
		return true
	}

	for _, k := range kinds {
		if k == kind {
			return true
		}
	}

	return false
}

// resolveDirectory returns the offset of the first block of the directory at
// p.
func (f *FS) resolveDirectory(p boxpath.Path) (int64, bool, error) {
	dir, err := f.rootDirectory()
	if err != nil {
		return 0, false, err
	}

	for _, segment := range p.Segments() {
		c, ok, err := f.lookup(dir, segment, block.TypeDirectory)
		if err != nil || !ok {
			return 0, false, err
		}
		dir = c.entry.ChildOffset
	}

	return dir, true, nil
}

// resolveParent returns the parent directory of p along with the name p has
// inside it. The root path has no parent.
func (f *FS) resolveParent(p boxpath.Path) (int64, string, bool, error) {
	name, err := p.Last()
	if err != nil {
		return 0, "", false, nil //nolint:nilerr
	}

	parentPath, err := p.WithoutLast()
	if err != nil {
		return 0, "", false, nil //nolint:nilerr
	}

	parent, ok, err := f.resolveDirectory(parentPath)
	if err != nil || !ok {
		return 0, "", false, err
	}

	return parent, name, true, nil
}

// resolve returns the entry at p inside its parent directory.
func (f *FS) resolve(p boxpath.Path) (child, bool, error) {
	parent, name, ok, err := f.resolveParent(p)
	if err != nil || !ok {
		return child{}, false, err
	}

	return f.lookup(parent, name)
}

// appendEntry adds e to the first block of the chain of dir that has room
// left, linking a new continuation block when none has.
func (f *FS) appendEntry(dir int64, e block.Entry) error {
	chain, err := f.directoryChain(dir)
	if err != nil {
		return err
	}

	for _, db := range chain {
		free, err := db.AppendEntryCount()
		if err != nil {
			return err
		}

		if free > 0 {
			return db.AppendEntries(e)
		}
	}

	return f.extendDirectory(chain[len(chain)-1], []block.Entry{e})
}

// rewriteEntries stores entries across the chain of dir, filling every block
// to its capacity before moving on to the next. Blocks that are not needed
// anymore are left empty in the chain.
func (f *FS) rewriteEntries(dir int64, entries []block.Entry) error {
	chain, err := f.directoryChain(dir)
	if err != nil {
		return err
	}

	rest := entries
	for _, db := range chain {
		n := min(db.MaxEntryCount(), len(rest))
		if err := db.SetEntries(rest[:n]); err != nil {
			return err
		}
		rest = rest[n:]
	}

	if len(rest) > 0 {
		return f.extendDirectory(chain[len(chain)-1], rest)
	}

	return nil
}

// extendDirectory links continuation blocks after tail until all entries are
// stored.
func (f *FS) extendDirectory(tail *block.DirectoryBlock, entries []block.Entry) error {
	for len(entries) > 0 {
		next, err := f.catalog.CreateDirectoryBlock(block.NextDirectoryPayloadSize(tail.PayloadSize()))
		if err != nil {
			return fmt.Errorf("(boxfs) failed to grow directory: %w", err)
		}

		n := min(next.MaxEntryCount(), len(entries))
		if err := next.AppendEntries(entries[:n]...); err != nil {
			return err
		}

		if err := tail.SetNextOffset(next.Offset()); err != nil {
			return err
		}

		tail = next
		entries = entries[n:]
	}

	return nil
}

// removeEntry drops e from the entry set of dir.
func (f *FS) removeEntry(dir int64, e block.Entry) error {
	entries, err := f.entries(dir)
	if err != nil {
		return err
	}

	kept := make([]block.Entry, 0, len(entries))
	for _, existing := range entries {
		if existing != e {
			kept = append(kept, existing)
		}
	}

	return f.rewriteEntries(dir, kept)
}

// renameEntry returns e with its name set to name, reusing the name block in
// place when the new name fits.
func (f *FS) renameEntry(e block.Entry, name string) (block.Entry, error) {
	nb, err := f.catalog.NameBlock(e.NameOffset)
	if err != nil {
		return block.Entry{}, err
	}

	if nb.Fits(name) {
		if err := nb.SetName(name); err != nil {
			return block.Entry{}, err
		}

		return e, nil
	}

	fresh, err := f.catalog.CreateNameBlock(name)
	if err != nil {
		return block.Entry{}, err
	}
	e.NameOffset = fresh.Offset()

	return e, nil
}
