// Package boxfs implements a hierarchical filesystem stored inside a single
// host file. Paths are resolved by walking the block graph from the root
// block, and all operations take effect immediately on the backing store.
//
// Operations that depend on the existence of a path fail softly: they report
// false (or ok == false) when a path is missing or a name collides. Returned
// errors are reserved for structural problems and host I/O failures, after
// which the container should not be used any further.
//
// An [FS] is not safe for concurrent use and assumes exclusive access to its
// backing file.
package boxfs

import (
	"fmt"

	"github.com/desertwitch/boxfs/internal/block"
	"github.com/desertwitch/boxfs/internal/storage"
)

// FS is an open container.
type FS struct {
	path    string
	store   *storage.Store
	catalog *block.Catalog
}

// Create creates a new container at path. It fails if the host file already
// exists.
func Create(path string) (*FS, error) {
	store, err := storage.Create(path)
	if err != nil {
		return nil, fmt.Errorf("(boxfs) failed to create container: %w", err)
	}

	return newFS(path, store)
}

// Open opens an existing container at path. An empty host file is
// initialized as a new container.
func Open(path string) (*FS, error) {
	store, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("(boxfs) failed to open container: %w", err)
	}

	return newFS(path, store)
}

func newFS(path string, store *storage.Store) (*FS, error) {
	f := &FS{
		path:    path,
		store:   store,
		catalog: block.NewCatalog(store),
	}

	if _, err := f.rootDirectory(); err != nil {
		store.Close()

		return nil, fmt.Errorf("(boxfs) failed to initialize %s: %w", path, err)
	}

	return f, nil
}

// Path returns the host path of the container.
func (f *FS) Path() string {
	return f.path
}

// Size returns the physical size of the container in bytes, including space
// held by unlinked entries.
func (f *FS) Size() int64 {
	return f.store.Length()
}

// Close releases the backing file. It must be called exactly once.
func (f *FS) Close() error {
	if err := f.store.Close(); err != nil {
		return fmt.Errorf("(boxfs) failed to close %s: %w", f.path, err)
	}

	return nil
}

// rootDirectory returns the offset of the root directory, creating it on
// first use.
func (f *FS) rootDirectory() (int64, error) {
	root, err := f.catalog.Root()
	if err != nil {
		return 0, err
	}

	offset, err := root.RootDirectoryOffset()
	if err != nil {
		return 0, err
	}

	if offset != 0 {
		return offset, nil
	}

	dir, err := f.catalog.CreateDirectoryBlock(block.InitialDirectoryPayloadSize(0))
	if err != nil {
		return 0, fmt.Errorf("failed to create root directory: %w", err)
	}

	if err := root.SetRootDirectoryOffset(dir.Offset()); err != nil {
		return 0, err
	}

	return dir.Offset(), nil
}
