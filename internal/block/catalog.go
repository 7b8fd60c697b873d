package block

import (
	"fmt"
	"log/slog"

	"github.com/desertwitch/boxfs/internal/storage"
)

// Catalog creates and reads typed blocks inside a [storage.Store]. It never
// owns the store; closing it is left to the caller.
type Catalog struct {
	store *storage.Store
}

// NewCatalog returns a pointer to a new [Catalog] over store.
func NewCatalog(store *storage.Store) *Catalog {
	return &Catalog{
		store: store,
	}
}

// Store returns the underlying [storage.Store].
func (c *Catalog) Store() *storage.Store {
	return c.store
}

// BlockType reads the type tag of the block at offset without constructing a
// typed view.
func (c *Catalog) BlockType(offset int64) (Type, error) {
	tag, err := c.store.ReadByteAt(offset + typeOffset)
	if err != nil {
		return 0, fmt.Errorf("(block) failed to read type at %d: %w", offset, err)
	}

	kind := Type(tag)
	if !kind.Valid() {
		return 0, fmt.Errorf("(block) %w: tag %d at %d", ErrUnknownType, tag, offset)
	}

	return kind, nil
}

// PayloadSize reads the payload size of the block at offset without
// constructing a typed view.
func (c *Catalog) PayloadSize(offset int64) (int, error) {
	size, err := c.store.ReadInt32At(offset + payloadSizeOffset)
	if err != nil {
		return 0, fmt.Errorf("(block) failed to read payload size at %d: %w", offset, err)
	}

	return int(size), nil
}

// Root returns the [RootBlock]. The first time the store is observed empty,
// the root block is created at offset zero.
func (c *Catalog) Root() (*RootBlock, error) {
	if c.store.Length() == 0 {
		b, err := c.allocate(TypeRoot, RootPayloadSize)
		if err != nil {
			return nil, err
		}

		if b.Offset() != 0 {
			return nil, fmt.Errorf("(block) %w: %d", ErrRootMisplaced, b.Offset())
		}

		root := &RootBlock{Block: b}
		if err := root.init(); err != nil {
			return nil, fmt.Errorf("(block) failed to init root: %w", err)
		}

		return root, nil
	}

	b, err := c.view(0, TypeRoot)
	if err != nil {
		return nil, err
	}

	return &RootBlock{Block: b}, nil
}

// NameBlock returns the [NameBlock] at offset.
func (c *Catalog) NameBlock(offset int64) (*NameBlock, error) {
	b, err := c.view(offset, TypeName)
	if err != nil {
		return nil, err
	}

	return &NameBlock{Block: b}, nil
}

// DirectoryBlock returns the [DirectoryBlock] at offset.
func (c *Catalog) DirectoryBlock(offset int64) (*DirectoryBlock, error) {
	b, err := c.view(offset, TypeDirectory)
	if err != nil {
		return nil, err
	}

	return &DirectoryBlock{Block: b}, nil
}

// FileBlock returns the [FileBlock] at offset.
func (c *Catalog) FileBlock(offset int64) (*FileBlock, error) {
	b, err := c.view(offset, TypeFile)
	if err != nil {
		return nil, err
	}

	return &FileBlock{Block: b}, nil
}

// CreateNameBlock allocates a new [NameBlock] holding name, sized to fit it
// exactly.
func (c *Catalog) CreateNameBlock(name string) (*NameBlock, error) {
	b, err := c.allocate(TypeName, NamePayloadSize(name))
	if err != nil {
		return nil, err
	}

	nb := &NameBlock{Block: b}
	if err := nb.init(); err != nil {
		return nil, fmt.Errorf("(block) failed to init name: %w", err)
	}

	if err := nb.SetName(name); err != nil {
		return nil, fmt.Errorf("(block) failed to set name: %w", err)
	}

	return nb, nil
}

// CreateDirectoryBlock allocates a new, empty [DirectoryBlock] with the given
// payload size.
func (c *Catalog) CreateDirectoryBlock(payloadSize int) (*DirectoryBlock, error) {
	if payloadSize < DirectoryInfoSize {
		return nil, fmt.Errorf("(block) %w: directory payload %d", ErrInvalidPayloadSize, payloadSize)
	}

	b, err := c.allocate(TypeDirectory, payloadSize)
	if err != nil {
		return nil, err
	}

	db := &DirectoryBlock{Block: b}
	if err := db.init(); err != nil {
		return nil, fmt.Errorf("(block) failed to init directory: %w", err)
	}

	return db, nil
}

// CreateFileBlock allocates a new, empty [FileBlock] with the given payload
// size.
func (c *Catalog) CreateFileBlock(payloadSize int) (*FileBlock, error) {
	if payloadSize < FileInfoSize {
		return nil, fmt.Errorf("(block) %w: file payload %d", ErrInvalidPayloadSize, payloadSize)
	}

	b, err := c.allocate(TypeFile, payloadSize)
	if err != nil {
		return nil, err
	}

	fb := &FileBlock{Block: b}
	if err := fb.init(); err != nil {
		return nil, fmt.Errorf("(block) failed to init file: %w", err)
	}

	return fb, nil
}

// view validates the stored type tag at offset against want and returns a
// window over the whole block.
func (c *Catalog) view(offset int64, want Type) (Block, error) {
	got, err := c.BlockType(offset)
	if err != nil {
		return Block{}, err
	}

	if got != want {
		return Block{}, fmt.Errorf("(block) %w: want %s, got %s at %d", ErrTypeMismatch, want, got, offset)
	}

	size, err := c.PayloadSize(offset)
	if err != nil {
		return Block{}, err
	}

	if size < 0 || size > MaxPayloadSize {
		return Block{}, fmt.Errorf("(block) %w: %d at %d", ErrInvalidPayloadSize, size, offset)
	}

	return Block{
		region: storage.NewRegion(c.store, offset, HeaderSize+size),
		kind:   want,
	}, nil
}

func (c *Catalog) allocate(kind Type, payloadSize int) (Block, error) {
	if payloadSize < 0 || payloadSize > MaxPayloadSize {
		return Block{}, fmt.Errorf("(block) %w: %d", ErrInvalidPayloadSize, payloadSize)
	}

	offset, err := c.store.Allocate(int64(HeaderSize + payloadSize))
	if err != nil {
		return Block{}, fmt.Errorf("(block) failed to allocate %s block: %w", kind, err)
	}

	b := Block{
		region: storage.NewRegion(c.store, offset, HeaderSize+payloadSize),
		kind:   kind,
	}

	if err := b.writeHeader(); err != nil {
		return Block{}, err
	}

	slog.Debug("Allocated block",
		"type", kind,
		"offset", offset,
		"payload", payloadSize,
	)

	return b, nil
}
