package storage

import "fmt"

// Region is a fixed-offset, fixed-size window onto a [Store]. All accessors
// take offsets relative to the start of the region and fail with
// [ErrOutOfRange] if the accessed value does not lie within the region.
type Region struct {
	store *Store
	base  int64
	size  int
}

// NewRegion returns a pointer to a new [Region] of size bytes starting at the
// global offset base.
func NewRegion(store *Store, base int64, size int) *Region {
	return &Region{
		store: store,
		base:  base,
		size:  size,
	}
}

// Base returns the global offset at which the region starts.
func (r *Region) Base() int64 {
	return r.base
}

// Size returns the size of the region in bytes.
func (r *Region) Size() int {
	return r.size
}

// ExceedsRange reports whether a value of size bytes at the relative offset
// would fall outside of the region. Callers use it to probe before writing.
func (r *Region) ExceedsRange(offset int, size int) bool {
	if offset < 0 || offset > r.size || size < 0 {
		return true
	}

	return offset+size > r.size
}

// Byte reads a single byte at offset.
func (r *Region) Byte(offset int) (byte, error) {
	global, err := r.global(offset, 1)
	if err != nil {
		return 0, err
	}

	return r.store.ReadByteAt(global)
}

// SetByte writes a single byte at offset.
func (r *Region) SetByte(offset int, value byte) error {
	global, err := r.global(offset, 1)
	if err != nil {
		return err
	}

	return r.store.WriteByteAt(global, value)
}

// Int32 reads an int32 at offset.
func (r *Region) Int32(offset int) (int32, error) {
	global, err := r.global(offset, Int32Size)
	if err != nil {
		return 0, err
	}

	return r.store.ReadInt32At(global)
}

// SetInt32 writes an int32 at offset.
func (r *Region) SetInt32(offset int, value int32) error {
	global, err := r.global(offset, Int32Size)
	if err != nil {
		return err
	}

	return r.store.WriteInt32At(global, value)
}

// Int64 reads an int64 at offset.
func (r *Region) Int64(offset int) (int64, error) {
	global, err := r.global(offset, Int64Size)
	if err != nil {
		return 0, err
	}

	return r.store.ReadInt64At(global)
}

// SetInt64 writes an int64 at offset.
func (r *Region) SetInt64(offset int, value int64) error {
	global, err := r.global(offset, Int64Size)
	if err != nil {
		return err
	}

	return r.store.WriteInt64At(global, value)
}

// Bytes reads size bytes starting at offset.
func (r *Region) Bytes(offset int, size int) ([]byte, error) {
	global, err := r.global(offset, size)
	if err != nil {
		return nil, err
	}

	return r.store.ReadBytesAt(global, size)
}

// SetBytes writes value starting at offset.
func (r *Region) SetBytes(offset int, value []byte) error {
	global, err := r.global(offset, len(value))
	if err != nil {
		return err
	}

	return r.store.WriteBytesAt(global, value)
}

func (r *Region) global(offset int, size int) (int64, error) {
	if r.ExceedsRange(offset, size) {
		return 0, fmt.Errorf("(storage) %w: offset %d size %d region %d", ErrOutOfRange, offset, size, r.size)
	}

	return r.base + int64(offset), nil
}
