package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	// Int32Size is the encoded size of an int32 value.
	Int32Size = 4

	// Int64Size is the encoded size of an int64 value.
	Int64Size = 8

	storePerms = 0o644
)

// ByteOrder is the byte order of all integers written to a [Store].
//
//nolint:gochecknoglobals
var ByteOrder = binary.BigEndian

// Store is a byte-addressable view of one host file. It keeps track of the
// file's cursor so that sequential accesses do not seek, and of the logical
// length, which only grows through [Store.Allocate].
type Store struct {
	file     *os.File
	path     string
	position int64
	length   int64
}

// Open returns a pointer to a new [Store] for an existing host file.
func Open(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("(storage) failed to open: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()

		return nil, fmt.Errorf("(storage) failed to stat: %w", err)
	}

	return &Store{
		file:   f,
		path:   path,
		length: info.Size(),
	}, nil
}

// Create returns a pointer to a new [Store] for a host file that must not
// exist yet. The new store has a length of zero.
func Create(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, storePerms)
	if err != nil {
		return nil, fmt.Errorf("(storage) failed to create: %w", err)
	}

	return &Store{
		file: f,
		path: path,
	}, nil
}

// Path returns the path of the backing host file.
func (s *Store) Path() string {
	return s.path
}

// Length returns the logical length of the store in bytes.
func (s *Store) Length() int64 {
	return s.length
}

// Allocate extends the logical length by size bytes and returns the offset at
// which the newly appended region starts. The host file is grown accordingly,
// so the new bytes read as zero.
func (s *Store) Allocate(size int64) (int64, error) {
	if s.file == nil {
		return 0, ErrClosed
	}

	if size <= 0 {
		return 0, fmt.Errorf("(storage) %w: %d", ErrInvalidSize, size)
	}

	base := s.length
	if err := s.file.Truncate(base + size); err != nil {
		return 0, fmt.Errorf("(storage) failed to grow to %d: %w", base+size, err)
	}
	s.length += size

	return base, nil
}

// ReadByteAt reads a single byte at offset.
func (s *Store) ReadByteAt(offset int64) (byte, error) {
	var buf [1]byte
	if err := s.readAt(offset, buf[:]); err != nil {
		return 0, err
	}

	return buf[0], nil
}

// WriteByteAt writes a single byte at offset.
func (s *Store) WriteByteAt(offset int64, value byte) error {
	return s.writeAt(offset, []byte{value})
}

// ReadInt32At reads an int32 at offset.
func (s *Store) ReadInt32At(offset int64) (int32, error) {
	var buf [Int32Size]byte
	if err := s.readAt(offset, buf[:]); err != nil {
		return 0, err
	}

	return int32(ByteOrder.Uint32(buf[:])), nil //nolint:gosec
}

// WriteInt32At writes an int32 at offset.
func (s *Store) WriteInt32At(offset int64, value int32) error {
	var buf [Int32Size]byte
	ByteOrder.PutUint32(buf[:], uint32(value)) //nolint:gosec

	return s.writeAt(offset, buf[:])
}

// ReadInt64At reads an int64 at offset.
func (s *Store) ReadInt64At(offset int64) (int64, error) {
	var buf [Int64Size]byte
	if err := s.readAt(offset, buf[:]); err != nil {
		return 0, err
	}

	return int64(ByteOrder.Uint64(buf[:])), nil //nolint:gosec
}

// WriteInt64At writes an int64 at offset.
func (s *Store) WriteInt64At(offset int64, value int64) error {
	var buf [Int64Size]byte
	ByteOrder.PutUint64(buf[:], uint64(value)) //nolint:gosec

	return s.writeAt(offset, buf[:])
}

// ReadBytesAt reads size bytes starting at offset.
func (s *Store) ReadBytesAt(offset int64, size int) ([]byte, error) {
	buf := make([]byte, size)
	if err := s.readAt(offset, buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// WriteBytesAt writes value starting at offset.
func (s *Store) WriteBytesAt(offset int64, value []byte) error {
	return s.writeAt(offset, value)
}

// Sync commits the current contents of the host file to stable storage.
func (s *Store) Sync() error {
	if s.file == nil {
		return ErrClosed
	}

	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("(storage) failed to sync: %w", err)
	}

	return nil
}

// Close syncs and releases the host file. Any later use of the [Store]
// returns [ErrClosed].
func (s *Store) Close() error {
	if s.file == nil {
		return ErrClosed
	}

	f := s.file
	s.file = nil

	if err := f.Sync(); err != nil {
		f.Close()

		return fmt.Errorf("(storage) failed to sync: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("(storage) failed to close: %w", err)
	}

	return nil
}

func (s *Store) checkAccess(offset int64, size int) error {
	if s.file == nil {
		return ErrClosed
	}

	if offset < 0 || offset+int64(size) > s.length {
		return fmt.Errorf("(storage) %w: offset %d size %d length %d", ErrOutOfBounds, offset, size, s.length)
	}

	return nil
}

// seek moves the cursor to offset unless it is already there.
func (s *Store) seek(offset int64) error {
	if s.position == offset {
		return nil
	}

	if _, err := s.file.Seek(offset, io.SeekStart); err != nil {
		s.position = -1

		return fmt.Errorf("(storage) failed to seek: %w", err)
	}
	s.position = offset

	return nil
}

func (s *Store) readAt(offset int64, buf []byte) error {
	if err := s.checkAccess(offset, len(buf)); err != nil {
		return err
	}

	if len(buf) == 0 {
		return nil
	}

	if err := s.seek(offset); err != nil {
		return err
	}

	n, err := io.ReadFull(s.file, buf)
	if err != nil {
		s.position = -1

		return fmt.Errorf("(storage) failed to read %d bytes at %d: %w", len(buf), offset, err)
	}
	s.position += int64(n)

	return nil
}

func (s *Store) writeAt(offset int64, buf []byte) error {
	if err := s.checkAccess(offset, len(buf)); err != nil {
		return err
	}

	if len(buf) == 0 {
		return nil
	}

	if err := s.seek(offset); err != nil {
		return err
	}

	n, err := s.file.Write(buf)
	if err != nil {
		s.position = -1

		return fmt.Errorf("(storage) failed to write %d bytes at %d: %w", len(buf), offset, err)
	}
	s.position += int64(n)

	return nil
}
