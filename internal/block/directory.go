package block

import (
	"fmt"

	"github.com/desertwitch/boxfs/internal/storage"
)

const (
	directoryNextOffset    = PayloadOffset
	directoryCountOffset   = directoryNextOffset + storage.Int64Size
	directoryEntriesOffset = directoryCountOffset + storage.Int32Size

	// DirectoryInfoSize is the size of the fixed fields in a directory
	// payload: the next-block offset and the entry count.
	DirectoryInfoSize = storage.Int64Size + storage.Int32Size

	// EntrySize is the encoded size of one [Entry].
	EntrySize = 2 * storage.Int64Size

	// MinInitialEntryCount is the entry capacity a new directory gets at the
	// least.
	MinInitialEntryCount = 5
)

// Entry is a single child of a directory, referencing the [NameBlock] of the
// child's name and the first block of the child itself.
type Entry struct {
	NameOffset  int64
	ChildOffset int64
}

// InitialDirectoryPayloadSize returns the payload size of the first block of a
// new directory that should hold entryCount entries.
func InitialDirectoryPayloadSize(entryCount int) int {
	return DirectoryInfoSize + max(entryCount, MinInitialEntryCount)*EntrySize
}

// NextDirectoryPayloadSize returns the payload size of a continuation block
// that follows a full block of previousPayloadSize. Its capacity doubles.
func NextDirectoryPayloadSize(previousPayloadSize int) int {
	previousEntries := (previousPayloadSize - DirectoryInfoSize) / EntrySize

	return DirectoryInfoSize + 2*max(previousEntries, 1)*EntrySize
}

// DirectoryBlock is one block in the chain holding a directory's entries. The
// entries of a directory are the entries of all blocks in chain order.
type DirectoryBlock struct {
	Block
}

// NextOffset returns the offset of the next block in the chain, zero at the
// end of the chain.
func (b *DirectoryBlock) NextOffset() (int64, error) {
	return b.region.Int64(directoryNextOffset)
}

// SetNextOffset links the next block in the chain.
func (b *DirectoryBlock) SetNextOffset(offset int64) error {
	return b.region.SetInt64(directoryNextOffset, offset)
}

// EntryCount returns the number of entries stored in this block.
func (b *DirectoryBlock) EntryCount() (int, error) {
	count, err := b.region.Int32(directoryCountOffset)

	return int(count), err
}

func (b *DirectoryBlock) setEntryCount(count int) error {
	return b.region.SetInt32(directoryCountOffset, int32(count)) //nolint:gosec
}

// MaxEntryCount returns the number of entries this block can hold.
func (b *DirectoryBlock) MaxEntryCount() int {
	return (b.PayloadSize() - DirectoryInfoSize) / EntrySize
}

// AppendEntryCount returns the number of entries that can still be appended.
func (b *DirectoryBlock) AppendEntryCount() (int, error) {
	count, err := b.EntryCount()
	if err != nil {
		return 0, err
	}

	return b.MaxEntryCount() - count, nil
}

// Entries returns the entries stored in this block only.
func (b *DirectoryBlock) Entries() ([]Entry, error) {
	count, err := b.EntryCount()
	if err != nil {
		return nil, err
	}

	raw, err := b.region.Bytes(directoryEntriesOffset, count*EntrySize)
	if err != nil {
		return nil, err
	}

	return decodeEntries(raw), nil
}

// SetEntries replaces the entries stored in this block. They must fit the
// block's capacity.
func (b *DirectoryBlock) SetEntries(entries []Entry) error {
	if err := b.region.SetBytes(directoryEntriesOffset, encodeEntries(entries)); err != nil {
		return err
	}

	return b.setEntryCount(len(entries))
}

// AppendEntries adds entries after the stored ones. The caller checks the
// remaining capacity with [DirectoryBlock.AppendEntryCount] first.
func (b *DirectoryBlock) AppendEntries(entries ...Entry) error {
	count, err := b.EntryCount()
	if err != nil {
		return err
	}

	if err := b.region.SetBytes(directoryEntriesOffset+count*EntrySize, encodeEntries(entries)); err != nil {
		return fmt.Errorf("(block) failed to append %d entries to %d: %w", len(entries), count, err)
	}

	return b.setEntryCount(count + len(entries))
}

func (b *DirectoryBlock) init() error {
	if err := b.SetNextOffset(0); err != nil {
		return err
	}

	return b.setEntryCount(0)
}

func encodeEntries(entries []Entry) []byte {
	raw := make([]byte, len(entries)*EntrySize)

	for i, e := range entries {
		pos := i * EntrySize
		storage.ByteOrder.PutUint64(raw[pos:], uint64(e.NameOffset))                    //nolint:gosec
		storage.ByteOrder.PutUint64(raw[pos+storage.Int64Size:], uint64(e.ChildOffset)) //nolint:gosec
	}

	return raw
}

func decodeEntries(raw []byte) []Entry {
	entries := make([]Entry, len(raw)/EntrySize)

	for i := range entries {
		pos := i * EntrySize
		entries[i] = Entry{
			NameOffset:  int64(storage.ByteOrder.Uint64(raw[pos:])),                    //nolint:gosec
			ChildOffset: int64(storage.ByteOrder.Uint64(raw[pos+storage.Int64Size:])), //nolint:gosec
		}
	}

	return entries
}
