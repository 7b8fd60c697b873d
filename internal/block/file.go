package block

import (
	"fmt"

	"github.com/desertwitch/boxfs/internal/storage"
)

const (
	fileNextOffset        = PayloadOffset
	fileContentSizeOffset = fileNextOffset + storage.Int64Size
	fileContentOffset     = fileContentSizeOffset + storage.Int32Size

	// FileInfoSize is the size of the fixed fields in a file payload: the
	// next-block offset and the content length.
	FileInfoSize = storage.Int64Size + storage.Int32Size

	// MinInitialContentSize is the content capacity a new file gets at the
	// least.
	MinInitialContentSize = 64
)

// InitialFilePayloadSize returns the payload size of the first block of a new
// file that should hold contentSize bytes.
func InitialFilePayloadSize(contentSize int) int {
	return FileInfoSize + max(contentSize, MinInitialContentSize)
}

// NextFilePayloadSize returns the payload size of a continuation block that
// follows a full block of previousPayloadSize while remaining bytes are still
// to be written. It fits all of them plus half again the previous capacity.
func NextFilePayloadSize(remaining int, previousPayloadSize int) int {
	previousContent := previousPayloadSize - FileInfoSize

	return FileInfoSize + remaining + previousContent*3/2
}

// FileBlock is one block in the chain holding a file's content. The content of
// a file is the content of all blocks in chain order.
type FileBlock struct {
	Block
}

// NextOffset returns the offset of the next block in the chain, zero at the
// end of the chain.
func (b *FileBlock) NextOffset() (int64, error) {
	return b.region.Int64(fileNextOffset)
}

// SetNextOffset links the next block in the chain.
func (b *FileBlock) SetNextOffset(offset int64) error {
	return b.region.SetInt64(fileNextOffset, offset)
}

// ContentSize returns the number of content bytes stored in this block.
func (b *FileBlock) ContentSize() (int, error) {
	size, err := b.region.Int32(fileContentSizeOffset)

	return int(size), err
}

func (b *FileBlock) setContentSize(size int) error {
	return b.region.SetInt32(fileContentSizeOffset, int32(size)) //nolint:gosec
}

// MaxContentSize returns the number of content bytes this block can hold.
func (b *FileBlock) MaxContentSize() int {
	return b.PayloadSize() - FileInfoSize
}

// AppendContentSize returns the number of bytes that can still be appended.
func (b *FileBlock) AppendContentSize() (int, error) {
	size, err := b.ContentSize()
	if err != nil {
		return 0, err
	}

	return b.MaxContentSize() - size, nil
}

// Content returns the content stored in this block only.
func (b *FileBlock) Content() ([]byte, error) {
	size, err := b.ContentSize()
	if err != nil {
		return nil, err
	}

	return b.region.Bytes(fileContentOffset, size)
}

// SetContent replaces the content stored in this block. It must fit the
// block's capacity.
func (b *FileBlock) SetContent(content []byte) error {
	if err := b.region.SetBytes(fileContentOffset, content); err != nil {
		return err
	}

	return b.setContentSize(len(content))
}

// AppendContent adds content after the stored bytes. The caller checks the
// remaining capacity with [FileBlock.AppendContentSize] first.
func (b *FileBlock) AppendContent(content []byte) error {
	size, err := b.ContentSize()
	if err != nil {
		return err
	}

	if err := b.region.SetBytes(fileContentOffset+size, content); err != nil {
		return fmt.Errorf("(block) failed to append %d bytes to %d: %w", len(content), size, err)
	}

	return b.setContentSize(size + len(content))
}

func (b *FileBlock) init() error {
	if err := b.SetNextOffset(0); err != nil {
		return err
	}

	return b.setContentSize(0)
}
