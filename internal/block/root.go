package block

import "github.com/desertwitch/boxfs/internal/storage"

const (
	rootDirectoryOffset = PayloadOffset

	// RootPayloadSize is the fixed payload size of the [RootBlock].
	RootPayloadSize = storage.Int64Size
)

// RootBlock is the singleton block at offset zero. It points at the root
// directory, or holds zero while no root directory exists.
type RootBlock struct {
	Block
}

// RootDirectoryOffset returns the offset of the root [DirectoryBlock].
func (b *RootBlock) RootDirectoryOffset() (int64, error) {
	return b.region.Int64(rootDirectoryOffset)
}

// SetRootDirectoryOffset sets the offset of the root [DirectoryBlock].
func (b *RootBlock) SetRootDirectoryOffset(offset int64) error {
	return b.region.SetInt64(rootDirectoryOffset, offset)
}

func (b *RootBlock) init() error {
	return b.SetRootDirectoryOffset(0)
}
