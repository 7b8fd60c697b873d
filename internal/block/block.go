// Package block implements the typed blocks that make up a container, and the
// [Catalog] that allocates them and validates their type tags.
//
// Every block starts with a header of a 1-byte type tag followed by a 4-byte
// payload size. The payload follows immediately. Blocks are only ever appended
// to the end of the store, never moved or freed.
package block

import (
	"fmt"
	"math"

	"github.com/desertwitch/boxfs/internal/storage"
)

// Type is the on-disk tag identifying the kind of a block. The values are
// part of the container format.
type Type uint8

const (
	TypeRoot Type = iota
	TypeName
	TypeDirectory
	TypeFile
)

const (
	typeOffset = 0
	typeSize   = 1

	payloadSizeOffset = typeOffset + typeSize
	payloadSizeSize   = storage.Int32Size

	// HeaderSize is the size of the header shared by all blocks.
	HeaderSize = typeSize + payloadSizeSize

	// PayloadOffset is the block-relative offset at which the payload starts.
	PayloadOffset = HeaderSize

	// MaxPayloadSize is the largest payload the size field can describe.
	MaxPayloadSize = math.MaxInt32 - HeaderSize
)

// String returns the human-readable name of a block type.
func (t Type) String() string {
	switch t {
	case TypeRoot:
		return "root"
	case TypeName:
		return "name"
	case TypeDirectory:
		return "directory"
	case TypeFile:
		return "file"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the known block types.
func (t Type) Valid() bool {
	return t <= TypeFile
}

// Block is the part common to all typed block views. It is a window over the
// whole block, header included.
type Block struct {
	region *storage.Region
	kind   Type
}

// Offset returns the global offset of the block, which is also its identity.
func (b *Block) Offset() int64 {
	return b.region.Base()
}

// Type returns the block type the view was constructed for.
func (b *Block) Type() Type {
	return b.kind
}

// PayloadSize returns the size of the block's payload in bytes.
func (b *Block) PayloadSize() int {
	return b.region.Size() - HeaderSize
}

func (b *Block) writeHeader() error {
	if err := b.region.SetByte(typeOffset, byte(b.kind)); err != nil {
		return fmt.Errorf("(block) failed to write type: %w", err)
	}

	if err := b.region.SetInt32(payloadSizeOffset, int32(b.PayloadSize())); err != nil { //nolint:gosec
		return fmt.Errorf("(block) failed to write payload size: %w", err)
	}

	return nil
}
