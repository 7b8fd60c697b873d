package block

import "github.com/desertwitch/boxfs/internal/storage"

const (
	nameLengthOffset = PayloadOffset
	nameLengthSize   = storage.Int32Size
	nameOffset       = nameLengthOffset + nameLengthSize
)

// NamePayloadSize returns the payload size that exactly fits name.
func NamePayloadSize(name string) int {
	return nameLengthSize + len(name)
}

// NameBlock holds the UTF-8 bytes of a single path segment. Its capacity is
// fixed at creation time.
type NameBlock struct {
	Block
}

// Length returns the byte length of the stored name.
func (b *NameBlock) Length() (int, error) {
	length, err := b.region.Int32(nameLengthOffset)

	return int(length), err
}

// Name returns the stored name.
func (b *NameBlock) Name() (string, error) {
	length, err := b.Length()
	if err != nil {
		return "", err
	}

	raw, err := b.region.Bytes(nameOffset, length)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}

// SetName replaces the stored name. The name must fit the block, which can be
// checked beforehand with [NameBlock.Fits].
func (b *NameBlock) SetName(name string) error {
	if err := b.region.SetBytes(nameOffset, []byte(name)); err != nil {
		return err
	}

	return b.region.SetInt32(nameLengthOffset, int32(len(name))) //nolint:gosec
}

// Fits reports whether name can be stored in this block in place.
func (b *NameBlock) Fits(name string) bool {
	return !b.region.ExceedsRange(nameOffset, len(name))
}

func (b *NameBlock) init() error {
	return b.region.SetInt32(nameLengthOffset, 0)
}
