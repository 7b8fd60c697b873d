package block

import "errors"

var (
	// ErrTypeMismatch is an error that occurs when a typed block view is
	// requested for an offset whose stored type tag differs from the expected
	// one. It points at a structural problem, not at a user error.
	ErrTypeMismatch = errors.New("block type mismatch")

	// ErrUnknownType is an error that occurs when a stored type tag is not one
	// of the known block types.
	ErrUnknownType = errors.New("unknown block type")

	// ErrInvalidPayloadSize is an error that occurs when a block is requested
	// with a payload size that cannot hold its fixed fields or does not fit
	// the on-disk size field.
	ErrInvalidPayloadSize = errors.New("invalid block payload size")

	// ErrRootMisplaced is an error that occurs when the root block could not be
	// allocated at the very start of an empty store.
	ErrRootMisplaced = errors.New("root block not at offset zero")
)
