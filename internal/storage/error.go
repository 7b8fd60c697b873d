package storage

import "errors"

var (
	// ErrClosed is an error that occurs when a [Store] is used after it was
	// closed.
	ErrClosed = errors.New("store is closed")

	// ErrOutOfBounds is an error that occurs when a positioned access on a
	// [Store] would touch bytes beyond its logical length. The length only
	// grows through [Store.Allocate].
	ErrOutOfBounds = errors.New("access beyond store length")

	// ErrOutOfRange is an error that occurs when a [Region] accessor would read
	// or write past the fixed size of the region.
	ErrOutOfRange = errors.New("value exceeds region range")

	// ErrInvalidSize is an error that occurs when a non-positive allocation
	// size is requested.
	ErrInvalidSize = errors.New("invalid allocation size")
)
