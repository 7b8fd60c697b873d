package boxpath

import "errors"

var (
	// ErrInvalidPath is an error that occurs when a path or a path segment
	// contains a "." or ".." segment, an empty segment, or a separator inside
	// a single segment.
	ErrInvalidPath = errors.New("invalid path")

	// ErrEmptyPath is an error that occurs when an operation needs at least
	// one segment but is called on the root path.
	ErrEmptyPath = errors.New("path has no segments")
)
