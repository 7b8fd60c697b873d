package boxfs

import "errors"

var (
	// ErrHashMismatch is an error that occurs when the content read back from a
	// copied file does not hash to the same value as the source content. It
	// aborts a compaction before the original container is replaced.
	ErrHashMismatch = errors.New("hash mismatch")

	// ErrCopyFailed is an error that occurs when a recursive copy could not
	// recreate an entry at its destination, for example because the source
	// holds two entries of the same name.
	ErrCopyFailed = errors.New("failed to recreate entry")

	// ErrSourceVanished is an error that occurs when an entry reported by a
	// tree walk can no longer be read during a recursive copy.
	ErrSourceVanished = errors.New("source entry vanished during copy")
)
