package hostfs

import "errors"

var (
	// ErrNotADirectory is an error that occurs when the host or container side
	// of a transfer is not a directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrNotEnoughSpace is an error that occurs when there is not enough free
	// space on the host filesystem to take the materialized tree.
	ErrNotEnoughSpace = errors.New("not enough free space on destination")

	// ErrHashMismatch is an error that occurs when there is a source/destination
	// hash mismatch, this usually means that there are underlying
	// transfer/hardware issues.
	ErrHashMismatch = errors.New("hash mismatch")

	// ErrRenameExists is an error that occurs when the intermediate file is to
	// be renamed to its final filename, but that final filename already exists.
	ErrRenameExists = errors.New("rename destination already exists")

	// ErrUnsupportedType is an error that occurs when a host entry is neither a
	// directory nor a regular file, such as a symbolic link or a device.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrEntryExists is an error that occurs when a container entry of another
	// kind is in the way of a populated entry.
	ErrEntryExists = errors.New("entry of another type exists")
)
