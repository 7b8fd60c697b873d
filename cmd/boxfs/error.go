package main

import "errors"

var (
	// ErrUsage is an error that occurs when a command is called with the wrong
	// arguments.
	ErrUsage = errors.New("invalid usage")

	// ErrNoContainer is an error that occurs when neither the command line nor
	// the configuration name a container.
	ErrNoContainer = errors.New("no container given")

	// ErrRejected is an error that occurs when the container rejects an
	// operation, because a path does not exist or a name is already taken.
	ErrRejected = errors.New("operation rejected")

	// ErrNotEnoughSpace is an error that occurs when the host filesystem has
	// too little free space left for a compaction.
	ErrNotEnoughSpace = errors.New("not enough free space for compaction")
)
