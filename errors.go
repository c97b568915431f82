package bus1

import "errors"

var (
	// ErrQuotaExceeded is returned by Stage.Commit, before submit begins,
	// when a destination peer's accounting quota has no budget left.
	ErrQuotaExceeded = errors.New("bus1: destination quota exceeded")

	// ErrAlreadyStaged guards against staging the same object/handle
	// release or destruction twice concurrently.
	ErrAlreadyStaged = errors.New("bus1: message already staged")

	// ErrDetached is returned by Stage.AddObjectRelease when the stage's
	// sender is not the object's owner.
	ErrDetached = errors.New("bus1: already detached")
)
