package domain

import (
	"errors"
	"fmt"
)

// Sentinel error kinds surfaced by the engine. Callers match them with
// errors.Is; layers add context with fmt.Errorf("...: %w", err).
var (
	// ErrInvalidArgument marks malformed or missing required input. A caller
	// bug; never worth retrying.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks an identity or coordinate that matches no stored row.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable marks a storage failure the engine cannot
	// interpret. Propagated as-is; retry safety is the caller's call.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ConcurrentModificationError reports that the UniqueID supplied for a
// mutation no longer names the latest version (or latest correction) of its
// object. The caller should re-fetch and decide whether to retry.
type ConcurrentModificationError struct {
	UniqueID UniqueID
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("concurrent modification: %s is not the latest", e.UniqueID)
}

// NewConcurrentModification builds the error for a stale id.
func NewConcurrentModification(uid UniqueID) error {
	return &ConcurrentModificationError{UniqueID: uid}
}

// IsConcurrentModification reports whether err is a stale-id rejection.
func IsConcurrentModification(err error) bool {
	var cme *ConcurrentModificationError
	return errors.As(err, &cme)
}
