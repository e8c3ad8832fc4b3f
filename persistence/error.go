package persistence

import (
	"errors"
	"fmt"
)

// ErrInstanceNotFound is returned when a process instance referenced by its
// ID does not exist.
//
// A load that races a concurrent removal of the same record is expected to
// fail this way transiently; the policy at the point of occurrence is to
// retry the load, not to surface the error.
var ErrInstanceNotFound = errors.New("process instance does not exist")

// ErrDataObjectNotFound is returned when a data object referenced by its ID
// does not exist.
var ErrDataObjectNotFound = errors.New("data object does not exist")

// ConflictError is an error indicating one or more operations within a batch
// caused an optimistic concurrency conflict.
type ConflictError struct {
	// Cause is the operation that caused the conflict.
	Cause Operation
}

func (e ConflictError) Error() string {
	return fmt.Sprintf(
		"optimistic concurrency conflict in %T operation",
		e.Cause,
	)
}

// IsTransient returns true if err is expected to resolve itself on retry,
// such as an optimistic concurrency conflict or a load racing a concurrent
// removal.
func IsTransient(err error) bool {
	if errors.Is(err, ErrInstanceNotFound) {
		return true
	}

	var conflict ConflictError
	return errors.As(err, &conflict)
}
