package itemrepo

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("plan item not found")
	ErrAlreadyExists = errors.New("plan item already exists")
)

// BatchError is returned by adapters that cannot apply a multi-row write atomically
// and applied only part of it.
type BatchError struct {
	Requested int
	Applied   int
	Err       error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch applied %d of %d rows: %v", e.Applied, e.Requested, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
