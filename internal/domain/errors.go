package domain

import "errors"

var (
	// ErrNotFound reports a store write that matched no row.
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedOperation marks sync operations that are deliberately not
	// implemented yet. Such queue items must report failure, never silently
	// succeed.
	ErrUnsupportedOperation = errors.New("operation not supported")
)
