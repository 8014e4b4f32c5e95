package repository

import "errors"

var (
	// ErrNotFound means the requested record does not exist. Lookups return it
	// for "no such user", which callers treat as a normal outcome.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a unique key (email, external id) is already taken.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput means the input failed validation before reaching storage.
	ErrInvalidInput = errors.New("invalid input")
)

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
