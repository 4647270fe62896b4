package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a uniqueness violation on create.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the request was malformed or out of range.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates the operation clashes with one already in
	// flight for the same entity.
	ErrConflict = errors.New("conflict")

	// ErrOutOfStock indicates the requested variant combination cannot
	// cover the requested quantity.
	ErrOutOfStock = errors.New("out of stock")

	// ErrRemoteUnavailable wraps transport failures against an external
	// collaborator. Callers surface it as a single user-facing message and
	// leave their state untouched.
	ErrRemoteUnavailable = errors.New("service temporarily unavailable")
)
