package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateEmail indicates the email column's uniqueness constraint was violated.
	ErrDuplicateEmail = errors.New("repository: duplicate email")
	// ErrDuplicateUsername indicates the username column's uniqueness constraint was violated.
	ErrDuplicateUsername = errors.New("repository: duplicate username")
)
