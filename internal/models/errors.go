package models

import "errors"

// Expected business outcomes. These are returned as values to callers and
// never raised as panics; the HTTP layer maps them to status codes.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrInvalidReference  = errors.New("user or event does not exist")
	ErrInvalidInput      = errors.New("invalid input")
)
