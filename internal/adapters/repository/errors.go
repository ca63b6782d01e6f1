package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound       = errors.New("not found")
	ErrMissingID      = errors.New("missing id")
	ErrUnknownBackend = errors.New("unknown store backend")
)
