package store

import "errors"

var (
	ErrConflict            = errors.New("conflict")
	ErrNotFound            = errors.New("not found")
	ErrDuplicateNumber     = errors.New("duplicate number")
	ErrIdempotencyConflict = errors.New("idempotency key conflict")
)
