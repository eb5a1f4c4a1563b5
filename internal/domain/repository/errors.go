package repository

import "errors"

var (
	// ErrDuplicate is returned when a write violates a unique key
	// (batch number, invoice number, user email, idempotency key).
	ErrDuplicate = errors.New("duplicate key")

	// ErrNotFound is returned by writes that target a missing row. Reads
	// return (nil, nil) instead.
	ErrNotFound = errors.New("record not found")
)
