package store

import "errors"

var (
	// ErrNotFound is returned when a document, id or code does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateCode is returned when a business key would appear twice.
	ErrDuplicateCode = errors.New("duplicate code")
	// ErrCorruptStore is returned when the durable document cannot be decoded.
	ErrCorruptStore = errors.New("corrupt store")
	// ErrIOFailure is returned when a save could not complete.
	ErrIOFailure = errors.New("store i/o failure")
	// ErrInvalidRecord is returned when a record breaks a structural rule
	// (blank code, blank or repeated id).
	ErrInvalidRecord = errors.New("invalid record")
	// ErrLocked is returned when another process holds the writer lock.
	ErrLocked = errors.New("store is locked by another process")
)
