package storage

import "errors"

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidFormat      = errors.New("invalid snapshot format")
	ErrMigrationPartial   = errors.New("legacy migration partially failed")
	ErrNotFound           = errors.New("not found")
)
