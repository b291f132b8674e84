package domain

import "errors"

// ErrDatasetNotFound is returned when a dataset lookup misses the cache.
// Distinct from network errors: the remote was never contacted.
var ErrDatasetNotFound = errors.New("dataset not found")

// ErrInvalidInput marks a caller mistake (missing or malformed query
// argument). Rejected before any network call is made.
var ErrInvalidInput = errors.New("invalid input")
