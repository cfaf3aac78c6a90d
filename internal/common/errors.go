// Package common defines sentinel errors shared by the regkeeper stores,
// services and CLI. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("store unavailable")

	// Document-level errors.
	ErrInvalidDocument = errors.New("invalid document")

	// Service-level errors.
	ErrBusy = errors.New("operation already in progress")
)
