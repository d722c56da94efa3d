// Package common defines shared constants and sentinel errors used across
// the server components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Store operation failed because the key is already taken.
	ErrAlreadyExists = errors.New("already exists")

	// An ask exceeded its deadline.
	ErrTimeout = errors.New("timeout")
)
