// Package common defines sentinel errors shared by the Notish client
// packages. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Session errors.
	ErrNoOwner      = errors.New("no owner identity")
	ErrInvalidToken = errors.New("invalid token")
)
