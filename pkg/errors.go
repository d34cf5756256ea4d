// Package pkg holds small shared utilities: domain errors and the HTTP
// response envelope.
//
// Domain errors are sentinel values. Services return them (usually wrapped
// with fmt.Errorf("%w: ...")), handlers hand them to pkg.Error, which maps
// them to HTTP status codes. Comparison is done with errors.Is, never by
// string matching.
package pkg

import "errors"

// Domain-level errors shared across layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")
)
