// Package errs defines the error kinds shared by every confman store.
//
// All failures surface as one of three kinds:
//   - AlreadyExists: module or document creation collision
//   - NotFound: missing module, document, or ledger row reference
//   - InvalidArgument: malformed name, version token, extension, or payload
//
// Errors are raised synchronously at the point of detection. There is no
// retry and no rollback: a multi-step operation that fails mid-way (e.g.
// a cascade across several ledger files) leaves earlier steps applied.
package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes an error.
type Kind string

const (
	// KindAlreadyExists indicates a module or document creation collision.
	KindAlreadyExists Kind = "ALREADY_EXISTS"

	// KindNotFound indicates a missing module, document, or ledger row.
	KindNotFound Kind = "NOT_FOUND"

	// KindInvalidArgument indicates a malformed name, version, extension,
	// or payload value.
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
)

// Error is the error type returned by confman stores.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// AlreadyExists creates an AlreadyExists error.
func AlreadyExists(format string, args ...any) *Error {
	return &Error{Kind: KindAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a NotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument creates an InvalidArgument error.
func InvalidArgument(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// IsAlreadyExists returns true if the error is an AlreadyExists error.
// Uses errors.As to handle wrapped errors.
func IsAlreadyExists(err error) bool {
	return kindOf(err) == KindAlreadyExists
}

// IsNotFound returns true if the error is a NotFound error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return kindOf(err) == KindNotFound
}

// IsInvalidArgument returns true if the error is an InvalidArgument error.
// Uses errors.As to handle wrapped errors.
func IsInvalidArgument(err error) bool {
	return kindOf(err) == KindInvalidArgument
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
