// Package ctxerr provides the structured error vocabulary shared across
// the indexing and retrieval engine, plus generic resilience helpers
// (retry with backoff, circuit breaker) used by collaborators such as
// the Embedder that may fail transiently.
package ctxerr

import (
	"errors"
	"fmt"
)

// Kind is one of the closed set of error kinds the engine distinguishes.
type Kind string

const (
	// KindIO covers file read or store I/O failures.
	KindIO Kind = "io"
	// KindParse covers a parser producing a fatal error on a file.
	KindParse Kind = "parse"
	// KindEmbedding covers an embedder batch call failure.
	KindEmbedding Kind = "embedding"
	// KindStore covers a structured or vector store refusing a write.
	KindStore Kind = "store"
	// KindInvalidInput covers a client request violating preconditions.
	KindInvalidInput Kind = "invalid_input"
	// KindCancelled covers a tripped cancellation token.
	KindCancelled Kind = "cancelled"
)

// Error is the engine's structured error type. It always carries a Kind
// so callers can branch with errors.Is against the Kind sentinels below,
// or inspect Kind() directly.
type Error struct {
	kind    Kind
	message string
	path    string // optional: file or resource the error concerns
	cause   error
}

// sentinels allow errors.Is(err, ctxerr.ErrInvalidInput) style checks
// without constructing a full *Error.
var (
	ErrIO           = errors.New("io error")
	ErrParse        = errors.New("parse error")
	ErrEmbedding    = errors.New("embedding error")
	ErrStore        = errors.New("store error")
	ErrInvalidInput = errors.New("invalid input")
	ErrCancelled    = errors.New("cancelled")
)

func sentinelFor(k Kind) error {
	switch k {
	case KindIO:
		return ErrIO
	case KindParse:
		return ErrParse
	case KindEmbedding:
		return ErrEmbedding
	case KindStore:
		return ErrStore
	case KindInvalidInput:
		return ErrInvalidInput
	case KindCancelled:
		return ErrCancelled
	default:
		return errors.New(string(k))
	}
}

// New creates an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Wrap creates an *Error of the given kind around an existing cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{kind: kind, message: message, cause: cause}
}

// WithPath attaches the file or resource path the error concerns and
// returns the same error for chaining.
func (e *Error) WithPath(path string) *Error {
	e.path = path
	return e
}

// Kind returns the error's kind.
func (e *Error) Kind() Kind { return e.kind }

// Path returns the file or resource path associated with the error, if any.
func (e *Error) Path() string { return e.path }

func (e *Error) Error() string {
	if e.path != "" {
		if e.cause != nil {
			return fmt.Sprintf("%s: %s (%s): %v", e.kind, e.message, e.path, e.cause)
		}
		return fmt.Sprintf("%s: %s (%s)", e.kind, e.message, e.path)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is the sentinel error for this error's kind,
// or another *Error of the same kind, enabling errors.Is(err, ctxerr.ErrStore).
func (e *Error) Is(target error) bool {
	if target == sentinelFor(e.kind) {
		return true
	}
	var other *Error
	if errors.As(target, &other) {
		return other.kind == e.kind
	}
	return false
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error,
// returning ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.kind, true
	}
	return "", false
}
