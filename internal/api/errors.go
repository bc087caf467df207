// Package api exposes ContextBrain's search and index-status operations as a
// plain Go interface, independent of any wire transport. It carries the same
// operation names and shapes an external tool-calling surface would need
// (search, search_code, search_docs, index_status, list/read resources),
// without speaking JSON-RPC.
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/RealFaceCode/ContextBrain/internal/ctxerr"
)

// Error codes, mirroring the shape a wire protocol would assign without
// committing to one.
const (
	ErrCodeIndexNotFound   = "index_not_found"
	ErrCodeEmbeddingFailed = "embedding_failed"
	ErrCodeTimeout         = "timeout"
	ErrCodeFileNotFound    = "file_not_found"
	ErrCodeFileTooLarge    = "file_too_large"
	ErrCodeInvalidParams   = "invalid_params"
	ErrCodeNotFound        = "not_found"
	ErrCodeInternal        = "internal"
)

// Sentinel errors for internal use.
var (
	ErrIndexNotFound   = errors.New("index not found")
	ErrEmbeddingFailed = errors.New("embedding generation failed")
	ErrFileTooLarge    = errors.New("file too large")
	ErrOperationNotFound = errors.New("operation not found")
	ErrInvalidParams   = errors.New("invalid parameters")
	ErrResourceNotFound = errors.New("resource not found")
)

// Error represents a structured api-layer error with a stable code and a
// human-readable message, so callers can branch on Code without depending
// on any particular wire encoding.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError converts internal errors into api.Error values with a stable
// code and an actionable message.
func MapError(err error) *Error {
	if err == nil {
		return nil
	}

	var ce *ctxerr.Error
	if errors.As(err, &ce) {
		return mapCtxError(ce)
	}

	switch {
	case errors.Is(err, ErrIndexNotFound):
		return &Error{Code: ErrCodeIndexNotFound, Message: "Index not found. Run 'contextbrain index' first."}
	case errors.Is(err, ErrEmbeddingFailed):
		return &Error{Code: ErrCodeEmbeddingFailed, Message: "Embedding generation failed. Using BM25-only results."}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &Error{Code: ErrCodeTimeout, Message: "Request was canceled."}
	case errors.Is(err, ErrFileTooLarge):
		return &Error{Code: ErrCodeFileTooLarge, Message: "File is too large to process."}
	case errors.Is(err, ErrOperationNotFound):
		return &Error{Code: ErrCodeNotFound, Message: "Operation not found."}
	case errors.Is(err, ErrInvalidParams):
		return &Error{Code: ErrCodeInvalidParams, Message: "Invalid parameters."}
	case errors.Is(err, ErrResourceNotFound):
		return &Error{Code: ErrCodeNotFound, Message: "Resource not found."}
	default:
		return &Error{Code: ErrCodeInternal, Message: "Internal server error."}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *Error {
	return &Error{Code: ErrCodeInvalidParams, Message: msg}
}

// NewOperationNotFoundError creates an error for an unknown operation name.
func NewOperationNotFoundError(name string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("operation %q not found", name)}
}

// NewResourceNotFoundError creates an error for an unknown resource URI.
func NewResourceNotFoundError(uri string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("resource %q not found", uri)}
}

// mapCtxError converts a *ctxerr.Error into an *Error by its Kind.
func mapCtxError(ce *ctxerr.Error) *Error {
	switch ce.Kind() {
	case ctxerr.KindIO:
		return &Error{Code: ErrCodeFileNotFound, Message: ce.Error()}
	case ctxerr.KindEmbedding:
		return &Error{Code: ErrCodeEmbeddingFailed, Message: ce.Error()}
	case ctxerr.KindInvalidInput:
		return &Error{Code: ErrCodeInvalidParams, Message: ce.Error()}
	case ctxerr.KindCancelled:
		return &Error{Code: ErrCodeTimeout, Message: ce.Error()}
	default:
		return &Error{Code: ErrCodeInternal, Message: ce.Error()}
	}
}
