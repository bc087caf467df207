package api

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RealFaceCode/ContextBrain/internal/ctxerr"
)

func TestMapError_Nil(t *testing.T) {
	assert.Nil(t, MapError(nil))
}

func TestMapError_Sentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"index not found", ErrIndexNotFound, ErrCodeIndexNotFound},
		{"embedding failed", ErrEmbeddingFailed, ErrCodeEmbeddingFailed},
		{"deadline exceeded", context.DeadlineExceeded, ErrCodeTimeout},
		{"context canceled", context.Canceled, ErrCodeTimeout},
		{"file too large", ErrFileTooLarge, ErrCodeFileTooLarge},
		{"operation not found", ErrOperationNotFound, ErrCodeNotFound},
		{"invalid params", ErrInvalidParams, ErrCodeInvalidParams},
		{"resource not found", ErrResourceNotFound, ErrCodeNotFound},
		{"unknown error", errors.New("boom"), ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapError(tt.err)
			if assert.NotNil(t, mapped) {
				assert.Equal(t, tt.wantCode, mapped.Code)
			}
		})
	}
}

func TestMapError_WrappedSentinel(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), ErrIndexNotFound)
	mapped := MapError(wrapped)
	assert.Equal(t, ErrCodeIndexNotFound, mapped.Code)
}

func TestMapError_CtxErrKinds(t *testing.T) {
	tests := []struct {
		name     string
		kind     ctxerr.Kind
		wantCode string
	}{
		{"io", ctxerr.KindIO, ErrCodeFileNotFound},
		{"embedding", ctxerr.KindEmbedding, ErrCodeEmbeddingFailed},
		{"invalid input", ctxerr.KindInvalidInput, ErrCodeInvalidParams},
		{"cancelled", ctxerr.KindCancelled, ErrCodeTimeout},
		{"parse falls back to internal", ctxerr.KindParse, ErrCodeInternal},
		{"store falls back to internal", ctxerr.KindStore, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := ctxerr.New(tt.kind, "something went wrong")
			mapped := MapError(ce)
			if assert.NotNil(t, mapped) {
				assert.Equal(t, tt.wantCode, mapped.Code)
			}
		})
	}
}

func TestError_ErrorString(t *testing.T) {
	e := &Error{Code: ErrCodeNotFound, Message: "no such resource"}
	assert.Equal(t, "not_found: no such resource", e.Error())
}

func TestNewInvalidParamsError(t *testing.T) {
	e := NewInvalidParamsError("limit must be positive")
	assert.Equal(t, ErrCodeInvalidParams, e.Code)
	assert.Equal(t, "limit must be positive", e.Message)
}

func TestNewOperationNotFoundError(t *testing.T) {
	e := NewOperationNotFoundError("frobnicate")
	assert.Equal(t, ErrCodeNotFound, e.Code)
	assert.Contains(t, e.Message, "frobnicate")
}

func TestNewResourceNotFoundError(t *testing.T) {
	e := NewResourceNotFoundError("chunk://missing")
	assert.Equal(t, ErrCodeNotFound, e.Code)
	assert.Contains(t, e.Message, "chunk://missing")
}
