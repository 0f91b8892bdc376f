package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"typed", Conflict(CodeCategoryExists, "exists"), http.StatusConflict, CodeCategoryExists},
		{"wrapped typed", fmt.Errorf("create: %w", NotFound(CodeArtworkNotFound, "missing")), http.StatusNotFound, CodeArtworkNotFound},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, CodeDatabaseUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
	assert.Nil(t, From(nil))
}

func TestErrorIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("svc: %w", Conflict(CodeCategoryHasArtworks, "has 3 artworks"))
	assert.True(t, errors.Is(err, Conflict(CodeCategoryHasArtworks, "")))
	assert.False(t, errors.Is(err, Conflict(CodeCategoryExists, "")))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	e := Internal(cause)
	assert.ErrorIs(t, e, cause)
	assert.Equal(t, "Internal server error", e.Message)
}
