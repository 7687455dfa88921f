package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkedErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		is     func(error) bool
		status int
	}{
		{
			name:   "not found",
			err:    NewError("invoice not found").Mark(ErrNotFound),
			is:     IsNotFound,
			status: http.StatusNotFound,
		},
		{
			name:   "validation",
			err:    NewErrorf("bad %s", "limit").Mark(ErrValidation),
			is:     IsValidation,
			status: http.StatusBadRequest,
		},
		{
			name:   "invalid operation",
			err:    NewError("cannot adjust").Mark(ErrInvalidOperation),
			is:     IsInvalidOperation,
			status: http.StatusBadRequest,
		},
		{
			name:   "already exists",
			err:    NewError("duplicate number").Mark(ErrAlreadyExists),
			is:     IsAlreadyExists,
			status: http.StatusConflict,
		},
		{
			name:   "version conflict",
			err:    NewError("stale").Mark(ErrVersionConflict),
			is:     IsVersionConflict,
			status: http.StatusConflict,
		},
		{
			name:   "database",
			err:    WithError(fmt.Errorf("connection reset")).Mark(ErrDatabase),
			is:     IsDatabase,
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.is(tt.err))
			assert.Equal(t, tt.status, HTTPStatusFromErr(tt.err))

			wrapped := fmt.Errorf("generate: %w", tt.err)
			assert.True(t, tt.is(wrapped))
		})
	}

	assert.Equal(t, http.StatusOK, HTTPStatusFromErr(nil))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromErr(fmt.Errorf("plain")))
}

func TestHintsAndDetails(t *testing.T) {
	inner := NewError("row missing").
		WithHint("Invoice was not found").
		WithReportableDetails(map[string]any{"invoice_id": "inv_1"}).
		Mark(ErrNotFound)

	assert.Equal(t, "row missing", inner.Error())
	assert.Equal(t, "Invoice was not found", GetHint(inner))
	assert.Equal(t, map[string]any{"invoice_id": "inv_1"}, GetReportableDetails(inner))

	outer := WithError(inner).
		WithHintf("Could not load invoice %s", "inv_1").
		WithReportableDetails(map[string]any{"invoice_id": "inv_outer", "attempt": 2}).
		Mark(ErrNotFound)

	assert.Equal(t, "Could not load invoice inv_1", GetHint(outer))
	details := GetReportableDetails(outer)
	// the outermost value wins
	assert.Equal(t, "inv_outer", details["invoice_id"])
	assert.Equal(t, 2, details["attempt"])

	assert.Empty(t, GetHint(fmt.Errorf("plain")))
	assert.Nil(t, GetReportableDetails(fmt.Errorf("plain")))
}

func TestNewErrorResponse(t *testing.T) {
	t.Run("client error exposes hint and details", func(t *testing.T) {
		err := NewError("invoice is already cancelled").
			WithHint("Invoice is already cancelled").
			WithReportableDetails(map[string]any{"invoice_id": "inv_1"}).
			Mark(ErrInvalidOperation)

		status, resp := NewErrorResponse(err)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.False(t, resp.Success)
		assert.Equal(t, "Invoice is already cancelled", resp.Error.Display)
		assert.Equal(t, "invoice is already cancelled", resp.Error.InternalError)
		assert.Equal(t, "inv_1", resp.Error.Details["invoice_id"])
	})

	t.Run("message used when no hint", func(t *testing.T) {
		_, resp := NewErrorResponse(NewError("payer p1 not found").Mark(ErrNotFound))
		assert.Equal(t, "payer p1 not found", resp.Error.Display)
	})

	t.Run("server error is opaque", func(t *testing.T) {
		err := WithError(fmt.Errorf("pq: password authentication failed")).
			WithHint("Failed to connect").
			Mark(ErrDatabase)

		status, resp := NewErrorResponse(err)
		require.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "An unexpected error occurred", resp.Error.Display)
		assert.Empty(t, resp.Error.InternalError)
		assert.Nil(t, resp.Error.Details)
	})
}
