package errors

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// ErrorResponse is the JSON body rendered for every failed request
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail is the caller facing part of an error
type ErrorDetail struct {
	Display       string         `json:"message"`
	InternalError string         `json:"internal_error,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// HTTPStatusFromErr maps a marked error to an HTTP status code.
func HTTPStatusFromErr(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidOperation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse builds the response body for err. Server side failures are
// rendered opaque; their cause stays in the logs.
func NewErrorResponse(err error) (int, ErrorResponse) {
	status := HTTPStatusFromErr(err)
	if status >= http.StatusInternalServerError {
		return status, ErrorResponse{
			Error: ErrorDetail{Display: "An unexpected error occurred"},
		}
	}

	display := GetHint(err)
	if display == "" {
		display = err.Error()
	}
	return status, ErrorResponse{
		Error: ErrorDetail{
			Display:       display,
			InternalError: err.Error(),
			Details:       GetReportableDetails(err),
		},
	}
}
