package dto

import (
	"net/http"

	"github.com/freightcore/backend/internal/domain/shared"
)

// Domain error codes are sent to clients unchanged. The codes below exist
// only at the transport layer.
const (
	// ErrCodeValidation is shared with the domain
	ErrCodeValidation = shared.CodeValidation
	// ErrCodeInternal is used for unexpected failures
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when the body is not valid JSON
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Input errors -> 400
	shared.CodeValidation:       http.StatusBadRequest,
	shared.CodeNoApplicableRate: http.StatusBadRequest,
	ErrCodeBadRequest:           http.StatusBadRequest,
	ErrCodeInvalidJSON:          http.StatusBadRequest,

	// Auth errors
	shared.CodeUnauthorized:       http.StatusUnauthorized,
	shared.CodeInvalidCredentials: http.StatusUnauthorized,
	shared.CodeForbidden:          http.StatusForbidden,

	// Resource errors
	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeAlreadyExists:       http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeAmbiguousRate:       http.StatusConflict,

	// Business rule errors -> 422
	shared.CodeInvalidState:         http.StatusUnprocessableEntity,
	shared.CodeInvalidTransition:    http.StatusUnprocessableEntity,
	shared.CodeWrongWorkflowContext: http.StatusUnprocessableEntity,
	shared.CodeTotalMismatch:        http.StatusUnprocessableEntity,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
