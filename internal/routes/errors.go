package routes

import (
	"errors"
	"net/http"

	"advent-calendar/internal/pages"
	"advent-calendar/internal/reveal"
)

// HTTPError represents an error with an associated HTTP status code and user message
type HTTPError struct {
	Err        error  // The underlying error
	StatusCode int    // HTTP status code
	Code       string // Wire code for client-side handling
	MessageKey string // Translation key of the user message
	Internal   bool   // Whether this is an internal error (hide details from user)
}

// ErrorInfo contains error metadata for user-facing errors
type ErrorInfo struct {
	Code       string // Stable code sent to clients
	MessageKey string // Translation key of the user message
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

// Unwrap returns the underlying error
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates a new HTTPError
func NewHTTPError(statusCode int, err error, code, messageKey string) *HTTPError {
	return &HTTPError{
		Err:        err,
		StatusCode: statusCode,
		Code:       code,
		MessageKey: messageKey,
		Internal:   statusCode >= 500,
	}
}

// Routes-specific errors
var (
	ErrUnknownAction  = errors.New("unknown ajax action")
	ErrNotFound       = errors.New("not found")
	ErrInternalServer = errors.New("internal server error")
)

// errorStatusMap maps errors to HTTP status codes
var errorStatusMap = map[error]int{
	// 400 Bad Request
	reveal.ErrInvalidRequest: http.StatusBadRequest,
	ErrUnknownAction:         http.StatusBadRequest,

	// 403 Forbidden
	reveal.ErrInvalidNonce: http.StatusForbidden,

	// 404 Not Found
	reveal.ErrMissingDoor: http.StatusNotFound,
	pages.ErrPageNotFound: http.StatusNotFound,
	ErrNotFound:           http.StatusNotFound,

	// 410 Gone, the page must be reloaded
	reveal.ErrExpired: http.StatusGone,

	// 423 Locked
	reveal.ErrLocked: http.StatusLocked,

	// 500 Internal Server Error
	ErrInternalServer: http.StatusInternalServerError,
}

// errorInfoMap maps errors to wire codes and message keys
var errorInfoMap = map[error]ErrorInfo{
	reveal.ErrInvalidNonce: {
		Code:       "invalid_nonce",
		MessageKey: "error.invalid_nonce",
	},
	reveal.ErrInvalidRequest: {
		Code:       "invalid_request",
		MessageKey: "error.invalid_request",
	},
	ErrUnknownAction: {
		Code:       "invalid_request",
		MessageKey: "error.invalid_request",
	},
	reveal.ErrExpired: {
		Code:       "expired",
		MessageKey: "error.expired",
	},
	reveal.ErrMissingDoor: {
		Code:       "missing_door",
		MessageKey: "error.missing_door",
	},
	reveal.ErrLocked: {
		Code:       "locked",
		MessageKey: "error.locked",
	},
	pages.ErrPageNotFound: {
		Code:       "not_found",
		MessageKey: "error.not_found",
	},
	ErrNotFound: {
		Code:       "not_found",
		MessageKey: "error.not_found",
	},
	ErrInternalServer: {
		Code:       "internal_error",
		MessageKey: "error.internal",
	},
}

// GetErrorStatus returns the HTTP status code for an error
func GetErrorStatus(err error) int {
	// Check if it's already an HTTPError
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	// Check direct match
	if status, ok := errorStatusMap[err]; ok {
		return status
	}

	// Check if error wraps a known error
	for knownErr, status := range errorStatusMap {
		if errors.Is(err, knownErr) {
			return status
		}
	}

	// Default to 500 Internal Server Error
	return http.StatusInternalServerError
}

// GetErrorInfo returns the wire code and message key for an error. Unknown
// errors never expose their text.
func GetErrorInfo(err error) ErrorInfo {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return ErrorInfo{Code: httpErr.Code, MessageKey: httpErr.MessageKey}
	}

	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	for knownErr, info := range errorInfoMap {
		if errors.Is(err, knownErr) {
			return info
		}
	}

	return errorInfoMap[ErrInternalServer]
}
