package errors

import (
	"fmt"
	"net/http"
)

// AppError represents a categorized application error mapped to an HTTP status.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Validation errors (400/413/415)
var (
	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "request validation failed",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidDestination = &AppError{
		Code:       "INVALID_DESTINATION",
		Message:    "destination number is not well-formed",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrFileTooLarge = &AppError{
		Code:       "FILE_TOO_LARGE",
		Message:    "uploaded file exceeds the configured size limit",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}

	ErrUnsupportedMediaType = &AppError{
		Code:       "UNSUPPORTED_MEDIA_TYPE",
		Message:    "file type must be PDF or plain text",
		HTTPStatus: http.StatusUnsupportedMediaType,
	}
)

// Auth errors (401/403)
var (
	ErrAuthenticationRequired = &AppError{
		Code:       "AUTHENTICATION_REQUIRED",
		Message:    "missing or invalid API key",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidToken = &AppError{
		Code:       "INVALID_TOKEN",
		Message:    "invalid or revoked API key",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenExpired = &AppError{
		Code:       "TOKEN_EXPIRED",
		Message:    "API key has expired",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "API key lacks the required scope",
		HTTPStatus: http.StatusForbidden,
	}

	ErrInvalidArtifactToken = &AppError{
		Code:       "INVALID_ARTIFACT_TOKEN",
		Message:    "artifact token is invalid or expired",
		HTTPStatus: http.StatusForbidden,
	}

	ErrInternalAuthFailed = &AppError{
		Code:       "INTERNAL_AUTH_FAILED",
		Message:    "internal shared secret mismatch",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrWebhookSignatureInvalid = &AppError{
		Code:       "WEBHOOK_SIGNATURE_INVALID",
		Message:    "webhook signature verification failed",
		HTTPStatus: http.StatusUnauthorized,
	}
)

// Rate limiting (429)
var (
	ErrRateLimited = &AppError{
		Code:       "RATE_LIMITED",
		Message:    "too many requests",
		HTTPStatus: http.StatusTooManyRequests,
	}
)

// Not found (404)
var (
	ErrJobNotFound = &AppError{
		Code:       "JOB_NOT_FOUND",
		Message:    "fax job not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrInboundNotFound = &AppError{
		Code:       "INBOUND_NOT_FOUND",
		Message:    "inbound fax not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrArtifactNotFound = &AppError{
		Code:       "ARTIFACT_NOT_FOUND",
		Message:    "stored artifact not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrAPIKeyNotFound = &AppError{
		Code:       "API_KEY_NOT_FOUND",
		Message:    "API key not found",
		HTTPStatus: http.StatusNotFound,
	}
)

// Conflict (409) — internally handled as success for idempotent callbacks
var (
	ErrDuplicateCallback = &AppError{
		Code:       "DUPLICATE_CALLBACK",
		Message:    "callback event already processed",
		HTTPStatus: http.StatusConflict,
	}
)

// Provider / conversion / IO
var (
	ErrProviderSend = &AppError{
		Code:       "PROVIDER_SEND_FAILED",
		Message:    "outbound provider rejected the send",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrConversionFailed = &AppError{
		Code:       "CONVERSION_FAILED",
		Message:    "document conversion failed",
		HTTPStatus: http.StatusUnprocessableEntity,
	}

	ErrStorageIO = &AppError{
		Code:       "STORAGE_IO_FAILED",
		Message:    "storage adapter I/O failure",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrPathTraversal = &AppError{
		Code:       "PATH_TRAVERSAL_REJECTED",
		Message:    "supplied path escapes the allowed root",
		HTTPStatus: http.StatusBadRequest,
	}
)

// Generic
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}
)

// NewValidationError creates a validation error carrying extra detail.
func NewValidationError(details string) *AppError {
	return &AppError{
		Code:       ErrValidationFailed.Code,
		Message:    ErrValidationFailed.Message,
		Details:    details,
		HTTPStatus: ErrValidationFailed.HTTPStatus,
	}
}

// WithDetails returns a copy of base carrying details, leaving base untouched.
func WithDetails(base *AppError, details string) *AppError {
	return &AppError{
		Code:       base.Code,
		Message:    base.Message,
		Details:    details,
		HTTPStatus: base.HTTPStatus,
	}
}

// IsAppError reports whether err is an *AppError.
func IsAppError(err error) (*AppError, bool) {
	appErr, ok := err.(*AppError)
	return appErr, ok
}

// Wrap converts a generic error into an AppError of the given kind, carrying
// the original error's message as Details. Never pass raw provider/subprocess
// output here without sanitizing first — Details is surfaced to clients.
func Wrap(err error, kind *AppError) *AppError {
	return &AppError{
		Code:       kind.Code,
		Message:    kind.Message,
		Details:    err.Error(),
		HTTPStatus: kind.HTTPStatus,
	}
}
