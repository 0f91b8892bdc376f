// Package apperr holds the typed errors handlers turn into response envelopes.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned in the envelope's "error" field.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidID           = "INVALID_ID"
	CodeInvalidCategory     = "INVALID_CATEGORY"
	CodeCategoryNotFound    = "CATEGORY_NOT_FOUND"
	CodeCategoryExists      = "CATEGORY_EXISTS"
	CodeCategoryHasArtworks = "CATEGORY_HAS_ARTWORKS"
	CodeArtworkNotFound     = "ARTWORK_NOT_FOUND"
	CodeArtworkUnavailable  = "ARTWORK_NOT_AVAILABLE"
	CodeImageNotFound       = "IMAGE_NOT_FOUND"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeEmailExists         = "EMAIL_EXISTS"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeRateLimited         = "RATE_LIMIT_EXCEEDED"
	CodeFileTooLarge        = "FILE_TOO_LARGE"
	CodeInvalidFileType     = "INVALID_FILE_TYPE"
	CodeTooManyFiles        = "TOO_MANY_FILES"
	CodeNoFile              = "NO_FILE"
	CodeNotFound            = "NOT_FOUND"
	CodeDatabaseUnavailable = "DATABASE_UNAVAILABLE"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInternal            = "INTERNAL_SERVER_ERROR"
)

// Error carries an HTTP status, a stable code and a client-safe message.
// Err is the underlying cause, logged but never sent to clients.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so errors.Is(err, apperr.NotFound(apperr.CodeArtworkNotFound, "")) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func Validation(message string) *Error {
	return New(http.StatusBadRequest, CodeValidation, message)
}

func BadRequest(code, message string) *Error {
	return New(http.StatusBadRequest, code, message)
}

func Unauthorized(code, message string) *Error {
	return New(http.StatusUnauthorized, code, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, CodeForbidden, message)
}

func NotFound(code, message string) *Error {
	return New(http.StatusNotFound, code, message)
}

func Conflict(code, message string) *Error {
	return New(http.StatusConflict, code, message)
}

func PayloadTooLarge(message string) *Error {
	return New(http.StatusRequestEntityTooLarge, CodeFileTooLarge, message)
}

func RateLimited() *Error {
	return New(http.StatusTooManyRequests, CodeRateLimited, "Too many requests, please try again later")
}

func Unavailable(code, message string) *Error {
	return New(http.StatusServiceUnavailable, code, message)
}

func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "Internal server error", Err: err}
}

// Wrap attaches a cause to a copy of e.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// From normalises any error into an *Error. Unknown errors become 500s;
// deadline errors (saturated pool, slow query) become 503s.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{
			Status:  http.StatusServiceUnavailable,
			Code:    CodeDatabaseUnavailable,
			Message: "Database did not respond in time",
			Err:     err,
		}
	}
	return Internal(err)
}
