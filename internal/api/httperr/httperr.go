// Package httperr defines the API error taxonomy and its mapping onto HTTP
// status codes. Every client-visible failure is one of these kinds; handlers
// render them all through Render so the wire envelope is always
// {"message": "..."} and internal details never leak.
package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies an API error
type Kind int

const (
	KindMissingParameter Kind = iota
	KindInvalidValue
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindQuotaExceeded
	KindConflict
	KindInternal
)

func (k Kind) status() int {
	switch k {
	case KindMissingParameter, KindInvalidValue:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden, KindQuotaExceeded:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a client-visible API error
type Error struct {
	Kind    Kind
	Message string
	// Err is the wrapped internal cause, logged but never rendered.
	Err error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MissingParameter reports a required parameter that was not supplied
func MissingParameter(message string) *Error {
	return &Error{Kind: KindMissingParameter, Message: message}
}

// InvalidValue reports a parameter whose value failed validation
func InvalidValue(message string) *Error {
	return &Error{Kind: KindInvalidValue, Message: message}
}

// NotFound reports a missing or inaccessible resource
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Unauthorized reports an unknown or absent credential
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden reports a credential lacking the required tier
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// QuotaExceeded reports a key over its daily request quota
func QuotaExceeded(message string) *Error {
	return &Error{Kind: KindQuotaExceeded, Message: message}
}

// Conflict reports a state transition that lost to a concurrent one
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Internal wraps an unexpected failure. The cause is retained for logging;
// the client sees only a generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "An internal error occurred.", Err: err}
}

// Render writes the error envelope and aborts the request. Non-taxonomy
// errors are treated as internal and logged with their cause.
func Render(c *gin.Context, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = Internal(err)
	}

	if apiErr.Kind == KindInternal {
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", errors.Unwrap(apiErr),
		)
	}

	c.AbortWithStatusJSON(apiErr.Kind.status(), gin.H{"message": apiErr.Message})
}
