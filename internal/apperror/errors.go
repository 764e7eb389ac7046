// Package apperror defines the error type handlers translate into HTTP
// responses.
package apperror

import (
	"errors"
	"net/http"
)

// Error is a failure that already knows how it should look on the wire.
type Error struct {
	Status  int
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// With attaches a detail field that is rendered next to "message".
func (e *Error) With(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Body returns the JSON envelope for the error.
func (e *Error) Body() map[string]any {
	body := map[string]any{"message": e.Message}
	for k, v := range e.Details {
		body[k] = v
	}
	return body
}

func New(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

func BadRequest(msg string) *Error { return New(http.StatusBadRequest, msg) }

// Validation reports every violated rule under "details".
func Validation(details []string) *Error {
	return BadRequest("Validation error").With("details", details)
}

func Unauthorized(msg string) *Error { return New(http.StatusUnauthorized, msg) }

func Forbidden(msg string) *Error { return New(http.StatusForbidden, msg) }

func NotFound(msg string) *Error { return New(http.StatusNotFound, msg) }

func Conflict(msg string) *Error { return New(http.StatusConflict, msg) }

func TooManyRequests(msg string) *Error { return New(http.StatusTooManyRequests, msg) }

// Internal wraps an unexpected failure. The cause is reported to the client
// as "error" next to a generic message.
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Server error", Err: err}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Response renders any error as a status and JSON body. Errors outside
// the taxonomy become a generic 500 carrying the error text.
func Response(err error) (int, map[string]any) {
	e, ok := As(err)
	if !ok {
		e = Internal(err)
	}
	body := e.Body()
	if e.Status >= http.StatusInternalServerError && e.Err != nil {
		body["error"] = e.Err.Error()
	}
	return e.Status, body
}
