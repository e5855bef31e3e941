package amarodoc

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrBindTarget is returned when a binding target is not a non-nil pointer to a struct.
var ErrBindTarget = errors.New("binding element must be a non-nil pointer")

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code     int
	Message  interface{}
	Internal error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("code=%d, message=%v", e.Code, e.Message)
}

// NewHTTPError creates a new HTTPError.
func NewHTTPError(code int, message ...interface{}) *HTTPError {
	he := &HTTPError{Code: code, Message: http.StatusText(code)}
	if len(message) > 0 {
		he.Message = message[0]
	}
	return he
}

// SetInternal sets the internal error.
func (e *HTTPError) SetInternal(err error) *HTTPError {
	e.Internal = err
	return e
}

// Unwrap returns the internal error.
func (e *HTTPError) Unwrap() error {
	return e.Internal
}

// MissingParameterError reports a parameter that has no value, no default
// and a declared type that does not admit absence.
type MissingParameterError struct {
	Source string
	Name   string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required %s parameter %q", e.Source, e.Name)
}

// BindError reports a parameter value that could not be converted to its field type.
type BindError struct {
	Source string
	Name   string
	Err    error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("invalid %s parameter %q: %v", e.Source, e.Name, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// StatusCode maps err to the status the framework responds with.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	var missing *MissingParameterError
	var bind *BindError
	if errors.As(err, &missing) || errors.As(err, &bind) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
