package geektime

import (
	"errors"
	"fmt"
)

// Static error definitions for better error handling.
var (
	// ErrAuthFailed indicates the login endpoint rejected the configured credentials.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrCourseNotFound indicates the requested course has no articles visible to the account.
	ErrCourseNotFound = errors.New("course not found")
	// ErrInvalidCourseID indicates the API knows no course under the given ID.
	ErrInvalidCourseID = errors.New("invalid course ID")
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
)

// TransportError reports a failure to reach the API: a network-level error
// or a response outside the expected HTTP status. The retry layer reacts to
// this error by refreshing the session and replaying the request once.
type TransportError struct {
	// URL is the address the request was sent to.
	URL string
	// StatusCode is the HTTP status for unexpected responses, zero for network errors.
	StatusCode int
	// Err is the underlying network error, if any.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request to %s returned HTTP %d", e.URL, e.StatusCode)
	}

	if e.Err != nil {
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}

	return fmt.Sprintf("request to %s failed", e.URL)
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError reports a business-level rejection: the response envelope carried
// a nonzero code, or the response was not usable. The retry layer never
// replays these.
type APIError struct {
	// Code is the envelope code reported by the server, zero when unknown.
	Code int64
	// Message is the server-supplied error message, if any.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	message := e.Message
	if message == "" && e.Err != nil {
		message = e.Err.Error()
	}

	switch {
	case e.Code != 0 && message != "":
		return fmt.Sprintf("API error (code %d): %s", e.Code, message)
	case e.Code != 0:
		return fmt.Sprintf("API error (code %d)", e.Code)
	case message != "":
		return "API error: " + message
	default:
		return "API error"
	}
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Err
}
