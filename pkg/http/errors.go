package http

import (
	"fmt"
	"net/http"
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Temporary reports whether the status is worth retrying: 5xx, 408 and 429.
func (e *StatusError) Temporary() bool {
	switch {
	case e.StatusCode >= 500:
		return true
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

// DecodeError is a 2xx response whose body could not be decoded. It is
// always retried: the upstream occasionally serves truncated payloads.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode json from %s: %v", e.URL, e.Err)
}

// Unwrap returns underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Temporary always reports true.
func (e *DecodeError) Temporary() bool { return true }

// AppError represents an error returned by the status server.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// ServiceUnavailableError creates a 503 error.
func ServiceUnavailableError(message string, err error) *AppError {
	return &AppError{Code: "ERR_UNAVAILABLE", Message: message, Status: http.StatusServiceUnavailable, Err: err}
}
