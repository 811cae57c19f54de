package client

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrMalformedResponse means a 2xx body could not be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// IsTransient reports whether err is a failed fetch (a transport error or a
// non-2xx status) that may succeed when retried by the user.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, ErrMalformedResponse) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
