package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is a non-2xx HTTP response returned by the remote service.
type StatusError struct {
	// Method and URL identify the failed request.
	Method string
	URL    string

	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Body is the response body, limited to the client's read cap.
	Body []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Transient reports whether the failure is worth retrying: rate limiting,
// request timeout, or a 5xx.
func (e *StatusError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout ||
		(e.StatusCode >= 500 && e.StatusCode <= 599)
}

// IsNotFound reports whether err is a [StatusError] with status 404.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}
