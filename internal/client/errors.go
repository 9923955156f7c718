package client

import (
	"fmt"
	"net/http"
)

// StatusError is a non-2xx upstream response
type StatusError struct {
	Provider   string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d for %s: %s", e.Provider, e.StatusCode, e.URL, e.Body)
}

// Retryable reports whether the status is transient: timeouts, throttling,
// and server errors. Other 4xx responses will not change on retry.
func (e *StatusError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return true
	}
	return e.StatusCode >= 500
}
