package scraper

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetworkError indicates the site could not be reached.
	ErrNetworkError = errors.New("network error fetching study site")

	// ErrNoEntryPage indicates that none of the entry pages could be fetched.
	ErrNoEntryPage = errors.New("no entry page reachable")
)

// HTTPError is returned for any non-200 response.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// IsRetryable reports whether a failed fetch is worth another attempt.
// Network failures, 429 and 5xx responses are retried; other statuses are not.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrNetworkError) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	return false
}

// IsNotFound reports whether the page does not exist.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}
