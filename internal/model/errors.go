package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoDocument means a user has no CV document stored. The user is
// skipped for the current item; this is not a pipeline failure.
var ErrNoDocument = errors.New("no document for user")

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
