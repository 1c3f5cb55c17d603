package strava

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials is fatal at startup; the client refuses to be
// constructed without an access token.
var ErrMissingCredentials = errors.New("strava: access token is not configured")

// RequestFailedError is a non-429 HTTP error that survived the retry
// budget. Batch callers convert it into a failed-item record.
type RequestFailedError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("strava: request %s failed with status %d: %s", e.Endpoint, e.Status, e.Body)
}

// TransportError is a network-level failure (timeout, connection reset)
// that survived the retry budget.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("strava: transport failure on %s: %s", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
