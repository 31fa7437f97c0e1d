package client

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBaseURL is returned when a catalogue URL option is invalid.
	ErrInvalidBaseURL = errors.New("client: invalid catalogue URL")
	// ErrNilHTTPClient indicates a nil HTTP client was provided.
	ErrNilHTTPClient = errors.New("client: http client cannot be nil")
)

// APIError represents a catalogue HTTP failure.
type APIError struct {
	Status int    `json:"status"`
	URL    string `json:"url"`
	Raw    []byte `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("client: api error status=%d url=%s", e.Status, e.URL)
}

// Temporary reports whether the error may be retried.
func (e *APIError) Temporary() bool {
	if e == nil {
		return false
	}
	return e.Status >= 500 && e.Status < 600
}
