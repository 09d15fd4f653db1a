package api

import (
	"errors"
	"fmt"
)

// StatusError is returned when the transport succeeded but the server
// answered outside the 2xx range. Payload holds the decoded response body so
// callers can surface server-side validation detail.
type StatusError struct {
	Code    int
	Payload any
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d", e.Code)
}

func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// DecodeError is returned when a successful response does not match the
// expected shape.
type DecodeError struct {
	Schema string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Schema == "" {
		return fmt.Sprintf("decode response: %v", e.Err)
	}
	return fmt.Sprintf("decode response as %s: %v", e.Schema, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
