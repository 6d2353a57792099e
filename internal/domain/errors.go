package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the dashboard. Check them with errors.Is.
var (
	ErrUnknownEndpoint = errors.New("unknown webhook endpoint")
	ErrUnknownAction   = errors.New("unknown action")
	// ErrActionAborted is returned when a required input was left empty.
	// Nothing was sent and nothing should be shown to the user.
	ErrActionAborted = errors.New("action aborted: missing input")
)

// TransportError reports a webhook call that did not produce a 2xx response.
// Either Status is set (the server answered) or Err is (it never did).
type TransportError struct {
	Endpoint EndpointKey
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("webhook %s: transport failure: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("webhook %s: HTTP error! status: %d", e.Endpoint, e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response body that was not valid JSON for the target.
type DecodeError struct {
	Endpoint EndpointKey
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("webhook %s: malformed response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
