// internal/hikvision/errors.go
package hikvision

import (
	"errors"
	"fmt"
)

// Parser and session errors. All of them are recoverable at the session
// layer: they terminate the current connection, which then retries.

// RootNodeIncorrectError reports an XML document whose root element is not
// the one the endpoint is documented to return.
type RootNodeIncorrectError struct {
	Name string
}

func (e *RootNodeIncorrectError) Error() string {
	return fmt.Sprintf("returned root node invalid: %s", e.Name)
}

// FieldMissingError reports a required element that was absent.
type FieldMissingError struct {
	Field string
}

func (e *FieldMissingError) Error() string {
	return fmt.Sprintf("field was expected but missing: %s", e.Field)
}

// NumberExpectedError reports a numeric field that failed to parse.
type NumberExpectedError struct {
	Field string
	Err   error
}

func (e *NumberExpectedError) Error() string {
	return fmt.Sprintf("%s should be a number: %v", e.Field, e.Err)
}

func (e *NumberExpectedError) Unwrap() error { return e.Err }

// EventTypeInvalidError reports a malformed eventType value.
type EventTypeInvalidError struct {
	Provided string
	Err      error
}

func (e *EventTypeInvalidError) Error() string {
	return fmt.Sprintf("event type %q was incorrectly formatted: %v", e.Provided, e.Err)
}

func (e *EventTypeInvalidError) Unwrap() error { return e.Err }

// EventStateInvalidError reports an eventState that is neither active nor
// inactive.
type EventStateInvalidError struct {
	Found string
}

func (e *EventStateInvalidError) Error() string {
	return fmt.Sprintf("event state should be active / inactive, got: %s", e.Found)
}

// InvalidChildError reports an unexpected child node in a list container.
type InvalidChildError struct {
	Expected string
	Found    string
}

func (e *InvalidChildError) Error() string {
	return fmt.Sprintf("child node in XML invalid: expected %s, found %s", e.Expected, e.Found)
}

// AuthError reports a failed digest authentication exchange, including the
// camera unexpectedly allowing anonymous access.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("could not authenticate with camera: %s", e.Reason)
}

// StreamInvalidError reports a broken alert stream: bad content type,
// missing multipart boundary, framing error or non-UTF-8 part body.
type StreamInvalidError struct {
	Reason string
	Err    error
}

func (e *StreamInvalidError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stream could not be resolved to a multipart form: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("stream could not be resolved to a multipart form: %s", e.Reason)
}

func (e *StreamInvalidError) Unwrap() error { return e.Err }

// ErrConnectionClosed marks an orderly end of the alert stream.
var ErrConnectionClosed = errors.New("camera closed connection")
