package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a call-level failure at the orchestration boundary.
type ErrorKind string

const (
	// ErrorTransport covers connection failures: refused, reset, DNS.
	ErrorTransport ErrorKind = "transport"
	// ErrorTimeout is returned when a call exceeds its configured wait bound.
	ErrorTimeout ErrorKind = "timeout"
	// ErrorProtocol covers malformed framing, e.g. a stream closed before
	// its Done sentinel was observed.
	ErrorProtocol ErrorKind = "protocol"
	// ErrorUpstream is a failure the agent service itself reported through a
	// well-formed error event or error document.
	ErrorUpstream ErrorKind = "upstream"
)

// CallError is a classified, structured call failure. Orchestrators return it
// inside results instead of propagating raw errors past the call boundary.
type CallError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	cause   error
}

// NewCallError builds a CallError from a formatted message.
func NewCallError(kind ErrorKind, format string, args ...any) *CallError {
	return &CallError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapCallError classifies an underlying error, preserving it for errors.Is /
// errors.As traversal.
func WrapCallError(kind ErrorKind, err error) *CallError {
	return &CallError{Kind: kind, Message: err.Error(), cause: err}
}

// Error implements the error interface.
func (e *CallError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

// Unwrap exposes the wrapped cause, if any.
func (e *CallError) Unwrap() error { return e.cause }

// AsCallError extracts a CallError from an error chain.
func AsCallError(err error) (*CallError, bool) {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
