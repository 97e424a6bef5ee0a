package api

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies backend call failures.
type ErrorKind string

const (
	// KindRejected marks 4xx responses: the server understood the
	// request and refused it. The message is user-facing.
	KindRejected ErrorKind = "rejected"
	// KindNotFound marks 404 responses.
	KindNotFound ErrorKind = "not_found"
	// KindTransient marks 5xx responses and transport failures; the
	// call may be retried.
	KindTransient ErrorKind = "transient"
	// KindTimeout marks calls that exceeded their deadline.
	KindTimeout ErrorKind = "timeout"
)

// Error describes a failed backend call.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("backend %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("backend %s (%d)", e.Kind, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is worth retrying.
func (e *Error) Retryable() bool {
	return e.Kind == KindTransient || e.Kind == KindTimeout
}

// wrapTransportError classifies a transport-level failure.
func wrapTransportError(err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: KindTimeout, Err: err}
	default:
		return &Error{Kind: KindTransient, Err: err}
	}
}

// statusError classifies a non-2xx response.
func statusError(status int, message string) *Error {
	kind := KindTransient
	switch {
	case status == 404:
		kind = KindNotFound
	case status >= 400 && status < 500:
		kind = KindRejected
	}
	return &Error{Kind: kind, Status: status, Message: message}
}
