package chunkservice

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TimeoutError means the call exceeded its deadline before a response arrived.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("%s: timed out: %v", e.Op, e.Err) }
func (e *TimeoutError) Unwrap() error { return e.Err }

// TransportError means the request went out but nothing came back:
// connection refused, DNS failure, reset.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: no response: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError is a non-2xx response. Message carries the server's own
// message when it sent one, otherwise the HTTP status text.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service responded %d: %s", e.StatusCode, e.Message)
}

// FormatError is a 2xx response whose body lacks a usable chunks list.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return "invalid response format: " + e.Reason }

func classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Op: op, Err: err}
	}
	return &TransportError{Op: op, Err: err}
}
