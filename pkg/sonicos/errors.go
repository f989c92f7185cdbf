package sonicos

import (
	"errors"
	"fmt"
	"net"
)

var (
	// ErrNotFound is returned when a named object does not exist on the device.
	ErrNotFound = errors.New("object not found")
	// ErrConflict is returned when creating an object whose name is taken.
	ErrConflict = errors.New("object already exists")
	// ErrAuth is returned when the device rejects the login request.
	ErrAuth = errors.New("authentication failed")
	// ErrLoginBlocked is returned instead of contacting the device after
	// too many rejected logins.
	ErrLoginBlocked = errors.New("login temporarily blocked after repeated failures")
	// ErrTransport marks network, TLS and timeout failures.
	ErrTransport = errors.New("transport failure")
	// ErrUnexpectedStatus marks any other non-200 response to a write.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrUnimplemented is returned by operations the client does not support.
	ErrUnimplemented = errors.New("operation not supported")
	// ErrCommitFailed means the write succeeded but the pending changes
	// could not be committed; the change is staged only.
	ErrCommitFailed = errors.New("commit of pending changes failed")
	// ErrInvalidKind is returned for an address kind outside ipv4/ipv6/mac/fqdn.
	ErrInvalidKind = errors.New("invalid address kind")
)

// StatusError describes a request answered with a status that maps to one
// of the sentinel errors above.
type StatusError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %v (status %d)", e.Op, e.URL, e.Err, e.Status)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure below HTTP: DNS, connect, TLS, timeout.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports ErrTransport as a match so callers need not know the concrete type.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Timeout reports whether the failure was a timeout.
func (e *TransportError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// StatusCode extracts the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status, true
	}
	return 0, false
}

func statusError(op, url string, status int, kind error) *StatusError {
	return &StatusError{Op: op, URL: url, Status: status, Err: kind}
}
