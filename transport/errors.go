package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a closed transport.
	ErrClosed = errors.New("transport closed")

	// ErrNotOpen is returned by Send before Open succeeded.
	ErrNotOpen = errors.New("transport not open")

	// ErrOpenTimeout is returned when the TNC does not answer in time.
	ErrOpenTimeout = errors.New("timed out opening transport")

	// ErrFrameTooLarge is returned for frames over limits.MaxKISSFrame.
	ErrFrameTooLarge = errors.New("kiss frame too large")
)

// TransportError is a channel failure with the operation and address it
// happened on.
type TransportError struct {
	Op   string // "open", "send", "read" or "close"
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("kiss %s %s: %v", e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("kiss %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func newTransportError(op, addr string, err error) *TransportError {
	return &TransportError{
		Op:   op,
		Addr: addr,
		Err:  err,
	}
}
