package crypto

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when a callsign or key does not have the
// expected encoding.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrUnsupportedCurve is returned for key records on a curve other than
// CurveSecp256k1.
var ErrUnsupportedCurve = errors.New("unsupported curve")

// StorageError reports a failure to read, parse or write the keystore file.
type StorageError struct {
	Path string
	Op   string // "read", "parse" or "write"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("keystore %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
