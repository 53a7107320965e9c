package packet

import (
	"errors"
	"fmt"
)

// ErrInvalidPacket matches every *CodecError.
var ErrInvalidPacket = errors.New("invalid packet")

// ErrorKind classifies why a frame was rejected.
type ErrorKind uint8

const (
	// KindTooShort means the frame is shorter than the fixed header.
	KindTooShort ErrorKind = iota + 1
	// KindBadMagic means the frame is not a voxchatter frame.
	KindBadMagic
	// KindUnsupportedVersion means the version byte is not 1.
	KindUnsupportedVersion
	// KindTruncated means the signature runs past the end of the frame.
	KindTruncated
	// KindCorruptPayload means the compressed payload does not inflate.
	KindCorruptPayload
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTooShort:
		return "too short"
	case KindBadMagic:
		return "bad magic"
	case KindUnsupportedVersion:
		return "unsupported version"
	case KindTruncated:
		return "truncated"
	case KindCorruptPayload:
		return "corrupt payload"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// CodecError is a classified frame rejection.
type CodecError struct {
	Kind   ErrorKind
	Detail string
	Err    error // underlying error, if any
}

func (e *CodecError) Error() string {
	msg := fmt.Sprintf("invalid packet: %s", e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// Is makes every CodecError match ErrInvalidPacket.
func (e *CodecError) Is(target error) bool {
	return target == ErrInvalidPacket
}

// IsInvalidPacket reports whether err is a frame rejection.
func IsInvalidPacket(err error) bool {
	return errors.Is(err, ErrInvalidPacket)
}

// KindOf returns the ErrorKind of err, or 0 when err is not a CodecError.
func KindOf(err error) ErrorKind {
	var ce *CodecError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

func newCodecError(kind ErrorKind, detail string, err error) *CodecError {
	return &CodecError{Kind: kind, Detail: detail, Err: err}
}
