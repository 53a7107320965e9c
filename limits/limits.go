package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxSignatureSize is the largest signature a frame may carry.
	MaxSignatureSize = 256

	// MaxKISSFrame bounds a single reassembled KISS data frame.
	MaxKISSFrame = 4096

	// AX25UIOverhead is the size of the two address fields, control and PID
	// of an AX.25 UI frame without digipeaters.
	AX25UIOverhead = 16

	// MaxFramePayload is the largest voxchatter frame one UI frame carries.
	MaxFramePayload = MaxKISSFrame - AX25UIOverhead

	// MaxProcessingBuffer is the absolute maximum for any decoded buffer (1MB).
	MaxProcessingBuffer = 1024 * 1024

	// MaxCallsignLength is the AX.25 address field limit for a callsign.
	MaxCallsignLength = 6

	// MaxSSID is the highest secondary station identifier AX.25 can address.
	MaxSSID = 15
)

var (
	// ErrFrameTooLarge is returned for frames that do not fit in one UI frame.
	ErrFrameTooLarge = errors.New("frame too large")

	// ErrBufferTooLarge is returned for decoded buffers over MaxProcessingBuffer.
	ErrBufferTooLarge = errors.New("buffer too large")

	// ErrSignatureTooLarge is returned for signatures over MaxSignatureSize.
	// The message text is part of the wire contract with other clients.
	ErrSignatureTooLarge = errors.New("signature is larger than 256 bytes")
)

// ValidateFrameSize checks an assembled frame against MaxFramePayload.
func ValidateFrameSize(frame []byte) error {
	if len(frame) > MaxFramePayload {
		return fmt.Errorf("%w: %d bytes exceeds limit %d", ErrFrameTooLarge, len(frame), MaxFramePayload)
	}
	return nil
}

// ValidateSignature checks a signature against MaxSignatureSize. Empty
// signatures are allowed; the codec treats them as "not signed".
func ValidateSignature(signature []byte) error {
	if len(signature) > MaxSignatureSize {
		return ErrSignatureTooLarge
	}
	return nil
}

// ValidateProcessingBuffer checks decoded data from the air, such as an
// inflated payload, against MaxProcessingBuffer. Empty data is valid.
func ValidateProcessingBuffer(data []byte) error {
	if len(data) > MaxProcessingBuffer {
		return fmt.Errorf("%w: %d bytes exceeds limit %d", ErrBufferTooLarge, len(data), MaxProcessingBuffer)
	}
	return nil
}
