package packet

import (
	"github.com/opd-ai/voxchatter/limits"
)

const (
	// MagicByte0 and MagicByte1 open every voxchatter frame.
	MagicByte0 byte = 0x7A
	MagicByte1 byte = 0x39

	// Version is the only frame version this codec reads or writes.
	Version byte = 0x01

	// MinFrameSize covers magic, version and flags.
	MinFrameSize = 4
)

// Header flag bits.
const (
	FlagCompressed byte = 0x01
	FlagSigned     byte = 0x02
)

// Header is the decoded fixed part of a frame.
type Header struct {
	Version         byte
	Compressed      bool
	Signed          bool
	SignatureLength int // valid only when Signed
}

// Flags builds the flag byte.
func (h Header) Flags() byte {
	var flags byte
	if h.Compressed {
		flags |= FlagCompressed
	}
	if h.Signed {
		flags |= FlagSigned
	}
	return flags
}

// Encode returns the header bytes. The length byte is written only for
// signed frames; a 256 byte signature wraps to 0x00.
func (h Header) Encode() []byte {
	buf := []byte{MagicByte0, MagicByte1, h.Version, h.Flags()}
	if h.Signed {
		buf = append(buf, byte(h.SignatureLength))
	}
	return buf
}

// Size is the encoded header length.
func (h Header) Size() int {
	if h.Signed {
		return MinFrameSize + 1
	}
	return MinFrameSize
}

// hasFlag reports (flags & mask) == mask.
func hasFlag(flags, mask byte) bool {
	return flags&mask == mask
}

// decodeSignatureLength maps the wire length byte back to a length.
func decodeSignatureLength(b byte) int {
	if b == 0 {
		return limits.MaxSignatureSize
	}
	return int(b)
}
