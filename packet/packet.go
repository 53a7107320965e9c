package packet

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/opd-ai/voxchatter/ax25"
	"github.com/opd-ai/voxchatter/compression"
	"github.com/opd-ai/voxchatter/limits"
)

// Packet is one assembled or disassembled chat frame. It is not modified
// after Assemble or Disassemble returns.
type Packet struct {
	Header    Header
	From      ax25.Station
	To        ax25.Station
	Message   string
	Signature []byte // nil when unsigned
	Raw       []byte // the complete frame
}

// IsSigned reports whether the frame carried a signature.
func (p *Packet) IsSigned() bool {
	return p.Header.Signed
}

// Assemble builds a frame for message. A nil or empty signature produces an
// unsigned frame; signatures over limits.MaxSignatureSize are rejected with
// limits.ErrSignatureTooLarge.
func Assemble(from, to ax25.Station, message string, signature []byte) (*Packet, error) {
	if err := limits.ValidateSignature(signature); err != nil {
		return nil, err
	}

	header := Header{Version: Version}
	if len(signature) > 0 {
		header.Signed = true
		header.SignatureLength = len(signature)
	}

	payload, compressed, err := compression.CompressIfSmaller([]byte(message))
	if err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	header.Compressed = compressed

	raw := make([]byte, 0, header.Size()+len(signature)+len(payload))
	raw = append(raw, header.Encode()...)
	raw = append(raw, signature...)
	raw = append(raw, payload...)

	p := &Packet{
		Header:  header,
		From:    from,
		To:      to,
		Message: message,
		Raw:     raw,
	}
	if header.Signed {
		p.Signature = append([]byte(nil), signature...)
	}
	return p, nil
}

// Disassemble parses frame. from and to come from the link layer; the frame
// itself carries no addressing.
func Disassemble(from, to ax25.Station, frame []byte) (*Packet, error) {
	if len(frame) < MinFrameSize {
		return nil, newCodecError(KindTooShort, fmt.Sprintf("%d bytes", len(frame)), nil)
	}
	if frame[0] != MagicByte0 || frame[1] != MagicByte1 {
		return nil, newCodecError(KindBadMagic, fmt.Sprintf("0x%02x%02x", frame[0], frame[1]), nil)
	}
	if frame[2] != Version {
		return nil, newCodecError(KindUnsupportedVersion, fmt.Sprintf("version %d", frame[2]), nil)
	}

	flags := frame[3]
	header := Header{
		Version:    frame[2],
		Compressed: hasFlag(flags, FlagCompressed),
		Signed:     hasFlag(flags, FlagSigned),
	}

	offset := MinFrameSize
	var signature []byte
	if header.Signed {
		if len(frame) <= offset {
			return nil, newCodecError(KindTruncated, "missing signature length", nil)
		}
		header.SignatureLength = decodeSignatureLength(frame[offset])
		offset++
		if len(frame) < offset+header.SignatureLength {
			return nil, newCodecError(KindTruncated,
				fmt.Sprintf("signature length %d exceeds %d remaining bytes", header.SignatureLength, len(frame)-offset), nil)
		}
		signature = append([]byte(nil), frame[offset:offset+header.SignatureLength]...)
		offset += header.SignatureLength
	}

	body := frame[offset:]
	if header.Compressed {
		inflated, err := compression.Decompress(body)
		if err != nil {
			return nil, newCodecError(KindCorruptPayload, "", err)
		}
		body = inflated
	}

	raw := append([]byte(nil), frame...)
	return &Packet{
		Header:    header,
		From:      from,
		To:        to,
		Message:   decodeText(body),
		Signature: signature,
		Raw:       raw,
	}, nil
}

// decodeText converts body to a string, replacing invalid UTF-8 sequences
// with U+FFFD.
func decodeText(body []byte) string {
	if utf8.Valid(body) {
		return string(body)
	}
	return strings.ToValidUTF8(string(body), string(utf8.RuneError))
}
