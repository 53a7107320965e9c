package ax25

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ControlUI is the control field of an unnumbered information frame.
	ControlUI byte = 0x03

	// PIDNoLayer3 marks an information field with no layer 3 protocol.
	PIDNoLayer3 byte = 0xF0

	addressLength  = 7
	maxAddresses   = 10 // destination, source and up to eight digipeaters
	minFrameLength = 2*addressLength + 2

	ssidMask     = 0x1E
	extensionBit = 0x01
	reservedBits = 0x60
	commandBit   = 0x80
	pollFinalBit = 0x10
	spacePadding = ' '
)

// ErrInvalidFrame indicates bytes that are not a decodable AX.25 UI frame.
var ErrInvalidFrame = errors.New("invalid AX.25 frame")

// Frame is a decoded AX.25 UI frame.
type Frame struct {
	Destination Station
	Source      Station
	Digipeaters []Station
	Control     byte
	PID         byte
	Info        []byte
}

// EncodeUI assembles a command UI frame from src to dst carrying info.
func EncodeUI(dst, src Station, info []byte) ([]byte, error) {
	if err := dst.Validate(); err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	buf := make([]byte, 0, minFrameLength+len(info))
	buf = appendAddress(buf, dst, commandBit, false)
	buf = appendAddress(buf, src, 0, true)
	buf = append(buf, ControlUI, PIDNoLayer3)
	buf = append(buf, info...)
	return buf, nil
}

func appendAddress(buf []byte, st Station, flags byte, last bool) []byte {
	padded := st.Callsign + strings.Repeat(string(spacePadding), 6-len(st.Callsign))
	for i := 0; i < 6; i++ {
		buf = append(buf, padded[i]<<1)
	}
	ssid := flags | reservedBits | (st.SSID<<1)&ssidMask
	if last {
		ssid |= extensionBit
	}
	return append(buf, ssid)
}

// Decode parses a UI frame. Stations come back with padding trimmed.
func Decode(data []byte) (*Frame, error) {
	if len(data) < minFrameLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidFrame, len(data))
	}

	var addrs []Station
	offset := 0
	for {
		if len(addrs) == maxAddresses || offset+addressLength > len(data) {
			return nil, fmt.Errorf("%w: unterminated address field", ErrInvalidFrame)
		}
		st, err := decodeAddress(data[offset : offset+addressLength])
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, st)
		last := data[offset+addressLength-1]&extensionBit != 0
		offset += addressLength
		if last {
			break
		}
	}
	if len(addrs) < 2 {
		return nil, fmt.Errorf("%w: missing source address", ErrInvalidFrame)
	}

	// control + PID must follow the address field
	if offset+2 > len(data) {
		return nil, fmt.Errorf("%w: truncated after address field", ErrInvalidFrame)
	}
	control := data[offset]
	if control&^pollFinalBit != ControlUI {
		return nil, fmt.Errorf("%w: not a UI frame (control 0x%02x)", ErrInvalidFrame, control)
	}

	info := make([]byte, len(data)-offset-2)
	copy(info, data[offset+2:])

	return &Frame{
		Destination: addrs[0],
		Source:      addrs[1],
		Digipeaters: addrs[2:],
		Control:     control,
		PID:         data[offset+1],
		Info:        info,
	}, nil
}

func decodeAddress(field []byte) (Station, error) {
	var sb strings.Builder
	for i := 0; i < 6; i++ {
		c := field[i] >> 1
		if c == spacePadding {
			continue
		}
		sb.WriteByte(c)
	}
	st := Station{Callsign: sb.String(), SSID: (field[6] & ssidMask) >> 1}
	if !IsCallsign(st.Callsign) {
		return Station{}, fmt.Errorf("%w: bad callsign in address field", ErrInvalidFrame)
	}
	return st, nil
}
