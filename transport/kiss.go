package transport

import (
	"bufio"
	"fmt"
	"io"

	"github.com/opd-ai/voxchatter/limits"
)

// KISS special bytes.
const (
	FEND  byte = 0xC0
	FESC  byte = 0xDB
	TFEND byte = 0xDC
	TFESC byte = 0xDD
)

// CommandData is the KISS data frame command for port 0.
const CommandData byte = 0x00

// EncodeKISS wraps data in a KISS data frame for port 0.
func EncodeKISS(data []byte) []byte {
	buf := make([]byte, 0, len(data)+4)
	buf = append(buf, FEND, CommandData)
	for _, b := range data {
		switch b {
		case FEND:
			buf = append(buf, FESC, TFEND)
		case FESC:
			buf = append(buf, FESC, TFESC)
		default:
			buf = append(buf, b)
		}
	}
	return append(buf, FEND)
}

// KISSDecoder reads KISS data frames from a byte stream.
type KISSDecoder struct {
	r *bufio.Reader
}

// NewKISSDecoder returns a decoder reading from r.
func NewKISSDecoder(r io.Reader) *KISSDecoder {
	return &KISSDecoder{r: bufio.NewReader(r)}
}

// ReadFrame returns the next data frame without its command byte. Empty
// frames, frames for other commands or ports, and oversized frames are
// skipped. The error is the underlying read error, io.EOF at end of stream.
func (d *KISSDecoder) ReadFrame() ([]byte, error) {
	for {
		frame, err := d.readRaw()
		if err != nil {
			return nil, err
		}
		if frame == nil || len(frame) < 2 || frame[0] != CommandData {
			continue
		}
		return frame[1:], nil
	}
}

// readRaw returns the unescaped bytes between two FENDs. It returns a nil
// frame for content that had to be discarded.
func (d *KISSDecoder) readRaw() ([]byte, error) {
	var frame []byte
	escaped := false
	oversize := false
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return nil, err
		}

		switch {
		case b == FEND:
			if oversize {
				return nil, nil
			}
			if len(frame) == 0 {
				continue
			}
			return frame, nil
		case escaped:
			escaped = false
			switch b {
			case TFEND:
				b = FEND
			case TFESC:
				b = FESC
			}
		case b == FESC:
			escaped = true
			continue
		}

		if len(frame) >= limits.MaxKISSFrame {
			oversize = true
			frame = frame[:0]
			continue
		}
		if !oversize {
			frame = append(frame, b)
		}
	}
}

// validateFrameSize checks an unescaped frame against limits.MaxKISSFrame.
func validateFrameSize(frame []byte) error {
	if len(frame) > limits.MaxKISSFrame {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(frame))
	}
	return nil
}
