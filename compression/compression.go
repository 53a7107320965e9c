// Package compression implements the payload codec used by voxchatter frames:
// a bare raw deflate stream at the best compression level, with no zlib or
// gzip container. The frame header tracks whether a payload is compressed,
// so the stream carries no metadata of its own.
package compression

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/opd-ai/voxchatter/limits"
)

// ErrCorrupt is returned when a payload cannot be inflated.
var ErrCorrupt = errors.New("corrupt deflate stream")

// Compress deflates data at flate.BestCompression.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress inflates a raw deflate stream produced by Compress. Output is
// capped at limits.MaxProcessingBuffer.
func Decompress(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, limits.MaxProcessingBuffer+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := limits.ValidateProcessingBuffer(out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return out, nil
}

// CompressIfSmaller returns the deflated form of data when it is strictly
// shorter, and data itself otherwise. The boolean reports which was chosen.
func CompressIfSmaller(data []byte) ([]byte, bool, error) {
	compressed, err := Compress(data)
	if err != nil {
		return nil, false, err
	}
	if len(compressed) < len(data) {
		return compressed, true, nil
	}
	return data, false, nil
}
