package packet

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/voxchatter/ax25"
	"github.com/opd-ai/voxchatter/limits"
)

var (
	testFrom = ax25.Station{Callsign: "KC3LZO", SSID: 1}
	testTo   = ax25.Broadcast
)

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

// randomText returns n bytes of printable ASCII that deflate cannot shrink much.
func randomText(t *testing.T, n int) string {
	t.Helper()
	const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	var sb strings.Builder
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		require.NoError(t, err)
		sb.WriteByte(alphabet[idx.Int64()])
	}
	return sb.String()
}

func TestAssembleDisassembleRoundTrip(t *testing.T) {
	messages := map[string]string{
		"empty":            "",
		"short":            "hi",
		"emoji":            "🤑",
		"repetitive":       "This message is a " + strings.Repeat("z", 40) + " test!",
		"large text":       strings.Repeat("CQ CQ CQ de KC3LZO ", 500),
		"max size":         strings.Repeat("a", 10000),
		"random printable": randomText(t, 300),
	}
	signatureSizes := []int{0, 1, 71, 255, limits.MaxSignatureSize}

	for name, msg := range messages {
		for _, sigSize := range signatureSizes {
			t.Run(fmt.Sprintf("%s/sig%d", name, sigSize), func(t *testing.T) {
				var sig []byte
				if sigSize > 0 {
					sig = randomBytes(t, sigSize)
				}

				assembled, err := Assemble(testFrom, testTo, msg, sig)
				require.NoError(t, err)

				got, err := Disassemble(testFrom, testTo, assembled.Raw)
				require.NoError(t, err)

				assert.Equal(t, msg, got.Message)
				assert.Equal(t, assembled.Header, got.Header)
				assert.Equal(t, sigSize > 0, got.IsSigned())
				if sigSize > 0 {
					assert.Equal(t, sig, got.Signature)
				} else {
					assert.Nil(t, got.Signature)
				}
				assert.Equal(t, testFrom, got.From)
				assert.Equal(t, testTo, got.To)
			})
		}
	}
}

func TestAssembleCompressionSelection(t *testing.T) {
	t.Run("short random text is sent raw", func(t *testing.T) {
		msg := randomText(t, 12)
		p, err := Assemble(testFrom, testTo, msg, nil)
		require.NoError(t, err)

		assert.False(t, p.Header.Compressed)
		assert.Equal(t, byte(0), p.Raw[3]&FlagCompressed)
		assert.Equal(t, []byte(msg), p.Raw[MinFrameSize:])
	})

	t.Run("repetitive text is compressed", func(t *testing.T) {
		msg := strings.Repeat("hello ", 100)
		p, err := Assemble(testFrom, testTo, msg, nil)
		require.NoError(t, err)

		assert.True(t, p.Header.Compressed)
		assert.Equal(t, FlagCompressed, p.Raw[3]&FlagCompressed)
		assert.Less(t, len(p.Raw), len(msg))
	})

	t.Run("signature is not compressed", func(t *testing.T) {
		sig := bytes.Repeat([]byte{0xAA}, 70)
		p, err := Assemble(testFrom, testTo, strings.Repeat("x", 200), sig)
		require.NoError(t, err)

		assert.True(t, p.Header.Compressed)
		assert.Equal(t, sig, p.Raw[5:5+len(sig)])
	})
}

func TestAssembleWireLayout(t *testing.T) {
	sig := []byte{0x30, 0x01, 0x02}
	p, err := Assemble(testFrom, testTo, "ab", sig)
	require.NoError(t, err)

	want := []byte{0x7A, 0x39, 0x01, FlagSigned, 0x03, 0x30, 0x01, 0x02, 'a', 'b'}
	assert.Equal(t, want, p.Raw)

	unsigned, err := Assemble(testFrom, testTo, "ab", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x7A, 0x39, 0x01, 0x00, 'a', 'b'}, unsigned.Raw)
}

func TestAssembleSignatureSizeBound(t *testing.T) {
	_, err := Assemble(testFrom, testTo, "hello", make([]byte, 257))
	require.Error(t, err)
	assert.EqualError(t, err, "signature is larger than 256 bytes")

	p, err := Assemble(testFrom, testTo, "hello", bytes.Repeat([]byte{1}, 256))
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), p.Raw[4], "a 256 byte signature wraps the length byte")
	assert.Equal(t, 256, p.Header.SignatureLength)
}

func TestDisassembleInvalidFrames(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind ErrorKind
	}{
		{"empty", nil, KindTooShort},
		{"three bytes", []byte{0x7A, 0x39, 0x01}, KindTooShort},
		{"wrong magic", []byte{0x7A, 0x38, 0x01, 0x00, 'h'}, KindBadMagic},
		{"plain text", []byte("!4903.50N/07201.75W-"), KindBadMagic},
		{"version zero", []byte{0x7A, 0x39, 0x00, 0x00}, KindUnsupportedVersion},
		{"version two", []byte{0x7A, 0x39, 0x02, 0x00, 'h'}, KindUnsupportedVersion},
		{"signed without length", []byte{0x7A, 0x39, 0x01, FlagSigned}, KindTruncated},
		{"signature past end", []byte{0x7A, 0x39, 0x01, FlagSigned, 0x10, 0x01}, KindTruncated},
		{"corrupt deflate", []byte{0x7A, 0x39, 0x01, FlagCompressed, 0xFF, 0xFF}, KindCorruptPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Disassemble(testFrom, testTo, tt.data)
			require.Error(t, err)
			assert.True(t, IsInvalidPacket(err))
			assert.ErrorIs(t, err, ErrInvalidPacket)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestDisassembleEmptyMessage(t *testing.T) {
	p, err := Disassemble(testFrom, testTo, []byte{0x7A, 0x39, 0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(t, "", p.Message)
	assert.False(t, p.IsSigned())
}

func TestDisassembleIgnoresUnknownFlagBits(t *testing.T) {
	p, err := Disassemble(testFrom, testTo, []byte{0x7A, 0x39, 0x01, 0xF0, 'o', 'k'})
	require.NoError(t, err)
	assert.False(t, p.Header.Compressed)
	assert.False(t, p.Header.Signed)
	assert.Equal(t, "ok", p.Message)
}

func TestDisassembleReplacesInvalidUTF8(t *testing.T) {
	p, err := Disassemble(testFrom, testTo, []byte{0x7A, 0x39, 0x01, 0x00, 'a', 0xFF, 'b'})
	require.NoError(t, err)
	assert.Equal(t, "a�b", p.Message)
}

func TestDisassembleCopiesInput(t *testing.T) {
	frame := []byte{0x7A, 0x39, 0x01, FlagSigned, 0x01, 0x55, 'm'}
	p, err := Disassemble(testFrom, testTo, frame)
	require.NoError(t, err)

	frame[5] = 0x00
	assert.Equal(t, []byte{0x55}, p.Signature)
	assert.Equal(t, byte(0x55), p.Raw[5])
}

func TestCodecErrorMessage(t *testing.T) {
	_, err := Disassemble(testFrom, testTo, []byte{1})
	assert.EqualError(t, err, "invalid packet: too short: 1 bytes")
	assert.Equal(t, ErrorKind(0), KindOf(assert.AnError))
}
