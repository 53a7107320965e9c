package crypto

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyPair(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	assert.Equal(t, CurveSecp256k1, kp.Curve)
	assert.Len(t, kp.Public, 66)
	assert.Len(t, kp.Private, 64)
	assert.True(t, kp.IsKeyPair())

	priv, err := ParsePrivateKey(kp.Private)
	require.NoError(t, err)
	assert.Equal(t, kp.Public, hex.EncodeToString(priv.PubKey().SerializeCompressed()))
}

func TestSignAndVerifyWithKey(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	other, err := GenerateKeyPair()
	require.NoError(t, err)

	sig, err := Sign("This is a test message.", kp.Private)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(sig), 72)
	assert.Equal(t, byte(0x30), sig[0], "DER sequence tag")

	assert.True(t, VerifyWithKey(kp.Public, "This is a test message.", sig))
	assert.False(t, VerifyWithKey(kp.Public, "This is a test message!", sig))
	assert.False(t, VerifyWithKey(other.Public, "This is a test message.", sig))
	assert.False(t, VerifyWithKey("zz", "This is a test message.", sig))
	assert.False(t, VerifyWithKey(kp.Public, "This is a test message.", []byte{0x30, 0x00}))
}

func TestVerifyAcceptsUncompressedPublicKey(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	pub, err := ParsePublicKey(kp.Public)
	require.NoError(t, err)
	uncompressed := hex.EncodeToString(pub.SerializeUncompressed())

	sig, err := Sign("hi", kp.Private)
	require.NoError(t, err)
	assert.True(t, VerifyWithKey(uncompressed, "hi", sig))
}

func TestParseKeyErrors(t *testing.T) {
	tests := []struct {
		name  string
		parse func() error
	}{
		{"public not hex", func() error { _, err := ParsePublicKey("xyz"); return err }},
		{"public wrong length", func() error { _, err := ParsePublicKey("0203"); return err }},
		{"private not hex", func() error { _, err := ParsePrivateKey("not hex"); return err }},
		{"private short", func() error { _, err := ParsePrivateKey("01"); return err }},
		{"private zero", func() error { _, err := ParsePrivateKey(strings.Repeat("00", 32)); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.parse(), ErrInvalidArgument)
		})
	}
}

func TestGenerateVanity(t *testing.T) {
	kp, attempts, err := GenerateVanity(context.Background(), func(pub string) bool {
		return strings.HasSuffix(pub, "a")
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(kp.Public, "a"))
	assert.GreaterOrEqual(t, attempts, 1)
}

func TestGenerateVanityCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := GenerateVanity(ctx, func(string) bool { return false })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
