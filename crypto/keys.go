package crypto

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/sirupsen/logrus"
)

// CurveSecp256k1 names the only curve keys are generated on.
const CurveSecp256k1 = "secp256k1"

// KeyRecord is one key held for a callsign. Private is empty for keys that
// belong to other stations.
type KeyRecord struct {
	Curve   string `json:"curve"`
	Public  string `json:"public"`
	Private string `json:"private,omitempty"`
}

// IsKeyPair reports whether the record carries a private key.
func (k KeyRecord) IsKeyPair() bool {
	return k.Public != "" && k.Private != ""
}

// Digest returns the SHA-256 digest of the UTF-8 bytes of message.
func Digest(message string) [32]byte {
	return sha256.Sum256([]byte(message))
}

// GenerateKeyPair creates a fresh secp256k1 key pair.
func GenerateKeyPair() (KeyRecord, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return KeyRecord{}, fmt.Errorf("generate private key: %w", err)
	}
	return KeyRecord{
		Curve:   CurveSecp256k1,
		Public:  hex.EncodeToString(priv.PubKey().SerializeCompressed()),
		Private: hex.EncodeToString(priv.Serialize()),
	}, nil
}

// GenerateVanity generates key pairs until match accepts the public hex or
// ctx is done. It returns the number of keys generated alongside the key.
func GenerateVanity(ctx context.Context, match func(publicHex string) bool) (KeyRecord, int, error) {
	logger := NewLogger("GenerateVanity")
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			logger.WithField("attempts", attempts).Debug("Vanity search cancelled")
			return KeyRecord{}, attempts, ctx.Err()
		default:
		}

		kp, err := GenerateKeyPair()
		if err != nil {
			return KeyRecord{}, attempts, err
		}
		attempts++
		if match(kp.Public) {
			logger.WithFields(logrus.Fields{
				"attempts":   attempts,
				"public_key": kp.Public,
			}).Debug("Vanity key found")
			return kp, attempts, nil
		}
	}
}

// ParsePublicKey decodes a compressed or uncompressed public key in hex.
func ParsePublicKey(publicHex string) (*secp256k1.PublicKey, error) {
	raw, err := hex.DecodeString(publicHex)
	if err != nil {
		return nil, invalidArgument("public key is not hex: %v", err)
	}
	pub, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return nil, invalidArgument("public key: %v", err)
	}
	return pub, nil
}

// ParsePrivateKey decodes a 32 byte private scalar in hex.
func ParsePrivateKey(privateHex string) (*secp256k1.PrivateKey, error) {
	raw, err := hex.DecodeString(privateHex)
	if err != nil {
		return nil, invalidArgument("private key is not hex: %v", err)
	}
	if len(raw) != secp256k1.PrivKeyBytesLen {
		return nil, invalidArgument("private key is %d bytes, want %d", len(raw), secp256k1.PrivKeyBytesLen)
	}
	priv := secp256k1.PrivKeyFromBytes(raw)
	if priv.Key.IsZero() {
		return nil, invalidArgument("private key is zero")
	}
	return priv, nil
}

// Sign returns the DER encoded signature of message under privateHex.
func Sign(message, privateHex string) ([]byte, error) {
	priv, err := ParsePrivateKey(privateHex)
	if err != nil {
		return nil, err
	}
	digest := Digest(message)
	return ecdsa.Sign(priv, digest[:]).Serialize(), nil
}

// VerifyWithKey reports whether signature is a valid signature of message
// under publicHex. Malformed keys or signatures verify as false.
func VerifyWithKey(publicHex, message string, signature []byte) bool {
	pub, err := ParsePublicKey(publicHex)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false
	}
	digest := Digest(message)
	return sig.Verify(digest[:], pub)
}

// normalizeHex lowercases key material so that comparisons ignore case.
func normalizeHex(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
