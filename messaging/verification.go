package messaging

import "fmt"

// Verification is the trust classification of a received message.
type Verification uint8

const (
	// NotSigned means the frame carried no signature.
	NotSigned Verification = iota
	// KeyNotFound means the keystore holds no public key for the sender.
	KeyNotFound
	// Valid means a key held for the sender verified the signature.
	Valid
	// Invalid means no key held for the sender verified the signature.
	Invalid
)

func (v Verification) String() string {
	switch v {
	case NotSigned:
		return "NotSigned"
	case KeyNotFound:
		return "KeyNotFound"
	case Valid:
		return "Valid"
	case Invalid:
		return "Invalid"
	default:
		return fmt.Sprintf("Verification(%d)", uint8(v))
	}
}
