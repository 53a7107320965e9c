// Package crypto holds station identities and the signing primitives used to
// authenticate chat frames.
//
// Keys live on the secp256k1 curve. Public keys are exchanged as hex of the
// compressed SEC1 encoding and private keys as hex of the 32 byte scalar.
// Signatures are DER encoded ECDSA over the SHA-256 digest of the UTF-8
// message text.
//
// # Keystore
//
// A [Keystore] maps callsigns to an ordered list of [KeyRecord] values and is
// backed by a JSON file that is rewritten after every mutation:
//
//	ks, err := crypto.OpenKeystore("/home/op/.voxchatter/keystore.json")
//	if err != nil {
//	    return err
//	}
//	kp, _ := ks.GenKeyPair("N0CALL")
//	sig, _ := ks.Sign("hello", kp.Private)
//	ok := ks.Verify("N0CALL", "hello", sig)
//
// Records that carry a private key are the operator's own identities, the
// rest are trusted peers. Amateur radio rules forbid obscuring the meaning of
// a transmission, so this package signs and never encrypts.
//
// # Errors
//
// Mutating calls reject malformed callsigns and key material with an error
// matching [ErrInvalidArgument]. Failures to read, parse or write the backing
// file are reported as *[StorageError].
package crypto
