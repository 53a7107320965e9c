package crypto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxchatter/ax25"
)

// Keystore maps callsigns to key records and persists them to a JSON file.
// The file is rewritten in full after every successful mutation. A Keystore
// assumes it is the only writer of its file.
type Keystore struct {
	mu    sync.Mutex
	path  string
	order []string // callsigns in first-insertion order
	keys  map[string][]KeyRecord
}

// OpenKeystore loads the keystore at path, creating and persisting an empty
// store when the file does not exist.
func OpenKeystore(path string) (*Keystore, error) {
	logger := NewLogger("OpenKeystore").WithField("path", path)

	ks := &Keystore{
		path: path,
		keys: make(map[string][]KeyRecord),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := ks.persist(ks.order, ks.keys); err != nil {
			return nil, err
		}
		logger.Debug("Created empty keystore")
		return ks, nil
	}
	if err != nil {
		return nil, &StorageError{Path: path, Op: "read", Err: err}
	}

	order, keys, err := decodeKeystore(data)
	if err != nil {
		return nil, &StorageError{Path: path, Op: "parse", Err: err}
	}
	ks.order = order
	ks.keys = keys

	logger.WithField("callsigns", len(order)).Debug("Loaded keystore")
	return ks, nil
}

// Path returns the backing file path.
func (ks *Keystore) Path() string {
	return ks.path
}

// AddPublicKey appends a public-only record for callsign.
func (ks *Keystore) AddPublicKey(callsign, publicHex string) error {
	if err := validateCallsign(callsign); err != nil {
		return err
	}
	publicHex = normalizeHex(publicHex)
	if _, err := ParsePublicKey(publicHex); err != nil {
		return err
	}
	return ks.add(callsign, KeyRecord{Curve: CurveSecp256k1, Public: publicHex})
}

// GenKeyPair generates a key pair, appends it under callsign and returns it.
func (ks *Keystore) GenKeyPair(callsign string) (KeyRecord, error) {
	if err := validateCallsign(callsign); err != nil {
		return KeyRecord{}, err
	}
	kp, err := GenerateKeyPair()
	if err != nil {
		return KeyRecord{}, err
	}
	if err := ks.add(callsign, kp); err != nil {
		return KeyRecord{}, err
	}
	NewLogger("GenKeyPair").WithFields(logrus.Fields{
		"callsign":   callsign,
		"public_key": kp.Public,
	}).Info("Generated key pair")
	return kp, nil
}

// AddKeyPair appends an existing key pair under callsign. The public key is
// derived from the private key when publicHex is empty.
func (ks *Keystore) AddKeyPair(callsign, publicHex, privateHex string) (KeyRecord, error) {
	if err := validateCallsign(callsign); err != nil {
		return KeyRecord{}, err
	}
	priv, err := ParsePrivateKey(normalizeHex(privateHex))
	if err != nil {
		return KeyRecord{}, err
	}
	derived := priv.PubKey()
	if publicHex == "" {
		publicHex = fmt.Sprintf("%x", derived.SerializeCompressed())
	}
	publicHex = normalizeHex(publicHex)
	pub, err := ParsePublicKey(publicHex)
	if err != nil {
		return KeyRecord{}, err
	}
	if !pub.IsEqual(derived) {
		return KeyRecord{}, invalidArgument("public key does not match private key")
	}

	kp := KeyRecord{Curve: CurveSecp256k1, Public: publicHex, Private: normalizeHex(privateHex)}
	if err := ks.add(callsign, kp); err != nil {
		return KeyRecord{}, err
	}
	return kp, nil
}

// Revoke removes the first record under callsign whose public key equals
// publicHex. It reports whether a record was removed; the file is only
// rewritten when one was.
func (ks *Keystore) Revoke(callsign, publicHex string) (bool, error) {
	if err := validateCallsign(callsign); err != nil {
		return false, err
	}
	if _, err := ParsePublicKey(normalizeHex(publicHex)); err != nil {
		return false, err
	}
	publicHex = normalizeHex(publicHex)

	ks.mu.Lock()
	defer ks.mu.Unlock()

	records := ks.keys[callsign]
	idx := -1
	for i, rec := range records {
		if rec.Public == publicHex {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	remaining := make([]KeyRecord, 0, len(records)-1)
	remaining = append(remaining, records[:idx]...)
	remaining = append(remaining, records[idx+1:]...)

	order := ks.order
	keys := copyKeys(ks.keys)
	if len(remaining) == 0 {
		delete(keys, callsign)
		order = removeString(ks.order, callsign)
	} else {
		keys[callsign] = remaining
	}

	if err := ks.persist(order, keys); err != nil {
		return false, err
	}
	ks.order = order
	ks.keys = keys

	NewLogger("Revoke").WithFields(logrus.Fields{
		"callsign":   callsign,
		"public_key": publicHex,
	}).Debug("Revoked key")
	return true, nil
}

// PublicKeys returns the public keys held for callsign in stored order.
func (ks *Keystore) PublicKeys(callsign string) []string {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	records := ks.keys[callsign]
	pubs := make([]string, 0, len(records))
	for _, rec := range records {
		pubs = append(pubs, rec.Public)
	}
	return pubs
}

// KeyPairs returns the records for callsign that carry a private key.
func (ks *Keystore) KeyPairs(callsign string) []KeyRecord {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	pairs := make([]KeyRecord, 0)
	for _, rec := range ks.keys[callsign] {
		if rec.IsKeyPair() {
			pairs = append(pairs, rec)
		}
	}
	return pairs
}

// Keys returns every record for callsign.
func (ks *Keystore) Keys(callsign string) []KeyRecord {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	return append(make([]KeyRecord, 0, len(ks.keys[callsign])), ks.keys[callsign]...)
}

// Callsigns returns every callsign with at least one record, in the order
// they were first added.
func (ks *Keystore) Callsigns() []string {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	out := make([]string, 0, len(ks.order))
	for _, cs := range ks.order {
		if len(ks.keys[cs]) > 0 {
			out = append(out, cs)
		}
	}
	return out
}

// Sign signs message with privateHex.
func (ks *Keystore) Sign(message, privateHex string) ([]byte, error) {
	logger := NewLogger("Sign").WithPrivateKey(privateHex).WithField("message_size", len(message))
	sig, err := Sign(message, normalizeHex(privateHex))
	if err != nil {
		logger.WithError(err, "sign").Warn("Signing failed")
		return nil, err
	}
	logger.WithField("signature_size", len(sig)).Debug("Signed message")
	return sig, nil
}

// Verify reports whether signature verifies under any public key held for
// callsign. It returns false when callsign is unknown.
func (ks *Keystore) Verify(callsign, message string, signature []byte) bool {
	for _, pub := range ks.PublicKeys(callsign) {
		if VerifyWithKey(pub, message, signature) {
			return true
		}
	}
	return false
}

func (ks *Keystore) add(callsign string, rec KeyRecord) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	order := ks.order
	if _, ok := ks.keys[callsign]; !ok {
		order = append(append(make([]string, 0, len(ks.order)+1), ks.order...), callsign)
	}
	keys := copyKeys(ks.keys)
	keys[callsign] = append(append(make([]KeyRecord, 0, len(ks.keys[callsign])+1), ks.keys[callsign]...), rec)

	if err := ks.persist(order, keys); err != nil {
		return err
	}
	ks.order = order
	ks.keys = keys

	NewLogger("add").WithFields(logrus.Fields{
		"callsign":   callsign,
		"public_key": rec.Public,
		"key_pair":   rec.IsKeyPair(),
	}).Debug("Added key")
	return nil
}

// persist writes the given state to a temporary file and renames it over
// the keystore file.
func (ks *Keystore) persist(order []string, keys map[string][]KeyRecord) error {
	fail := func(err error) error {
		NewLogger("persist").WithField("path", ks.path).WithError(err, "write").Error("Failed to write keystore")
		return &StorageError{Path: ks.path, Op: "write", Err: err}
	}

	data, err := encodeKeystore(order, keys)
	if err != nil {
		return fail(err)
	}

	tmp := ks.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fail(err)
	}
	if err := os.Rename(tmp, ks.path); err != nil {
		os.Remove(tmp)
		return fail(err)
	}

	NewLogger("persist").WithFields(logrus.Fields{
		"path":  filepath.Base(ks.path),
		"bytes": len(data),
	}).Debug("Keystore written")
	return nil
}

// encodeKeystore renders the store as a tab indented JSON object whose keys
// follow order.
func encodeKeystore(order []string, keys map[string][]KeyRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, cs := range order {
		records, ok := keys[cs]
		if !ok {
			continue
		}
		name, err := json.Marshal(cs)
		if err != nil {
			return nil, err
		}
		value, err := json.MarshalIndent(records, "\t", "\t")
		if err != nil {
			return nil, err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString("\n\t")
		buf.Write(name)
		buf.WriteString(": ")
		buf.Write(value)
	}
	if !first {
		buf.WriteByte('\n')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeKeystore parses a keystore file, keeping the order of its keys.
func decodeKeystore(data []byte) ([]string, map[string][]KeyRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected a JSON object, found %v", tok)
	}

	var order []string
	keys := make(map[string][]KeyRecord)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		callsign, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected a callsign, found %v", tok)
		}

		var records []KeyRecord
		if err := dec.Decode(&records); err != nil {
			return nil, nil, fmt.Errorf("callsign %q: %w", callsign, err)
		}
		for i, rec := range records {
			if rec.Curve != CurveSecp256k1 {
				return nil, nil, fmt.Errorf("callsign %q key %d: %w %q", callsign, i, ErrUnsupportedCurve, rec.Curve)
			}
			if rec.Public == "" {
				return nil, nil, fmt.Errorf("callsign %q key %d: missing public key", callsign, i)
			}
		}

		if _, seen := keys[callsign]; !seen {
			order = append(order, callsign)
		}
		keys[callsign] = records
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, nil, fmt.Errorf("unexpected data after keystore object")
	}
	return order, keys, nil
}

func validateCallsign(callsign string) error {
	if !ax25.IsCallsign(callsign) {
		return invalidArgument("callsign %q", callsign)
	}
	return nil
}

func copyKeys(src map[string][]KeyRecord) map[string][]KeyRecord {
	dst := make(map[string][]KeyRecord, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func removeString(list []string, s string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
