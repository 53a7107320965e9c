package messaging

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSigningKey means signing was requested without a configured key.
	ErrNoSigningKey = errors.New("signing requested but no signing key is configured")

	// ErrSigningKeyNotFound means the configured signing key is not one of
	// the station's key pairs.
	ErrSigningKeyNotFound = errors.New("signing key not found in keystore")

	// ErrInvalidRecipient wraps malformed destination strings.
	ErrInvalidRecipient = errors.New("invalid recipient")

	// ErrClosed is returned by a Messenger after Close.
	ErrClosed = errors.New("messenger closed")
)

// ConfigurationError reports a signing setup problem found before any radio
// I/O was attempted.
type ConfigurationError struct {
	Callsign   string
	SigningKey string
	Err        error
}

func (e *ConfigurationError) Error() string {
	if e.SigningKey != "" {
		return fmt.Sprintf("configuration error for %s (key %s): %v", e.Callsign, e.SigningKey, e.Err)
	}
	return fmt.Sprintf("configuration error for %s: %v", e.Callsign, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err is a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
