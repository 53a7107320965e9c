package internal

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/opd-ai/voxchatter/ax25"
	"github.com/opd-ai/voxchatter/crypto"
	"github.com/opd-ai/voxchatter/messaging"
	testsim "github.com/opd-ai/voxchatter/testing"
)

// TestStation is one simulated operator.
type TestStation struct {
	Station   ax25.Station
	Key       crypto.KeyRecord // zero unless the station signs
	Keystore  *crypto.Keystore
	Transport *testsim.SimulatedTransport
	Messenger *messaging.Messenger
	Inbox     *messaging.ChannelObserver
}

// StationOptions configure NewTestStation.
type StationOptions struct {
	Signing      bool
	EchoDebounce time.Duration
	Clock        clock.Clock
}

// NewTestStation creates a station with its own keystore under dir and
// attaches it to ch. A signing station generates its key pair first.
func NewTestStation(ch *testsim.SimulatedChannel, dir, callsign string, opts StationOptions) (*TestStation, error) {
	st, err := ax25.ParseStation(callsign)
	if err != nil {
		return nil, err
	}
	ks, err := crypto.OpenKeystore(filepath.Join(dir, callsign+".json"))
	if err != nil {
		return nil, err
	}

	var key crypto.KeyRecord
	if opts.Signing {
		if key, err = ks.GenKeyPair(st.Callsign); err != nil {
			return nil, err
		}
	}

	tr := ch.NewTransport(callsign)
	m, err := messaging.New(ks, tr, messaging.Options{
		Station:      st,
		SigningKey:   key.Public,
		EchoDebounce: opts.EchoDebounce,
		Clock:        opts.Clock,
	})
	if err != nil {
		return nil, err
	}
	inbox := messaging.NewChannelObserver(16)
	m.SetObserver(inbox)

	return &TestStation{
		Station:   st,
		Key:       key,
		Keystore:  ks,
		Transport: tr,
		Messenger: m,
		Inbox:     inbox,
	}, nil
}

// Trust adds other's public key to this station's keystore.
func (s *TestStation) Trust(other *TestStation) error {
	return s.Keystore.AddPublicKey(other.Station.Callsign, other.Key.Public)
}

// Expect waits for the next message and checks its text and
// classification.
func (s *TestStation) Expect(ctx context.Context, message string, want messaging.Verification, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case ev := <-s.Inbox.Events():
		if ev.Message != message {
			return fmt.Errorf("%s received %q, want %q", s.Station, ev.Message, message)
		}
		if ev.Verification != want {
			return fmt.Errorf("%s classified %q as %s, want %s", s.Station, message, ev.Verification, want)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: no message within %v", s.Station, timeout)
	}
}

// ExpectSilence checks that nothing arrives within wait.
func (s *TestStation) ExpectSilence(wait time.Duration) error {
	select {
	case ev := <-s.Inbox.Events():
		return fmt.Errorf("%s unexpectedly received %q from %s", s.Station, ev.Message, ev.From)
	case <-time.After(wait):
		return nil
	}
}

// Close closes the station's messenger.
func (s *TestStation) Close() error {
	s.Inbox.Stop()
	return s.Messenger.Close()
}
