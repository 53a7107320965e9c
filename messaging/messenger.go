package messaging

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxchatter/ax25"
	"github.com/opd-ai/voxchatter/crypto"
	"github.com/opd-ai/voxchatter/interfaces"
	"github.com/opd-ai/voxchatter/limits"
	"github.com/opd-ai/voxchatter/packet"
)

// DefaultOpenTimeout bounds Open when neither the options nor the context
// set a limit.
const DefaultOpenTimeout = 5 * time.Second

// Keystore is the part of *crypto.Keystore a Messenger uses.
type Keystore interface {
	KeyPairs(callsign string) []crypto.KeyRecord
	PublicKeys(callsign string) []string
	Sign(message, privateHex string) ([]byte, error)
	Verify(callsign, message string, signature []byte) bool
}

// Options configure a Messenger.
type Options struct {
	// Station is the local identity frames are sent from.
	Station ax25.Station

	// SigningKey is the public hex of the key pair used when signing.
	SigningKey string

	// EchoDebounce is how long a sent frame is remembered. Zero disables
	// echo suppression.
	EchoDebounce time.Duration

	// OpenTimeout bounds Open. Zero means DefaultOpenTimeout.
	OpenTimeout time.Duration

	// Clock drives echo expiry. Nil means the wall clock.
	Clock clock.Clock
}

// Messenger sends and receives chat messages for one station.
type Messenger struct {
	keystore  Keystore
	transport interfaces.IFrameTransport
	station   ax25.Station
	signing   string
	timeout   time.Duration
	clock     clock.Clock
	echo      *echoTable // nil when echo suppression is disabled

	mu       sync.RWMutex
	observer Observer
	closed   bool
}

// New builds a Messenger and registers it with tr. Nothing is sent until
// Open.
func New(ks Keystore, tr interfaces.IFrameTransport, opts Options) (*Messenger, error) {
	if ks == nil {
		return nil, fmt.Errorf("keystore is required")
	}
	if tr == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if err := opts.Station.Validate(); err != nil {
		return nil, fmt.Errorf("station: %w", err)
	}
	if opts.EchoDebounce < 0 {
		return nil, fmt.Errorf("echo debounce cannot be negative: %v", opts.EchoDebounce)
	}

	m := &Messenger{
		keystore:  ks,
		transport: tr,
		station:   opts.Station,
		signing:   opts.SigningKey,
		timeout:   opts.OpenTimeout,
		clock:     opts.Clock,
	}
	if m.timeout <= 0 {
		m.timeout = DefaultOpenTimeout
	}
	if m.clock == nil {
		m.clock = clock.New()
	}
	if opts.EchoDebounce > 0 {
		m.echo = newEchoTable(m.clock, opts.EchoDebounce)
	}

	tr.SetFrameHandler(m.HandleFrame)
	tr.SetObserver(m)

	logrus.WithFields(logrus.Fields{
		"function":      "New",
		"station":       m.station.String(),
		"signing":       m.signing != "",
		"echo_debounce": opts.EchoDebounce.String(),
		"simulation":    tr.IsSimulation(),
	}).Debug("Created messenger")
	return m, nil
}

// Station returns the local station.
func (m *Messenger) Station() ax25.Station {
	return m.station
}

// SetObserver sets the observer for messages and lifecycle events.
func (m *Messenger) SetObserver(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observer = o
}

// Open opens the transport, waiting at most the open timeout.
func (m *Messenger) Open(ctx context.Context) error {
	if m.isClosed() {
		return ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.transport.Open(ctx); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Open",
			"station":  m.station.String(),
			"timeout":  m.timeout.String(),
			"error":    err.Error(),
		}).Error("Failed to open transport")
		return err
	}
	return nil
}

// Close closes the transport and forgets every remembered echo.
func (m *Messenger) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	err := m.transport.Close()
	if m.echo != nil {
		m.echo.clear()
	}
	return err
}

// Send parses to as "CALL" or "CALL-SSID" and sends message to it.
func (m *Messenger) Send(ctx context.Context, to, message string, sign bool) (*packet.Packet, error) {
	dst, err := ax25.ParseStation(to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}
	return m.SendTo(ctx, dst, message, sign)
}

// SendTo sends message to dst, signing it when sign is true. Signing
// problems are reported as *ConfigurationError before anything is sent.
func (m *Messenger) SendTo(ctx context.Context, dst ax25.Station, message string, sign bool) (*packet.Packet, error) {
	if m.isClosed() {
		return nil, ErrClosed
	}
	if err := dst.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}

	var signature []byte
	if sign {
		priv, err := m.signingPrivateKey()
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "SendTo",
				"station":  m.station.String(),
				"error":    err.Error(),
			}).Error("Cannot sign message")
			return nil, err
		}
		signature, err = m.keystore.Sign(message, priv)
		if err != nil {
			return nil, fmt.Errorf("sign message: %w", err)
		}
	}

	p, err := packet.Assemble(m.station, dst, message, signature)
	if err != nil {
		return nil, err
	}
	if err := limits.ValidateFrameSize(p.Raw); err != nil {
		return nil, err
	}

	// A loopback channel can deliver the echo before Send returns, so the
	// fingerprint goes in first and is withdrawn if the send fails. No lock
	// is held across Send; observers may reply from OnMessage.
	var cancelEcho func()
	if m.echo != nil {
		cancelEcho = m.echo.register(Fingerprint(m.station, dst, p.Raw))
	}

	err = m.transport.Send(ctx, interfaces.Frame{
		Source:      m.station,
		Destination: dst,
		Payload:     p.Raw,
	})
	if err != nil {
		if cancelEcho != nil {
			cancelEcho()
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":   "SendTo",
		"from":       m.station.String(),
		"to":         dst.String(),
		"bytes":      len(p.Raw),
		"compressed": p.Header.Compressed,
		"signed":     p.Header.Signed,
	}).Debug("Sent message")
	return p, nil
}

// signingPrivateKey finds the private half of the configured signing key
// among the station's key pairs.
func (m *Messenger) signingPrivateKey() (string, error) {
	if m.signing == "" {
		return "", &ConfigurationError{Callsign: m.station.Callsign, Err: ErrNoSigningKey}
	}
	for _, kp := range m.keystore.KeyPairs(m.station.Callsign) {
		if strings.EqualFold(kp.Public, strings.TrimSpace(m.signing)) {
			return kp.Private, nil
		}
	}
	return "", &ConfigurationError{Callsign: m.station.Callsign, SigningKey: m.signing, Err: ErrSigningKeyNotFound}
}

// HandleFrame processes one inbound frame. It is registered as the
// transport's frame handler by New.
func (m *Messenger) HandleFrame(frame interfaces.Frame) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "HandleFrame",
		"from":     frame.Source.String(),
		"to":       frame.Destination.String(),
		"bytes":    len(frame.Payload),
	})

	p, err := packet.Disassemble(frame.Source, frame.Destination, frame.Payload)
	if err != nil {
		if packet.IsInvalidPacket(err) {
			logger.WithField("kind", packet.KindOf(err).String()).Debug("Ignoring non-voxchatter frame")
			return
		}
		logger.WithField("error", err.Error()).Warn("Failed to decode frame")
		return
	}

	if m.echo != nil && m.echo.contains(Fingerprint(frame.Source, frame.Destination, p.Raw)) {
		logger.Debug("Suppressed echo of own transmission")
		return
	}

	event := MessageEvent{
		From:         p.From,
		To:           p.To,
		Message:      p.Message,
		Verification: m.classify(p),
		Signature:    p.Signature,
		Raw:          p.Raw,
		ReceivedAt:   m.clock.Now(),
	}

	logger.WithField("verification", event.Verification.String()).Debug("Received message")

	if o := m.currentObserver(); o != nil {
		o.OnMessage(event)
	}
}

func (m *Messenger) classify(p *packet.Packet) Verification {
	if !p.IsSigned() {
		return NotSigned
	}
	if len(m.keystore.PublicKeys(p.From.Callsign)) == 0 {
		return KeyNotFound
	}
	if m.keystore.Verify(p.From.Callsign, p.Message, p.Signature) {
		return Valid
	}
	return Invalid
}

// OnOpen forwards the transport event to the observer.
func (m *Messenger) OnOpen() {
	if o := m.currentObserver(); o != nil {
		o.OnOpen()
	}
}

// OnClose forwards the transport event to the observer.
func (m *Messenger) OnClose() {
	if o := m.currentObserver(); o != nil {
		o.OnClose()
	}
}

// OnTransportError forwards the transport error to the observer.
func (m *Messenger) OnTransportError(err error) {
	if o := m.currentObserver(); o != nil {
		o.OnTransportError(err)
	}
}

func (m *Messenger) currentObserver() Observer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.observer
}

func (m *Messenger) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// EchoCount reports how many unexpired sends share the fingerprint of the
// given frame. It is zero when echo suppression is disabled.
func (m *Messenger) EchoCount(from, to ax25.Station, frame []byte) int {
	if m.echo == nil {
		return 0
	}
	return m.echo.count(Fingerprint(from, to, frame))
}

var _ interfaces.LifecycleObserver = (*Messenger)(nil)
