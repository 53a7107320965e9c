package voxchatter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxchatter/config"
	"github.com/opd-ai/voxchatter/crypto"
	"github.com/opd-ai/voxchatter/factory"
	"github.com/opd-ai/voxchatter/interfaces"
	"github.com/opd-ai/voxchatter/messaging"
)

// ErrNodeClosed is returned by Open after Close.
var ErrNodeClosed = errors.New("node closed")

// Option customizes a Node.
type Option func(*nodeOptions)

type nodeOptions struct {
	factory   *factory.TransportFactory
	transport interfaces.IFrameTransport
	clock     clock.Clock
}

// WithTransportFactory makes New build its transport with f.
func WithTransportFactory(f *factory.TransportFactory) Option {
	return func(o *nodeOptions) { o.factory = f }
}

// WithTransport makes New use tr instead of building one from the config.
func WithTransport(tr interfaces.IFrameTransport) Option {
	return func(o *nodeOptions) { o.transport = tr }
}

// WithClock sets the clock driving echo expiry.
func WithClock(c clock.Clock) Option {
	return func(o *nodeOptions) { o.clock = c }
}

// Node is a configured voxchatter station: a keystore, a transport and the
// messenger joining them.
type Node struct {
	cfg       *config.Config
	keystore  *crypto.Keystore
	transport interfaces.IFrameTransport
	messenger *messaging.Messenger

	mu     sync.Mutex
	open   bool
	closed bool
}

// New validates cfg, opens its keystore and builds the transport and
// messenger. The transport is not opened until Open.
func New(cfg *config.Config, opts ...Option) (*Node, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := nodeOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	ks, err := crypto.OpenKeystore(cfg.KeystoreFile)
	if err != nil {
		return nil, err
	}

	// Environment overrides apply to the open timeout as well as the
	// transport choice, so both come from the effective config.
	openTimeout := cfg.OpenTimeout()
	tr := o.transport
	if tr == nil {
		f := o.factory
		if f == nil {
			f = factory.NewTransportFactory()
		}
		tc, err := f.EffectiveConfig(cfg.TransportConfig())
		if err != nil {
			return nil, err
		}
		tr, err = f.CreateTransportWithConfig(tc)
		if err != nil {
			return nil, err
		}
		openTimeout = tc.OpenTimeout
	}

	m, err := messaging.New(ks, tr, messaging.Options{
		Station:      cfg.Station(),
		SigningKey:   cfg.SigningKey,
		EchoDebounce: cfg.EchoDebounce(),
		OpenTimeout:  openTimeout,
		Clock:        o.clock,
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":   "New",
		"station":    cfg.Station().String(),
		"keystore":   cfg.KeystoreFile,
		"simulation": tr.IsSimulation(),
	}).Info("Created voxchatter node")

	return &Node{
		cfg:       cfg,
		keystore:  ks,
		transport: tr,
		messenger: m,
	}, nil
}

// Open connects to the TNC within the configured open timeout.
func (n *Node) Open(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNodeClosed
	}
	if n.open {
		return nil
	}
	if err := n.messenger.Open(ctx); err != nil {
		return err
	}
	n.open = true
	return nil
}

// Close closes the transport and discards echo state. A closed Node cannot
// be reopened.
func (n *Node) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	n.open = false
	n.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Close",
		"station":  n.cfg.Station().String(),
	}).Debug("Closing voxchatter node")
	return n.messenger.Close()
}

// IsOpen reports whether Open succeeded and Close has not been called.
func (n *Node) IsOpen() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.open
}

// Config returns the configuration the node was built from.
func (n *Node) Config() *config.Config {
	return n.cfg
}

// Keystore returns the node's keystore.
func (n *Node) Keystore() *crypto.Keystore {
	return n.keystore
}

// Messenger returns the node's messenger.
func (n *Node) Messenger() *messaging.Messenger {
	return n.messenger
}

// Transport returns the node's transport.
func (n *Node) Transport() interfaces.IFrameTransport {
	return n.transport
}
