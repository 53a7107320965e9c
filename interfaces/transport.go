package interfaces

import (
	"context"
	"fmt"
	"time"

	"github.com/opd-ai/voxchatter/ax25"
)

// Frame is a payload travelling between two stations.
type Frame struct {
	Source      ax25.Station
	Destination ax25.Station
	Payload     []byte
}

// FrameHandler receives inbound frames.
type FrameHandler func(frame Frame)

// LifecycleObserver is notified of transport state changes.
type LifecycleObserver interface {
	OnOpen()
	OnClose()
	OnTransportError(err error)
}

// IFrameTransport is a duplex channel of addressed payloads.
type IFrameTransport interface {
	// Open connects the transport. It fails when ctx is done first.
	Open(ctx context.Context) error

	// Send transmits a frame. It returns once the transport accepted it.
	Send(ctx context.Context, frame Frame) error

	// Close disconnects the transport. Sends after Close fail.
	Close() error

	// SetFrameHandler sets the inbound frame handler.
	SetFrameHandler(handler FrameHandler)

	// SetObserver sets the lifecycle observer.
	SetObserver(observer LifecycleObserver)

	// IsOpen reports whether the transport is open.
	IsOpen() bool

	// IsSimulation reports whether this is an in-memory channel.
	IsSimulation() bool
}

// TransportConfig selects and parameterizes a transport.
type TransportConfig struct {
	// UseSimulation selects the in-memory channel.
	UseSimulation bool

	// KISSPort is tcp://host:port for KISS over TCP, otherwise a device path.
	KISSPort string

	// KISSBaud is the line speed serial devices are opened at.
	KISSBaud int

	// OpenTimeout bounds opening the transport.
	OpenTimeout time.Duration
}

// Validate checks the configuration.
func (c *TransportConfig) Validate() error {
	if c.OpenTimeout < 0 {
		return fmt.Errorf("open timeout cannot be negative: %v", c.OpenTimeout)
	}
	if c.KISSBaud < 0 {
		return fmt.Errorf("kiss baud cannot be negative: %d", c.KISSBaud)
	}
	if !c.UseSimulation && c.KISSPort == "" {
		return fmt.Errorf("kiss port is required")
	}
	return nil
}

// ObserverFuncs adapts functions to LifecycleObserver. Nil fields are
// ignored.
type ObserverFuncs struct {
	Open           func()
	Close          func()
	TransportError func(err error)
}

func (o ObserverFuncs) OnOpen() {
	if o.Open != nil {
		o.Open()
	}
}

func (o ObserverFuncs) OnClose() {
	if o.Close != nil {
		o.Close()
	}
}

func (o ObserverFuncs) OnTransportError(err error) {
	if o.TransportError != nil {
		o.TransportError(err)
	}
}
