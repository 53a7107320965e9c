package messaging

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxchatter/ax25"
)

// MessageEvent is a received chat message.
type MessageEvent struct {
	From         ax25.Station
	To           ax25.Station
	Message      string
	Verification Verification
	Signature    []byte // nil when unsigned
	Raw          []byte // the voxchatter frame as received
	ReceivedAt   time.Time
}

// Observer receives messages and transport lifecycle events from a
// Messenger. Methods are called from the transport's delivery goroutine
// and may call Send on the same Messenger.
type Observer interface {
	OnMessage(event MessageEvent)
	OnOpen()
	OnClose()
	OnTransportError(err error)
}

// ObserverFuncs adapts functions to Observer. Nil fields are ignored.
type ObserverFuncs struct {
	Message        func(event MessageEvent)
	Open           func()
	Close          func()
	TransportError func(err error)
}

func (o ObserverFuncs) OnMessage(event MessageEvent) {
	if o.Message != nil {
		o.Message(event)
	}
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

// ChannelObserver publishes events on channels. Message delivery blocks
// until the consumer receives or Stop is called; transport errors are
// dropped when the error buffer is full.
type ChannelObserver struct {
	events chan MessageEvent
	errs   chan error
	closed chan struct{}
	stop   chan struct{}

	closeOnce sync.Once
	stopOnce  sync.Once
}

// NewChannelObserver returns an observer with the given event buffer size.
func NewChannelObserver(buffer int) *ChannelObserver {
	return &ChannelObserver{
		events: make(chan MessageEvent, buffer),
		errs:   make(chan error, 8),
		closed: make(chan struct{}),
		stop:   make(chan struct{}),
	}
}

// Events returns the message channel.
func (c *ChannelObserver) Events() <-chan MessageEvent {
	return c.events
}

// Errors returns the transport error channel.
func (c *ChannelObserver) Errors() <-chan error {
	return c.errs
}

// Closed is closed once the transport reports OnClose.
func (c *ChannelObserver) Closed() <-chan struct{} {
	return c.closed
}

// Stop unblocks a pending OnMessage and makes later calls drop events.
func (c *ChannelObserver) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *ChannelObserver) OnMessage(event MessageEvent) {
	select {
	case c.events <- event:
	case <-c.stop:
	}
}

func (c *ChannelObserver) OnOpen() {}

func (c *ChannelObserver) OnClose() {
	c.closeOnce.Do(func() { close(c.closed) })
}

func (c *ChannelObserver) OnTransportError(err error) {
	select {
	case c.errs <- err:
	default:
		logrus.WithFields(logrus.Fields{
			"function": "ChannelObserver.OnTransportError",
			"error":    err.Error(),
		}).Warn("Error channel full, dropping transport error")
	}
}
