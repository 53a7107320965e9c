package testing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxchatter/ax25"
	"github.com/opd-ai/voxchatter/interfaces"
	"github.com/opd-ai/voxchatter/transport"
)

// DeliveryRecord is one send attempt seen by the channel.
type DeliveryRecord struct {
	Sender      string
	Source      ax25.Station
	Destination ax25.Station
	Payload     []byte
	Receivers   int
	Timestamp   int64
	Success     bool
	Error       error
}

// SimulatedChannel is a shared in-memory medium.
type SimulatedChannel struct {
	mu          sync.RWMutex
	transports  []*SimulatedTransport
	echo        bool
	deliveryLog []DeliveryRecord
}

// NewSimulatedChannel returns an empty channel.
func NewSimulatedChannel() *SimulatedChannel {
	logrus.WithFields(logrus.Fields{
		"function": "NewSimulatedChannel",
	}).Debug("Creating simulated radio channel")

	return &SimulatedChannel{
		deliveryLog: make([]DeliveryRecord, 0),
	}
}

// NewTransport attaches a transport named name to the channel.
func (c *SimulatedChannel) NewTransport(name string) *SimulatedTransport {
	t := &SimulatedTransport{name: name, channel: c}

	c.mu.Lock()
	c.transports = append(c.transports, t)
	count := len(c.transports)
	c.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":   "SimulatedChannel.NewTransport",
		"name":       name,
		"transports": count,
	}).Debug("Attached simulated transport")
	return t
}

// SetEchoLoopback controls whether senders receive their own frames.
func (c *SimulatedChannel) SetEchoLoopback(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.echo = enabled
}

// DeliveryLog returns a copy of the delivery log.
func (c *SimulatedChannel) DeliveryLog() []DeliveryRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	log := make([]DeliveryRecord, len(c.deliveryLog))
	copy(log, c.deliveryLog)
	return log
}

// ClearDeliveryLog empties the delivery log.
func (c *SimulatedChannel) ClearDeliveryLog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliveryLog = make([]DeliveryRecord, 0)
}

// Inject delivers frame to every open transport as if a station that is not
// attached had transmitted it.
func (c *SimulatedChannel) Inject(frame interfaces.Frame) int {
	return c.broadcast(nil, frame)
}

// broadcast delivers frame to the open transports other than sender, or to
// all of them when echo loopback is on. Handlers run without channel locks
// held so that they may send in turn.
func (c *SimulatedChannel) broadcast(sender *SimulatedTransport, frame interfaces.Frame) int {
	c.mu.RLock()
	echo := c.echo
	receivers := make([]*SimulatedTransport, 0, len(c.transports))
	for _, t := range c.transports {
		if t == sender && !echo {
			continue
		}
		receivers = append(receivers, t)
	}
	c.mu.RUnlock()

	delivered := 0
	for _, t := range receivers {
		if t.deliver(frame) {
			delivered++
		}
	}
	return delivered
}

func (c *SimulatedChannel) record(rec DeliveryRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliveryLog = append(c.deliveryLog, rec)
}

// SimulatedTransport is one station's view of a SimulatedChannel.
type SimulatedTransport struct {
	name    string
	channel *SimulatedChannel

	mu          sync.RWMutex
	open        bool
	closed      bool
	openBlocked bool
	failNext    error
	handler     interfaces.FrameHandler
	observer    interfaces.LifecycleObserver
}

// Name returns the name given at attach time.
func (t *SimulatedTransport) Name() string {
	return t.name
}

// SetFrameHandler implements interfaces.IFrameTransport.
func (t *SimulatedTransport) SetFrameHandler(handler interfaces.FrameHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = handler
}

// SetObserver implements interfaces.IFrameTransport.
func (t *SimulatedTransport) SetObserver(observer interfaces.LifecycleObserver) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observer = observer
}

// IsOpen implements interfaces.IFrameTransport.
func (t *SimulatedTransport) IsOpen() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.open
}

// IsSimulation always returns true.
func (t *SimulatedTransport) IsSimulation() bool {
	return true
}

// SetOpenBlocked makes Open wait until its context is done.
func (t *SimulatedTransport) SetOpenBlocked(blocked bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.openBlocked = blocked
}

// FailNextSend makes the next Send fail with err wrapped in a
// *transport.TransportError. The failure is also reported to the observer.
func (t *SimulatedTransport) FailNextSend(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failNext = err
}

// Open implements interfaces.IFrameTransport.
func (t *SimulatedTransport) Open(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return &transport.TransportError{Op: "open", Addr: t.name, Err: transport.ErrClosed}
	}
	if t.open {
		t.mu.Unlock()
		return nil
	}
	blocked := t.openBlocked
	t.mu.Unlock()

	if blocked {
		<-ctx.Done()
	}
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = transport.ErrOpenTimeout
		}
		return &transport.TransportError{Op: "open", Addr: t.name, Err: err}
	}

	t.mu.Lock()
	t.open = true
	observer := t.observer
	t.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "SimulatedTransport.Open",
		"name":     t.name,
	}).Debug("Simulated transport open")

	if observer != nil {
		observer.OnOpen()
	}
	return nil
}

// Send implements interfaces.IFrameTransport. Delivery to the other
// stations has completed when it returns.
func (t *SimulatedTransport) Send(ctx context.Context, frame interfaces.Frame) error {
	t.mu.Lock()
	open, closed := t.open, t.closed
	failure := t.failNext
	t.failNext = nil
	observer := t.observer
	t.mu.Unlock()

	rec := DeliveryRecord{
		Sender:      t.name,
		Source:      frame.Source,
		Destination: frame.Destination,
		Payload:     append([]byte(nil), frame.Payload...),
		Timestamp:   time.Now().UnixNano(),
	}

	var err error
	switch {
	case closed:
		err = &transport.TransportError{Op: "send", Addr: t.name, Err: transport.ErrClosed}
	case !open:
		err = &transport.TransportError{Op: "send", Addr: t.name, Err: transport.ErrNotOpen}
	case failure != nil:
		err = &transport.TransportError{Op: "send", Addr: t.name, Err: failure}
		if observer != nil {
			observer.OnTransportError(err)
		}
	case ctx.Err() != nil:
		err = &transport.TransportError{Op: "send", Addr: t.name, Err: ctx.Err()}
	}
	if err != nil {
		rec.Error = err
		t.channel.record(rec)
		return err
	}

	rec.Success = true
	rec.Receivers = t.channel.broadcast(t, interfaces.Frame{
		Source:      frame.Source,
		Destination: frame.Destination,
		Payload:     rec.Payload,
	})
	t.channel.record(rec)

	logrus.WithFields(logrus.Fields{
		"function":    "SimulatedTransport.Send",
		"name":        t.name,
		"source":      frame.Source.String(),
		"destination": frame.Destination.String(),
		"receivers":   rec.Receivers,
	}).Debug("Simulated frame delivered")
	return nil
}

// Close implements interfaces.IFrameTransport.
func (t *SimulatedTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	wasOpen := t.open
	t.closed = true
	t.open = false
	observer := t.observer
	t.mu.Unlock()

	if wasOpen && observer != nil {
		observer.OnClose()
	}
	return nil
}

// deliver hands a copy of frame to the handler if the transport is open.
func (t *SimulatedTransport) deliver(frame interfaces.Frame) bool {
	t.mu.RLock()
	open, handler := t.open, t.handler
	t.mu.RUnlock()

	if !open {
		return false
	}
	if handler != nil {
		handler(interfaces.Frame{
			Source:      frame.Source,
			Destination: frame.Destination,
			Payload:     append([]byte(nil), frame.Payload...),
		})
	}
	return true
}

var _ interfaces.IFrameTransport = (*SimulatedTransport)(nil)
