package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxchatter/ax25"
	"github.com/opd-ai/voxchatter/interfaces"
)

// dialFunc opens the byte stream to the TNC.
type dialFunc func(ctx context.Context) (io.ReadWriteCloser, error)

// writeDeadliner is implemented by net.Conn.
type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// KISSTransport carries AX.25 UI frames over a KISS byte stream.
type KISSTransport struct {
	addr string
	dial dialFunc

	mu       sync.RWMutex
	conn     io.ReadWriteCloser
	open     bool
	closed   bool
	handler  interfaces.FrameHandler
	observer interfaces.LifecycleObserver
	done     chan struct{}

	writeMu sync.Mutex
}

// NewTCPTransport returns a transport for a KISS TCP server at addr
// (host:port).
func NewTCPTransport(addr string) *KISSTransport {
	return &KISSTransport{
		addr: addr,
		dial: func(ctx context.Context) (io.ReadWriteCloser, error) {
			var d net.Dialer
			return d.DialContext(ctx, "tcp", addr)
		},
	}
}

// Addr returns the TNC address or device path.
func (t *KISSTransport) Addr() string {
	return t.addr
}

// SetFrameHandler sets the handler for inbound frames.
func (t *KISSTransport) SetFrameHandler(handler interfaces.FrameHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = handler
}

// SetObserver sets the lifecycle observer.
func (t *KISSTransport) SetObserver(observer interfaces.LifecycleObserver) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observer = observer
}

// IsOpen reports whether the stream is connected.
func (t *KISSTransport) IsOpen() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.open
}

// IsSimulation always returns false.
func (t *KISSTransport) IsSimulation() bool {
	return false
}

// Open connects to the TNC and starts the read loop. Opening an open
// transport is a no-op; a closed transport cannot be reopened.
func (t *KISSTransport) Open(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return newTransportError("open", t.addr, ErrClosed)
	}
	if t.open {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	conn, err := t.dial(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = ErrOpenTimeout
		}
		logrus.WithFields(logrus.Fields{
			"function": "Open",
			"addr":     t.addr,
			"error":    err.Error(),
		}).Error("Failed to open KISS transport")
		return newTransportError("open", t.addr, err)
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		conn.Close()
		return newTransportError("open", t.addr, ErrClosed)
	}
	t.conn = conn
	t.open = true
	t.done = make(chan struct{})
	observer := t.observer
	t.mu.Unlock()

	go t.readLoop(conn, t.done)

	logrus.WithFields(logrus.Fields{
		"function": "Open",
		"addr":     t.addr,
	}).Debug("KISS transport open")

	if observer != nil {
		observer.OnOpen()
	}
	return nil
}

// Send encodes frame as an AX.25 UI frame and writes it to the TNC.
func (t *KISSTransport) Send(ctx context.Context, frame interfaces.Frame) error {
	t.mu.RLock()
	conn, open, closed := t.conn, t.open, t.closed
	t.mu.RUnlock()

	if closed {
		return newTransportError("send", t.addr, ErrClosed)
	}
	if !open {
		return newTransportError("send", t.addr, ErrNotOpen)
	}

	ax, err := ax25.EncodeUI(frame.Destination, frame.Source, frame.Payload)
	if err != nil {
		return newTransportError("send", t.addr, err)
	}
	if err := validateFrameSize(ax); err != nil {
		return newTransportError("send", t.addr, err)
	}
	data := EncodeKISS(ax)

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if wd, ok := conn.(writeDeadliner); ok {
		deadline, _ := ctx.Deadline()
		_ = wd.SetWriteDeadline(deadline)
	}

	if _, err := conn.Write(data); err != nil {
		terr := newTransportError("send", t.addr, err)
		t.notifyError(terr)
		return terr
	}

	logrus.WithFields(logrus.Fields{
		"function":    "Send",
		"source":      frame.Source.String(),
		"destination": frame.Destination.String(),
		"bytes":       len(data),
	}).Debug("Wrote KISS frame")
	return nil
}

// Close disconnects from the TNC and waits for the read loop to stop.
func (t *KISSTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.open = false
	conn, done, observer := t.conn, t.done, t.observer
	t.conn = nil
	t.mu.Unlock()

	if done == nil {
		return nil
	}

	var err error
	if conn != nil {
		err = conn.Close()
	}
	<-done

	logrus.WithFields(logrus.Fields{
		"function": "Close",
		"addr":     t.addr,
	}).Debug("KISS transport closed")

	if observer != nil {
		observer.OnClose()
	}
	if err != nil {
		return newTransportError("close", t.addr, err)
	}
	return nil
}

// readLoop decodes frames until the stream fails or is closed.
func (t *KISSTransport) readLoop(conn io.Reader, done chan struct{}) {
	defer close(done)

	dec := NewKISSDecoder(conn)
	for {
		data, err := dec.ReadFrame()
		if err != nil {
			t.handleReadError(err)
			return
		}
		t.dispatch(data)
	}
}

// handleReadError reports a read failure unless it was caused by Close.
// The stream is dropped; a later Open dials again.
func (t *KISSTransport) handleReadError(err error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.open = false
	stale := t.conn
	t.conn = nil
	t.mu.Unlock()

	if stale != nil {
		stale.Close()
	}

	terr := newTransportError("read", t.addr, err)
	logrus.WithFields(logrus.Fields{
		"function": "readLoop",
		"addr":     t.addr,
		"error":    err.Error(),
	}).Error("KISS read failed")
	t.notifyError(terr)
}

// dispatch decodes one AX.25 frame and hands it to the frame handler.
func (t *KISSTransport) dispatch(data []byte) {
	frame, err := ax25.Decode(data)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "dispatch",
			"bytes":    len(data),
			"error":    err.Error(),
		}).Warn("Dropping undecodable AX.25 frame")
		return
	}

	t.mu.RLock()
	handler := t.handler
	t.mu.RUnlock()

	if handler == nil {
		return
	}
	handler(interfaces.Frame{
		Source:      frame.Source,
		Destination: frame.Destination,
		Payload:     frame.Info,
	})
}

func (t *KISSTransport) notifyError(err error) {
	t.mu.RLock()
	observer := t.observer
	t.mu.RUnlock()

	if observer != nil {
		observer.OnTransportError(err)
	}
}

var _ interfaces.IFrameTransport = (*KISSTransport)(nil)
