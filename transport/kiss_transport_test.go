package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/voxchatter/ax25"
	"github.com/opd-ai/voxchatter/interfaces"
)

// fakeTNC accepts one KISS client over TCP.
type fakeTNC struct {
	listener net.Listener
	conns    chan net.Conn
}

func newFakeTNC(t *testing.T) *fakeTNC {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	tnc := &fakeTNC{listener: l, conns: make(chan net.Conn, 1)}
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		tnc.conns <- conn
	}()
	t.Cleanup(func() { l.Close() })
	return tnc
}

func (f *fakeTNC) accept(t *testing.T) net.Conn {
	t.Helper()
	select {
	case conn := <-f.conns:
		t.Cleanup(func() { conn.Close() })
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("client never connected")
		return nil
	}
}

type recordingObserver struct {
	mu     sync.Mutex
	opens  int
	closes int
	errs   []error
}

func (r *recordingObserver) OnOpen() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opens++
}

func (r *recordingObserver) OnClose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closes++
}

func (r *recordingObserver) OnTransportError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recordingObserver) errorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

var (
	local  = ax25.Station{Callsign: "KC3LZO"}
	remote = ax25.Station{Callsign: "W1AW", SSID: 7}
)

func openTCP(t *testing.T) (*KISSTransport, net.Conn, *recordingObserver) {
	t.Helper()
	tnc := newFakeTNC(t)
	tr := NewTCPTransport(tnc.listener.Addr().String())
	obs := &recordingObserver{}
	tr.SetObserver(obs)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, tr.Open(ctx))
	t.Cleanup(func() { tr.Close() })

	return tr, tnc.accept(t), obs
}

func TestKISSTransportSend(t *testing.T) {
	tr, server, obs := openTCP(t)
	assert.True(t, tr.IsOpen())
	assert.False(t, tr.IsSimulation())
	assert.Equal(t, 1, obs.opens)

	payload := []byte{0x7A, 0x39, 0x01, 0x00, 'h', 'i', FEND}
	require.NoError(t, tr.Send(context.Background(), interfaces.Frame{
		Source:      local,
		Destination: ax25.Broadcast,
		Payload:     payload,
	}))

	require.NoError(t, server.SetReadDeadline(time.Now().Add(2*time.Second)))
	raw, err := NewKISSDecoder(server).ReadFrame()
	require.NoError(t, err)

	frame, err := ax25.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, local, frame.Source)
	assert.Equal(t, ax25.Broadcast, frame.Destination)
	assert.Equal(t, payload, frame.Info)
}

func TestKISSTransportReceive(t *testing.T) {
	tr, server, _ := openTCP(t)

	received := make(chan interfaces.Frame, 1)
	tr.SetFrameHandler(func(f interfaces.Frame) { received <- f })

	ax, err := ax25.EncodeUI(local, remote, []byte("payload"))
	require.NoError(t, err)

	// noise first, then a real frame
	_, err = server.Write(EncodeKISS([]byte("not ax25")))
	require.NoError(t, err)
	_, err = server.Write(EncodeKISS(ax))
	require.NoError(t, err)

	select {
	case f := <-received:
		assert.Equal(t, remote, f.Source)
		assert.Equal(t, local, f.Destination)
		assert.Equal(t, []byte("payload"), f.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("frame not delivered")
	}
}

func TestKISSTransportReadFailure(t *testing.T) {
	tr, server, obs := openTCP(t)

	require.NoError(t, server.Close())

	assert.Eventually(t, func() bool { return obs.errorCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, tr.IsOpen())

	var terr *TransportError
	require.ErrorAs(t, obs.errs[0], &terr)
	assert.Equal(t, "read", terr.Op)
	assert.ErrorIs(t, terr, io.EOF)

	err := tr.Send(context.Background(), interfaces.Frame{Source: local, Destination: remote})
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestKISSTransportClose(t *testing.T) {
	tr, _, obs := openTCP(t)

	require.NoError(t, tr.Close())
	assert.False(t, tr.IsOpen())
	assert.Equal(t, 1, obs.closes)
	assert.Zero(t, obs.errorCount(), "closing is not a transport error")

	require.NoError(t, tr.Close(), "close is idempotent")
	assert.Equal(t, 1, obs.closes)

	err := tr.Send(context.Background(), interfaces.Frame{Source: local, Destination: remote})
	assert.ErrorIs(t, err, ErrClosed)

	err = tr.Open(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestKISSTransportSendBeforeOpen(t *testing.T) {
	tr := NewTCPTransport("127.0.0.1:1")
	err := tr.Send(context.Background(), interfaces.Frame{Source: local, Destination: remote})
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.NoError(t, tr.Close())
}

func TestKISSTransportRejectsBadStations(t *testing.T) {
	tr, _, _ := openTCP(t)

	err := tr.Send(context.Background(), interfaces.Frame{
		Source:      ax25.Station{Callsign: "bad!"},
		Destination: remote,
	})
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "send", terr.Op)
}

func TestKISSTransportOpenTimeout(t *testing.T) {
	tr := &KISSTransport{
		addr: "stalled",
		dial: func(ctx context.Context) (io.ReadWriteCloser, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tr.Open(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOpenTimeout)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "open", terr.Op)
	assert.Equal(t, "stalled", terr.Addr)
	assert.False(t, tr.IsOpen())
}

func TestKISSTransportOpenRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	err = NewTCPTransport(addr).Open(context.Background())
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.False(t, errors.Is(err, ErrOpenTimeout))
}

func TestDeviceTransportMissingPath(t *testing.T) {
	tr := NewDeviceTransport("/nonexistent/kisstnc", 9600)
	assert.Equal(t, "/nonexistent/kisstnc", tr.Addr())

	err := tr.Open(context.Background())
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "open", terr.Op)
}

func TestTransportErrorMessage(t *testing.T) {
	err := newTransportError("send", "localhost:8001", ErrClosed)
	assert.EqualError(t, err, "kiss send localhost:8001: transport closed")
	assert.EqualError(t, newTransportError("read", "", io.EOF), "kiss read: EOF")
}
