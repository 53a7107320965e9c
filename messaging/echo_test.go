package messaging

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"

	"github.com/opd-ai/voxchatter/ax25"
)

func TestFingerprint(t *testing.T) {
	a := ax25.Station{Callsign: "W1AW"}
	b := ax25.Station{Callsign: "KC3LZO"}
	frame := []byte{0x7A, 0x39, 0x01, 0x00, 'h', 'i'}

	assert.Equal(t, Fingerprint(a, b, frame), Fingerprint(a, b, frame))
	assert.NotEqual(t, Fingerprint(a, b, frame), Fingerprint(b, a, frame))
	assert.NotEqual(t, Fingerprint(a, b, frame), Fingerprint(a, ax25.Broadcast, frame))
	assert.NotEqual(t, Fingerprint(a, b, frame), Fingerprint(a, b, frame[:5]))
	assert.NotEqual(t,
		Fingerprint(ax25.Station{Callsign: "W1AW", SSID: 1}, b, frame),
		Fingerprint(a, b, frame))
}

func TestEchoTableExpiry(t *testing.T) {
	mock := clock.NewMock()
	table := newEchoTable(mock, time.Second)

	table.register(1)
	table.register(1)
	table.register(2)
	assert.Equal(t, 2, table.count(1))
	assert.True(t, table.contains(2))
	assert.True(t, table.contains(2), "lookups do not consume entries")
	assert.False(t, table.contains(3))

	mock.Add(time.Second)
	assert.Eventually(t, func() bool { return table.size() == 0 }, time.Second, 5*time.Millisecond)
	assert.False(t, table.contains(1))
}

func TestEchoTableCancel(t *testing.T) {
	mock := clock.NewMock()
	table := newEchoTable(mock, time.Second)

	cancelFirst := table.register(7)
	table.register(7)

	cancelFirst()
	cancelFirst()
	assert.Equal(t, 1, table.count(7), "cancel releases exactly one reference")

	mock.Add(time.Second)
	assert.Eventually(t, func() bool { return table.count(7) == 0 }, time.Second, 5*time.Millisecond)
}

func TestEchoTableCancelAfterExpiry(t *testing.T) {
	mock := clock.NewMock()
	table := newEchoTable(mock, time.Second)

	cancel := table.register(9)
	mock.Add(time.Second)
	assert.Eventually(t, func() bool { return table.count(9) == 0 }, time.Second, 5*time.Millisecond)

	table.register(9)
	cancel()
	assert.Equal(t, 1, table.count(9), "stale cancel must not release a newer registration")
}

func TestEchoTableClear(t *testing.T) {
	mock := clock.NewMock()
	table := newEchoTable(mock, time.Second)

	cancel := table.register(1)
	table.register(2)
	table.clear()
	assert.Equal(t, 0, table.size())

	table.register(1)
	cancel()
	mock.Add(500 * time.Millisecond)
	assert.Equal(t, 1, table.count(1), "entries from before clear do not touch new ones")

	mock.Add(500 * time.Millisecond)
	assert.Eventually(t, func() bool { return table.size() == 0 }, time.Second, 5*time.Millisecond)
}
