package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/voxchatter/ax25"
	"github.com/opd-ai/voxchatter/interfaces"
	testsim "github.com/opd-ai/voxchatter/testing"
	"github.com/opd-ai/voxchatter/transport"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvKISSPort, "")
	t.Setenv(EnvOpenTimeout, "")
	t.Setenv(EnvUseSimulation, "")
}

func TestNewTransportFactoryDefaults(t *testing.T) {
	clearEnv(t)
	f := NewTransportFactory()

	cfg := f.GetCurrentConfig()
	assert.False(t, cfg.UseSimulation)
	assert.Equal(t, DefaultKISSPort, cfg.KISSPort)
	assert.Equal(t, 5*time.Second, cfg.OpenTimeout)
}

func TestEnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		port    string
		timeout time.Duration
		sim     bool
	}{
		{"none", nil, DefaultKISSPort, 5 * time.Second, false},
		{"port", map[string]string{EnvKISSPort: "tcp://radio:8001"}, "tcp://radio:8001", 5 * time.Second, false},
		{"timeout", map[string]string{EnvOpenTimeout: "250"}, DefaultKISSPort, 250 * time.Millisecond, false},
		{"timeout not a number", map[string]string{EnvOpenTimeout: "soon"}, DefaultKISSPort, 5 * time.Second, false},
		{"timeout too small", map[string]string{EnvOpenTimeout: "5"}, DefaultKISSPort, 5 * time.Second, false},
		{"timeout too large", map[string]string{EnvOpenTimeout: "600001"}, DefaultKISSPort, 5 * time.Second, false},
		{"simulation", map[string]string{EnvUseSimulation: "true"}, DefaultKISSPort, 5 * time.Second, true},
		{"simulation garbage", map[string]string{EnvUseSimulation: "maybe"}, DefaultKISSPort, 5 * time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := createDefaultConfig()
			ApplyEnvironmentOverrides(cfg)
			assert.Equal(t, tt.port, cfg.KISSPort)
			assert.Equal(t, tt.timeout, cfg.OpenTimeout)
			assert.Equal(t, tt.sim, cfg.UseSimulation)
		})
	}
}

func TestParseKISSPort(t *testing.T) {
	tests := []struct {
		port    string
		kind    string
		addr    string
		wantErr bool
	}{
		{"tcp://localhost:8001", "tcp", "localhost:8001", false},
		{"tcp://[::1]:8001", "tcp", "[::1]:8001", false},
		{"/tmp/kisstnc", "device", "/tmp/kisstnc", false},
		{"/dev/ttyUSB0", "device", "/dev/ttyUSB0", false},
		{"tcp://localhost", "", "", true},
		{"udp://localhost:8001", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.port, func(t *testing.T) {
			kind, addr, err := ParseKISSPort(tt.port)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.addr, addr)
		})
	}
}

func TestCreateTransportKinds(t *testing.T) {
	clearEnv(t)
	f := NewTransportFactory()

	tr, err := f.CreateTransportWithConfig(&interfaces.TransportConfig{KISSPort: "tcp://localhost:8001"})
	require.NoError(t, err)
	kt, ok := tr.(*transport.KISSTransport)
	require.True(t, ok)
	assert.Equal(t, "localhost:8001", kt.Addr())
	assert.False(t, tr.IsSimulation())

	tr, err = f.CreateTransportWithConfig(&interfaces.TransportConfig{KISSPort: "/tmp/kisstnc"})
	require.NoError(t, err)
	kt, ok = tr.(*transport.KISSTransport)
	require.True(t, ok)
	assert.Equal(t, "/tmp/kisstnc", kt.Addr())

	_, err = f.CreateTransportWithConfig(&interfaces.TransportConfig{KISSPort: "ftp://x:1"})
	assert.Error(t, err)

	_, err = f.CreateTransportWithConfig(&interfaces.TransportConfig{})
	assert.Error(t, err)
}

func TestCreateTransportEnvironmentWins(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvKISSPort, "tcp://override:9000")

	tr, err := NewTransportFactory().CreateTransportWithConfig(&interfaces.TransportConfig{KISSPort: "/tmp/kisstnc"})
	require.NoError(t, err)
	assert.Equal(t, "override:9000", tr.(*transport.KISSTransport).Addr())
}

func TestEffectiveConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvOpenTimeout, "200")
	f := NewTransportFactory()

	in := &interfaces.TransportConfig{KISSPort: "/dev/ttyUSB0", KISSBaud: 1200, OpenTimeout: 3 * time.Second}
	got, err := f.EffectiveConfig(in)
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, got.OpenTimeout)
	assert.Equal(t, 1200, got.KISSBaud)
	assert.Equal(t, 3*time.Second, in.OpenTimeout, "input is not modified")

	_, err = f.EffectiveConfig(&interfaces.TransportConfig{})
	assert.Error(t, err)
}

func TestCreateSimulatedTransport(t *testing.T) {
	clearEnv(t)
	f := NewTransportFactory()
	require.NoError(t, f.UpdateConfig(&interfaces.TransportConfig{UseSimulation: true}))

	tr, err := f.CreateTransport()
	require.NoError(t, err)
	assert.True(t, tr.IsSimulation())

	peer := f.SimulationChannel().NewTransport("peer")
	received := make(chan interfaces.Frame, 1)
	peer.SetFrameHandler(func(fr interfaces.Frame) { received <- fr })

	ctx := context.Background()
	require.NoError(t, tr.Open(ctx))
	require.NoError(t, peer.Open(ctx))
	require.NoError(t, tr.Send(ctx, interfaces.Frame{
		Source:      ax25.Station{Callsign: "N0CALL"},
		Destination: ax25.Broadcast,
		Payload:     []byte{1, 2, 3},
	}))

	fr := <-received
	assert.Equal(t, []byte{1, 2, 3}, fr.Payload)

	_, ok := tr.(*testsim.SimulatedTransport)
	assert.True(t, ok)
}

func TestUpdateConfig(t *testing.T) {
	clearEnv(t)
	f := NewTransportFactory()

	assert.Error(t, f.UpdateConfig(nil))
	assert.Error(t, f.UpdateConfig(&interfaces.TransportConfig{OpenTimeout: -1, UseSimulation: true}))

	require.NoError(t, f.UpdateConfig(&interfaces.TransportConfig{KISSPort: "tcp://a:1", OpenTimeout: time.Second}))
	cfg := f.GetCurrentConfig()
	assert.Equal(t, "tcp://a:1", cfg.KISSPort)

	cfg.KISSPort = "mutated"
	assert.Equal(t, "tcp://a:1", f.GetCurrentConfig().KISSPort, "returns a copy")
}
