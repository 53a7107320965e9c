package interfaces

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransportConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  TransportConfig
		wantErr bool
	}{
		{"simulation", TransportConfig{UseSimulation: true}, false},
		{"tcp", TransportConfig{KISSPort: "tcp://localhost:8001", OpenTimeout: time.Second}, false},
		{"device", TransportConfig{KISSPort: "/tmp/kisstnc", KISSBaud: 9600}, false},
		{"missing port", TransportConfig{}, true},
		{"negative timeout", TransportConfig{UseSimulation: true, OpenTimeout: -1}, true},
		{"negative baud", TransportConfig{KISSPort: "/dev/ttyUSB0", KISSBaud: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestObserverFuncs(t *testing.T) {
	var opened, closed bool
	var got error
	obs := ObserverFuncs{
		Open:           func() { opened = true },
		Close:          func() { closed = true },
		TransportError: func(err error) { got = err },
	}

	var lo LifecycleObserver = obs
	lo.OnOpen()
	lo.OnClose()
	lo.OnTransportError(errors.New("link down"))

	assert.True(t, opened)
	assert.True(t, closed)
	assert.EqualError(t, got, "link down")

	assert.NotPanics(t, func() {
		var empty ObserverFuncs
		empty.OnOpen()
		empty.OnClose()
		empty.OnTransportError(errors.New("ignored"))
	})
}
