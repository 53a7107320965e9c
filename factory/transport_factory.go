package factory

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxchatter/interfaces"
	"github.com/opd-ai/voxchatter/testing"
	"github.com/opd-ai/voxchatter/transport"
)

// Bounds for VOXCHATTER_OPEN_TIMEOUT_MS.
const (
	MinOpenTimeout = 100 * time.Millisecond
	MaxOpenTimeout = 10 * time.Minute
)

// Environment variables read by the factory.
const (
	EnvKISSPort      = "VOXCHATTER_KISS_PORT"
	EnvOpenTimeout   = "VOXCHATTER_OPEN_TIMEOUT_MS"
	EnvUseSimulation = "VOXCHATTER_USE_SIMULATION"
)

// DefaultKISSPort is the pseudo terminal direwolf creates with -p.
const DefaultKISSPort = "/tmp/kisstnc"

const tcpScheme = "tcp://"

// TransportFactory creates transports. It is safe for concurrent use.
type TransportFactory struct {
	mu            sync.RWMutex
	defaultConfig *interfaces.TransportConfig
	channel       *testing.SimulatedChannel
}

// NewTransportFactory returns a factory whose default configuration has the
// environment overrides applied.
func NewTransportFactory() *TransportFactory {
	config := createDefaultConfig()
	ApplyEnvironmentOverrides(config)

	logrus.WithFields(logrus.Fields{
		"function":       "NewTransportFactory",
		"use_simulation": config.UseSimulation,
		"kiss_port":      config.KISSPort,
		"open_timeout":   config.OpenTimeout.String(),
	}).Debug("Created transport factory")

	return &TransportFactory{defaultConfig: config}
}

func createDefaultConfig() *interfaces.TransportConfig {
	return &interfaces.TransportConfig{
		UseSimulation: false,
		KISSPort:      DefaultKISSPort,
		KISSBaud:      9600,
		OpenTimeout:   5 * time.Second,
	}
}

// ApplyEnvironmentOverrides updates config from VOXCHATTER_* variables.
func ApplyEnvironmentOverrides(config *interfaces.TransportConfig) {
	parseKISSPortSetting(config)
	parseOpenTimeoutSetting(config)
	parseSimulationSetting(config)
}

func parseKISSPortSetting(config *interfaces.TransportConfig) {
	if port := strings.TrimSpace(os.Getenv(EnvKISSPort)); port != "" {
		config.KISSPort = port
	}
}

func parseOpenTimeoutSetting(config *interfaces.TransportConfig) {
	timeoutStr := os.Getenv(EnvOpenTimeout)
	if timeoutStr == "" {
		return
	}
	ms, err := strconv.Atoi(timeoutStr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "parseOpenTimeoutSetting",
			"env_var":     EnvOpenTimeout,
			"value":       timeoutStr,
			"error":       err.Error(),
			"using_value": config.OpenTimeout.String(),
		}).Warn("Failed to parse open timeout override, using configured value")
		return
	}
	timeout := time.Duration(ms) * time.Millisecond
	if timeout < MinOpenTimeout || timeout > MaxOpenTimeout {
		logrus.WithFields(logrus.Fields{
			"function":    "parseOpenTimeoutSetting",
			"env_var":     EnvOpenTimeout,
			"value":       ms,
			"min":         MinOpenTimeout.Milliseconds(),
			"max":         MaxOpenTimeout.Milliseconds(),
			"using_value": config.OpenTimeout.String(),
		}).Warn("Open timeout override out of bounds, using configured value")
		return
	}
	config.OpenTimeout = timeout
}

func parseSimulationSetting(config *interfaces.TransportConfig) {
	useSimStr := os.Getenv(EnvUseSimulation)
	if useSimStr == "" {
		return
	}
	useSim, err := strconv.ParseBool(useSimStr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "parseSimulationSetting",
			"env_var":     EnvUseSimulation,
			"value":       useSimStr,
			"error":       err.Error(),
			"using_value": config.UseSimulation,
		}).Warn("Failed to parse simulation override, using configured value")
		return
	}
	config.UseSimulation = useSim
}

// ParseKISSPort splits a kissPort setting into its kind ("tcp" or
// "device") and address.
func ParseKISSPort(port string) (kind, addr string, err error) {
	port = strings.TrimSpace(port)
	if port == "" {
		return "", "", fmt.Errorf("kiss port is empty")
	}
	if strings.HasPrefix(port, tcpScheme) {
		addr = strings.TrimPrefix(port, tcpScheme)
		if !strings.Contains(addr, ":") {
			return "", "", fmt.Errorf("kiss port %q: missing tcp port number", port)
		}
		return "tcp", addr, nil
	}
	if strings.Contains(port, "://") {
		return "", "", fmt.Errorf("kiss port %q: unsupported scheme", port)
	}
	return "device", port, nil
}

// EffectiveConfig returns a copy of config with the environment overrides
// applied and validated. A nil config selects the default.
func (f *TransportFactory) EffectiveConfig(config *interfaces.TransportConfig) (*interfaces.TransportConfig, error) {
	f.mu.RLock()
	if config == nil {
		config = f.defaultConfig
	}
	effective := *config
	f.mu.RUnlock()

	ApplyEnvironmentOverrides(&effective)
	if err := effective.Validate(); err != nil {
		return nil, fmt.Errorf("transport config: %w", err)
	}
	return &effective, nil
}

// CreateTransport creates a transport from the default configuration.
func (f *TransportFactory) CreateTransport() (interfaces.IFrameTransport, error) {
	return f.CreateTransportWithConfig(nil)
}

// CreateTransportWithConfig creates a transport from config with the
// environment overrides applied. A nil config selects the default.
func (f *TransportFactory) CreateTransportWithConfig(config *interfaces.TransportConfig) (interfaces.IFrameTransport, error) {
	effective, err := f.EffectiveConfig(config)
	if err != nil {
		return nil, err
	}

	if effective.UseSimulation {
		logrus.WithFields(logrus.Fields{
			"function": "CreateTransportWithConfig",
			"type":     "simulation",
		}).Info("Creating simulated transport")
		return f.SimulationChannel().NewTransport("local"), nil
	}

	kind, addr, err := ParseKISSPort(effective.KISSPort)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "CreateTransportWithConfig",
		"type":     kind,
		"addr":     addr,
	}).Info("Creating KISS transport")

	if kind == "tcp" {
		return transport.NewTCPTransport(addr), nil
	}
	return transport.NewDeviceTransport(addr, effective.KISSBaud), nil
}

// SimulationChannel returns the channel simulated transports attach to,
// creating it on first use.
func (f *TransportFactory) SimulationChannel() *testing.SimulatedChannel {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.channel == nil {
		f.channel = testing.NewSimulatedChannel()
	}
	return f.channel
}

// GetCurrentConfig returns a copy of the default configuration.
func (f *TransportFactory) GetCurrentConfig() *interfaces.TransportConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()
	c := *f.defaultConfig
	return &c
}

// UpdateConfig replaces the default configuration.
func (f *TransportFactory) UpdateConfig(config *interfaces.TransportConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":       "UpdateConfig",
		"old_simulation": f.defaultConfig.UseSimulation,
		"new_simulation": config.UseSimulation,
		"old_kiss_port":  f.defaultConfig.KISSPort,
		"new_kiss_port":  config.KISSPort,
	}).Info("Updating transport factory configuration")

	c := *config
	f.defaultConfig = &c
	return nil
}
