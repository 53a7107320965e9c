// Package config reads and writes the voxchatter configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxchatter/ax25"
	"github.com/opd-ai/voxchatter/crypto"
	"github.com/opd-ai/voxchatter/interfaces"
)

// Version is the config file format version.
const Version = 1

// File names inside the voxchatter directory.
const (
	DirName          = ".voxchatter"
	ConfigFileName   = "config.json"
	KeystoreFileName = "keystore.json"
)

// Defaults for fields missing from a config file.
const (
	DefaultCallsign       = "N0CALL"
	DefaultKISSPort       = "/tmp/kisstnc"
	DefaultKISSBaud       = 9600
	DefaultEchoDebounceMs = 5000
	DefaultOpenTimeoutMs  = 5000
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the on-disk configuration.
type Config struct {
	Version        int    `json:"version"`
	Callsign       string `json:"callsign"`
	SSID           uint8  `json:"ssid"`
	Nick           string `json:"nick"`
	KeystoreFile   string `json:"keystoreFile"`
	KISSPort       string `json:"kissPort"`
	KISSBaud       int    `json:"kissBaud"`
	SigningKey     string `json:"signingKey,omitempty"`
	EchoDebounceMs int    `json:"echoDebounceMs"`
	OpenTimeoutMs  int    `json:"openTimeoutMs"`
}

// DefaultDir returns ~/.voxchatter.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// Default returns the default configuration with its keystore in dir.
func Default(dir string) *Config {
	return &Config{
		Version:        Version,
		Callsign:       DefaultCallsign,
		KeystoreFile:   filepath.Join(dir, KeystoreFileName),
		KISSPort:       DefaultKISSPort,
		KISSBaud:       DefaultKISSBaud,
		EchoDebounceMs: DefaultEchoDebounceMs,
		OpenTimeoutMs:  DefaultOpenTimeoutMs,
	}
}

// Exists reports whether a file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Load reads the config file at path. Fields missing from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default(filepath.Dir(path))
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Load",
		"path":     path,
		"callsign": cfg.Callsign,
	}).Debug("Loaded config")
	return cfg, nil
}

// Save writes cfg to path as indented JSON.
func Save(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Init creates dir, a default config file and an empty keystore, each only
// if missing, and returns the config found or written.
func Init(dir string) (*Config, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "Init",
		"dir":      dir,
	})

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	path := filepath.Join(dir, ConfigFileName)
	var cfg *Config
	if Exists(path) {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = Default(dir)
		if err := Save(cfg, path); err != nil {
			return nil, err
		}
		logger.Info("Wrote default config")
	}

	if !Exists(cfg.KeystoreFile) {
		if _, err := crypto.OpenKeystore(cfg.KeystoreFile); err != nil {
			return nil, err
		}
		logger.WithField("keystore", cfg.KeystoreFile).Info("Created keystore")
	}
	return cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if c.Version != Version {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidConfig, c.Version)
	}
	if _, err := ax25.NewStation(c.Callsign, int(c.SSID)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.KeystoreFile == "" {
		return fmt.Errorf("%w: keystoreFile is required", ErrInvalidConfig)
	}
	if c.KISSPort == "" {
		return fmt.Errorf("%w: kissPort is required", ErrInvalidConfig)
	}
	if c.KISSBaud < 0 {
		return fmt.Errorf("%w: kissBaud cannot be negative", ErrInvalidConfig)
	}
	if c.EchoDebounceMs < 0 {
		return fmt.Errorf("%w: echoDebounceMs cannot be negative", ErrInvalidConfig)
	}
	if c.OpenTimeoutMs <= 0 {
		return fmt.Errorf("%w: openTimeoutMs must be positive", ErrInvalidConfig)
	}
	if c.SigningKey != "" {
		if _, err := crypto.ParsePublicKey(c.SigningKey); err != nil {
			return fmt.Errorf("%w: signingKey: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}

// Station returns the configured local station.
func (c *Config) Station() ax25.Station {
	return ax25.Station{Callsign: c.Callsign, SSID: c.SSID}
}

// EchoDebounce returns the echo suppression window. Zero disables it.
func (c *Config) EchoDebounce() time.Duration {
	return time.Duration(c.EchoDebounceMs) * time.Millisecond
}

// OpenTimeout returns how long to wait for the TNC.
func (c *Config) OpenTimeout() time.Duration {
	return time.Duration(c.OpenTimeoutMs) * time.Millisecond
}

// TransportConfig returns the transport settings.
func (c *Config) TransportConfig() *interfaces.TransportConfig {
	return &interfaces.TransportConfig{
		KISSPort:    c.KISSPort,
		KISSBaud:    c.KISSBaud,
		OpenTimeout: c.OpenTimeout(),
	}
}
