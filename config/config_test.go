package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/voxchatter/ax25"
	"github.com/opd-ai/voxchatter/crypto"
)

func TestDefault(t *testing.T) {
	cfg := Default("/home/op/.voxchatter")
	assert.Equal(t, Version, cfg.Version)
	assert.Equal(t, "N0CALL", cfg.Callsign)
	assert.Equal(t, "/home/op/.voxchatter/keystore.json", cfg.KeystoreFile)
	assert.Equal(t, "/tmp/kisstnc", cfg.KISSPort)
	assert.Equal(t, 9600, cfg.KISSBaud)
	assert.Equal(t, 5*time.Second, cfg.EchoDebounce())
	assert.Equal(t, 5*time.Second, cfg.OpenTimeout())
	assert.NoError(t, cfg.Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	cfg := Default(dir)
	cfg.Callsign = "KC3LZO"
	cfg.SSID = 9
	cfg.Nick = "brannon"
	cfg.KISSPort = "tcp://localhost:8001"
	cfg.EchoDebounceMs = 0
	require.NoError(t, Save(cfg, path))
	assert.True(t, Exists(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Zero(t, loaded.EchoDebounce(), "explicit zero disables echo suppression")
	assert.Equal(t, ax25.Station{Callsign: "KC3LZO", SSID: 9}, loaded.Station())
}

func TestLoadFillsMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	legacy := `{
    "version": 1,
    "callsign": "W1AW",
    "nick": "",
    "keystoreFile": "/tmp/ks.json",
    "kissPort": "/tmp/kisstnc",
    "kissBaud": 9600
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "W1AW", cfg.Callsign)
	assert.Equal(t, "/tmp/ks.json", cfg.KeystoreFile)
	assert.Equal(t, DefaultEchoDebounceMs, cfg.EchoDebounceMs)
	assert.Equal(t, DefaultOpenTimeoutMs, cfg.OpenTimeoutMs)
	assert.Equal(t, uint8(0), cfg.SSID)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"signing key", func(c *Config) { c.SigningKey = kp.Public }, false},
		{"bad version", func(c *Config) { c.Version = 2 }, true},
		{"bad callsign", func(c *Config) { c.Callsign = "n0 call" }, true},
		{"bad ssid", func(c *Config) { c.SSID = 16 }, true},
		{"no keystore", func(c *Config) { c.KeystoreFile = "" }, true},
		{"no port", func(c *Config) { c.KISSPort = "" }, true},
		{"negative baud", func(c *Config) { c.KISSBaud = -1 }, true},
		{"negative debounce", func(c *Config) { c.EchoDebounceMs = -1 }, true},
		{"zero open timeout", func(c *Config) { c.OpenTimeoutMs = 0 }, true},
		{"bad signing key", func(c *Config) { c.SigningKey = "abc" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(t.TempDir())
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DirName)

	cfg, err := Init(dir)
	require.NoError(t, err)
	assert.True(t, Exists(filepath.Join(dir, ConfigFileName)))
	assert.True(t, Exists(cfg.KeystoreFile))
	assert.Equal(t, filepath.Join(dir, KeystoreFileName), cfg.KeystoreFile)

	// existing files are left alone
	cfg.Callsign = "KC3LZO"
	require.NoError(t, Save(cfg, filepath.Join(dir, ConfigFileName)))
	ks, err := crypto.OpenKeystore(cfg.KeystoreFile)
	require.NoError(t, err)
	_, err = ks.GenKeyPair("KC3LZO")
	require.NoError(t, err)

	again, err := Init(dir)
	require.NoError(t, err)
	assert.Equal(t, "KC3LZO", again.Callsign)

	reopened, err := crypto.OpenKeystore(again.KeystoreFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"KC3LZO"}, reopened.Callsigns())
}

func TestTransportConfig(t *testing.T) {
	cfg := Default(t.TempDir())
	cfg.KISSPort = "tcp://localhost:8001"
	cfg.OpenTimeoutMs = 1500

	tc := cfg.TransportConfig()
	assert.Equal(t, "tcp://localhost:8001", tc.KISSPort)
	assert.Equal(t, 1500*time.Millisecond, tc.OpenTimeout)
	assert.False(t, tc.UseSimulation)
	assert.NoError(t, tc.Validate())
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("HOME", "/home/op")
	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/op/.voxchatter", dir)
}
