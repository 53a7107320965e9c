package crypto

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	oldOut := logrus.StandardLogger().Out
	oldLevel := logrus.GetLevel()
	logrus.SetOutput(&buf)
	logrus.SetLevel(logrus.DebugLevel)
	t.Cleanup(func() {
		logrus.SetOutput(oldOut)
		logrus.SetLevel(oldLevel)
	})
	return &buf
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger("Sign")
	assert.Equal(t, "Sign", logger.function)
	assert.Equal(t, "Sign", logger.fields["function"])
	assert.Equal(t, "crypto", logger.fields["package"])
}

func TestLoggerHelperFields(t *testing.T) {
	logger := NewLogger("Verify").
		WithField("callsign", "N0CALL").
		WithFields(logrus.Fields{"keys": 2}).
		WithError(errors.New("boom"), "parse")

	assert.Equal(t, "N0CALL", logger.fields["callsign"])
	assert.Equal(t, 2, logger.fields["keys"])
	assert.Equal(t, "boom", logger.fields["error"])
	assert.Equal(t, "parse", logger.fields["operation"])
}

func TestLoggerHelperLevels(t *testing.T) {
	buf := captureLogs(t)

	tests := []struct {
		name  string
		log   func(*LoggerHelper)
		level string
	}{
		{"debug", func(l *LoggerHelper) { l.Debug("debug message") }, "level=debug"},
		{"info", func(l *LoggerHelper) { l.Info("info message") }, "level=info"},
		{"warn", func(l *LoggerHelper) { l.Warn("warn message") }, "level=warning"},
		{"error", func(l *LoggerHelper) { l.Error("error message") }, "level=error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log(NewLogger("TestLevels"))
			out := buf.String()
			assert.Contains(t, out, tt.level)
			assert.Contains(t, out, "function=TestLevels")
			assert.Contains(t, out, tt.name+" message")
		})
	}
}

func TestWithPrivateKeyNeverLogsKey(t *testing.T) {
	buf := captureLogs(t)

	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	NewLogger("TestPrivate").WithPrivateKey(kp.Private).Debug("using key")
	out := buf.String()
	assert.NotContains(t, out, kp.Private)
	assert.Contains(t, out, "private_key_size=64")
}

func TestSecureFieldHash(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		preview string
		size    int
	}{
		{"nil", nil, "nil", 0},
		{"short", []byte{0x01, 0x02}, "0102", 2},
		{"exact", []byte{0xde, 0xad, 0xbe, 0xef}, "deadbeef", 4},
		{"long", bytes.Repeat([]byte{0xab}, 32), "abababab...", 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := SecureFieldHash(tt.data, "key")
			assert.Equal(t, tt.preview, fields["key_preview"])
			assert.Equal(t, tt.size, fields["key_size"])
			assert.False(t, strings.Contains(fields["key_preview"].(string), "abababababab"))
		})
	}
}
