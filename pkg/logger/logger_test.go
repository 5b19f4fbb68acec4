package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{" WARN ", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := fromCore(core, "test")

	log.WithRequestID("req-1").
		WithUserID("").
		WithFields(map[string]interface{}{"page": 2}).
		WithError(errors.New("boom")).
		Warn("listing failed")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, ServiceName, fields["service"])
	assert.Equal(t, "test", fields["env"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.NotContains(t, fields, "user_id")
	assert.EqualValues(t, 2, fields["page"])
	assert.Equal(t, "boom", fields["error"])
}

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		log, err := New("debug", env)
		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(zapcore.DebugLevel), env)
	}
}
