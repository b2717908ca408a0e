package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_RedactsSensitiveKeys(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromCore(core)

	log.Info("proxy call", "endpoint", "/write", "api_key", "abc", "Contact_Email", "a@b.c")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/write", fields["endpoint"])
	assert.Equal(t, Redacted, fields["api_key"])
	assert.Equal(t, Redacted, fields["Contact_Email"])
}

func TestLogger_WithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromCore(core).With("request_id", "r1", "authorization", "Bearer x")

	log.Warn("slow backend", "backend", "device")

	entry := logs.All()[0]
	assert.Equal(t, zap.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "r1", fields["request_id"])
	assert.Equal(t, Redacted, fields["authorization"])
	assert.Equal(t, "device", fields["backend"])
}

func TestRedactKVs_OddLength(t *testing.T) {
	out := redactKVs([]any{"a", 1, "dangling"})
	assert.Equal(t, []any{"a", 1, "dangling"}, out)
}

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		l.Info("hello")
	}
	Nop().Error("discarded")
}
