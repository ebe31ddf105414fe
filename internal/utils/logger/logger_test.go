package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launchpad.log")

	l, err := New(&Config{LogFile: path, MaxSize: 1, MaxBackups: 1, MaxAge: 1})
	require.NoError(t, err)

	l.WithComponent("curve").Info("quote computed", zap.Float64("amount_in", 1))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"curve"`)
	assert.Contains(t, string(data), `"msg":"quote computed"`)
}

func TestNewWithoutFile(t *testing.T) {
	l, err := New(&Config{Development: true})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))
}

func TestNewConsoleOff(t *testing.T) {
	l, err := New(&Config{Console: "off"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.ErrorLevel))
}

func TestContextHelpers(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := Wrap(zap.New(core))

	l.WithToken("0xtoken").Info("token")
	l.WithCreator("0xcreator").Info("creator")
	l.WithOperation("buy").Info("op")
	l.LogError("failed", assert.AnError)

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "0xtoken", entries[0].ContextMap()["token"])
	assert.Equal(t, "0xcreator", entries[1].ContextMap()["creator"])
	assert.Equal(t, "buy", entries[2].ContextMap()["operation"])
	assert.NotEmpty(t, entries[2].ContextMap()["correlation_id"])
	assert.Equal(t, assert.AnError.Error(), entries[3].ContextMap()["error"])
}

func TestTrackPerformance(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := Wrap(zap.New(core))

	end := l.TrackPerformance("replay")
	end()

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "Operation completed", logs.All()[1].Message)
}
