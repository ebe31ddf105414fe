package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LAUNCHPAD_LOG_FILE", filepath.Join(dir, "curvectl.log"))
	t.Setenv("LAUNCHPAD_LOG_CONSOLE", "off")
	return dir
}

func TestRunCommands(t *testing.T) {
	isolate(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"Price", []string{"-json", "price", "-supply", "1e9"}, false},
		{"Buy", []string{"buy", "-amount", "1", "-supply", "1000"}, false},
		{"Sell", []string{"-json", "sell", "-tokens", "100", "-supply", "1000"}, false},
		{"Oversell", []string{"sell", "-tokens", "2000", "-supply", "1000"}, true},
		{"State", []string{"state", "-raised", "11.85", "-supply", "2e8"}, false},
		{"Simulate", []string{"-json", "simulate"}, false},
		{"Simulate styled", []string{"simulate"}, false},
		{"Simulate one token", []string{"simulate", "-token", "moon"}, false},
		{"Unknown command", []string{"launch"}, true},
		{"No command", nil, true},
		{"Bad flag", []string{"price", "-supply", "many"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(ctx, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestExportToDirectory(t *testing.T) {
	dir := isolate(t)

	out := filepath.Join(dir, "exports")
	require.NoError(t, run(context.Background(), []string{"export", "-format", "json", "-side", "buy", "-out", out}))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "trades_buy_")
}
