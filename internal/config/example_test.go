package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippedConfigMatchesDefaults(t *testing.T) {
	cfg, err := LoadConfig("../../configs/launchpad.json")
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Curve, cfg.Curve)
	assert.Equal(t, def.Rewards, cfg.Rewards)
	assert.Equal(t, def.Service, cfg.Service)
	assert.Equal(t, "stderr", cfg.Log.Console)
}
