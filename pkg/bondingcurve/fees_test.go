package bondingcurve

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitConcrete(t *testing.T) {
	split, err := Split(0.0125, DefaultConfig())
	require.NoError(t, err)

	assert.InDelta(t, 0.01, split.PlatformFee, 1e-15)
	assert.InDelta(t, 0.0025, split.CreatorFee, 1e-15)
	assert.InDelta(t, 0.0125, split.Total(), 1e-15)
}

func TestSplitConservesFee(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		fee := rng.ExpFloat64() * math.Pow10(rng.Intn(12)-6)

		split, err := Split(fee, cfg)
		require.NoError(t, err)

		tolerance := 1e-9 * fee
		assert.InDelta(t, fee, split.PlatformFee+split.CreatorFee, tolerance)
		assert.InDelta(t, fee*cfg.CreatorFeeRate/cfg.TotalFeeRate, split.CreatorFee, tolerance)
		assert.GreaterOrEqual(t, split.CreatorFee, 0.0)
	}
}

func TestSplitZero(t *testing.T) {
	split, err := Split(0, DefaultConfig())
	require.NoError(t, err)
	assert.Zero(t, split.PlatformFee)
	assert.Zero(t, split.CreatorFee)
}

func TestSplitErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TotalFeeRate = 0

	_, err := Split(1, cfg)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = Split(-1, DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Split(math.NaN(), DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFeeOn(t *testing.T) {
	c := newTestCurve(t)

	fee, err := c.FeeOn(8)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, fee, 1e-15)

	_, err = c.FeeOn(-8)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
