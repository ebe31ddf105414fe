package bondingcurve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateBuyFeeBreakdown(t *testing.T) {
	c := newTestCurve(t)

	res, err := c.SimulateBuy(1.0, 0)
	require.NoError(t, err)

	assert.Equal(t, Buy, res.Side)
	assert.InDelta(t, 0.0125, res.TotalFee, 1e-15)
	assert.InDelta(t, 0.01, res.PlatformFee, 1e-15)
	assert.InDelta(t, 0.0025, res.CreatorFee, 1e-15)
	assert.InDelta(t, 0.9875, res.NetAmount, 1e-15)
	assert.False(t, res.Approximated)
}

func TestSimulateBuyMatchesClosedForm(t *testing.T) {
	c := newTestCurve(t)
	cfg := c.Config()

	for _, tc := range []struct {
		amountIn float64
		supply   float64
	}{
		{1.0, 0},
		{1.0, 1000},
		{5.0, 1e8},
		{0.5, 4e8},
	} {
		res, err := c.SimulateBuy(tc.amountIn, tc.supply)
		require.NoError(t, err)

		net := tc.amountIn * (1 - cfg.TotalFeeRate)
		k, S, p0 := cfg.GrowthFactor, cfg.TotalSupply, cfg.InitialPrice
		wantSupply := S / k * math.Log(math.Exp(k*tc.supply/S)+net*k/(p0*S))

		assert.InEpsilon(t, wantSupply-tc.supply, res.AmountOut, 1e-9, "amountIn=%g supply=%g", tc.amountIn, tc.supply)
		assert.InEpsilon(t, wantSupply, res.SupplyAfter, 1e-12)

		// Spending net along the curve must cost exactly net.
		cost, err := c.CostToBuy(res.AmountOut, tc.supply)
		require.NoError(t, err)
		assert.InEpsilon(t, net, cost, 1e-9)
	}
}

func TestSimulateBuyPriceImpact(t *testing.T) {
	c := newTestCurve(t)

	res, err := c.SimulateBuy(2.0, 1e8)
	require.NoError(t, err)

	p1, _ := c.Price(1e8)
	p2, _ := c.Price(res.SupplyAfter)
	assert.InEpsilon(t, (p2-p1)/p1*100, res.PriceImpactPercent, 1e-12)
	assert.Greater(t, res.PriceImpactPercent, 0.0)
	assert.Greater(t, res.AveragePrice, res.PriceBefore)
	assert.Less(t, res.AveragePrice, res.PriceAfter)
}

func TestSimulateBuySmallTradeBranch(t *testing.T) {
	c := newTestCurve(t)

	res, err := c.SimulateBuy(0.05, 0)
	require.NoError(t, err)

	assert.True(t, res.Approximated)
	linear := 0.05 * 0.9875 / 1e-8
	assert.InEpsilon(t, linear*math.Exp(-5.43*linear/1e9), res.AmountOut, 1e-12)

	// Both branches agree closely at the threshold.
	below, err := c.SimulateBuy(math.Nextafter(SmallTradeThreshold, 0), 1e6)
	require.NoError(t, err)
	at, err := c.SimulateBuy(SmallTradeThreshold, 1e6)
	require.NoError(t, err)

	assert.True(t, below.Approximated)
	assert.False(t, at.Approximated)
	assert.InEpsilon(t, at.AmountOut, below.AmountOut, 0.05)
}

func TestSmallTradeEstimateNeverBeatsIntegral(t *testing.T) {
	c := newTestCurve(t)
	cfg := c.Config()
	k, S, p0 := cfg.GrowthFactor, cfg.TotalSupply, cfg.InitialPrice

	for _, amount := range []float64{1e-6, 0.001, 0.05, 0.095, 0.099, 0.0999, math.Nextafter(SmallTradeThreshold, 0)} {
		for _, supply := range []float64{0, 1e6, 3e8, 9e8} {
			res, err := c.SimulateBuy(amount, supply)
			require.NoError(t, err)
			require.True(t, res.Approximated)

			net := amount * (1 - cfg.TotalFeeRate)
			exact := S / k * math.Log1p(net/(p0*S/k)*math.Exp(-k*supply/S))
			assert.LessOrEqual(t, res.AmountOut, exact, "amount=%g supply=%g", amount, supply)
		}
	}
}

func TestSimulateBuyZeroAmount(t *testing.T) {
	c := newTestCurve(t)

	res, err := c.SimulateBuy(0, 1000)
	require.NoError(t, err)
	assert.Zero(t, res.AmountOut)
	assert.Zero(t, res.TotalFee)
	assert.Zero(t, res.PriceImpactPercent)
}

func TestSimulateBuyBeyondTotalSupply(t *testing.T) {
	c := newTestCurve(t)

	_, err := c.SimulateBuy(1000, 0)
	assert.ErrorIs(t, err, ErrInsufficientSupply)
}

func TestSimulateSell(t *testing.T) {
	c := newTestCurve(t)
	cfg := c.Config()

	res, err := c.SimulateSell(1e7, 5e7)
	require.NoError(t, err)

	k, S, p0 := cfg.GrowthFactor, cfg.TotalSupply, cfg.InitialPrice
	gross := p0 * S / k * (math.Exp(k*5e7/S) - math.Exp(k*4e7/S))

	assert.Equal(t, Sell, res.Side)
	assert.InEpsilon(t, gross*cfg.TotalFeeRate, res.TotalFee, 1e-9)
	assert.InEpsilon(t, gross*(1-cfg.TotalFeeRate), res.AmountOut, 1e-9)
	assert.Equal(t, res.AmountOut, res.NetAmount)
	assert.InDelta(t, res.TotalFee, res.PlatformFee+res.CreatorFee, 1e-18)
	assert.Less(t, res.PriceImpactPercent, 0.0)
	assert.InEpsilon(t, gross, res.BaseVolume(), 1e-12)
	assert.Equal(t, 1e7, res.TokenAmount())
}

func TestSimulateSellInsufficientSupply(t *testing.T) {
	c := newTestCurve(t)

	_, err := c.SimulateSell(1001, 1000)
	assert.ErrorIs(t, err, ErrInsufficientSupply)

	res, err := c.SimulateSell(1000, 1000)
	require.NoError(t, err)
	assert.Zero(t, res.SupplyAfter)
}

func TestRoundTripLosesToFees(t *testing.T) {
	c := newTestCurve(t)

	buy, err := c.SimulateBuy(1.0, 1000)
	require.NoError(t, err)

	sell, err := c.SimulateSell(buy.AmountOut, 1000+buy.AmountOut)
	require.NoError(t, err)

	assert.Less(t, sell.AmountOut, 1.0)
	assert.InEpsilon(t, 0.9875*0.9875, sell.AmountOut, 1e-9)
}

func TestRoundTripSweep(t *testing.T) {
	c := newTestCurve(t)

	for _, amount := range []float64{0.01, 0.09, 0.095, 0.099, 0.0999, 0.1, 0.5, 1, 3, 10, 20} {
		for _, supply := range []float64{0, 1000, 1e6, 1e8, 3e8} {
			buy, err := c.SimulateBuy(amount, supply)
			require.NoError(t, err)
			sell, err := c.SimulateSell(buy.AmountOut, buy.SupplyAfter)
			require.NoError(t, err)
			assert.Less(t, sell.AmountOut, amount, "amount=%g supply=%g", amount, supply)
		}
	}
}

func TestQuoteExactTokensOut(t *testing.T) {
	c := newTestCurve(t)

	for _, tc := range []struct {
		tokens float64
		supply float64
	}{
		{1e5, 0},   // small-trade branch
		{5e6, 0},   // small-trade branch near the threshold
		{5e7, 0},   // exact branch
		{2e7, 3e8}, // exact branch, higher on the curve
		{1e3, 1e3}, // tiny
	} {
		amountIn, err := c.QuoteExactTokensOut(tc.tokens, tc.supply)
		require.NoError(t, err)

		res, err := c.SimulateBuy(amountIn, tc.supply)
		require.NoError(t, err)
		assert.InEpsilon(t, tc.tokens, res.AmountOut, 1e-9, "tokens=%g supply=%g", tc.tokens, tc.supply)
	}

	// Between the branches no amount buys exactly 9.5e6 tokens; the threshold buys more.
	amountIn, err := c.QuoteExactTokensOut(9.5e6, 0)
	require.NoError(t, err)
	assert.Equal(t, SmallTradeThreshold, amountIn)
	res, err := c.SimulateBuy(amountIn, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.AmountOut, 9.5e6)

	_, err = c.QuoteExactTokensOut(2e9, 0)
	assert.ErrorIs(t, err, ErrInsufficientSupply)
}

func TestSimulateInvalidInput(t *testing.T) {
	c := newTestCurve(t)
	bad := []float64{-0.5, math.NaN(), math.Inf(1)}

	for _, v := range bad {
		_, err := c.SimulateBuy(v, 0)
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = c.SimulateBuy(1, v)
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = c.SimulateSell(v, 1000)
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = c.SimulateSell(1, v)
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = c.CostToBuy(v, 0)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}
