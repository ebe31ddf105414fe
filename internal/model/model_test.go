package model

import (
	"encoding/json"
	"testing"

	"github.com/rovshanmuradov/launchpad/internal/storage/models"
	"github.com/rovshanmuradov/launchpad/pkg/bondingcurve"
	"github.com/rovshanmuradov/launchpad/pkg/rewards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTradeQuotePrecision(t *testing.T) {
	c := bondingcurve.MustNew(bondingcurve.DefaultConfig())

	buy, err := c.SimulateBuy(1, 0)
	require.NoError(t, err)
	q := NewTradeQuote(buy)

	assert.Equal(t, "buy", q.Side)
	assert.Equal(t, "1", q.AmountIn.String())
	assert.LessOrEqual(t, -q.AmountOut.Exponent(), TokenPrecision)
	assert.LessOrEqual(t, -q.PriceImpactPercent.Exponent(), PercentPrecision)
	assert.Equal(t, "0.0125", q.TotalFee.String())
	assert.Equal(t, "0.01", q.PlatformFee.String())
	// The creator share is a float remainder; it is exact only to a few ulps.
	assert.Equal(t, "0.0025", q.CreatorFee.Round(12).String())

	sell, err := c.SimulateSell(buy.AmountOut/2, buy.SupplyAfter)
	require.NoError(t, err)
	q = NewTradeQuote(sell)
	assert.LessOrEqual(t, -q.AmountIn.Exponent(), TokenPrecision)
	assert.True(t, q.AmountOut.IsPositive())
}

func TestTradeQuoteJSONUsesDecimalStrings(t *testing.T) {
	c := bondingcurve.MustNew(bondingcurve.DefaultConfig())
	buy, err := c.SimulateBuy(0.05, 0)
	require.NoError(t, err)

	raw, err := json.Marshal(NewTradeQuote(buy))
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "0.05", fields["amount_in"])
	assert.Equal(t, "0.00000001", fields["price_before"])
	assert.Equal(t, true, fields["approximated"])
}

func TestNewCurveSnapshot(t *testing.T) {
	c := bondingcurve.MustNew(bondingcurve.DefaultConfig())
	st, err := c.State(11.85, 2e8)
	require.NoError(t, err)

	snap := NewCurveSnapshot(&models.Token{Address: "tkn", Symbol: "TKN"}, st)
	assert.Equal(t, "tkn", snap.Token)
	assert.Equal(t, "50", snap.ProgressPercent.String())
	assert.Equal(t, "200000000", snap.CurrentSupply.String())
	assert.Equal(t, "11.85", snap.RaisedAmount.String())
	assert.False(t, snap.IsGraduated)

	bare := NewCurveSnapshot(nil, st)
	assert.Empty(t, bare.Token)
}

func TestNewRewardView(t *testing.T) {
	policy := rewards.DefaultPolicy()

	tests := []struct {
		name     string
		summary  rewards.RewardSummary
		tier     string
		next     string
		toNext   string
		multiple string
	}{
		{"Fresh", rewards.RewardSummary{Creator: "a", Tier: "Bronze"}, "Bronze", "Silver", "10", "1"},
		{"Silver", rewards.RewardSummary{Creator: "a", Tier: "Silver", TotalVolume: 30}, "Silver", "Gold", "20", "1.25"},
		{"Held above volume", rewards.RewardSummary{Creator: "a", Tier: "Gold", TotalVolume: 30}, "Gold", "Diamond", "170", "1.5"},
		{"Top", rewards.RewardSummary{Creator: "a", Tier: "Diamond", TotalVolume: 500}, "Diamond", "", "0", "2"},
		{"Unknown tier name", rewards.RewardSummary{Creator: "a", Tier: "Legacy", TotalVolume: 60}, "Gold", "Diamond", "140", "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewRewardView(tt.summary, policy)
			assert.Equal(t, tt.tier, v.Tier)
			assert.Equal(t, tt.next, v.NextTier)
			assert.Equal(t, tt.toNext, v.VolumeToNextTier.String())
			assert.Equal(t, tt.multiple, v.Multiplier.String())
		})
	}

	v := NewRewardView(rewards.RewardSummary{Creator: "a", Tier: "Bronze", TotalRewardsEarned: 0.5, TotalRewardsPaid: 0.2}, policy)
	assert.Equal(t, "0.3", v.PendingRewards.String())
}
