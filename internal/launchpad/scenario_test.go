package launchpad

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rovshanmuradov/launchpad/internal/events"
	"github.com/rovshanmuradov/launchpad/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDefaultScenario(t *testing.T) {
	ctx := context.Background()
	svc, rec := newTestService(t, nil)

	results, err := svc.RunScenario(ctx, DefaultScenario())
	require.NoError(t, err)
	require.Len(t, results, len(DefaultScenario().Trades))

	var rejected []int
	for _, r := range results {
		if r.Err != nil {
			rejected = append(rejected, r.Step)
		}
	}
	// Slippage on step 6, post-graduation buy on step 8.
	assert.Equal(t, []int{6, 8}, rejected)
	assert.ErrorIs(t, results[5].Err, ErrSlippageExceeded)
	assert.ErrorIs(t, results[7].Err, ErrGraduated)
	assert.True(t, results[6].Settlement.Graduated)

	// Selling everything bought returns the frog supply to zero.
	frog, err := svc.Token(ctx, "frog")
	require.NoError(t, err)
	assert.InDelta(t, 0, frog.CurrentSupply, 1e-3)

	assert.Equal(t, 1, rec.count(events.TokenGraduated))
	assert.Equal(t, 1, rec.count(events.RewardPaid))

	alice, err := svc.Rewards(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 5, alice.TradeCount)
	assert.Equal(t, 0.01, alice.TotalRewardsPaid)

	trades, err := svc.Trades(ctx, storage.TradeFilter{})
	require.NoError(t, err)
	assert.Len(t, trades, 7)

	reports, err := svc.ReplayRewards(ctx)
	require.NoError(t, err)
	for _, r := range reports {
		assert.True(t, r.Matches, r.Creator)
	}
}

func TestRunScenarioRejectsUnknownSide(t *testing.T) {
	svc, _ := newTestService(t, nil)
	sc := &Scenario{
		Tokens: []CreateTokenRequest{{Address: "x", Symbol: "X", Creator: "c"}},
		Trades: []ScenarioTrade{{Token: "x", Side: "hold", Amount: 1}},
	}

	results, err := svc.RunScenario(context.Background(), sc)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, ErrInvalidRequest)
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"tokens": [{"address": "t", "symbol": "T", "creator": "c"}],
		"trades": [{"token": "t", "trader": "a", "side": "buy", "amount": 1.5}]
	}`), 0600))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	require.Len(t, sc.Trades, 1)
	assert.Equal(t, 1.5, sc.Trades[0].Amount)
	assert.Equal(t, "c", sc.Tokens[0].Creator)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
