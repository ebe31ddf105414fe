// internal/model/model.go
//
// Пакет model содержит исходящие DTO с фиксированной десятичной точностью.
// Расчеты ведутся во float64, а наружу (HTTP, CLI, экспорт) уходят стабильные
// десятичные строки.
package model

import (
	"time"

	"github.com/rovshanmuradov/launchpad/internal/storage/models"
	"github.com/rovshanmuradov/launchpad/pkg/bondingcurve"
	"github.com/rovshanmuradov/launchpad/pkg/rewards"
	"github.com/shopspring/decimal"
)

// Точность округления
const (
	BasePrecision    int32 = 18
	TokenPrecision   int32 = 6
	PercentPrecision int32 = 4
)

func base(v float64) decimal.Decimal    { return decimal.NewFromFloat(v).Round(BasePrecision) }
func tokens(v float64) decimal.Decimal  { return decimal.NewFromFloat(v).Round(TokenPrecision) }
func percent(v float64) decimal.Decimal { return decimal.NewFromFloat(v).Round(PercentPrecision) }

// TradeQuote: оценка или результат сделки
type TradeQuote struct {
	Side               string          `json:"side"`
	AmountIn           decimal.Decimal `json:"amount_in"`
	AmountOut          decimal.Decimal `json:"amount_out"`
	TotalFee           decimal.Decimal `json:"total_fee"`
	PlatformFee        decimal.Decimal `json:"platform_fee"`
	CreatorFee         decimal.Decimal `json:"creator_fee"`
	NetAmount          decimal.Decimal `json:"net_amount"`
	PriceBefore        decimal.Decimal `json:"price_before"`
	PriceAfter         decimal.Decimal `json:"price_after"`
	AveragePrice       decimal.Decimal `json:"average_price"`
	PriceImpactPercent decimal.Decimal `json:"price_impact_percent"`
	SupplyAfter        decimal.Decimal `json:"supply_after"`
	Approximated       bool            `json:"approximated,omitempty"`
}

// NewTradeQuote округляет результат симуляции. Токенная сторона сделки (вход продажи,
// выход покупки) получает токенную точность, базовая - базовую.
func NewTradeQuote(r bondingcurve.TradeResult) TradeQuote {
	q := TradeQuote{
		Side:               string(r.Side),
		TotalFee:           base(r.TotalFee),
		PlatformFee:        base(r.PlatformFee),
		CreatorFee:         base(r.CreatorFee),
		NetAmount:          base(r.NetAmount),
		PriceBefore:        base(r.PriceBefore),
		PriceAfter:         base(r.PriceAfter),
		AveragePrice:       base(r.AveragePrice),
		PriceImpactPercent: percent(r.PriceImpactPercent),
		SupplyAfter:        tokens(r.SupplyAfter),
		Approximated:       r.Approximated,
	}
	if r.Side == bondingcurve.Sell {
		q.AmountIn = tokens(r.AmountIn)
		q.AmountOut = base(r.AmountOut)
	} else {
		q.AmountIn = base(r.AmountIn)
		q.AmountOut = tokens(r.AmountOut)
	}
	return q
}

// CurveSnapshot: состояние токена на кривой
type CurveSnapshot struct {
	Token               string          `json:"token,omitempty"`
	Symbol              string          `json:"symbol,omitempty"`
	CurrentSupply       decimal.Decimal `json:"current_supply"`
	RaisedAmount        decimal.Decimal `json:"raised_amount"`
	CurrentPrice        decimal.Decimal `json:"current_price"`
	MarketCap           decimal.Decimal `json:"market_cap"`
	ProgressPercent     decimal.Decimal `json:"progress_percent"`
	IsGraduated         bool            `json:"is_graduated"`
	RemainingToGraduate decimal.Decimal `json:"remaining_to_graduate"`
	CurvePoolAmount     decimal.Decimal `json:"curve_pool_amount"`
	LiquidityPoolAmount decimal.Decimal `json:"liquidity_pool_amount"`
	GraduatedAt         *time.Time      `json:"graduated_at,omitempty"`
}

// NewCurveSnapshot собирает снимок; token может быть nil для расчетов без хранилища
func NewCurveSnapshot(token *models.Token, st bondingcurve.CurveState) CurveSnapshot {
	snap := CurveSnapshot{
		CurrentSupply:       tokens(st.CurrentSupply),
		RaisedAmount:        base(st.RaisedAmount),
		CurrentPrice:        base(st.CurrentPrice),
		MarketCap:           base(st.MarketCap),
		ProgressPercent:     percent(st.ProgressPercent),
		IsGraduated:         st.IsGraduated,
		RemainingToGraduate: base(st.RemainingToGraduate),
		CurvePoolAmount:     base(st.CurvePoolAmount),
		LiquidityPoolAmount: base(st.LiquidityPoolAmount),
	}
	if token != nil {
		snap.Token = token.Address
		snap.Symbol = token.Symbol
		snap.GraduatedAt = token.GraduatedAt
	}
	return snap
}

// RewardView: сводка вознаграждений создателя
type RewardView struct {
	Creator            string          `json:"creator"`
	Tier               string          `json:"tier"`
	Multiplier         decimal.Decimal `json:"multiplier"`
	TotalVolume        decimal.Decimal `json:"total_volume"`
	TotalRewardsEarned decimal.Decimal `json:"total_rewards_earned"`
	TotalRewardsPaid   decimal.Decimal `json:"total_rewards_paid"`
	PendingRewards     decimal.Decimal `json:"pending_rewards"`
	TradeCount         int             `json:"trade_count"`
	// NextTier пуст на вершине лестницы
	NextTier         string          `json:"next_tier,omitempty"`
	VolumeToNextTier decimal.Decimal `json:"volume_to_next_tier"`
}

// NewRewardView дополняет сводку данными о текущем и следующем уровне
func NewRewardView(s rewards.RewardSummary, policy rewards.Policy) RewardView {
	v := RewardView{
		Creator:            s.Creator,
		Tier:               s.Tier,
		TotalVolume:        base(s.TotalVolume),
		TotalRewardsEarned: base(s.TotalRewardsEarned),
		TotalRewardsPaid:   base(s.TotalRewardsPaid),
		PendingRewards:     base(s.Pending()),
		TradeCount:         s.TradeCount,
	}

	tiers := policy.Tiers()
	held := -1
	for i, t := range tiers {
		if t.Name == s.Tier {
			held = i
			v.Multiplier = decimal.NewFromFloat(t.Multiplier)
		}
	}
	if held < 0 {
		t := policy.TierFor(s.TotalVolume)
		v.Tier = t.Name
		v.Multiplier = decimal.NewFromFloat(t.Multiplier)
		for i := range tiers {
			if tiers[i].Name == t.Name {
				held = i
			}
		}
	}
	if held+1 < len(tiers) {
		next := tiers[held+1]
		v.NextTier = next.Name
		remaining := next.RequiredVolume - s.TotalVolume
		if remaining < 0 {
			remaining = 0
		}
		v.VolumeToNextTier = base(remaining)
	}
	return v
}
