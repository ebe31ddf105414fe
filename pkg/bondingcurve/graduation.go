// pkg/bondingcurve/graduation.go
package bondingcurve

import "math"

// CurveState is a read-only snapshot of a token on the curve. It is derived from the
// caller's stored raised amount and supply and is never persisted by this package.
type CurveState struct {
	CurrentSupply   float64 `json:"current_supply"`
	RaisedAmount    float64 `json:"raised_amount"`
	CurrentPrice    float64 `json:"current_price"`
	MarketCap       float64 `json:"market_cap"`
	ProgressPercent float64 `json:"progress_percent"`
	IsGraduated     bool    `json:"is_graduated"`

	// RemainingToGraduate is the net amount still to be raised, zero once graduated.
	RemainingToGraduate float64 `json:"remaining_to_graduate"`
	// CurvePoolAmount and LiquidityPoolAmount allocate RaisedAmount by the configured
	// splits: the part kept by the curve pool and the part migrated to the liquidity pool.
	CurvePoolAmount     float64 `json:"curve_pool_amount"`
	LiquidityPoolAmount float64 `json:"liquidity_pool_amount"`
}

// State derives the graduation snapshot for raisedAmount and currentSupply.
func (c Curve) State(raisedAmount, currentSupply float64) (CurveState, error) {
	if err := checkAmount("raised amount", raisedAmount); err != nil {
		return CurveState{}, err
	}
	if err := checkAmount("current supply", currentSupply); err != nil {
		return CurveState{}, err
	}

	target := c.cfg.NetRaiseTarget()
	price := c.price(currentSupply)

	return CurveState{
		CurrentSupply:       currentSupply,
		RaisedAmount:        raisedAmount,
		CurrentPrice:        price,
		MarketCap:           price * currentSupply,
		ProgressPercent:     math.Min(raisedAmount/target*100, 100),
		IsGraduated:         raisedAmount >= target,
		RemainingToGraduate: math.Max(target-raisedAmount, 0),
		CurvePoolAmount:     raisedAmount * c.cfg.BondingCurveSplit,
		LiquidityPoolAmount: raisedAmount * c.cfg.LiquiditySplit,
	}, nil
}

// Graduates reports whether raising raisedAmount crosses the net raise target.
func (c Curve) Graduates(raisedAmount float64) bool {
	return raisedAmount >= c.cfg.NetRaiseTarget()
}
