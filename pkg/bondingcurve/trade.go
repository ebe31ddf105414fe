// pkg/bondingcurve/trade.go
package bondingcurve

import (
	"fmt"
	"math"
)

// SmallTradeThreshold is the base-currency amount below which a buy is priced with a
// single-step estimate instead of the integral inversion. The estimate charges the price
// at the end of the trade, so it never hands out more tokens than the integral would.
// SimulateBuy is the only place that makes this decision.
const SmallTradeThreshold = 0.1

// Side is the direction of a trade.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// TradeResult describes one simulated trade. For buys AmountIn is base currency and
// AmountOut is tokens; for sells AmountIn is tokens and AmountOut is base currency net of fees.
type TradeResult struct {
	Side      Side    `json:"side"`
	AmountIn  float64 `json:"amount_in"`
	AmountOut float64 `json:"amount_out"`

	// PriceImpactPercent is positive for buys and negative for sells.
	PriceImpactPercent float64 `json:"price_impact_percent"`

	TotalFee    float64 `json:"total_fee"`
	PlatformFee float64 `json:"platform_fee"`
	CreatorFee  float64 `json:"creator_fee"`
	// NetAmount is the base currency that reaches the curve (buy) or the seller (sell).
	NetAmount float64 `json:"net_amount"`

	SupplyBefore float64 `json:"supply_before"`
	SupplyAfter  float64 `json:"supply_after"`
	PriceBefore  float64 `json:"price_before"`
	PriceAfter   float64 `json:"price_after"`
	// AveragePrice is the base currency per token paid into or out of the curve, before fees.
	AveragePrice float64 `json:"average_price"`
	// Approximated reports that the small-trade branch priced this buy.
	Approximated bool `json:"approximated"`
}

// TokenAmount returns the token side of the trade.
func (r TradeResult) TokenAmount() float64 {
	if r.Side == Sell {
		return r.AmountIn
	}
	return r.AmountOut
}

// BaseVolume returns the gross base-currency volume of the trade (fees included).
func (r TradeResult) BaseVolume() float64 {
	if r.Side == Sell {
		return r.NetAmount + r.TotalFee
	}
	return r.AmountIn
}

// SimulateBuy prices a buy of amountIn base currency at currentSupply.
//
// The fee is taken from amountIn first. The remaining netAmount buys
//
//	newSupply = (S/k) * ln(exp(k*s/S) + net*k/(P0*S))
//
// tokens along the curve, computed as s + (S/k)*log1p(net/(P0*S/k) * exp(-k*s/S)).
// Amounts under SmallTradeThreshold use net / price(s + net/price(s)).
func (c Curve) SimulateBuy(amountIn, currentSupply float64) (TradeResult, error) {
	if err := checkAmount("amount in", amountIn); err != nil {
		return TradeResult{}, err
	}
	if err := checkAmount("current supply", currentSupply); err != nil {
		return TradeResult{}, err
	}

	totalFee := amountIn * c.cfg.TotalFeeRate
	fees, err := c.SplitFee(totalFee)
	if err != nil {
		return TradeResult{}, err
	}
	net := amountIn - totalFee
	priceBefore := c.price(currentSupply)

	var tokensOut float64
	approximated := amountIn < SmallTradeThreshold
	if approximated {
		tokensOut = c.estimateTokens(net, currentSupply)
	} else {
		ratio := net / c.reserveScale() * math.Exp(-c.exponent(currentSupply))
		tokensOut = c.cfg.TotalSupply / c.cfg.GrowthFactor * math.Log1p(ratio)
	}

	newSupply := currentSupply + tokensOut
	if newSupply > c.cfg.TotalSupply {
		return TradeResult{}, fmt.Errorf("%w: buy of %g would take supply to %g, above total supply %g",
			ErrInsufficientSupply, amountIn, newSupply, c.cfg.TotalSupply)
	}
	priceAfter := c.price(newSupply)

	var avg float64
	if tokensOut > 0 {
		avg = net / tokensOut
	}

	return TradeResult{
		Side:               Buy,
		AmountIn:           amountIn,
		AmountOut:          tokensOut,
		PriceImpactPercent: (priceAfter - priceBefore) / priceBefore * 100,
		TotalFee:           totalFee,
		PlatformFee:        fees.PlatformFee,
		CreatorFee:         fees.CreatorFee,
		NetAmount:          net,
		SupplyBefore:       currentSupply,
		SupplyAfter:        newSupply,
		PriceBefore:        priceBefore,
		PriceAfter:         priceAfter,
		AveragePrice:       avg,
		Approximated:       approximated,
	}, nil
}

// SimulateSell prices a sale of tokenAmount tokens at currentSupply.
//
// Gross proceeds are the area under the curve between currentSupply-tokenAmount and
// currentSupply; the fee is charged on those proceeds. A sale larger than the sold supply
// fails with ErrInsufficientSupply.
func (c Curve) SimulateSell(tokenAmount, currentSupply float64) (TradeResult, error) {
	if err := checkAmount("token amount", tokenAmount); err != nil {
		return TradeResult{}, err
	}
	if err := checkAmount("current supply", currentSupply); err != nil {
		return TradeResult{}, err
	}
	newSupply := currentSupply - tokenAmount
	if newSupply < 0 {
		return TradeResult{}, fmt.Errorf("%w: cannot sell %g tokens, only %g sold",
			ErrInsufficientSupply, tokenAmount, currentSupply)
	}

	gross := c.integral(newSupply, currentSupply)
	totalFee := gross * c.cfg.TotalFeeRate
	fees, err := c.SplitFee(totalFee)
	if err != nil {
		return TradeResult{}, err
	}
	net := gross - totalFee

	priceBefore := c.price(currentSupply)
	priceAfter := c.price(newSupply)

	var avg float64
	if tokenAmount > 0 {
		avg = gross / tokenAmount
	}

	return TradeResult{
		Side:               Sell,
		AmountIn:           tokenAmount,
		AmountOut:          net,
		PriceImpactPercent: (priceAfter - priceBefore) / priceBefore * 100,
		TotalFee:           totalFee,
		PlatformFee:        fees.PlatformFee,
		CreatorFee:         fees.CreatorFee,
		NetAmount:          net,
		SupplyBefore:       currentSupply,
		SupplyAfter:        newSupply,
		PriceBefore:        priceBefore,
		PriceAfter:         priceAfter,
		AveragePrice:       avg,
	}, nil
}

// QuoteExactTokensOut returns the gross amountIn, fees included, that SimulateBuy turns
// into tokens at currentSupply. It follows the same small-trade branch as SimulateBuy.
// Token amounts that fall between the two branches are quoted at SmallTradeThreshold,
// which buys at least tokens.
func (c Curve) QuoteExactTokensOut(tokens, currentSupply float64) (float64, error) {
	if err := checkAmount("tokens", tokens); err != nil {
		return 0, err
	}
	if err := checkAmount("current supply", currentSupply); err != nil {
		return 0, err
	}
	if currentSupply+tokens > c.cfg.TotalSupply {
		return 0, fmt.Errorf("%w: buying %g tokens at supply %g exceeds total supply %g",
			ErrInsufficientSupply, tokens, currentSupply, c.cfg.TotalSupply)
	}
	keep := 1 - c.cfg.TotalFeeRate

	estimated := c.estimateCost(tokens, currentSupply) / keep
	if estimated < SmallTradeThreshold {
		return estimated, nil
	}

	cost, err := c.CostToBuy(tokens, currentSupply)
	if err != nil {
		return 0, err
	}
	// The estimate is never cheaper than the integral, so a cost under the threshold
	// means no amount buys exactly tokens.
	if gross := cost / keep; gross >= SmallTradeThreshold {
		return gross, nil
	}
	return SmallTradeThreshold, nil
}

// estimateTokens is the small-trade branch: net spent at the price reached after buying
// net/price(s) tokens.
func (c Curve) estimateTokens(net, supply float64) float64 {
	linear := net / c.price(supply)
	return net / c.price(supply+linear)
}

// estimateCost inverts estimateTokens. With u = net/price(s) the branch gives
// tokens = u * exp(-k*u/S); u is found by fixed-point iteration, which contracts for the
// amounts the branch handles.
func (c Curve) estimateCost(tokens, supply float64) float64 {
	rate := c.cfg.GrowthFactor / c.cfg.TotalSupply
	u := tokens
	for i := 0; i < 64; i++ {
		next := tokens * math.Exp(rate*u)
		if math.Abs(next-u) <= 1e-15*next {
			u = next
			break
		}
		u = next
	}
	return u * c.price(supply)
}
