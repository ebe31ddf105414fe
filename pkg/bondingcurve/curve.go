// pkg/bondingcurve/curve.go
package bondingcurve

import (
	"fmt"
	"math"
)

// Curve is a validated, immutable bonding curve. The zero value is not usable; build one with New.
type Curve struct {
	cfg Config
}

// New validates cfg and returns a Curve bound to it.
func New(cfg Config) (Curve, error) {
	if err := cfg.Validate(); err != nil {
		return Curve{}, err
	}
	return Curve{cfg: cfg}, nil
}

// MustNew is like New but panics on an invalid configuration.
func MustNew(cfg Config) Curve {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// Config returns a copy of the curve parameters.
func (c Curve) Config() Config {
	return c.cfg
}

// Price returns the instantaneous unit price at the given sold supply:
// P0 * exp(k * supply / S). Supply above S is accepted.
func (c Curve) Price(supply float64) (float64, error) {
	if err := checkAmount("supply", supply); err != nil {
		return 0, err
	}
	return c.price(supply), nil
}

func (c Curve) price(supply float64) float64 {
	return c.cfg.InitialPrice * math.Exp(c.exponent(supply))
}

// exponent is k * supply / S.
func (c Curve) exponent(supply float64) float64 {
	return c.cfg.GrowthFactor * supply / c.cfg.TotalSupply
}

// reserveScale is P0 * S / k, the factor in front of every integral of the curve.
func (c Curve) reserveScale() float64 {
	return c.cfg.InitialPrice * c.cfg.TotalSupply / c.cfg.GrowthFactor
}

// CostToBuy returns the base-currency cost, before fees, of moving sold supply from
// supply to supply+tokens: (P0*S/k) * (exp(k(s+t)/S) - exp(ks/S)).
func (c Curve) CostToBuy(tokens, supply float64) (float64, error) {
	if err := checkAmount("tokens", tokens); err != nil {
		return 0, err
	}
	if err := checkAmount("supply", supply); err != nil {
		return 0, err
	}
	if supply+tokens > c.cfg.TotalSupply {
		return 0, fmt.Errorf("%w: buying %g tokens at supply %g exceeds total supply %g",
			ErrInsufficientSupply, tokens, supply, c.cfg.TotalSupply)
	}
	return c.integral(supply, supply+tokens), nil
}

// integral is the area under the curve between from and to (from <= to), written with
// expm1 so that narrow intervals keep their precision.
func (c Curve) integral(from, to float64) float64 {
	return c.reserveScale() * math.Exp(c.exponent(from)) * math.Expm1(c.exponent(to-from))
}

// MarketCap returns price(supply) * supply.
func (c Curve) MarketCap(supply float64) (float64, error) {
	p, err := c.Price(supply)
	if err != nil {
		return 0, err
	}
	return p * supply, nil
}
