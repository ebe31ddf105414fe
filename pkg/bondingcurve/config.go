// pkg/bondingcurve/config.go
package bondingcurve

import (
	"fmt"
	"math"
)

// Default curve parameters for a BNB-denominated launch.
const (
	DefaultInitialPrice      = 1e-8
	DefaultTotalSupply       = 1e9
	DefaultGrowthFactor      = 5.43
	DefaultPlatformFeeRate   = 0.01
	DefaultCreatorFeeRate    = 0.0025
	DefaultTotalFeeRate      = DefaultPlatformFeeRate + DefaultCreatorFeeRate
	DefaultGrossRaiseTarget  = 24.0
	DefaultBondingCurveSplit = 0.2
	DefaultLiquiditySplit    = 0.8

	// rateTolerance bounds the rounding error accepted when checking that rates add up.
	rateTolerance = 1e-9
)

// Config holds the immutable parameters of a bonding curve.
// A Config is passed by value; no package-level instance exists.
type Config struct {
	InitialPrice float64 `json:"initial_price" mapstructure:"initial_price"` // P0, price at zero supply
	TotalSupply  float64 `json:"total_supply" mapstructure:"total_supply"`   // S, denominator in the exponent
	GrowthFactor float64 `json:"growth_factor" mapstructure:"growth_factor"` // k, exponential steepness

	PlatformFeeRate float64 `json:"platform_fee_rate" mapstructure:"platform_fee_rate"`
	CreatorFeeRate  float64 `json:"creator_fee_rate" mapstructure:"creator_fee_rate"`
	TotalFeeRate    float64 `json:"total_fee_rate" mapstructure:"total_fee_rate"`

	// GrossRaiseTarget is the base-currency amount, before fees, that triggers graduation.
	GrossRaiseTarget float64 `json:"gross_raise_target" mapstructure:"gross_raise_target"`

	BondingCurveSplit float64 `json:"bonding_curve_split" mapstructure:"bonding_curve_split"`
	LiquiditySplit    float64 `json:"liquidity_split" mapstructure:"liquidity_split"`
}

// DefaultConfig returns the launchpad's standard curve.
func DefaultConfig() Config {
	return Config{
		InitialPrice:      DefaultInitialPrice,
		TotalSupply:       DefaultTotalSupply,
		GrowthFactor:      DefaultGrowthFactor,
		PlatformFeeRate:   DefaultPlatformFeeRate,
		CreatorFeeRate:    DefaultCreatorFeeRate,
		TotalFeeRate:      DefaultTotalFeeRate,
		GrossRaiseTarget:  DefaultGrossRaiseTarget,
		BondingCurveSplit: DefaultBondingCurveSplit,
		LiquiditySplit:    DefaultLiquiditySplit,
	}
}

// NetRaiseTarget is the raised amount, after fees, at which the token graduates.
func (c Config) NetRaiseTarget() float64 {
	return c.GrossRaiseTarget * (1 - c.TotalFeeRate)
}

// Validate checks the invariants of the configuration.
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"initial_price", c.InitialPrice},
		{"total_supply", c.TotalSupply},
		{"growth_factor", c.GrowthFactor},
		{"gross_raise_target", c.GrossRaiseTarget},
	}
	for _, p := range positive {
		if !isFinite(p.value) || p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive and finite, got %g", ErrConfiguration, p.name, p.value)
		}
	}

	rates := []struct {
		name  string
		value float64
	}{
		{"platform_fee_rate", c.PlatformFeeRate},
		{"creator_fee_rate", c.CreatorFeeRate},
		{"total_fee_rate", c.TotalFeeRate},
	}
	for _, r := range rates {
		if !isFinite(r.value) || r.value < 0 || r.value >= 1 {
			return fmt.Errorf("%w: %s must be in [0, 1), got %g", ErrConfiguration, r.name, r.value)
		}
	}
	if c.TotalFeeRate == 0 {
		return fmt.Errorf("%w: total_fee_rate must be non-zero", ErrConfiguration)
	}
	if !almostEqual(c.PlatformFeeRate+c.CreatorFeeRate, c.TotalFeeRate) {
		return fmt.Errorf("%w: platform_fee_rate (%g) + creator_fee_rate (%g) != total_fee_rate (%g)",
			ErrConfiguration, c.PlatformFeeRate, c.CreatorFeeRate, c.TotalFeeRate)
	}

	for _, s := range []float64{c.BondingCurveSplit, c.LiquiditySplit} {
		if !isFinite(s) || s < 0 || s > 1 {
			return fmt.Errorf("%w: pool splits must be in [0, 1], got %g", ErrConfiguration, s)
		}
	}
	if !almostEqual(c.BondingCurveSplit+c.LiquiditySplit, 1) {
		return fmt.Errorf("%w: bonding_curve_split (%g) + liquidity_split (%g) != 1",
			ErrConfiguration, c.BondingCurveSplit, c.LiquiditySplit)
	}

	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= rateTolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
