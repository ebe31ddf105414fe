// pkg/bondingcurve/fees.go
package bondingcurve

import "fmt"

// FeeSplit is the platform/creator breakdown of a collected fee.
type FeeSplit struct {
	PlatformFee float64 `json:"platform_fee"`
	CreatorFee  float64 `json:"creator_fee"`
}

// Total returns PlatformFee + CreatorFee.
func (f FeeSplit) Total() float64 {
	return f.PlatformFee + f.CreatorFee
}

// Split distributes totalFee between platform and creator in the ratio of their rates.
//
// The creator share is taken as the remainder so that PlatformFee + CreatorFee reproduces
// totalFee exactly; it equals totalFee * CreatorFeeRate/TotalFeeRate up to rounding.
func Split(totalFee float64, cfg Config) (FeeSplit, error) {
	if cfg.TotalFeeRate == 0 {
		return FeeSplit{}, fmt.Errorf("%w: total_fee_rate is zero", ErrConfiguration)
	}
	if err := checkAmount("total fee", totalFee); err != nil {
		return FeeSplit{}, err
	}

	platform := totalFee * (cfg.PlatformFeeRate / cfg.TotalFeeRate)
	if platform > totalFee {
		platform = totalFee
	}
	return FeeSplit{
		PlatformFee: platform,
		CreatorFee:  totalFee - platform,
	}, nil
}

// SplitFee is Split bound to the curve's configuration.
func (c Curve) SplitFee(totalFee float64) (FeeSplit, error) {
	return Split(totalFee, c.cfg)
}

// FeeOn returns the total fee charged on a base-currency volume.
func (c Curve) FeeOn(volume float64) (float64, error) {
	if err := checkAmount("volume", volume); err != nil {
		return 0, err
	}
	return volume * c.cfg.TotalFeeRate, nil
}
