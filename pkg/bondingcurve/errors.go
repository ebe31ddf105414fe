// pkg/bondingcurve/errors.go
package bondingcurve

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput is returned for negative or non-finite supply, amount or raised values.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientSupply is returned when a trade would push sold supply below zero
	// or above the total supply.
	ErrInsufficientSupply = errors.New("insufficient supply")
	// ErrConfiguration is returned when a Config violates its own invariants.
	ErrConfiguration = errors.New("invalid curve configuration")
)

// checkAmount rejects NaN, ±Inf and negative values.
func checkAmount(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is not finite", ErrInvalidInput, name)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s must be non-negative, got %g", ErrInvalidInput, name, v)
	}
	return nil
}
