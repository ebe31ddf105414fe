// Package bondingcurve implements the exponential bonding curve used by the launchpad
// to price token trades without an order book.
//
// The package is the single shared implementation of the curve math. Server-side
// settlement, quoting endpoints and the CLI all call into it, so an estimate shown to a
// user and the authoritative settlement agree to the last bit for the same inputs.
//
// The curve:
//
//	price(s) = P0 * exp(k * s / S)
//
// where P0 is the price at zero supply, S the token denominator and k the growth factor.
// Buying and selling use the closed-form integral of the curve, fees are charged on the
// base-currency side of every trade and split between the platform and the token creator.
//
// Key Types and Functions:
//
//   - Config: immutable curve, fee and raise-target parameters.
//   - New(): validates a Config and returns a Curve value.
//   - Curve.Price(): instantaneous unit price at a given sold supply.
//   - Curve.SimulateBuy(), Curve.SimulateSell(): trade simulation with fee breakdown.
//   - Split(): platform/creator fee distribution.
//   - Curve.State(): graduation progress snapshot.
//
// Usage example:
//
//	c, err := bondingcurve.New(bondingcurve.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := c.SimulateBuy(1.0, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.AmountOut, res.PriceImpactPercent)
//
// Nothing in the package keeps state between calls. A Curve may be shared by any number
// of goroutines.
package bondingcurve
