// Package pricing implements closed-form European option valuation.
package pricing

import (
	"math"

	"github.com/vantagelabs/vantage/internal/core"
)

// normCDF is the standard normal CDF computed via the error function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// Intrinsic returns the exercise value of an option at spot s.
func Intrinsic(optType core.OptionType, s, k float64) float64 {
	if optType == core.OptionCall {
		return math.Max(0, s-k)
	}
	return math.Max(0, k-s)
}

// Price returns the Black-Scholes value of a European option.
//
//	s     spot price
//	k     strike price
//	t     time to expiry in years
//	r     annualized risk-free rate
//	sigma annualized volatility
//
// Degenerate inputs (t<=0, sigma<=0, s<=0, k<=0) fall back to intrinsic
// value, so the result is always finite and non-negative. The function is
// pure and safe for concurrent use.
func Price(optType core.OptionType, s, k, t, r, sigma float64) float64 {
	if t <= 0 || sigma <= 0 || s <= 0 || k <= 0 {
		return Intrinsic(optType, s, k)
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (r+sigma*sigma/2)*t) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT

	if optType == core.OptionCall {
		return s*normCDF(d1) - k*math.Exp(-r*t)*normCDF(d2)
	}
	return k*math.Exp(-r*t)*normCDF(-d2) - s*normCDF(-d1)
}
