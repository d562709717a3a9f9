package contracts

import "github.com/shopspring/decimal"

// Round2 rounds half away from zero to 2 decimal places (presentation boundary)
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Format2 renders v with exactly 2 decimal places
func Format2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
