package s2_signals

import (
	"github.com/wonny/valuefinder/internal/contracts"
)

// snapshot builds fundamentals from optional values; nil leaves a metric absent
func snapshot(sector string, price, eps, bv float64) *contracts.Fundamentals {
	f := contracts.NewFundamentals("TEST", "Test Corp", sector)
	f.Price = contracts.Some(price)
	f.EPS = contracts.Some(eps)
	f.BookValue = contracts.Some(bv)
	return f
}
