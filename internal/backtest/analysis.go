package backtest

import (
	"sort"

	"github.com/wonny/valuefinder/internal/contracts"
)

// Analysis compares screening discounts against realized returns
type Analysis struct {
	Count           int     `json:"count"`
	Winners         int     `json:"winners"`
	WinRate         float64 `json:"win_rate"` // %
	AverageReturn   float64 `json:"average_return"`
	MedianReturn    float64 `json:"median_return"`
	AverageDrawdown float64 `json:"average_drawdown"`
	AverageDiscount float64 `json:"average_discount"`
	Best            string  `json:"best,omitempty"`
	Worst           string  `json:"worst,omitempty"`

	// 할인율 상위 절반 vs 하위 절반 평균 수익률
	DeepDiscountReturn    float64 `json:"deep_discount_return"`
	ShallowDiscountReturn float64 `json:"shallow_discount_return"`
}

// Analyze summarizes merged records; values are rounded to 2 dp
func Analyze(merged []contracts.MergedRecord) Analysis {
	a := Analysis{Count: len(merged)}
	if a.Count == 0 {
		return a
	}

	returns := make([]float64, 0, len(merged))
	var sumReturn, sumDrawdown, sumDiscount float64
	best, worst := merged[0], merged[0]

	for _, m := range merged {
		r := m.Backtest.TotalReturn
		returns = append(returns, r)
		sumReturn += r
		sumDrawdown += m.Backtest.MaxDrawdown
		sumDiscount += m.Screening.DiscountPct

		if r > 0 {
			a.Winners++
		}
		if r > best.Backtest.TotalReturn {
			best = m
		}
		if r < worst.Backtest.TotalReturn {
			worst = m
		}
	}

	n := float64(a.Count)
	a.WinRate = contracts.Round2(float64(a.Winners) / n * 100)
	a.AverageReturn = contracts.Round2(sumReturn / n)
	a.AverageDrawdown = contracts.Round2(sumDrawdown / n)
	a.AverageDiscount = contracts.Round2(sumDiscount / n)
	a.MedianReturn = contracts.Round2(median(returns))
	a.Best = best.Backtest.Ticker
	a.Worst = worst.Backtest.Ticker

	byDiscount := make([]contracts.MergedRecord, len(merged))
	copy(byDiscount, merged)
	sort.SliceStable(byDiscount, func(i, j int) bool {
		return byDiscount[i].Screening.DiscountPct > byDiscount[j].Screening.DiscountPct
	})
	half := (len(byDiscount) + 1) / 2
	a.DeepDiscountReturn = contracts.Round2(meanReturn(byDiscount[:half]))
	a.ShallowDiscountReturn = contracts.Round2(meanReturn(byDiscount[half:]))

	return a
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func meanReturn(records []contracts.MergedRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range records {
		sum += m.Backtest.TotalReturn
	}
	return sum / float64(len(records))
}
