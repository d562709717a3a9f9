package yahoo

import (
	"errors"
	"fmt"
	"time"

	"github.com/wonny/valuefinder/internal/contracts"
)

// rawValue is Yahoo's {"raw": 1.23, "fmt": "1.23"} wrapper; {} is absent
type rawValue struct {
	Raw contracts.Metric `json:"raw"`
	Fmt string           `json:"fmt"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"quoteSummary"`
}

func (r *quoteSummaryResponse) first() (*quoteResult, error) {
	if r.QuoteSummary.Error != nil {
		return nil, r.QuoteSummary.Error
	}
	if len(r.QuoteSummary.Result) == 0 {
		return nil, errors.New("empty quoteSummary result")
	}
	return &r.QuoteSummary.Result[0], nil
}

type quoteResult struct {
	Price struct {
		RegularMarketPrice rawValue `json:"regularMarketPrice"`
		LongName           string   `json:"longName"`
		ShortName          string   `json:"shortName"`
	} `json:"price"`

	SummaryDetail struct {
		TrailingPE    rawValue `json:"trailingPE"`
		DividendYield rawValue `json:"dividendYield"`
		PriceToSales  rawValue `json:"priceToSalesTrailing12Months"`
		Beta          rawValue `json:"beta"`
		MarketCap     rawValue `json:"marketCap"`
	} `json:"summaryDetail"`

	DefaultKeyStatistics struct {
		TrailingEps        rawValue `json:"trailingEps"`
		BookValue          rawValue `json:"bookValue"`
		Beta               rawValue `json:"beta"`
		PriceToBook        rawValue `json:"priceToBook"`
		EnterpriseToEbitda rawValue `json:"enterpriseToEbitda"`
	} `json:"defaultKeyStatistics"`

	FinancialData struct {
		CurrentPrice      rawValue `json:"currentPrice"`
		ReturnOnEquity    rawValue `json:"returnOnEquity"`
		ProfitMargins     rawValue `json:"profitMargins"`
		CurrentRatio      rawValue `json:"currentRatio"`
		DebtToEquity      rawValue `json:"debtToEquity"` // percent
		OperatingCashflow rawValue `json:"operatingCashflow"`
		FreeCashflow      rawValue `json:"freeCashflow"`
		EarningsGrowth    rawValue `json:"earningsGrowth"`
	} `json:"financialData"`

	AssetProfile struct {
		Sector string `json:"sector"`
	} `json:"assetProfile"`

	BalanceSheetHistory struct {
		Statements []struct {
			LongTermDebt rawValue `json:"longTermDebt"`
		} `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistory"`
}

func (q *quoteResult) toFundamentals(ticker string) *contracts.Fundamentals {
	name := q.Price.LongName
	if name == "" {
		name = q.Price.ShortName
	}

	f := contracts.NewFundamentals(ticker, name, q.AssetProfile.Sector)

	f.Price = firstPresent(q.FinancialData.CurrentPrice.Raw, q.Price.RegularMarketPrice.Raw)
	f.EPS = q.DefaultKeyStatistics.TrailingEps.Raw
	f.BookValue = q.DefaultKeyStatistics.BookValue.Raw

	f.ROE = q.FinancialData.ReturnOnEquity.Raw
	f.ProfitMargin = q.FinancialData.ProfitMargins.Raw
	f.CurrentRatio = q.FinancialData.CurrentRatio.Raw
	// Yahoo는 D/E를 퍼센트로 제공 (150 = 1.5배)
	f.DebtToEquity = q.FinancialData.DebtToEquity.Raw.Map(func(v float64) float64 { return v / 100 })
	f.OperatingCashFlow = q.FinancialData.OperatingCashflow.Raw
	f.EarningsGrowth = q.FinancialData.EarningsGrowth.Raw
	f.Beta = firstPresent(q.DefaultKeyStatistics.Beta.Raw, q.SummaryDetail.Beta.Raw)

	// 최신 연간 대차대조표
	if len(q.BalanceSheetHistory.Statements) > 0 {
		f.LongTermDebt = q.BalanceSheetHistory.Statements[0].LongTermDebt.Raw
	}

	f.PE = q.SummaryDetail.TrailingPE.Raw
	f.PriceToBook = q.DefaultKeyStatistics.PriceToBook.Raw
	f.PriceToSales = q.SummaryDetail.PriceToSales.Raw
	f.EVToEBITDA = q.DefaultKeyStatistics.EnterpriseToEbitda.Raw
	f.DividendYield = q.SummaryDetail.DividendYield.Raw
	f.FreeCashFlowYield = ratio(q.FinancialData.FreeCashflow.Raw, q.SummaryDetail.MarketCap.Raw)

	return f
}

// firstPresent returns the first present metric, else the first argument
func firstPresent(metrics ...contracts.Metric) contracts.Metric {
	for _, m := range metrics {
		if m.IsPresent() {
			return m
		}
	}
	return metrics[0]
}

// ratio is num/den when both are present and den > 0
func ratio(num, den contracts.Metric) contracts.Metric {
	n, ok := num.Get()
	if !ok {
		return num
	}
	d, ok := den.Get()
	if !ok || d <= 0 {
		return contracts.None()
	}
	return contracts.Some(n / d)
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

// series prefers split/dividend adjusted closes; null closes become absent points
func (r *chartResponse) series() ([]contracts.PricePoint, error) {
	if r.Chart.Error != nil {
		return nil, r.Chart.Error
	}
	if len(r.Chart.Result) == 0 {
		return nil, errors.New("empty chart result")
	}

	res := r.Chart.Result[0]
	var closes []*float64
	switch {
	case len(res.Indicators.AdjClose) > 0 && len(res.Indicators.AdjClose[0].AdjClose) == len(res.Timestamp):
		closes = res.Indicators.AdjClose[0].AdjClose
	case len(res.Indicators.Quote) > 0 && len(res.Indicators.Quote[0].Close) == len(res.Timestamp):
		closes = res.Indicators.Quote[0].Close
	case len(res.Timestamp) == 0:
		return []contracts.PricePoint{}, nil
	default:
		return nil, fmt.Errorf("chart has %d timestamps but no matching closes", len(res.Timestamp))
	}

	points := make([]contracts.PricePoint, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		points[i] = contracts.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: contracts.FromPtr(closes[i]),
		}
	}
	return points, nil
}
