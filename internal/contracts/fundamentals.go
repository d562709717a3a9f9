package contracts

import "time"

// Fundamentals is a per-security snapshot passed from S0 to S2
// ⭐ SSOT: S0 → S2 재무 스냅샷 전달
type Fundamentals struct {
	Ticker     string    `json:"ticker"`
	Name       string    `json:"name"`
	SectorName string    `json:"sector_name"` // provider raw text
	Sector     Sector    `json:"sector"`      // resolved category
	FetchedAt  time.Time `json:"fetched_at"`

	Price     Metric `json:"price"`
	EPS       Metric `json:"eps"`
	BookValue Metric `json:"book_value"` // per share

	ROE               Metric `json:"roe"`           // fraction, 0.15 = 15%
	ProfitMargin      Metric `json:"profit_margin"` // fraction
	CurrentRatio      Metric `json:"current_ratio"`
	DebtToEquity      Metric `json:"debt_to_equity"` // ratio, not percent
	LongTermDebt      Metric `json:"long_term_debt"`
	OperatingCashFlow Metric `json:"operating_cash_flow"`
	Beta              Metric `json:"beta"`
	EarningsGrowth    Metric `json:"earnings_growth"` // fraction

	// Ratio metrics for the multi-factor score
	PE                Metric `json:"pe"`
	PriceToBook       Metric `json:"price_to_book"`
	PriceToSales      Metric `json:"price_to_sales"`
	EVToEBITDA        Metric `json:"ev_to_ebitda"`
	DividendYield     Metric `json:"dividend_yield"`       // fraction
	FreeCashFlowYield Metric `json:"free_cash_flow_yield"` // fraction
}

// NewFundamentals creates a snapshot with the sector resolved from its raw name
func NewFundamentals(ticker, name, sectorName string) *Fundamentals {
	return &Fundamentals{
		Ticker:     ticker,
		Name:       name,
		SectorName: sectorName,
		Sector:     ResolveSector(sectorName),
		FetchedAt:  time.Now(),
	}
}

// DisplayName falls back to the ticker when the provider has no name
func (f *Fundamentals) DisplayName() string {
	if f.Name == "" {
		return f.Ticker
	}
	return f.Name
}
