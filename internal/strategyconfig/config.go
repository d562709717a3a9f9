package strategyconfig

import "github.com/wonny/valuefinder/internal/contracts"

// Config는 가치주 스크리닝 전략의 전체 설정
// ⭐ SSOT: 전략 파라미터는 여기서만 정의 (코드에 하드코딩 금지)
type Config struct {
	Meta         Meta         `yaml:"meta" json:"meta"`
	Universe     Universe     `yaml:"universe" json:"universe"`
	Screening    Screening    `yaml:"screening" json:"screening"`
	ValueFactors ValueFactors `yaml:"value_factors" json:"value_factors"`
	Backtest     Backtest     `yaml:"backtest" json:"backtest"`
	DataSource   DataSource   `yaml:"data_source" json:"data_source"`
	Schedule     Schedule     `yaml:"schedule" json:"schedule"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Universe S1: 스크리닝 대상
type Universe struct {
	File           string   `yaml:"file" json:"file"` // 비어 있으면 기본 유니버스
	ExcludeTickers []string `yaml:"exclude_tickers" json:"exclude_tickers"`
	Limit          int      `yaml:"limit" json:"limit"` // 0 = 제한 없음
}

// Screening 스크리닝 / 추천 임계값
type Screening struct {
	MinDiscountPct     float64 `yaml:"min_discount_pct" json:"min_discount_pct"`
	MinQualityScore    int     `yaml:"min_quality_score" json:"min_quality_score"` // 0..5
	MaxRiskTier        string  `yaml:"max_risk_tier" json:"max_risk_tier"`
	MinInvestmentScore float64 `yaml:"min_investment_score" json:"min_investment_score"` // BUY
	StrongBuyScore     float64 `yaml:"strong_buy_score" json:"strong_buy_score"`
	TopN               int     `yaml:"top_n" json:"top_n"`
	ValueTrapLimit     int     `yaml:"value_trap_limit" json:"value_trap_limit"`
	Workers            int     `yaml:"workers" json:"workers"`
}

// MaxRisk returns the configured tier
func (s Screening) MaxRisk() contracts.RiskTier {
	return contracts.RiskTier(s.MaxRiskTier)
}

// ValueFactors 멀티팩터 가중치 (재정규화 없음)
type ValueFactors struct {
	PE             float64 `yaml:"pe" json:"pe"`
	PriceToBook    float64 `yaml:"price_to_book" json:"price_to_book"`
	PriceToSales   float64 `yaml:"price_to_sales" json:"price_to_sales"`
	EVToEBITDA     float64 `yaml:"ev_to_ebitda" json:"ev_to_ebitda"`
	DividendYield  float64 `yaml:"dividend_yield" json:"dividend_yield"`
	DebtToEquity   float64 `yaml:"debt_to_equity" json:"debt_to_equity"`
	ROE            float64 `yaml:"roe" json:"roe"`
	EarningsGrowth float64 `yaml:"earnings_growth" json:"earnings_growth"`
	FCFYield       float64 `yaml:"fcf_yield" json:"fcf_yield"`
}

// Sum returns the total weight
func (v ValueFactors) Sum() float64 {
	return v.PE + v.PriceToBook + v.PriceToSales + v.EVToEBITDA + v.DividendYield +
		v.DebtToEquity + v.ROE + v.EarningsGrowth + v.FCFYield
}

// named returns the weights keyed by their YAML name, in declaration order
func (v ValueFactors) named() []namedWeight {
	return []namedWeight{
		{"pe", v.PE},
		{"price_to_book", v.PriceToBook},
		{"price_to_sales", v.PriceToSales},
		{"ev_to_ebitda", v.EVToEBITDA},
		{"dividend_yield", v.DividendYield},
		{"debt_to_equity", v.DebtToEquity},
		{"roe", v.ROE},
		{"earnings_growth", v.EarningsGrowth},
		{"fcf_yield", v.FCFYield},
	}
}

type namedWeight struct {
	name   string
	weight float64
}

// Backtest 과거 가격 재생 설정
type Backtest struct {
	HorizonYears    int `yaml:"horizon_years" json:"horizon_years"`
	MaxCandidates   int `yaml:"max_candidates" json:"max_candidates"`
	MinObservations int `yaml:"min_observations" json:"min_observations"`
	MinReturns      int `yaml:"min_returns" json:"min_returns"`
	Workers         int `yaml:"workers" json:"workers"`
}

// DataSource 데이터 제공자 페이싱 (비공식 rate limit 대응)
type DataSource struct {
	PauseEvery        int     `yaml:"pause_every" json:"pause_every"`
	PauseSeconds      float64 `yaml:"pause_seconds" json:"pause_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"` // 0 = 무제한
	Burst             int     `yaml:"burst" json:"burst"`
}

// Schedule 정기 실행 (cron, 초 단위 포함 6필드)
type Schedule struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Cron    string `yaml:"cron" json:"cron"`
}

// Default returns the built-in strategy
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "value_default",
			Version:    "1",
		},
		Universe: Universe{},
		Screening: Screening{
			MinDiscountPct:     5.0,
			MinQualityScore:    3,
			MaxRiskTier:        string(contracts.RiskMedium),
			MinInvestmentScore: 60,
			StrongBuyScore:     80,
			TopN:               15,
			ValueTrapLimit:     8,
			Workers:            1,
		},
		ValueFactors: ValueFactors{
			PE:             0.15,
			PriceToBook:    0.15,
			PriceToSales:   0.10,
			EVToEBITDA:     0.15,
			DividendYield:  0.10,
			DebtToEquity:   0.10,
			ROE:            0.10,
			EarningsGrowth: 0.10,
			FCFYield:       0.05,
		},
		Backtest: Backtest{
			HorizonYears:    3,
			MaxCandidates:   10,
			MinObservations: 30,
			MinReturns:      10,
			Workers:         1,
		},
		DataSource: DataSource{
			PauseEvery:   10,
			PauseSeconds: 2,
			Burst:        1,
		},
		Schedule: Schedule{
			Enabled: false,
			Cron:    "0 30 22 * * 1-5", // 미국장 마감 후
		},
	}
}
