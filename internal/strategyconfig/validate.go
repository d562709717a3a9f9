package strategyconfig

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/wonny/valuefinder/internal/contracts"
)

// weightEpsilon absorbs float noise in the weight sum check
const weightEpsilon = 1e-9

// ValidationError 검증 실패 (실행 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (종목 단위 작업 시작 전에 중단)
func Validate(cfg *Config) error {
	if cfg == nil {
		return ValidationError{"config", "required"}
	}

	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	if cfg.Universe.Limit < 0 {
		return ValidationError{"universe.limit", "must be >= 0"}
	}

	if err := ValidateScreening(cfg.Screening); err != nil {
		return err
	}
	if err := ValidateValueFactors(cfg.ValueFactors); err != nil {
		return err
	}
	if err := ValidateBacktest(cfg.Backtest); err != nil {
		return err
	}

	d := cfg.DataSource
	if d.PauseEvery < 0 {
		return ValidationError{"data_source.pause_every", "must be >= 0"}
	}
	if d.PauseSeconds < 0 {
		return ValidationError{"data_source.pause_seconds", "must be >= 0"}
	}
	if d.RequestsPerSecond < 0 {
		return ValidationError{"data_source.requests_per_second", "must be >= 0"}
	}
	if d.RequestsPerSecond > 0 && d.Burst < 1 {
		return ValidationError{"data_source.burst", "must be >= 1 when requests_per_second is set"}
	}

	if cfg.Schedule.Enabled {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(cfg.Schedule.Cron); err != nil {
			return ValidationError{"schedule.cron", err.Error()}
		}
	}

	return nil
}

// ValidateScreening checks screening thresholds
func ValidateScreening(s Screening) error {
	if s.MinQualityScore < 0 || s.MinQualityScore > 5 {
		return ValidationError{"screening.min_quality_score", "must be in [0, 5]"}
	}
	if !s.MaxRisk().Valid() {
		return ValidationError{"screening.max_risk_tier", fmt.Sprintf("must be one of %s, %s, %s", contracts.RiskLow, contracts.RiskMedium, contracts.RiskHigh)}
	}
	if s.MinInvestmentScore < 0 || s.MinInvestmentScore > 100 {
		return ValidationError{"screening.min_investment_score", "must be in [0, 100]"}
	}
	if s.StrongBuyScore < s.MinInvestmentScore || s.StrongBuyScore > 100 {
		return ValidationError{"screening.strong_buy_score", "must be in [min_investment_score, 100]"}
	}
	if s.TopN < 1 {
		return ValidationError{"screening.top_n", "must be >= 1"}
	}
	if s.ValueTrapLimit < 0 {
		return ValidationError{"screening.value_trap_limit", "must be >= 0"}
	}
	if s.Workers < 1 {
		return ValidationError{"screening.workers", "must be >= 1"}
	}
	return nil
}

// ValidateValueFactors checks weights: each >= 0, sum in (0, 1]
func ValidateValueFactors(v ValueFactors) error {
	for _, w := range v.named() {
		if w.weight < 0 {
			return ValidationError{"value_factors." + w.name, "must be >= 0"}
		}
	}
	sum := v.Sum()
	if sum <= 0 {
		return ValidationError{"value_factors", "at least one weight must be > 0"}
	}
	if sum > 1+weightEpsilon {
		return ValidationError{"value_factors", fmt.Sprintf("weights must sum to <= 1.0, got %.4f", sum)}
	}
	return nil
}

// ValidateBacktest checks the replay parameters
func ValidateBacktest(b Backtest) error {
	if b.HorizonYears <= 0 {
		return ValidationError{"backtest.horizon_years", "must be > 0"}
	}
	if b.MaxCandidates <= 0 {
		return ValidationError{"backtest.max_candidates", "must be > 0"}
	}
	if b.MinObservations < 2 {
		return ValidationError{"backtest.min_observations", "must be >= 2"}
	}
	if b.MinReturns < 1 || b.MinReturns >= b.MinObservations {
		return ValidationError{"backtest.min_returns", "must be in [1, min_observations)"}
	}
	if b.Workers < 1 {
		return ValidationError{"backtest.workers", "must be >= 1"}
	}
	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 안전마진 없이 추천
	if cfg.Screening.MinDiscountPct <= 0 {
		warnings = append(warnings, Warning{
			Code:    "NO_MARGIN_OF_SAFETY",
			Message: "min_discount_pct <= 0: premium-priced stocks can become opportunities",
		})
	}

	// 페이싱 없이 외부 소스 호출
	if cfg.DataSource.PauseEvery == 0 && cfg.DataSource.RequestsPerSecond == 0 {
		warnings = append(warnings, Warning{
			Code:    "UNPACED_SOURCE",
			Message: "no pause or rate limit: upstream may throttle the run",
		})
	}

	// 밴딩이 없는 예약 팩터 (항상 0점)
	var reserved []string
	v := cfg.ValueFactors
	for _, w := range []namedWeight{
		{"price_to_sales", v.PriceToSales},
		{"dividend_yield", v.DividendYield},
		{"earnings_growth", v.EarningsGrowth},
		{"fcf_yield", v.FCFYield},
	} {
		if w.weight > 0 {
			reserved = append(reserved, w.name)
		}
	}
	if len(reserved) > 0 {
		warnings = append(warnings, Warning{
			Code:    "RESERVED_FACTOR_WEIGHT",
			Message: fmt.Sprintf("reserved factors score 0 and cap the maximum: %s", strings.Join(reserved, ", ")),
		})
	}

	if cfg.Backtest.MaxCandidates > 25 {
		warnings = append(warnings, Warning{
			Code:    "LARGE_BACKTEST",
			Message: "max_candidates > 25: many price series requests per run",
		})
	}

	return warnings
}
