package quality

import (
	"github.com/wonny/valuefinder/internal/contracts"
)

// Config holds coverage thresholds
type Config struct {
	MinValuationCoverage float64 `yaml:"min_valuation_coverage"` // price+eps+book value
	MinHealthCoverage    float64 `yaml:"min_health_coverage"`    // quality check inputs
	MinRiskCoverage      float64 `yaml:"min_risk_coverage"`      // beta, D/E
	MinMultipleCoverage  float64 `yaml:"min_multiple_coverage"`  // P/E, P/B, EV/EBITDA
}

// DefaultConfig returns the thresholds used for upstream health warnings
func DefaultConfig() Config {
	return Config{
		MinValuationCoverage: 0.90,
		MinHealthCoverage:    0.70,
		MinRiskCoverage:      0.70,
		MinMultipleCoverage:  0.60,
	}
}

// Snapshot summarizes how complete a batch of fundamentals was
type Snapshot struct {
	TotalStocks  int                `json:"total_stocks"`
	ValidStocks  int                `json:"valid_stocks"` // 평가 가능 종목
	Malformed    int                `json:"malformed"`    // 비정상 값이 하나라도 있는 종목
	Coverage     map[string]float64 `json:"coverage"`
	QualityScore float64            `json:"quality_score"`
	Failed       []string           `json:"failed,omitempty"` // 임계값 미달 그룹
}

// Passed reports whether every group met its threshold
func (s *Snapshot) Passed() bool {
	return len(s.Failed) == 0
}

// Gate checks data coverage of fetched snapshots
type Gate struct {
	config Config
}

// NewGate creates a new coverage gate
func NewGate(config Config) *Gate {
	return &Gate{config: config}
}

// metric groups (가중치 합계 = 1.0)
var groups = []struct {
	name   string
	weight float64
	fields func(f *contracts.Fundamentals) []contracts.Metric
}{
	{"valuation", 0.40, func(f *contracts.Fundamentals) []contracts.Metric {
		return []contracts.Metric{f.Price, f.EPS, f.BookValue}
	}},
	{"health", 0.30, func(f *contracts.Fundamentals) []contracts.Metric {
		return []contracts.Metric{f.LongTermDebt, f.OperatingCashFlow, f.ROE, f.ProfitMargin, f.CurrentRatio}
	}},
	{"risk", 0.15, func(f *contracts.Fundamentals) []contracts.Metric {
		return []contracts.Metric{f.Beta, f.DebtToEquity}
	}},
	{"multiples", 0.15, func(f *contracts.Fundamentals) []contracts.Metric {
		return []contracts.Metric{f.PE, f.PriceToBook, f.EVToEBITDA}
	}},
}

// Check computes per-group coverage. A stock covers a group only when
// every metric of the group is present.
// ⭐ SSOT: S0 → S2 데이터 커버리지 검증
func (g *Gate) Check(snapshots []*contracts.Fundamentals) *Snapshot {
	snap := &Snapshot{Coverage: make(map[string]float64, len(groups))}

	covered := make(map[string]int, len(groups))
	for _, f := range snapshots {
		if f == nil {
			continue
		}
		snap.TotalStocks++

		malformed := false
		for _, grp := range groups {
			complete := true
			for _, m := range grp.fields(f) {
				if m.IsMalformed() {
					malformed = true
				}
				if !m.IsPresent() {
					complete = false
				}
			}
			if complete {
				covered[grp.name]++
			}
		}
		if malformed {
			snap.Malformed++
		}

		if valuable(f) {
			snap.ValidStocks++
		}
	}

	if snap.TotalStocks == 0 {
		for _, grp := range groups {
			snap.Coverage[grp.name] = 0
		}
		snap.Failed = g.failed(snap.Coverage)
		return snap
	}

	for _, grp := range groups {
		cov := float64(covered[grp.name]) / float64(snap.TotalStocks)
		snap.Coverage[grp.name] = cov
		snap.QualityScore += cov * grp.weight
	}
	snap.Failed = g.failed(snap.Coverage)

	return snap
}

// valuable: price > 0, EPS > 0 and book value >= 0
func valuable(f *contracts.Fundamentals) bool {
	price, ok := f.Price.Get()
	if !ok || price <= 0 {
		return false
	}
	eps, ok := f.EPS.Get()
	if !ok || eps <= 0 {
		return false
	}
	bv, ok := f.BookValue.Get()
	return ok && bv >= 0
}

func (g *Gate) failed(coverage map[string]float64) []string {
	thresholds := map[string]float64{
		"valuation": g.config.MinValuationCoverage,
		"health":    g.config.MinHealthCoverage,
		"risk":      g.config.MinRiskCoverage,
		"multiples": g.config.MinMultipleCoverage,
	}

	var failed []string
	for _, grp := range groups {
		if coverage[grp.name] < thresholds[grp.name] {
			failed = append(failed, grp.name)
		}
	}
	return failed
}
