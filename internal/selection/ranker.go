package selection

import (
	"sort"

	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/strategyconfig"
)

// Ranker layers presentation orderings on top of a screening run
// ⭐ SSOT: 기회/가치함정 선별은 여기서만
type Ranker struct {
	config strategyconfig.Screening
}

// NewRanker creates a new ranker
func NewRanker(config strategyconfig.Screening) *Ranker {
	return &Ranker{config: config}
}

// IsOpportunity: discount above the minimum, quality passed, risk within the cap
func (r *Ranker) IsOpportunity(rec contracts.ScreeningRecord) bool {
	return rec.DiscountPct > r.config.MinDiscountPct &&
		rec.Quality.Passed &&
		rec.Risk.AtMost(r.config.MaxRisk())
}

// IsValueTrap: cheap on paper but failing the quality checks
func IsValueTrap(rec contracts.ScreeningRecord) bool {
	return rec.DiscountPct > 0 && !rec.Quality.Passed
}

// TopOpportunities sorts opportunities by investment score (stable) and keeps TopN
func (r *Ranker) TopOpportunities(records []contracts.ScreeningRecord) []contracts.ScreeningRecord {
	out := r.Opportunities(records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].InvestmentScore > out[j].InvestmentScore
	})

	if r.config.TopN > 0 && len(out) > r.config.TopN {
		out = out[:r.config.TopN]
	}
	return out
}

// Opportunities returns every opportunity in input order
func (r *Ranker) Opportunities(records []contracts.ScreeningRecord) []contracts.ScreeningRecord {
	out := make([]contracts.ScreeningRecord, 0)
	for _, rec := range records {
		if r.IsOpportunity(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// ValueTraps returns traps in input order, capped at ValueTrapLimit (0 = all)
func (r *Ranker) ValueTraps(records []contracts.ScreeningRecord) []contracts.ScreeningRecord {
	out := make([]contracts.ScreeningRecord, 0)
	for _, rec := range records {
		if !IsValueTrap(rec) {
			continue
		}
		out = append(out, rec)
		if r.config.ValueTrapLimit > 0 && len(out) == r.config.ValueTrapLimit {
			break
		}
	}
	return out
}

// Filter narrows records for API queries
type Filter struct {
	MinScore     float64
	Sector       contracts.Sector // empty = any
	QualityOnly  bool
	MaxRisk      contracts.RiskTier // empty = any
	UndervalOnly bool
	Limit        int
}

// Apply returns the matching records sorted by investment score
func (f Filter) Apply(records []contracts.ScreeningRecord) []contracts.ScreeningRecord {
	out := make([]contracts.ScreeningRecord, 0)
	for _, rec := range records {
		if rec.InvestmentScore < f.MinScore {
			continue
		}
		if f.Sector != "" && rec.Sector != f.Sector {
			continue
		}
		if f.QualityOnly && !rec.Quality.Passed {
			continue
		}
		if f.MaxRisk != "" && !rec.Risk.AtMost(f.MaxRisk) {
			continue
		}
		if f.UndervalOnly && rec.DiscountPct <= 0 {
			continue
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].InvestmentScore > out[j].InvestmentScore
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
