package selection

import (
	"github.com/wonny/valuefinder/internal/contracts"
)

// Summary is derived entirely from a run; nothing is tracked on the side
type Summary struct {
	RunID            string                           `json:"run_id"`
	Requested        int                              `json:"requested"`
	Scored           int                              `json:"scored"`
	InsufficientData int                              `json:"insufficient_data"`
	FetchFailed      int                              `json:"fetch_failed"`
	QualityFailed    int                              `json:"quality_failed"`
	Opportunities    int                              `json:"opportunities"`
	ValueTraps       int                              `json:"value_traps"`
	Recommendations  map[contracts.Recommendation]int `json:"recommendations"`
	AverageDiscount  float64                          `json:"average_discount"`
}

// Summarize counts outcomes of run. Opportunity and trap counts are uncapped.
func (r *Ranker) Summarize(run *contracts.ScreeningRun) Summary {
	s := Summary{
		RunID:            run.ID,
		Requested:        run.Requested,
		Scored:           len(run.Records),
		InsufficientData: run.CountSkipped(contracts.SkipInsufficientData),
		FetchFailed:      run.CountSkipped(contracts.SkipFetchFailed),
		Recommendations:  make(map[contracts.Recommendation]int),
	}

	total := 0.0
	for _, rec := range run.Records {
		if !rec.Quality.Passed {
			s.QualityFailed++
		}
		if r.IsOpportunity(rec) {
			s.Opportunities++
		}
		if IsValueTrap(rec) {
			s.ValueTraps++
		}
		s.Recommendations[rec.Recommendation]++
		total += rec.DiscountPct
	}

	if s.Scored > 0 {
		s.AverageDiscount = contracts.Round2(total / float64(s.Scored))
	}
	return s
}
