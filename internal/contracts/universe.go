package contracts

import "time"

// Universe is the ordered ticker list passed from S1 to the screener
// ⭐ SSOT: S1 → S2 스크리닝 대상 종목 전달 (순서 보존)
type Universe struct {
	Date     time.Time         `json:"date"`
	Source   string            `json:"source"`   // default, file, args
	Tickers  []string          `json:"tickers"`  // 입력 순서 유지, 중복 제거
	Excluded map[string]string `json:"excluded"` // 제외 종목: 사유
}

// Contains checks if a ticker is in the universe
func (u *Universe) Contains(ticker string) bool {
	for _, t := range u.Tickers {
		if t == ticker {
			return true
		}
	}
	return false
}

// IsExcluded checks if a ticker is excluded with reason
func (u *Universe) IsExcluded(ticker string) (bool, string) {
	reason, exists := u.Excluded[ticker]
	return exists, reason
}

// Count returns the number of tickers to screen
func (u *Universe) Count() int {
	return len(u.Tickers)
}
