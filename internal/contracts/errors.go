package contracts

import "errors"

// Error taxonomy shared by every stage
// ⭐ SSOT: 종목 단위 실패는 배치를 중단시키지 않음 (설정 오류만 중단)
var (
	// ErrInsufficientData: valuation preconditions unmet. Expected outcome, the ticker is excluded.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDataUnavailable: a collaborator fetch failed for one ticker.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrMalformedMetric: a present value that could not be coerced to a number.
	ErrMalformedMetric = errors.New("malformed metric")
)
