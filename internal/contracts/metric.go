package contracts

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MetricState distinguishes absent from present-but-zero
type MetricState uint8

const (
	MetricAbsent MetricState = iota
	MetricPresent
	MetricMalformed
)

// Metric is an optional numeric fundamental.
// ⭐ SSOT: 결측값은 절대 0으로 취급하지 않음
// The zero value is absent.
type Metric struct {
	state MetricState
	value float64
	raw   string
}

// Some returns a present metric. NaN and Inf are treated as malformed.
func Some(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{state: MetricMalformed, raw: strconv.FormatFloat(v, 'g', -1, 64)}
	}
	return Metric{state: MetricPresent, value: v}
}

// None returns an absent metric
func None() Metric {
	return Metric{}
}

// Malformed returns a metric whose source value could not be coerced
func Malformed(raw string) Metric {
	return Metric{state: MetricMalformed, raw: raw}
}

// FromPtr maps nil to absent
func FromPtr(v *float64) Metric {
	if v == nil {
		return None()
	}
	return Some(*v)
}

// ParseMetric coerces scraped text. Empty, "-", "N/A" and "null" are absent.
// A trailing "%" is accepted and the value is kept as written (not divided).
func ParseMetric(s string) Metric {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "-", "n/a", "na", "null", "none":
		return None()
	}

	cleaned := strings.ReplaceAll(strings.TrimSuffix(s, "%"), ",", "")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return Malformed(s)
	}
	return Some(v)
}

// parseStrict has no absent sentinels: "n/a" or "" from a JSON feed is malformed
func parseStrict(s string) Metric {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Malformed(s)
	}
	return Some(v)
}

// Get returns the value and true only when the metric is present
func (m Metric) Get() (float64, bool) {
	return m.value, m.state == MetricPresent
}

// State returns the metric state
func (m Metric) State() MetricState { return m.state }

func (m Metric) IsPresent() bool   { return m.state == MetricPresent }
func (m Metric) IsAbsent() bool    { return m.state == MetricAbsent }
func (m Metric) IsMalformed() bool { return m.state == MetricMalformed }

// Raw returns the original text of a malformed metric
func (m Metric) Raw() string { return m.raw }

// Ptr returns nil unless the metric is present (DB/JSON boundary)
func (m Metric) Ptr() *float64 {
	if m.state != MetricPresent {
		return nil
	}
	v := m.value
	return &v
}

// Err returns ErrMalformedMetric for malformed metrics, nil otherwise
func (m Metric) Err() error {
	if m.state == MetricMalformed {
		return fmt.Errorf("%w: %q", ErrMalformedMetric, m.raw)
	}
	return nil
}

// Map applies fn to a present value and leaves other states untouched
func (m Metric) Map(fn func(float64) float64) Metric {
	if m.state != MetricPresent {
		return m
	}
	return Some(fn(m.value))
}

func (m Metric) String() string {
	switch m.state {
	case MetricPresent:
		return strconv.FormatFloat(m.value, 'f', -1, 64)
	case MetricMalformed:
		return fmt.Sprintf("malformed(%q)", m.raw)
	default:
		return "absent"
	}
}

// MarshalJSON writes present values as numbers and everything else as null
func (m Metric) MarshalJSON() ([]byte, error) {
	if m.state != MetricPresent {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON accepts null, numbers and numeric strings.
// Only a JSON null is absent; any other non-numeric value is malformed.
func (m *Metric) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*m = None()
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*m = Some(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = parseStrict(s)
		return nil
	}

	*m = Malformed(trimmed)
	return nil
}
