package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/wonny/valuefinder/internal/contracts"
)

// screeningColumns is the CSV header, in order
var screeningColumns = []string{
	"ticker", "name", "sector", "price", "intrinsic_value", "discount",
	"valuation_method", "quality_passed", "quality_score", "quality_degraded",
	"risk", "investment_score", "quality_score_detailed", "value_score",
	"value_rating", "recommendation", "pe_ratio", "roe", "debt_equity",
}

// WriteScreeningCSV writes records with numbers fixed to 2 dp; absent metrics are empty
func WriteScreeningCSV(w io.Writer, records []contracts.ScreeningRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(screeningColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Ticker,
			r.Name,
			r.Sector.String(),
			contracts.Format2(r.Price),
			contracts.Format2(r.IntrinsicValue),
			contracts.Format2(r.DiscountPct),
			string(r.Method),
			strconv.FormatBool(r.Quality.Passed),
			strconv.Itoa(r.Quality.Score),
			strconv.FormatBool(r.Quality.Degraded),
			string(r.Risk),
			contracts.Format2(r.InvestmentScore),
			strconv.Itoa(r.QualityScoreDetailed),
			contracts.Format2(r.ValueScore),
			r.ValueRating,
			string(r.Recommendation),
			formatOptional(r.PERatio),
			formatOptional(r.ROE),
			formatOptional(r.DebtToEquity),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.Ticker, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadScreeningCSV reads a file written by WriteScreeningCSV
func ReadScreeningCSV(r io.Reader) ([]contracts.ScreeningRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(screeningColumns)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read csv: missing header")
	}
	for i, col := range screeningColumns {
		if rows[0][i] != col {
			return nil, fmt.Errorf("read csv: column %d is %q, want %q", i+1, rows[0][i], col)
		}
	}

	records := make([]contracts.ScreeningRecord, 0, len(rows)-1)
	for line, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string) (contracts.ScreeningRecord, error) {
	p := rowParser{row: row}

	rec := contracts.ScreeningRecord{
		Ticker:         row[0],
		Name:           row[1],
		Sector:         contracts.Sector(row[2]),
		Price:          p.float(3),
		IntrinsicValue: p.float(4),
		DiscountPct:    p.float(5),
		Method:         contracts.ValuationMethod(row[6]),
		Quality: contracts.QualityVerdict{
			Passed:   p.bool(7),
			Score:    p.int(8),
			Degraded: p.bool(9),
		},
		Risk:                 contracts.RiskTier(row[10]),
		InvestmentScore:      p.float(11),
		QualityScoreDetailed: p.int(12),
		ValueScore:           p.float(13),
		ValueRating:          row[14],
		Recommendation:       contracts.Recommendation(row[15]),
		PERatio:              p.optional(16),
		ROE:                  p.optional(17),
		DebtToEquity:         p.optional(18),
	}
	return rec, p.err
}

// rowParser keeps the first conversion error
type rowParser struct {
	row []string
	err error
}

func (p *rowParser) fail(i int, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%s: %w", screeningColumns[i], err)
	}
}

func (p *rowParser) float(i int) float64 {
	d, err := decimal.NewFromString(p.row[i])
	if err != nil {
		p.fail(i, err)
		return 0
	}
	return d.InexactFloat64()
}

func (p *rowParser) optional(i int) *float64 {
	if p.row[i] == "" {
		return nil
	}
	v := p.float(i)
	return &v
}

func (p *rowParser) int(i int) int {
	v, err := strconv.Atoi(p.row[i])
	if err != nil {
		p.fail(i, err)
	}
	return v
}

func (p *rowParser) bool(i int) bool {
	v, err := strconv.ParseBool(p.row[i])
	if err != nil {
		p.fail(i, err)
	}
	return v
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return contracts.Format2(*v)
}
