package finviz

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/valuefinder/internal/contracts"
)

// quotePage is the scraped content of one quote page
type quotePage struct {
	name     string
	sector   string
	snapshot map[string]string // label → raw cell text
}

func parsePage(doc *goquery.Document) quotePage {
	page := quotePage{snapshot: make(map[string]string)}

	// 스냅샷 테이블: 라벨 | 값 | 라벨 | 값 ...
	doc.Find("table.snapshot-table2 tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		for i := 0; i+1 < cells.Length(); i += 2 {
			label := strings.TrimSpace(cells.Eq(i).Text())
			if label == "" {
				continue
			}
			page.snapshot[label] = strings.TrimSpace(cells.Eq(i + 1).Text())
		}
	})

	page.name = strings.TrimSpace(doc.Find(".quote-header_ticker-wrapper_company").First().Text())
	if page.name == "" {
		page.name = strings.TrimSpace(doc.Find("h2.quote-header_ticker-wrapper_company, .fullview-title b").First().Text())
	}

	// 헤더 링크 중 섹터 필터 (f=sec_)
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if strings.Contains(href, "f=sec_") {
			page.sector = strings.TrimSpace(a.Text())
			return false
		}
		return true
	})

	return page
}

func (p quotePage) metric(label string) contracts.Metric {
	raw, ok := p.snapshot[label]
	if !ok {
		return contracts.None()
	}
	return parseValue(raw)
}

// percent reads "15.20%" as 0.152
func (p quotePage) percent(label string) contracts.Metric {
	return p.metric(label).Map(func(v float64) float64 { return v / 100 })
}

func (p quotePage) toFundamentals(ticker string) *contracts.Fundamentals {
	f := contracts.NewFundamentals(ticker, p.name, p.sector)

	f.Price = p.metric("Price")
	f.EPS = p.metric("EPS (ttm)")
	f.BookValue = p.metric("Book/sh")

	f.ROE = p.percent("ROE")
	f.ProfitMargin = p.percent("Profit Margin")
	f.CurrentRatio = p.metric("Current Ratio")
	f.DebtToEquity = p.metric("Debt/Eq")
	f.LongTermDebt = p.longTermDebt()
	// 영업현금흐름은 Finviz에 없음
	f.OperatingCashFlow = contracts.None()
	f.Beta = p.metric("Beta")
	f.EarningsGrowth = p.percent("EPS next Y")

	f.PE = p.metric("P/E")
	f.PriceToBook = p.metric("P/B")
	f.PriceToSales = p.metric("P/S")
	f.EVToEBITDA = p.metric("EV/EBITDA")
	f.DividendYield = p.percent("Dividend %")
	f.FreeCashFlowYield = p.metric("P/FCF").Map(func(v float64) float64 {
		if v == 0 {
			return 0
		}
		return 1 / v
	})

	return f
}

// longTermDebt = LT Debt/Eq × Book/sh × Shs Outstand
func (p quotePage) longTermDebt() contracts.Metric {
	ratio := p.metric("LT Debt/Eq")
	book := p.metric("Book/sh")
	shares := p.metric("Shs Outstand")

	for _, m := range []contracts.Metric{ratio, book, shares} {
		if !m.IsPresent() {
			return m
		}
	}

	r, _ := ratio.Get()
	b, _ := book.Get()
	s, _ := shares.Get()
	return contracts.Some(r * b * s)
}

var magnitudes = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
	'T': 1e12,
}

// parseValue reads a snapshot cell: "-" is absent, "1.2B" is scaled,
// "12.5%" keeps the number as written
func parseValue(raw string) contracts.Metric {
	s := strings.TrimSpace(raw)
	if s == "" {
		return contracts.None()
	}

	// "2.10 (1.25%)" 형태는 앞 숫자만
	if i := strings.Index(s, " "); i > 0 {
		s = s[:i]
	}

	if n := len(s); n > 1 {
		if mult, ok := magnitudes[s[n-1]]; ok {
			v, err := strconv.ParseFloat(strings.ReplaceAll(s[:n-1], ",", ""), 64)
			if err != nil {
				return contracts.Malformed(raw)
			}
			return contracts.Some(v * mult)
		}
	}

	m := contracts.ParseMetric(s)
	if m.IsMalformed() {
		return contracts.Malformed(raw)
	}
	return m
}
