package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/wonny/valuefinder/internal/backtest"
	"github.com/wonny/valuefinder/internal/brain"
	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/internal/selection"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

// PrintHeader prints a titled section header
func PrintHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, singleLine)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// PrintList prints a bulleted list
func PrintList(w io.Writer, items []string) {
	for _, item := range items {
		fmt.Fprintf(w, "   • %s\n", item)
	}
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		if i < len(values)-1 {
			fmt.Fprintf(w, "%-*s  ", widths[i], val)
		} else {
			fmt.Fprint(w, val)
		}
	}
	fmt.Fprintln(w)
}

// formatPct renders a percentage with sign
func formatPct(v float64) string {
	return fmt.Sprintf("%+.1f%%", v)
}

// formatOptional renders an absent metric as "-"
func formatOptional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

var recordColumns = []string{"#", "Ticker", "Sector", "Price", "Intrinsic", "Discount", "Q", "Risk", "Score", "Rating", "Action"}
var recordWidths = []int{3, 7, 12, 9, 10, 9, 4, 7, 14, 12, 11}

// PrintRecords prints ranked screening records with their star rating
func PrintRecords(w io.Writer, records []contracts.ScreeningRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "   (none)")
		return
	}

	PrintTableHeader(w, recordColumns, recordWidths)
	for i, r := range records {
		PrintTableRow(w, []string{
			fmt.Sprintf("%d", i+1),
			r.Ticker,
			string(r.Sector),
			fmt.Sprintf("%.2f", r.Price),
			fmt.Sprintf("%.2f", r.IntrinsicValue),
			formatPct(r.DiscountPct),
			fmt.Sprintf("%d/5", r.Quality.Score),
			string(r.Risk),
			fmt.Sprintf("%.0f %s", r.InvestmentScore, selection.StarString(r.InvestmentScore)),
			r.ValueRating,
			string(r.Recommendation),
		}, recordWidths)
	}
}

// PrintSummary prints the outcome counts of a run
func PrintSummary(w io.Writer, s selection.Summary) {
	PrintHeader(w, "Summary")
	PrintKeyValue(w, "Run ID", s.RunID, 18)
	PrintKeyValue(w, "Requested", fmt.Sprintf("%d", s.Requested), 18)
	PrintKeyValue(w, "Scored", fmt.Sprintf("%d", s.Scored), 18)
	PrintKeyValue(w, "Insufficient data", fmt.Sprintf("%d", s.InsufficientData), 18)
	PrintKeyValue(w, "Fetch failed", fmt.Sprintf("%d", s.FetchFailed), 18)
	PrintKeyValue(w, "Quality failed", fmt.Sprintf("%d", s.QualityFailed), 18)
	PrintKeyValue(w, "Opportunities", fmt.Sprintf("%d", s.Opportunities), 18)
	PrintKeyValue(w, "Value traps", fmt.Sprintf("%d", s.ValueTraps), 18)
	PrintKeyValue(w, "Average discount", formatPct(s.AverageDiscount), 18)

	for _, rec := range []contracts.Recommendation{
		contracts.RecommendStrongBuy, contracts.RecommendBuy, contracts.RecommendInvestigate, contracts.RecommendAvoid,
	} {
		PrintKeyValue(w, string(rec), fmt.Sprintf("%d", s.Recommendations[rec]), 18)
	}
}

// PrintScreening prints opportunities, value traps and the summary
func PrintScreening(w io.Writer, res *brain.ScreeningResult) {
	PrintHeader(w, fmt.Sprintf("Top opportunities (%d)", len(res.Opportunities)))
	PrintRecords(w, res.Opportunities)

	PrintHeader(w, fmt.Sprintf("Value traps (%d)", len(res.ValueTraps)))
	PrintRecords(w, res.ValueTraps)

	PrintSummary(w, res.Summary)

	if res.Coverage != nil && !res.Coverage.Passed() {
		fmt.Fprintln(w)
		PrintWarning(w, fmt.Sprintf("Data coverage below threshold: %s", strings.Join(res.Coverage.Failed, ", ")))
	}
}

var backtestColumns = []string{"Ticker", "Discount", "Score", "Return", "Volatility", "MaxDD", "Ret/Vol", "Period"}
var backtestWidths = []int{7, 9, 7, 9, 11, 9, 8, 23}

// PrintBacktest prints the discount → return comparison and its analysis
func PrintBacktest(w io.Writer, res *brain.BacktestResult) {
	PrintHeader(w, fmt.Sprintf("Backtest %d years (%s ~ %s)", res.Years, res.From.Format("2006-01-02"), res.To.Format("2006-01-02")))

	if len(res.Merged) == 0 {
		PrintWarning(w, "No candidate had enough price history")
		return
	}

	PrintTableHeader(w, backtestColumns, backtestWidths)
	for _, m := range res.Merged {
		bt := m.Backtest
		PrintTableRow(w, []string{
			bt.Ticker,
			formatPct(m.Screening.DiscountPct),
			fmt.Sprintf("%.0f", m.Screening.InvestmentScore),
			formatPct(bt.TotalReturn),
			fmt.Sprintf("%.2f%%", bt.Volatility),
			formatPct(bt.MaxDrawdown),
			fmt.Sprintf("%.2f", bt.ReturnToVolatility),
			bt.StartDate.Format("2006-01-02") + " ~ " + bt.EndDate.Format("2006-01-02"),
		}, backtestWidths)
	}

	PrintAnalysis(w, res.Analysis)
}

// PrintAnalysis prints the comparative statistics of a backtest
func PrintAnalysis(w io.Writer, a backtest.Analysis) {
	PrintHeader(w, "Analysis")
	PrintKeyValue(w, "Tested", fmt.Sprintf("%d", a.Count), 22)
	PrintKeyValue(w, "Win rate", fmt.Sprintf("%.1f%% (%d)", a.WinRate, a.Winners), 22)
	PrintKeyValue(w, "Average return", formatPct(a.AverageReturn), 22)
	PrintKeyValue(w, "Median return", formatPct(a.MedianReturn), 22)
	PrintKeyValue(w, "Average drawdown", formatPct(a.AverageDrawdown), 22)
	PrintKeyValue(w, "Deep discount return", formatPct(a.DeepDiscountReturn), 22)
	PrintKeyValue(w, "Shallow discount return", formatPct(a.ShallowDiscountReturn), 22)
	if a.Best != "" {
		PrintKeyValue(w, "Best / Worst", a.Best+" / "+a.Worst, 22)
	}
}

// PrintStockAnalysis prints the single-ticker breakdown
func PrintStockAnalysis(w io.Writer, a *brain.StockAnalysis) {
	r := a.Record
	PrintHeader(w, fmt.Sprintf("%s  %s (%s)", r.Ticker, r.Name, r.Sector))

	PrintKeyValue(w, "Price", fmt.Sprintf("%.2f", r.Price), 16)
	PrintKeyValue(w, "Intrinsic value", fmt.Sprintf("%.2f (%s)", r.IntrinsicValue, r.Method), 16)
	PrintKeyValue(w, "Discount", formatPct(r.DiscountPct), 16)
	quality := fmt.Sprintf("%d/5 passed=%t, detailed %d/10", r.Quality.Score, r.Quality.Passed, r.QualityScoreDetailed)
	if r.Quality.Degraded {
		quality += " (degraded)"
	}
	PrintKeyValue(w, "Quality", quality, 16)
	PrintKeyValue(w, "Risk", string(r.Risk), 16)
	PrintKeyValue(w, "P/E", formatOptional(r.PERatio, "%.2f"), 16)
	PrintKeyValue(w, "ROE", formatOptional(r.ROE, "%.2f"), 16)
	PrintKeyValue(w, "Debt/Equity", formatOptional(r.DebtToEquity, "%.2f"), 16)
	PrintKeyValue(w, "Score", fmt.Sprintf("%.1f %s", r.InvestmentScore, selection.StarString(r.InvestmentScore)), 16)
	PrintKeyValue(w, "Recommendation", string(r.Recommendation), 16)

	PrintHeader(w, fmt.Sprintf("Value factors: %.1f (%s)", a.ValueScore.Total, a.ValueScore.Rating))
	if len(a.ValueScore.Strengths) > 0 {
		fmt.Fprintln(w, "  Strengths")
		PrintList(w, a.ValueScore.Strengths)
	}
	if len(a.ValueScore.Warnings) > 0 {
		fmt.Fprintln(w, "  Warnings")
		PrintList(w, a.ValueScore.Warnings)
	}

	switch {
	case a.Opportunity:
		PrintSuccess(w, "Opportunity")
	case a.ValueTrap:
		PrintWarning(w, "Possible value trap: discounted but quality failed")
	}
}
