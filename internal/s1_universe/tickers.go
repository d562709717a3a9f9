package s1_universe

// defaultGroups is the built-in US large-cap universe by sector
var defaultGroups = []struct {
	sector  string
	tickers []string
}{
	{"Technology", []string{
		"AAPL", "MSFT", "GOOGL", "AMZN", "META", "NVDA", "TSLA", "AVGO", "ADBE", "CRM",
		"CSCO", "INTC", "ORCL", "IBM", "QCOM", "TXN", "AMD", "NOW", "UBER", "SHOP",
		"NET", "SNOW", "PANW", "CRWD", "MSI",
	}},
	{"Financial", []string{
		"JPM", "BAC", "WFC", "GS", "MS", "SCHW", "BLK", "C", "AXP", "V",
		"MA", "PYPL", "SQ", "COF", "DFS", "RY", "TD", "BX", "KKR", "SPGI",
	}},
	{"Healthcare", []string{
		"JNJ", "UNH", "LLY", "PFE", "ABBV", "TMO", "MRK", "DHR", "AMGN", "GILD",
		"BMY", "VRTX", "REGN", "ISRG", "SYK", "BDX", "ZTS", "CI", "HUM", "EW",
	}},
	{"Consumer Cyclical", []string{
		"HD", "MCD", "SBUX", "NKE", "LOW", "TSCO", "F", "GM", "MAR", "HLT",
		"BKNG", "NCLH", "RCL", "CCL", "DHI",
	}},
	{"Consumer Defensive", []string{
		"WMT", "PG", "KO", "PEP", "COST", "PM", "MO", "MDLZ", "CL", "EL",
		"KMB", "SYY", "KR", "TGT", "DG",
	}},
	{"Energy & Utilities", []string{
		"XOM", "CVX", "COP", "SLB", "EOG", "PSX", "VLO", "MPC", "OXY", "KMI",
		"NEE", "DUK", "SO", "D", "AEP",
	}},
	{"Industrials", []string{
		"RTX", "BA", "LMT", "GD", "NOC", "CAT", "DE", "HON", "GE", "UPS",
		"FDX", "EMR", "ITW", "WM", "RSG",
	}},
	{"Materials & Real Estate", []string{
		"LIN", "APD", "FCX", "NEM", "GOLD", "VALE", "BHP", "RIO", "PLD", "AMT",
		"CCI", "EQIX", "PSA", "O", "SPG",
	}},
	{"Communication", []string{
		"T", "VZ", "CMCSA", "DIS", "NFLX", "CHTR", "TMUS", "EA", "ATVI", "TTWO",
		"LYV", "LVS", "WYNN", "MGM", "ROKU",
	}},
	{"International", []string{
		"ASML", "NSRGY", "SAP", "UL", "BUD", "AZN", "GSK", "SNY", "SAN", "BBVA",
		"ING", "HSBC", "TM", "HMC", "SONY",
	}},
}

// DefaultTickers returns a fresh copy of the built-in universe
func DefaultTickers() []string {
	var out []string
	for _, g := range defaultGroups {
		out = append(out, g.tickers...)
	}
	return out
}
