package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/pkg/httputil"
	"github.com/wonny/valuefinder/pkg/logger"
)

// DefaultBaseURL is the public Yahoo Finance query host
const DefaultBaseURL = "https://query2.finance.yahoo.com"

// summaryModules are the quoteSummary modules one snapshot needs
var summaryModules = []string{
	"price",
	"summaryDetail",
	"defaultKeyStatistics",
	"financialData",
	"assetProfile",
	"balanceSheetHistory",
}

// Client handles communication with Yahoo Finance
// ⭐ SSOT: Yahoo Finance API 호출은 이 클라이언트에서만
// Implements contracts.FundamentalsSource and contracts.PriceSource.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("source", "yahoo"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}
}

// FetchFundamentals fetches one quoteSummary snapshot
func (c *Client) FetchFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	params := url.Values{}
	params.Set("modules", strings.Join(summaryModules, ","))
	fullURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())

	var resp quoteSummaryResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, unavailable(ticker, err)
	}

	result, err := resp.first()
	if err != nil {
		return nil, unavailable(ticker, err)
	}

	f := result.toFundamentals(ticker)
	f.FetchedAt = c.now()

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"sector": f.Sector,
	}).Debug("Fetched fundamentals")
	return f, nil
}

// FetchPriceSeries fetches daily closes for [from, to]
func (c *Client) FetchPriceSeries(ctx context.Context, ticker string, from, to time.Time) ([]contracts.PricePoint, error) {
	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", from.Unix()))
	params.Set("period2", fmt.Sprintf("%d", to.Unix()))
	params.Set("interval", "1d")
	params.Set("events", "div,splits")
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())

	var resp chartResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, &resp); err != nil {
		return nil, unavailable(ticker, err)
	}

	series, err := resp.series()
	if err != nil {
		return nil, unavailable(ticker, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(series),
	}).Debug("Fetched price series")
	return series, nil
}

func unavailable(ticker string, err error) error {
	return fmt.Errorf("%w: yahoo %s: %v", contracts.ErrDataUnavailable, ticker, err)
}
