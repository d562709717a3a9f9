package finviz

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/valuefinder/internal/contracts"
	"github.com/wonny/valuefinder/pkg/httputil"
	"github.com/wonny/valuefinder/pkg/logger"
)

// DefaultBaseURL is the Finviz quote host
const DefaultBaseURL = "https://finviz.com"

// Client scrapes the Finviz quote snapshot table
// ⭐ SSOT: Finviz 스크래핑은 이 클라이언트에서만
// Implements contracts.FundamentalsSource only; Finviz has no price history.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time
}

// NewClient creates a new Finviz client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("source", "finviz"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}
}

// FetchFundamentals scrapes one quote page
func (c *Client) FetchFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	fullURL := fmt.Sprintf("%s/quote.ashx?t=%s&p=d", c.baseURL, url.QueryEscape(ticker))

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, unavailable(ticker, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, unavailable(ticker, fmt.Errorf("parse html: %w", err))
	}

	page := parsePage(doc)
	if len(page.snapshot) == 0 {
		return nil, unavailable(ticker, fmt.Errorf("snapshot table not found"))
	}

	f := page.toFundamentals(ticker)
	f.FetchedAt = c.now()

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"fields": len(page.snapshot),
	}).Debug("Scraped fundamentals")
	return f, nil
}

func unavailable(ticker string, err error) error {
	return fmt.Errorf("%w: finviz %s: %v", contracts.ErrDataUnavailable, ticker, err)
}
