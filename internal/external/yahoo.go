package external

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/kjannette/trahn-prices/internal/models"
	"github.com/kjannette/trahn-prices/internal/symbols"
)

const yahooURL = "https://query1.finance.yahoo.com"

type YahooOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	Burst             int
}

// YahooClient serves daily stock history from the public chart API.
type YahooClient struct {
	src source
	now func() time.Time
}

func NewYahooClient(opts YahooOptions) *YahooClient {
	base := opts.BaseURL
	if base == "" {
		base = yahooURL
	}
	src := newSource("yahoo", base, opts.Timeout, opts.RequestsPerMinute, opts.Burst)
	src.userAgent = "Mozilla/5.0"
	return &YahooClient{src: src, now: time.Now}
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooRange picks the smallest chart range covering days.
func yahooRange(days int) string {
	switch {
	case days <= 5:
		return "5d"
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	case days <= 730:
		return "2y"
	default:
		return "5y"
	}
}

// StockHistory returns daily closes for the last days calendar days.
func (c *YahooClient) StockHistory(ctx context.Context, symbol string, days int) ([]models.HistoryPoint, error) {
	if days <= 0 {
		return nil, providerErr(c.src.name, Malformed, "days must be positive, got %d", days)
	}
	symbol = symbols.Canonical(symbol)

	var chart yahooChart
	q := url.Values{"interval": {"1d"}, "range": {yahooRange(days)}}
	if err := c.src.getJSON(ctx, fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(symbol)), q, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, providerErr(c.src.name, NotFound, "%s: %s", symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, providerErr(c.src.name, NotFound, "no chart data for %s", symbol)
	}

	result := chart.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close
	cutoff := c.now().Add(-time.Duration(days) * 24 * time.Hour).UnixMilli()

	points := make([]models.HistoryPoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] <= 0 {
			continue // holidays and halts come back as null
		}
		ms := ts * 1000
		if ms < cutoff {
			continue
		}
		points = append(points, models.HistoryPoint{T: ms, P: *closes[i]})
	}
	if len(points) == 0 {
		return nil, providerErr(c.src.name, NotFound, "no closes for %s in the last %d days", symbol, days)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].T < points[j].T })
	return points, nil
}
