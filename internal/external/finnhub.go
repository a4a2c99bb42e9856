package external

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/kjannette/trahn-prices/internal/models"
	"github.com/kjannette/trahn-prices/internal/symbols"
)

const finnhubURL = "https://finnhub.io/api/v1"

type FinnhubOptions struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	Burst             int
}

// FinnhubClient is the stock quote provider.
type FinnhubClient struct {
	src    source
	apiKey string
}

func NewFinnhubClient(opts FinnhubOptions) *FinnhubClient {
	base := opts.BaseURL
	if base == "" {
		base = finnhubURL
	}
	return &FinnhubClient{
		src:    newSource("finnhub", base, opts.Timeout, opts.RequestsPerMinute, opts.Burst),
		apiKey: opts.APIKey,
	}
}

type finnhubQuote struct {
	Current       float64  `json:"c"`
	Change        *float64 `json:"d"`
	ChangePercent *float64 `json:"dp"`
	High          float64  `json:"h"`
	Low           float64  `json:"l"`
	Open          float64  `json:"o"`
	PreviousClose float64  `json:"pc"`
	Error         string   `json:"error"`
}

func (c *FinnhubClient) StockQuote(ctx context.Context, symbol string) (models.PriceQuote, error) {
	if c.apiKey == "" {
		return models.PriceQuote{}, providerErr(c.src.name, Unavailable, "finnhub API key not configured")
	}
	symbol = symbols.Canonical(symbol)

	var data finnhubQuote
	q := url.Values{"symbol": {symbol}, "token": {c.apiKey}}
	if err := c.src.getJSON(ctx, "/quote", q, &data); err != nil {
		return models.PriceQuote{}, err
	}

	if data.Error != "" {
		kind := Malformed
		if strings.Contains(strings.ToLower(data.Error), "limit") {
			kind = RateLimited
		}
		return models.PriceQuote{}, providerErr(c.src.name, kind, "%s", data.Error)
	}
	// Finnhub answers unknown tickers with an all-zero quote.
	if data.Current <= 0 {
		return models.PriceQuote{}, providerErr(c.src.name, NotFound, "no quote for %s", symbol)
	}

	out := models.PriceQuote{
		Symbol: symbol,
		Type:   models.AssetStock,
		Price:  data.Current,
		Source: c.src.name,
	}
	if data.Change != nil {
		out.Change = *data.Change
	}
	if data.ChangePercent != nil {
		out.ChangePercent = *data.ChangePercent
	}
	out.High = positive(data.High)
	out.Low = positive(data.Low)
	out.Open = positive(data.Open)
	out.PreviousClose = positive(data.PreviousClose)
	return out, nil
}

func positive(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return models.Float(v)
}
