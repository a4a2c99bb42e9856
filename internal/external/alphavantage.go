package external

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/kjannette/trahn-prices/internal/models"
)

const alphaVantageURL = "https://www.alphavantage.co"

type AlphaVantageOptions struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	Burst             int
}

// AlphaVantageClient is the symbol search provider.
type AlphaVantageClient struct {
	src    source
	apiKey string
}

func NewAlphaVantageClient(opts AlphaVantageOptions) *AlphaVantageClient {
	base := opts.BaseURL
	if base == "" {
		base = alphaVantageURL
	}
	return &AlphaVantageClient{
		src:    newSource("alphavantage", base, opts.Timeout, opts.RequestsPerMinute, opts.Burst),
		apiKey: opts.APIKey,
	}
}

type alphaVantageSearch struct {
	BestMatches []struct {
		Symbol string `json:"1. symbol"`
		Name   string `json:"2. name"`
		Type   string `json:"3. type"`
		Region string `json:"4. region"`
	} `json:"bestMatches"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// SearchSymbols returns matches in provider order, unfiltered.
func (c *AlphaVantageClient) SearchSymbols(ctx context.Context, query string) ([]models.SearchResult, error) {
	if c.apiKey == "" {
		return nil, providerErr(c.src.name, Unavailable, "alpha vantage API key not configured")
	}

	var data alphaVantageSearch
	q := url.Values{"function": {"SYMBOL_SEARCH"}, "keywords": {query}, "apikey": {c.apiKey}}
	if err := c.src.getJSON(ctx, "/query", q, &data); err != nil {
		return nil, err
	}

	// Throttling is reported as a 200 with a Note or Information field.
	if notice := firstNonEmpty(data.Note, data.Information); notice != "" {
		return nil, providerErr(c.src.name, RateLimited, "%s", notice)
	}
	if data.ErrorMessage != "" {
		return nil, providerErr(c.src.name, Malformed, "%s", data.ErrorMessage)
	}

	out := make([]models.SearchResult, 0, len(data.BestMatches))
	for _, m := range data.BestMatches {
		if strings.TrimSpace(m.Symbol) == "" {
			continue
		}
		out = append(out, models.SearchResult{
			Symbol: strings.TrimSpace(m.Symbol),
			Name:   strings.TrimSpace(m.Name),
			Type:   m.Type,
			Region: m.Region,
		})
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
