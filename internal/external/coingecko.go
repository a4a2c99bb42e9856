package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kjannette/trahn-prices/internal/models"
)

const coingeckoURL = "https://api.coingecko.com/api/v3"

type CoinGeckoOptions struct {
	// APIKey is the optional demo key, sent as x_cg_demo_api_key.
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	Burst             int
}

// CoinGeckoClient serves crypto quotes (many ids per call) and market charts.
type CoinGeckoClient struct {
	src    source
	apiKey string
}

func NewCoinGeckoClient(opts CoinGeckoOptions) *CoinGeckoClient {
	base := opts.BaseURL
	if base == "" {
		base = coingeckoURL
	}
	return &CoinGeckoClient{
		src:    newSource("coingecko", base, opts.Timeout, opts.RequestsPerMinute, opts.Burst),
		apiKey: opts.APIKey,
	}
}

// coingeckoStatus is the error envelope CoinGecko sends, sometimes with a 200.
type coingeckoStatus struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type coingeckoPrice struct {
	USD       *float64 `json:"usd"`
	Change24h *float64 `json:"usd_24h_change"`
	Volume24h *float64 `json:"usd_24h_vol"`
}

func (c *CoinGeckoClient) query(q url.Values) url.Values {
	if c.apiKey != "" {
		q.Set("x_cg_demo_api_key", c.apiKey)
	}
	return q
}

func (c *CoinGeckoClient) statusError(raw json.RawMessage) error {
	var st coingeckoStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		return providerErr(c.src.name, Malformed, "decode status: %w", err)
	}
	if st.ErrorCode == 429 || strings.Contains(strings.ToLower(st.ErrorMessage), "rate limit") {
		return providerErr(c.src.name, RateLimited, "%s", st.ErrorMessage)
	}
	return providerErr(c.src.name, Malformed, "error %d: %s", st.ErrorCode, st.ErrorMessage)
}

// CryptoQuotes prices all ids with one /simple/price call. Ids without a
// positive USD price are left out of the result; if none has one the call
// fails with NotFound.
func (c *CoinGeckoClient) CryptoQuotes(ctx context.Context, ids []string) (map[string]models.PriceQuote, error) {
	if len(ids) == 0 {
		return map[string]models.PriceQuote{}, nil
	}

	var raw map[string]json.RawMessage
	q := c.query(url.Values{
		"ids":                 {strings.Join(ids, ",")},
		"vs_currencies":       {"usd"},
		"include_24hr_change": {"true"},
		"include_24hr_vol":    {"true"},
	})
	if err := c.src.getJSON(ctx, "/simple/price", q, &raw); err != nil {
		return nil, err
	}
	if st, ok := raw["status"]; ok {
		return nil, c.statusError(st)
	}

	out := make(map[string]models.PriceQuote, len(ids))
	for _, id := range ids {
		body, ok := raw[id]
		if !ok {
			continue
		}
		var p coingeckoPrice
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, providerErr(c.src.name, Malformed, "decode %s: %w", id, err)
		}
		if p.USD == nil || *p.USD <= 0 {
			continue
		}
		out[id] = normalizeCoin(id, p, c.src.name)
	}
	if len(out) == 0 {
		return nil, providerErr(c.src.name, NotFound, "no prices for %s", strings.Join(ids, ","))
	}
	return out, nil
}

func normalizeCoin(id string, p coingeckoPrice, src string) models.PriceQuote {
	q := models.PriceQuote{
		Symbol: strings.ToUpper(id),
		Type:   models.AssetCrypto,
		Price:  *p.USD,
		Source: src,
		Volume: p.Volume24h,
	}
	if p.Change24h != nil {
		pct := *p.Change24h
		q.ChangePercent = pct
		if pct > -100 {
			prev := q.Price / (1 + pct/100)
			q.Change = q.Price - prev
			q.PreviousClose = models.Float(prev)
		}
	}
	return q
}

type coingeckoChart struct {
	Prices [][]float64 `json:"prices"`
	Error  string      `json:"error"`
}

// CryptoHistory returns the USD market chart for coinID over days.
func (c *CoinGeckoClient) CryptoHistory(ctx context.Context, coinID string, days int) ([]models.HistoryPoint, error) {
	if days <= 0 {
		return nil, providerErr(c.src.name, Malformed, "days must be positive, got %d", days)
	}

	var raw map[string]json.RawMessage
	q := c.query(url.Values{"vs_currency": {"usd"}, "days": {strconv.Itoa(days)}})
	path := fmt.Sprintf("/coins/%s/market_chart", url.PathEscape(coinID))
	if err := c.src.getJSON(ctx, path, q, &raw); err != nil {
		return nil, err
	}
	if st, ok := raw["status"]; ok {
		return nil, c.statusError(st)
	}

	var chart coingeckoChart
	if v, ok := raw["error"]; ok {
		_ = json.Unmarshal(v, &chart.Error)
		return nil, providerErr(c.src.name, NotFound, "%s: %s", coinID, chart.Error)
	}
	if v, ok := raw["prices"]; ok {
		if err := json.Unmarshal(v, &chart.Prices); err != nil {
			return nil, providerErr(c.src.name, Malformed, "decode prices: %w", err)
		}
	}

	points := make([]models.HistoryPoint, 0, len(chart.Prices))
	for _, row := range chart.Prices {
		if len(row) < 2 || row[1] <= 0 {
			continue
		}
		points = append(points, models.HistoryPoint{T: int64(row[0]), P: row[1]})
	}
	if len(points) == 0 {
		return nil, providerErr(c.src.name, NotFound, "no chart data for %s", coinID)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].T < points[j].T })
	return points, nil
}
