package models

import "time"

// QuoteSnapshot is a persisted copy of a quote fetched from a provider.
type QuoteSnapshot struct {
	ID            int64     `json:"id"`
	Symbol        string    `json:"symbol"`
	Type          AssetType `json:"type"`
	CacheKey      string    `json:"cacheKey"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Source        string    `json:"source"`
	FetchedAt     time.Time `json:"fetchedAt"`
	TradingDay    string    `json:"tradingDay"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Quote converts the snapshot back into the shape the cache holds.
func (s QuoteSnapshot) Quote() PriceQuote {
	return PriceQuote{
		Symbol:        s.Symbol,
		Type:          s.Type,
		Price:         s.Price,
		Change:        s.Change,
		ChangePercent: s.ChangePercent,
		Source:        s.Source,
	}
}
