package models

import (
	"strings"
	"time"
)

type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetCrypto AssetType = "crypto"
)

// ParseAssetType accepts the loose spellings found in request bodies and
// the holdings table.
// Anything unrecognised is returned as the empty type.
func ParseAssetType(s string) AssetType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stock", "stocks", "equity":
		return AssetStock
	case "crypto", "cryptocurrency", "coin":
		return AssetCrypto
	}
	return ""
}

// PriceQuote is the normalized quote every adapter produces. It is a value:
// a refetch produces a new PriceQuote, cached ones are never modified.
type PriceQuote struct {
	Symbol        string    `json:"symbol"`
	Type          AssetType `json:"type"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	High          *float64  `json:"high,omitempty"`
	Low           *float64  `json:"low,omitempty"`
	Open          *float64  `json:"open,omitempty"`
	PreviousClose *float64  `json:"previousClose,omitempty"`
	Volume        *float64  `json:"volume,omitempty"`
	Source        string    `json:"source"`
}

// WithSymbol returns a copy of q carrying symbol.
func (q PriceQuote) WithSymbol(symbol string) PriceQuote {
	q.Symbol = symbol
	return q
}

// Quote is a PriceQuote annotated with how it was served.
type Quote struct {
	PriceQuote
	Cached    bool      `json:"cached"`
	Stale     bool      `json:"stale"`
	FetchedAt time.Time `json:"fetchedAt"`
}

type HistoryPoint struct {
	T int64   `json:"t"`
	P float64 `json:"p"`
}

// HoldingWeight is the minimal holding shape read from the ledger.
type HoldingWeight struct {
	Symbol   string    `json:"symbol"`
	Type     AssetType `json:"type"`
	Quantity float64   `json:"quantity"`
}

type SearchResult struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Region string `json:"region"`
}

// Float returns a pointer to v, for the optional quote fields.
func Float(v float64) *float64 {
	return &v
}
