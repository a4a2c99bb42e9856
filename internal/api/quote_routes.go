package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kjannette/trahn-prices/internal/models"
	"github.com/kjannette/trahn-prices/internal/quotes"
)

type quoteJSON struct {
	Symbol        string           `json:"symbol"`
	Type          models.AssetType `json:"type"`
	Price         float64          `json:"price"`
	Change        float64          `json:"change"`
	ChangePercent float64          `json:"changePercent"`
	High          *float64         `json:"high,omitempty"`
	Low           *float64         `json:"low,omitempty"`
	Open          *float64         `json:"open,omitempty"`
	PreviousClose *float64         `json:"previousClose,omitempty"`
	Volume        *float64         `json:"volume,omitempty"`
	Source        string           `json:"source"`
	Cached        bool             `json:"cached"`
	Stale         bool             `json:"stale"`
	FetchedAt     string           `json:"fetchedAt"`
}

type bulkRequestJSON struct {
	Symbols []quotes.BulkRequest `json:"symbols"`
}

// roundPrice keeps cents for prices of a dollar or more and eight decimals
// below that, so sub-cent coins stay meaningful.
func roundPrice(v float64) float64 {
	d := decimal.NewFromFloat(v)
	if d.Abs().LessThan(decimal.NewFromInt(1)) {
		return d.Round(8).InexactFloat64()
	}
	return d.Round(2).InexactFloat64()
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func roundPtr(v *float64, fn func(float64) float64) *float64 {
	if v == nil {
		return nil
	}
	return models.Float(fn(*v))
}

func toQuoteJSON(q models.Quote) quoteJSON {
	return quoteJSON{
		Symbol:        q.Symbol,
		Type:          q.Type,
		Price:         roundPrice(q.Price),
		Change:        roundPrice(q.Change),
		ChangePercent: round2(q.ChangePercent),
		High:          roundPtr(q.High, roundPrice),
		Low:           roundPtr(q.Low, roundPrice),
		Open:          roundPtr(q.Open, roundPrice),
		PreviousClose: roundPtr(q.PreviousClose, roundPrice),
		Volume:        roundPtr(q.Volume, round2),
		Source:        q.Source,
		Cached:        q.Cached,
		Stale:         q.Stale,
		FetchedAt:     q.FetchedAt.UTC().Format(time.RFC3339),
	}
}

// handleStockQuote serves GET /v1/quotes/stock/{symbol}. Quote routes round
// prices to cents, except that prices under $1 keep eight decimal places so
// sub-cent coins do not collapse to 0.00. changePercent and volume
// are always rounded to two places.
func (s *Server) handleStockQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.deps.Quotes.GetStockPrice(r.Context(), r.PathValue("symbol"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteJSON(q))
}

func (s *Server) handleCryptoQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.deps.Quotes.GetCryptoPrice(r.Context(), r.PathValue("symbol"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteJSON(q))
}

func (s *Server) handleBulkQuotes(w http.ResponseWriter, r *http.Request) {
	var body bulkRequestJSON
	if err := decodeBody(w, r, &body); err != nil {
		s.writeServiceError(w, err)
		return
	}
	for i := range body.Symbols {
		body.Symbols[i].Type = models.ParseAssetType(string(body.Symbols[i].Type))
	}

	got, err := s.deps.Quotes.GetBulkPrices(r.Context(), body.Symbols)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	out := make(map[string]*quoteJSON, len(got))
	for sym, q := range got {
		if q == nil {
			out[sym] = nil
			continue
		}
		j := toQuoteJSON(*q)
		out[sym] = &j
	}
	writeJSON(w, http.StatusOK, out)
}
