package external

//go:generate mockgen -source=provider.go -destination=mocks/provider_mock.go -package=mocks

import (
	"context"

	"github.com/kjannette/trahn-prices/internal/models"
)

// StockQuoter fetches the current quote for one stock ticker.
type StockQuoter interface {
	StockQuote(ctx context.Context, symbol string) (models.PriceQuote, error)
}

// CryptoQuoter fetches current quotes for many coin ids in one upstream call.
// The result is keyed by coin id; ids the provider did not answer are absent.
type CryptoQuoter interface {
	CryptoQuotes(ctx context.Context, ids []string) (map[string]models.PriceQuote, error)
}

type StockHistorian interface {
	StockHistory(ctx context.Context, symbol string, days int) ([]models.HistoryPoint, error)
}

type CryptoHistorian interface {
	CryptoHistory(ctx context.Context, coinID string, days int) ([]models.HistoryPoint, error)
}

type SymbolSearcher interface {
	SearchSymbols(ctx context.Context, query string) ([]models.SearchResult, error)
}
