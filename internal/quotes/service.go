package quotes

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/kjannette/trahn-prices/internal/cache"
	"github.com/kjannette/trahn-prices/internal/external"
	"github.com/kjannette/trahn-prices/internal/models"
	"github.com/kjannette/trahn-prices/internal/symbols"
)

const (
	MaxBulkEntries = 100

	defaultFetchTimeout = 10 * time.Second
	defaultConcurrency  = 8
	recordTimeout       = 5 * time.Second
)

// Recorder persists quotes that came from a provider.
type Recorder interface {
	Record(ctx context.Context, cacheKey string, q models.PriceQuote, fetchedAt time.Time) error
}

type BulkRequest struct {
	Symbol string           `json:"symbol"`
	Type   models.AssetType `json:"type,omitempty"`
}

// Service answers price lookups from the cache, going to the providers only
// when an entry is not fresh.
type Service struct {
	store  *cache.Store
	stocks external.StockQuoter
	crypto external.CryptoQuoter

	group       singleflight.Group
	recorder    Recorder
	onError     func(error)
	concurrency int
	timeout     time.Duration
	log         *logrus.Entry

	pending sync.WaitGroup
}

type Option func(*Service)

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithErrorHook is called with every provider error, after the cache has had
// its chance to answer.
func WithErrorHook(fn func(error)) Option {
	return func(s *Service) { s.onError = fn }
}

// WithConcurrency caps parallel stock lookups in a bulk request.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(s *Service) { s.log = l }
}

func NewService(store *cache.Store, stocks external.StockQuoter, crypto external.CryptoQuoter, opts ...Option) *Service {
	s := &Service{
		store:       store,
		stocks:      stocks,
		crypto:      crypto,
		concurrency: defaultConcurrency,
		timeout:     defaultFetchTimeout,
		log:         logrus.WithField("component", "quotes"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close waits for snapshot writes still in flight.
func (s *Service) Close() {
	s.pending.Wait()
}

// GetPrice dispatches on the symbol's class.
func (s *Service) GetPrice(ctx context.Context, symbol string) (models.Quote, error) {
	if symbols.Classify(symbol) == models.AssetCrypto {
		return s.GetCryptoPrice(ctx, symbol)
	}
	return s.GetStockPrice(ctx, symbol)
}

// GetStockPrice looks up a stock quote. A crypto ticker is routed to the
// crypto path so a symbol is never priced by the wrong provider.
func (s *Service) GetStockPrice(ctx context.Context, symbol string) (models.Quote, error) {
	sym := symbols.Canonical(symbol)
	if sym == "" {
		return models.Quote{}, models.Invalid("symbol", "must not be empty")
	}
	if symbols.Classify(sym) == models.AssetCrypto {
		return s.GetCryptoPrice(ctx, sym)
	}

	r, err := cache.Load(ctx, s.store, cache.Stocks, sym, func(ctx context.Context) (models.PriceQuote, error) {
		return s.fetchStock(ctx, sym)
	})
	if err != nil {
		return models.Quote{}, fmt.Errorf("stock quote %s: %w", sym, err)
	}
	return annotate(r, sym), nil
}

// GetCryptoPrice looks up a crypto quote. Aliases of one asset ("BTC",
// "BTC-USD") share a cache entry keyed by coin id.
func (s *Service) GetCryptoPrice(ctx context.Context, symbol string) (models.Quote, error) {
	sym := symbols.Canonical(symbol)
	if sym == "" {
		return models.Quote{}, models.Invalid("symbol", "must not be empty")
	}
	if symbols.Classify(sym) != models.AssetCrypto {
		return models.Quote{}, fmt.Errorf("%w: %s is not a crypto ticker", symbols.ErrUnsupportedSymbol, sym)
	}
	id, err := symbols.ProviderID(sym)
	if err != nil {
		return models.Quote{}, err
	}

	r, err := cache.Load(ctx, s.store, cache.Crypto, id, func(ctx context.Context) (models.PriceQuote, error) {
		got, err := s.fetchCrypto(ctx, []string{id})
		if err != nil {
			return models.PriceQuote{}, err
		}
		q, ok := got[id]
		if !ok {
			return models.PriceQuote{}, &external.ProviderError{Provider: "coingecko", Kind: external.NotFound,
				Err: fmt.Errorf("no price for %s", id)}
		}
		return q, nil
	})
	if err != nil {
		return models.Quote{}, fmt.Errorf("crypto quote %s: %w", sym, err)
	}
	return annotate(r, sym), nil
}

// GetBulkPrices prices many symbols at once. Every requested symbol appears in
// the result under its canonical form; symbols that cannot be priced map to
// nil. Crypto symbols not fresh in the cache are priced with a single
// provider call.
func (s *Service) GetBulkPrices(ctx context.Context, reqs []BulkRequest) (map[string]*models.Quote, error) {
	if len(reqs) == 0 {
		return nil, models.Invalid("symbols", "at least one symbol is required")
	}
	if len(reqs) > MaxBulkEntries {
		return nil, models.Invalid("symbols", "at most %d symbols per request, got %d", MaxBulkEntries, len(reqs))
	}

	var stockSyms, cryptoSyms []string
	seen := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		sym := symbols.Canonical(r.Symbol)
		if sym == "" {
			return nil, models.Invalid("symbols", "empty symbol in request")
		}
		if seen[sym] {
			continue
		}
		seen[sym] = true

		class := symbols.Classify(sym)
		if r.Type != "" && r.Type != class {
			s.log.WithFields(logrus.Fields{"symbol": sym, "hint": r.Type, "class": class}).
				Debug("type hint disagrees with symbol class")
		}
		if class == models.AssetCrypto {
			cryptoSyms = append(cryptoSyms, sym)
		} else {
			stockSyms = append(stockSyms, sym)
		}
	}

	out := make(map[string]*models.Quote, len(seen))
	var mu sync.Mutex
	put := func(sym string, q *models.Quote) {
		mu.Lock()
		out[sym] = q
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	if len(cryptoSyms) > 0 {
		g.Go(func() error {
			s.bulkCrypto(ctx, cryptoSyms, put)
			return nil
		})
	}
	for _, sym := range stockSyms {
		g.Go(func() error {
			q, err := s.GetStockPrice(ctx, sym)
			if err != nil {
				s.log.WithError(err).WithField("symbol", sym).Debug("bulk stock lookup failed")
				put(sym, nil)
				return nil
			}
			put(sym, &q)
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

func (s *Service) bulkCrypto(ctx context.Context, syms []string, put func(string, *models.Quote)) {
	idOf := make(map[string]string, len(syms))
	var need []string
	needSet := make(map[string]bool)

	for _, sym := range syms {
		id, err := symbols.ProviderID(sym)
		if err != nil {
			put(sym, nil)
			continue
		}
		idOf[sym] = id
		if r, ok := cache.Fresh[models.PriceQuote](s.store, cache.Crypto, id); ok {
			q := annotate(r, sym)
			put(sym, &q)
			continue
		}
		if !needSet[id] {
			needSet[id] = true
			need = append(need, id)
		}
	}
	if len(need) == 0 {
		return
	}

	fetched, err := s.fetchCrypto(ctx, need)
	if err != nil {
		s.log.WithError(err).WithField("ids", len(need)).Warn("bulk crypto fetch failed, serving cache")
	}
	for id, q := range fetched {
		s.store.Set(cache.Crypto, id, q)
	}

	for _, sym := range syms {
		id, ok := idOf[sym]
		if !ok || !needSet[id] {
			continue
		}
		if q, ok := fetched[id]; ok {
			e, _ := s.store.Get(cache.Crypto, id)
			put(sym, &models.Quote{PriceQuote: q.WithSymbol(sym), FetchedAt: e.FetchedAt})
			continue
		}
		if r, ok := cache.Fallback[models.PriceQuote](s.store, cache.Crypto, id); ok {
			q := annotate(r, sym)
			put(sym, &q)
			continue
		}
		put(sym, nil)
	}
}

// CacheStats reports the number of entries and keys per namespace.
func (s *Service) CacheStats() map[cache.Namespace]cache.NamespaceStats {
	return s.store.Stats()
}

func (s *Service) fetchStock(ctx context.Context, sym string) (models.PriceQuote, error) {
	v, err, _ := s.group.Do(string(cache.Stocks)+":"+sym, func() (any, error) {
		fctx, cancel := s.detach(ctx)
		defer cancel()
		q, err := s.stocks.StockQuote(fctx, sym)
		if err != nil {
			s.providerFailed(err)
			return nil, err
		}
		s.record(sym, q)
		return q, nil
	})
	if err != nil {
		return models.PriceQuote{}, err
	}
	return v.(models.PriceQuote), nil
}

func (s *Service) fetchCrypto(ctx context.Context, ids []string) (map[string]models.PriceQuote, error) {
	key := append([]string(nil), ids...)
	sort.Strings(key)
	v, err, _ := s.group.Do(string(cache.Crypto)+":"+strings.Join(key, ","), func() (any, error) {
		fctx, cancel := s.detach(ctx)
		defer cancel()
		got, err := s.crypto.CryptoQuotes(fctx, ids)
		if err != nil {
			s.providerFailed(err)
			return nil, err
		}
		for id, q := range got {
			s.record(id, q)
		}
		return got, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]models.PriceQuote), nil
}

// detach lets a refetch outlive the request that triggered it, so a client
// that goes away does not throw away a result other callers will read.
func (s *Service) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
}

func (s *Service) providerFailed(err error) {
	s.log.WithError(err).Warn("provider call failed")
	if s.onError != nil {
		s.onError(err)
	}
}

func (s *Service) record(key string, q models.PriceQuote) {
	if s.recorder == nil {
		return
	}
	at := s.store.Now()
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.recorder.Record(ctx, key, q, at); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("snapshot not recorded")
		}
	}()
}

func annotate(r cache.Result[models.PriceQuote], sym string) models.Quote {
	return models.Quote{
		PriceQuote: r.Value.WithSymbol(sym),
		Cached:     r.Cached,
		Stale:      r.Stale,
		FetchedAt:  r.FetchedAt,
	}
}
