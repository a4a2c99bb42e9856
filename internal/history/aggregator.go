package history

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/kjannette/trahn-prices/internal/cache"
	"github.com/kjannette/trahn-prices/internal/external"
	"github.com/kjannette/trahn-prices/internal/models"
	"github.com/kjannette/trahn-prices/internal/symbols"
)

const (
	MaxDays = 1825

	DefaultStockDelay  = 250 * time.Millisecond
	DefaultCryptoDelay = 1500 * time.Millisecond

	defaultFetchTimeout = 10 * time.Second
)

// Aggregator builds a portfolio value series from per-holding price history.
type Aggregator struct {
	store  *cache.Store
	stocks external.StockHistorian
	crypto external.CryptoHistorian

	stockDelay  time.Duration
	cryptoDelay time.Duration
	timeout     time.Duration
	sleep       func(context.Context, time.Duration) error
	log         *logrus.Entry
}

type Option func(*Aggregator)

// WithDelays sets the pause between consecutive provider calls of each asset
// family. Free tiers throttle bursts.
func WithDelays(stock, crypto time.Duration) Option {
	return func(a *Aggregator) {
		a.stockDelay = stock
		a.cryptoDelay = crypto
	}
}

func WithFetchTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(a *Aggregator) { a.log = l }
}

func NewAggregator(store *cache.Store, stocks external.StockHistorian, crypto external.CryptoHistorian, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:       store,
		stocks:      stocks,
		crypto:      crypto,
		stockDelay:  DefaultStockDelay,
		cryptoDelay: DefaultCryptoDelay,
		timeout:     defaultFetchTimeout,
		sleep:       sleepCtx,
		log:         logrus.WithField("component", "history"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// PortfolioHistory returns the summed value of holdings over the last days,
// one point per timestamp, ascending. Holdings whose history cannot be loaded
// are left out; if none can be loaded the series is empty. An empty holdings
// list returns an empty series before days is validated.
func (a *Aggregator) PortfolioHistory(ctx context.Context, holdings []models.HoldingWeight, days int) ([]models.HistoryPoint, error) {
	if len(holdings) == 0 {
		return []models.HistoryPoint{}, nil
	}
	if days <= 0 || days > MaxDays {
		return nil, models.Invalid("days", "must be between 1 and %d, got %d", MaxDays, days)
	}

	var stockHoldings, cryptoHoldings []models.HoldingWeight
	for _, h := range holdings {
		if symbols.Canonical(h.Symbol) == "" || h.Quantity <= 0 {
			continue
		}
		if symbols.Classify(h.Symbol) == models.AssetCrypto {
			cryptoHoldings = append(cryptoHoldings, h)
		} else {
			stockHoldings = append(stockHoldings, h)
		}
	}
	if len(stockHoldings) == 0 && len(cryptoHoldings) == 0 {
		return []models.HistoryPoint{}, nil
	}

	var stockSeries, cryptoSeries []weighted
	var g errgroup.Group
	g.Go(func() error {
		stockSeries = a.loadFamily(ctx, stockHoldings, days, a.stockDelay, a.stockSeries)
		return nil
	})
	g.Go(func() error {
		cryptoSeries = a.loadFamily(ctx, cryptoHoldings, days, a.cryptoDelay, a.cryptoSeries)
		return nil
	})
	_ = g.Wait()

	return merge(append(stockSeries, cryptoSeries...)), nil
}

type weighted struct {
	points   []models.HistoryPoint
	quantity float64
}

type seriesLoader func(ctx context.Context, h models.HoldingWeight, days int, p *pacer) ([]models.HistoryPoint, error)

// loadFamily loads holdings one after another, pausing between provider
// calls. Cache hits do not pause.
func (a *Aggregator) loadFamily(ctx context.Context, holdings []models.HoldingWeight, days int, delay time.Duration, load seriesLoader) []weighted {
	p := &pacer{delay: delay, sleep: a.sleep}
	var out []weighted
	for _, h := range holdings {
		pts, err := load(ctx, h, days, p)
		if err != nil {
			a.log.WithError(err).WithField("symbol", h.Symbol).Warn("holding left out of history")
			continue
		}
		out = append(out, weighted{points: pts, quantity: h.Quantity})
	}
	return out
}

func (a *Aggregator) stockSeries(ctx context.Context, h models.HoldingWeight, days int, p *pacer) ([]models.HistoryPoint, error) {
	sym, err := symbols.ProviderID(h.Symbol)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s:%d", sym, days)
	r, err := cache.Load(ctx, a.store, cache.StockHistory, key, func(ctx context.Context) ([]models.HistoryPoint, error) {
		if err := p.wait(ctx); err != nil {
			return nil, err
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		return a.stocks.StockHistory(fctx, sym, days)
	})
	if err != nil {
		return nil, err
	}
	return r.Value, nil
}

func (a *Aggregator) cryptoSeries(ctx context.Context, h models.HoldingWeight, days int, p *pacer) ([]models.HistoryPoint, error) {
	id, err := symbols.ProviderID(h.Symbol)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s:%d", id, days)
	r, err := cache.Load(ctx, a.store, cache.CryptoHistory, key, func(ctx context.Context) ([]models.HistoryPoint, error) {
		if err := p.wait(ctx); err != nil {
			return nil, err
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		return a.crypto.CryptoHistory(fctx, id, days)
	})
	if err != nil {
		return nil, err
	}
	return r.Value, nil
}

// merge scales every series by its quantity and sums points sharing a
// timestamp. Values are rounded to cents.
func merge(series []weighted) []models.HistoryPoint {
	sums := make(map[int64]decimal.Decimal)
	for _, s := range series {
		qty := decimal.NewFromFloat(s.quantity)
		for _, pt := range s.points {
			sums[pt.T] = sums[pt.T].Add(decimal.NewFromFloat(pt.P).Mul(qty))
		}
	}

	out := make([]models.HistoryPoint, 0, len(sums))
	for t, v := range sums {
		out = append(out, models.HistoryPoint{T: t, P: v.Round(2).InexactFloat64()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].T < out[j].T })
	return out
}

// pacer spaces out provider calls within one family.
type pacer struct {
	delay  time.Duration
	sleep  func(context.Context, time.Duration) error
	called bool
}

func (p *pacer) wait(ctx context.Context) error {
	if p.called && p.delay > 0 {
		if err := p.sleep(ctx, p.delay); err != nil {
			return err
		}
	}
	p.called = true
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
