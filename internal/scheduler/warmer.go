package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kjannette/trahn-prices/internal/models"
	"github.com/kjannette/trahn-prices/internal/quotes"
)

// HeldSymbols lists the symbols worth keeping warm.
type HeldSymbols interface {
	DistinctSymbols(ctx context.Context) ([]models.HoldingWeight, error)
}

type BulkPricer interface {
	GetBulkPrices(ctx context.Context, reqs []quotes.BulkRequest) (map[string]*models.Quote, error)
}

// SnapshotPruner drops persisted quotes older than a cutoff.
type SnapshotPruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// WarmResult summarises one warming pass.
type WarmResult struct {
	Symbols int
	Priced  int
	Missed  []string
	Pruned  int64
}

type WarmerConfig struct {
	Interval  time.Duration // e.g. 1*time.Minute
	Retention time.Duration // snapshot retention, 0 keeps everything
	Pruner    SnapshotPruner
	OnWarm    func(WarmResult)
}

// Warmer periodically prices every held symbol so user requests hit a fresh
// cache entry instead of waiting on a provider.
type Warmer struct {
	held   HeldSymbols
	pricer BulkPricer
	cfg    WarmerConfig
	now    func() time.Time
	log    *logrus.Entry

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    sync.WaitGroup
}

func NewWarmer(held HeldSymbols, pricer BulkPricer, cfg WarmerConfig) *Warmer {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Warmer{
		held:   held,
		pricer: pricer,
		cfg:    cfg,
		now:    time.Now,
		log:    logrus.WithField("component", "warmer"),
	}
}

func (w *Warmer) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.log.Info("already running")
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.mu.Unlock()

	w.done.Add(1)
	go func() {
		defer w.done.Done()
		w.tick()

		ticker := time.NewTicker(w.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				w.tick()
			}
		}
	}()

	w.log.WithField("interval", w.cfg.Interval).Info("started")
}

// Stop ends the schedule and waits for a pass in progress.
func (w *Warmer) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.running = false
	w.mu.Unlock()

	w.done.Wait()
	w.log.Info("stopped")
}

func (w *Warmer) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// RunNow runs one pass outside the schedule.
func (w *Warmer) RunNow(ctx context.Context) (WarmResult, error) {
	return w.warm(ctx)
}

func (w *Warmer) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if _, err := w.warm(ctx); err != nil {
		w.log.WithError(err).Warn("warming pass failed")
	}
}

func (w *Warmer) warm(ctx context.Context) (WarmResult, error) {
	var res WarmResult

	held, err := w.held.DistinctSymbols(ctx)
	if err != nil {
		return res, fmt.Errorf("list held symbols: %w", err)
	}
	res.Symbols = len(held)

	for start := 0; start < len(held); start += quotes.MaxBulkEntries {
		end := min(start+quotes.MaxBulkEntries, len(held))
		reqs := make([]quotes.BulkRequest, 0, end-start)
		for _, h := range held[start:end] {
			reqs = append(reqs, quotes.BulkRequest{Symbol: h.Symbol, Type: h.Type})
		}

		got, err := w.pricer.GetBulkPrices(ctx, reqs)
		if err != nil {
			return res, fmt.Errorf("bulk price: %w", err)
		}
		for sym, q := range got {
			if q == nil {
				res.Missed = append(res.Missed, sym)
			} else {
				res.Priced++
			}
		}
	}
	sort.Strings(res.Missed)

	if w.cfg.Pruner != nil && w.cfg.Retention > 0 {
		n, err := w.cfg.Pruner.Prune(ctx, w.now().Add(-w.cfg.Retention))
		if err != nil {
			w.log.WithError(err).Warn("snapshot prune failed")
		}
		res.Pruned = n
	}

	w.log.WithFields(logrus.Fields{
		"symbols": res.Symbols,
		"priced":  res.Priced,
		"missed":  len(res.Missed),
		"pruned":  res.Pruned,
	}).Debug("warming pass done")

	if w.cfg.OnWarm != nil {
		w.cfg.OnWarm(res)
	}
	return res, nil
}
