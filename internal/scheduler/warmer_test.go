package scheduler_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjannette/trahn-prices/internal/models"
	"github.com/kjannette/trahn-prices/internal/quotes"
	"github.com/kjannette/trahn-prices/internal/scheduler"
)

type staticHeld struct {
	holdings []models.HoldingWeight
	err      error
}

func (s staticHeld) DistinctSymbols(context.Context) ([]models.HoldingWeight, error) {
	return s.holdings, s.err
}

type fakePricer struct {
	mu      sync.Mutex
	batches [][]quotes.BulkRequest
	missing map[string]bool
}

func (f *fakePricer) GetBulkPrices(_ context.Context, reqs []quotes.BulkRequest) (map[string]*models.Quote, error) {
	f.mu.Lock()
	f.batches = append(f.batches, reqs)
	f.mu.Unlock()

	out := make(map[string]*models.Quote, len(reqs))
	for _, r := range reqs {
		if f.missing[r.Symbol] {
			out[r.Symbol] = nil
			continue
		}
		out[r.Symbol] = &models.Quote{PriceQuote: models.PriceQuote{Symbol: r.Symbol, Price: 1}}
	}
	return out, nil
}

type countingPruner struct {
	calls  atomic.Int32
	cutoff time.Time
}

func (p *countingPruner) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	p.calls.Add(1)
	p.cutoff = cutoff
	return 3, nil
}

func TestWarmer_RunNow(t *testing.T) {
	held := staticHeld{holdings: []models.HoldingWeight{
		{Symbol: "AAPL", Type: models.AssetStock},
		{Symbol: "BTC", Type: models.AssetCrypto},
		{Symbol: "ZZZZ", Type: models.AssetStock},
	}}
	pricer := &fakePricer{missing: map[string]bool{"ZZZZ": true}}
	pruner := &countingPruner{}

	w := scheduler.NewWarmer(held, pricer, scheduler.WarmerConfig{
		Interval:  time.Hour,
		Retention: 48 * time.Hour,
		Pruner:    pruner,
	})

	res, err := w.RunNow(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Symbols)
	assert.Equal(t, 2, res.Priced)
	assert.Equal(t, []string{"ZZZZ"}, res.Missed)
	assert.EqualValues(t, 3, res.Pruned)
	assert.EqualValues(t, 1, pruner.calls.Load())
	assert.WithinDuration(t, time.Now().Add(-48*time.Hour), pruner.cutoff, time.Minute)

	require.Len(t, pricer.batches, 1)
	assert.Equal(t, quotes.BulkRequest{Symbol: "BTC", Type: models.AssetCrypto}, pricer.batches[0][1])
}

func TestWarmer_BatchesLargeHoldings(t *testing.T) {
	var holdings []models.HoldingWeight
	for i := range quotes.MaxBulkEntries + 5 {
		holdings = append(holdings, models.HoldingWeight{Symbol: fmt.Sprintf("S%03d", i), Type: models.AssetStock})
	}
	pricer := &fakePricer{}
	w := scheduler.NewWarmer(staticHeld{holdings: holdings}, pricer, scheduler.WarmerConfig{})

	res, err := w.RunNow(t.Context())
	require.NoError(t, err)
	assert.Equal(t, quotes.MaxBulkEntries+5, res.Priced)
	require.Len(t, pricer.batches, 2)
	assert.Len(t, pricer.batches[0], quotes.MaxBulkEntries)
	assert.Len(t, pricer.batches[1], 5)
}

func TestWarmer_ListFailure(t *testing.T) {
	w := scheduler.NewWarmer(staticHeld{err: errors.New("db down")}, &fakePricer{}, scheduler.WarmerConfig{})

	_, err := w.RunNow(t.Context())
	assert.ErrorContains(t, err, "db down")
}

func TestWarmer_StartStop(t *testing.T) {
	warmed := make(chan scheduler.WarmResult, 4)
	w := scheduler.NewWarmer(
		staticHeld{holdings: []models.HoldingWeight{{Symbol: "AAPL", Type: models.AssetStock}}},
		&fakePricer{},
		scheduler.WarmerConfig{
			Interval: time.Hour,
			OnWarm:   func(r scheduler.WarmResult) { warmed <- r },
		},
	)

	w.Start()
	w.Start()
	assert.True(t, w.Running())

	select {
	case r := <-warmed:
		assert.Equal(t, 1, r.Priced)
	case <-time.After(2 * time.Second):
		t.Fatal("initial warming pass did not run")
	}

	w.Stop()
	assert.False(t, w.Running())
	w.Stop()
}
