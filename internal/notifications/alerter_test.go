package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kjannette/trahn-prices/internal/external"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingNotifier) Send(_ context.Context, msg string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

func TestAlerter_ThrottlesPerProvider(t *testing.T) {
	n := &recordingNotifier{}
	a := NewAlerter(n, 10*time.Minute)
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	limited := func(p string) error {
		return &external.ProviderError{Provider: p, Kind: external.RateLimited}
	}

	a.Observe(limited("coingecko"))
	a.Observe(limited("coingecko"))
	a.Observe(limited("finnhub"))
	a.Observe(&external.ProviderError{Provider: "yahoo", Kind: external.NotFound})
	a.Observe(errors.New("not a provider error"))
	a.Wait()
	assert.Len(t, n.msgs, 2)

	now = now.Add(11 * time.Minute)
	a.Observe(limited("coingecko"))
	a.Wait()
	assert.Len(t, n.msgs, 3)
	assert.Contains(t, n.msgs[2], "coingecko")
}
