package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/kjannette/trahn-prices/internal/external"
)

// Notifier is satisfied by Sender.
type Notifier interface {
	Send(ctx context.Context, msg string)
}

// Alerter turns provider rate-limit errors into webhook messages, at most one
// per provider per cooldown.
type Alerter struct {
	notifier Notifier
	cooldown time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
	wg   sync.WaitGroup
}

func NewAlerter(n Notifier, cooldown time.Duration) *Alerter {
	if cooldown <= 0 {
		cooldown = 15 * time.Minute
	}
	return &Alerter{
		notifier: n,
		cooldown: cooldown,
		now:      time.Now,
		last:     make(map[string]time.Time),
	}
}

// Observe inspects a provider error. It never blocks the caller.
func (a *Alerter) Observe(err error) {
	pe, ok := external.AsProviderError(err)
	if !ok || pe.Kind != external.RateLimited {
		return
	}

	a.mu.Lock()
	now := a.now()
	if t, seen := a.last[pe.Provider]; seen && now.Sub(t) < a.cooldown {
		a.mu.Unlock()
		return
	}
	a.last[pe.Provider] = now
	a.mu.Unlock()

	msg := "provider " + pe.Provider + " is rate limiting; serving cached prices"
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.notifier.Send(context.Background(), msg)
	}()
}

// Wait blocks until queued alerts have been sent.
func (a *Alerter) Wait() {
	a.wg.Wait()
}
