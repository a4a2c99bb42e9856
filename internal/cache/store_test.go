package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsInvertedPolicy(t *testing.T) {
	_, err := New(map[Namespace]Policy{
		Stocks: {Fresh: time.Hour, HardExpiry: time.Minute},
	})
	require.Error(t, err)

	_, err = New(map[Namespace]Policy{
		Stocks: {Fresh: 0, HardExpiry: time.Minute},
	})
	require.Error(t, err)

	_, err = New(nil)
	require.Error(t, err)
}

func TestDefaultPolicies_CryptoFreshLongerThanStocks(t *testing.T) {
	p := DefaultPolicies()
	assert.Greater(t, p[Crypto].Fresh, p[Stocks].Fresh)
	for ns, pol := range p {
		assert.Lessf(t, pol.Fresh, pol.HardExpiry, "namespace %s", ns)
	}
}

func TestStateTransitions(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(t, clock)
	s.Set(Stocks, "AAPL", 1.0)

	e, ok := s.Get(Stocks, "AAPL")
	require.True(t, ok)
	assert.Equal(t, StateFresh, s.StateOf(Stocks, e))

	clock.Advance(time.Minute)
	assert.Equal(t, StateStale, s.StateOf(Stocks, e))

	clock.Advance(29 * time.Minute)
	assert.Equal(t, StateExpired, s.StateOf(Stocks, e))
}

func TestNamespacesAreIndependent(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(t, clock)
	s.Set(Stocks, "X", 1.0)
	s.Set(Crypto, "X", 2.0)

	clock.Advance(2 * time.Minute)
	es, _ := s.Get(Stocks, "X")
	ec, _ := s.Get(Crypto, "X")
	assert.Equal(t, StateStale, s.StateOf(Stocks, es))
	assert.Equal(t, StateFresh, s.StateOf(Crypto, ec))
}

func TestSweep_RemovesOnlyExpired(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(t, clock)
	s.Set(Stocks, "OLD", 1.0)
	clock.Advance(20 * time.Minute)
	s.Set(Stocks, "STALE", 2.0)
	s.Set(Crypto, "bitcoin", 3.0)
	clock.Advance(15 * time.Minute)

	removed := s.Sweep()
	assert.Equal(t, 1, removed)

	_, ok := s.Get(Stocks, "OLD")
	assert.False(t, ok)
	_, ok = s.Get(Stocks, "STALE")
	assert.True(t, ok, "stale entries are never swept")
	_, ok = s.Get(Crypto, "bitcoin")
	assert.True(t, ok)
}

func TestSeed(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(t, clock)

	assert.False(t, s.Seed(Stocks, "AAPL", 1.0, clock.Now().Add(-time.Hour)), "expired seed")
	assert.True(t, s.Seed(Stocks, "AAPL", 2.0, clock.Now().Add(-5*time.Minute)))

	s.Set(Stocks, "MSFT", 3.0)
	assert.False(t, s.Seed(Stocks, "MSFT", 4.0, clock.Now().Add(-time.Minute)), "older than cached value")

	e, ok := s.Get(Stocks, "AAPL")
	require.True(t, ok)
	assert.Equal(t, 2.0, e.Value)
	assert.Equal(t, StateStale, s.StateOf(Stocks, e))
}

func TestStats(t *testing.T) {
	s := newTestStore(t, newFakeClock())
	s.Set(Stocks, "MSFT", 1.0)
	s.Set(Stocks, "AAPL", 1.0)
	s.Set(Search, "app", []string{})

	st := s.Stats()
	assert.Equal(t, NamespaceStats{Count: 2, Keys: []string{"AAPL", "MSFT"}}, st[Stocks])
	assert.Equal(t, 1, st[Search].Count)
	assert.Equal(t, 0, st[Crypto].Count)
	assert.Len(t, st, len(DefaultPolicies()))
}

func TestSet_UnknownNamespaceIgnored(t *testing.T) {
	s := newTestStore(t, newFakeClock())
	s.Set(Namespace("nope"), "k", 1)
	_, ok := s.Get(Namespace("nope"), "k")
	assert.False(t, ok)
}

func TestStartStop(t *testing.T) {
	s := newTestStore(t, newFakeClock())
	require.Error(t, s.Start("not a schedule"))
	require.NoError(t, s.Start("@every 1h"))
	require.NoError(t, s.Start("@every 1h"), "second start is a no-op")
	s.Stop()
	s.Stop()
}
