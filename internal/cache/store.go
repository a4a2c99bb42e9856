package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type Namespace string

const (
	Stocks        Namespace = "stocks"
	Crypto        Namespace = "crypto"
	Search        Namespace = "search"
	StockHistory  Namespace = "stock_history"
	CryptoHistory Namespace = "crypto_history"
)

// Policy holds the freshness thresholds of one namespace.
type Policy struct {
	// Fresh is how long an entry is served without asking the provider.
	Fresh time.Duration `yaml:"fresh"`
	// HardExpiry is the age at which the sweep removes an entry. Until then a
	// non-fresh entry may be served as a stale fallback.
	HardExpiry time.Duration `yaml:"hard_expiry"`
	// FallbackPastExpiry lets a failed refetch serve an entry of any age that
	// the sweep has not removed yet.
	FallbackPastExpiry bool `yaml:"fallback_past_expiry"`
}

// DefaultPolicies are tuned to the free tiers of the upstream providers.
// Crypto keeps a longer fresh window because CoinGecko rate limits hard.
func DefaultPolicies() map[Namespace]Policy {
	return map[Namespace]Policy{
		Stocks:        {Fresh: time.Minute, HardExpiry: 30 * time.Minute},
		Crypto:        {Fresh: 5 * time.Minute, HardExpiry: 24 * time.Hour},
		Search:        {Fresh: 24 * time.Hour, HardExpiry: 7 * 24 * time.Hour, FallbackPastExpiry: true},
		StockHistory:  {Fresh: time.Hour, HardExpiry: 24 * time.Hour},
		CryptoHistory: {Fresh: 30 * time.Minute, HardExpiry: 24 * time.Hour},
	}
}

type State int

const (
	StateFresh State = iota
	StateStale
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return "expired"
	}
}

// Entry is the last successfully fetched value for a key.
type Entry struct {
	Value     any
	FetchedAt time.Time
}

// NamespaceStats is the diagnostic view of one namespace.
type NamespaceStats struct {
	Count int      `json:"count"`
	Keys  []string `json:"keys"`
}

const DefaultSweepSchedule = "@every 10m"

// Store is the process-wide in-memory cache. Entries are replaced wholesale on
// every successful refetch; only Sweep deletes them.
type Store struct {
	mu       sync.RWMutex
	policies map[Namespace]Policy
	buckets  map[Namespace]map[string]Entry
	now      func() time.Time
	log      *logrus.Entry

	cronMu sync.Mutex
	cron   *cron.Cron
}

type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *logrus.Entry) Option {
	return func(s *Store) { s.log = l }
}

// New builds a Store for the given namespaces. Every policy must have
// 0 < Fresh < HardExpiry.
func New(policies map[Namespace]Policy, opts ...Option) (*Store, error) {
	if len(policies) == 0 {
		return nil, fmt.Errorf("cache: no namespaces configured")
	}
	s := &Store{
		policies: make(map[Namespace]Policy, len(policies)),
		buckets:  make(map[Namespace]map[string]Entry, len(policies)),
		now:      time.Now,
		log:      logrus.WithField("component", "cache"),
	}
	for ns, p := range policies {
		if p.Fresh <= 0 || p.HardExpiry <= p.Fresh {
			return nil, fmt.Errorf("cache: namespace %s: fresh (%s) must be positive and below hard expiry (%s)",
				ns, p.Fresh, p.HardExpiry)
		}
		s.policies[ns] = p
		s.buckets[ns] = make(map[string]Entry)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Policy(ns Namespace) (Policy, bool) {
	p, ok := s.policies[ns]
	return p, ok
}

func (s *Store) Now() time.Time {
	return s.now()
}

func (s *Store) Get(ns Namespace, key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.buckets[ns][key]
	return e, ok
}

// Set stores value under key, stamped with the current time.
func (s *Store) Set(ns Namespace, key string, value any) {
	s.put(ns, key, Entry{Value: value, FetchedAt: s.now()})
}

// Seed stores a value fetched earlier, e.g. reloaded from the database. Seeds
// that are already expired, or older than what the cache holds, are ignored.
func (s *Store) Seed(ns Namespace, key string, value any, fetchedAt time.Time) bool {
	p, ok := s.policies[ns]
	if !ok || s.now().Sub(fetchedAt) >= p.HardExpiry {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.buckets[ns][key]; ok && !cur.FetchedAt.Before(fetchedAt) {
		return false
	}
	s.buckets[ns][key] = Entry{Value: value, FetchedAt: fetchedAt}
	return true
}

func (s *Store) put(ns Namespace, key string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[ns]
	if !ok {
		s.log.Warnf("set on unknown namespace %q ignored", ns)
		return
	}
	b[key] = e
}

// StateOf derives the freshness of e within ns at the current time.
func (s *Store) StateOf(ns Namespace, e Entry) State {
	p := s.policies[ns]
	age := s.now().Sub(e.FetchedAt)
	switch {
	case age < p.Fresh:
		return StateFresh
	case age < p.HardExpiry:
		return StateStale
	default:
		return StateExpired
	}
}

// Sweep removes entries older than their namespace's hard expiry and returns
// how many were removed.
func (s *Store) Sweep() int {
	now := s.now()
	removed := 0
	s.mu.Lock()
	for ns, b := range s.buckets {
		limit := s.policies[ns].HardExpiry
		for k, e := range b {
			if now.Sub(e.FetchedAt) >= limit {
				delete(b, k)
				removed++
			}
		}
	}
	s.mu.Unlock()
	if removed > 0 {
		s.log.WithField("removed", removed).Debug("sweep removed expired entries")
	}
	return removed
}

// Stats reports count and keys per namespace. Keys are sorted.
func (s *Store) Stats() map[Namespace]NamespaceStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Namespace]NamespaceStats, len(s.buckets))
	for ns, b := range s.buckets {
		keys := make([]string, 0, len(b))
		for k := range b {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out[ns] = NamespaceStats{Count: len(keys), Keys: keys}
	}
	return out
}

// Start schedules Sweep with a cron spec ("@every 10m" when empty).
func (s *Store) Start(spec string) error {
	if spec == "" {
		spec = DefaultSweepSchedule
	}
	s.cronMu.Lock()
	defer s.cronMu.Unlock()
	if s.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.Sweep() }); err != nil {
		return fmt.Errorf("schedule sweep %q: %w", spec, err)
	}
	c.Start()
	s.cron = c
	s.log.WithField("schedule", spec).Info("sweep started")
	return nil
}

// Stop cancels the sweep schedule and waits for a running sweep to finish.
func (s *Store) Stop() {
	s.cronMu.Lock()
	c := s.cron
	s.cron = nil
	s.cronMu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.log.Info("sweep stopped")
}
