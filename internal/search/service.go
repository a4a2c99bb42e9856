package search

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/kjannette/trahn-prices/internal/cache"
	"github.com/kjannette/trahn-prices/internal/external"
	"github.com/kjannette/trahn-prices/internal/models"
)

const (
	MinQueryLength = 2
	MaxResults     = 10

	defaultFetchTimeout = 10 * time.Second
)

// Service answers ticker searches. It never fails on provider trouble: a
// cached answer for the query or the built-in list is returned instead.
type Service struct {
	store    *cache.Store
	provider external.SymbolSearcher
	fallback []models.SearchResult
	timeout  time.Duration
	log      *logrus.Entry
}

func NewService(store *cache.Store, provider external.SymbolSearcher) *Service {
	return &Service{
		store:    store,
		provider: provider,
		fallback: wellKnown,
		timeout:  defaultFetchTimeout,
		log:      logrus.WithField("component", "search"),
	}
}

func (s *Service) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return nil, models.Invalid("query", "must be at least %d characters", MinQueryLength)
	}
	key := strings.ToLower(q)

	r, err := cache.Load(ctx, s.store, cache.Search, key, func(ctx context.Context) ([]models.SearchResult, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		found, err := s.provider.SearchSymbols(fctx, q)
		if err != nil {
			return nil, err
		}
		return filter(found), nil
	})
	if err != nil {
		s.log.WithError(err).WithField("query", key).Warn("search provider failed, using built-in list")
		return s.match(key), nil
	}
	return r.Value, nil
}

// filter keeps common equity listed without an exchange suffix, drops
// warrants and units, and caps the result. Provider order is kept.
func filter(in []models.SearchResult) []models.SearchResult {
	out := make([]models.SearchResult, 0, min(len(in), MaxResults))
	for _, r := range in {
		if len(out) == MaxResults {
			break
		}
		if !strings.EqualFold(r.Type, "Equity") || strings.Contains(r.Symbol, ".") {
			continue
		}
		if isWarrantOrUnit(r.Name) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func isWarrantOrUnit(name string) bool {
	for _, w := range strings.Fields(strings.ToLower(name)) {
		w = strings.Trim(w, ".,()")
		switch w {
		case "warrant", "warrants", "wt", "unit", "units":
			return true
		}
	}
	return false
}

// match is a case-insensitive substring search over the built-in list.
func (s *Service) match(lowerQuery string) []models.SearchResult {
	out := make([]models.SearchResult, 0, MaxResults)
	for _, r := range s.fallback {
		if len(out) == MaxResults {
			break
		}
		if strings.Contains(strings.ToLower(r.Symbol), lowerQuery) || strings.Contains(strings.ToLower(r.Name), lowerQuery) {
			out = append(out, r)
		}
	}
	return out
}
