package cache

import (
	"context"
	"time"
)

// Result is a value served through the cache, with how it was served.
type Result[T any] struct {
	Value     T
	FetchedAt time.Time
	Cached    bool
	Stale     bool
}

// Fetcher calls the provider for one key.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Load runs the lookup state machine for one key:
//
//  1. a fresh entry is returned without calling fetch;
//  2. otherwise fetch is called and a success replaces the entry;
//  3. if fetch fails, a servable entry is returned marked stale;
//  4. with nothing servable the fetch error is returned and the cache is left
//     as it was.
func Load[T any](ctx context.Context, s *Store, ns Namespace, key string, fetch Fetcher[T]) (Result[T], error) {
	if r, ok := Fresh[T](s, ns, key); ok {
		return r, nil
	}

	v, err := fetch(ctx)
	if err == nil {
		s.Set(ns, key, v)
		e, _ := s.Get(ns, key)
		return Result[T]{Value: v, FetchedAt: e.FetchedAt}, nil
	}

	if r, ok := Fallback[T](s, ns, key); ok {
		return r, nil
	}
	var zero Result[T]
	return zero, err
}

// Fresh returns the entry for key if it is still fresh.
func Fresh[T any](s *Store, ns Namespace, key string) (Result[T], bool) {
	e, ok := s.Get(ns, key)
	if !ok {
		return Result[T]{}, false
	}
	v, ok := e.Value.(T)
	if !ok || s.StateOf(ns, e) != StateFresh {
		return Result[T]{}, false
	}
	return Result[T]{Value: v, FetchedAt: e.FetchedAt, Cached: true}, true
}

// Fallback returns the entry for key when a refetch has failed. Stale entries
// are servable; expired ones only when the namespace allows it.
func Fallback[T any](s *Store, ns Namespace, key string) (Result[T], bool) {
	e, ok := s.Get(ns, key)
	if !ok {
		return Result[T]{}, false
	}
	v, ok := e.Value.(T)
	if !ok {
		return Result[T]{}, false
	}
	state := s.StateOf(ns, e)
	if state == StateExpired {
		if p, _ := s.Policy(ns); !p.FallbackPastExpiry {
			return Result[T]{}, false
		}
	}
	return Result[T]{Value: v, FetchedAt: e.FetchedAt, Cached: true, Stale: state != StateFresh}, true
}
