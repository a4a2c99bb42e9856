package quotes

import (
	"github.com/kjannette/trahn-prices/internal/cache"
	"github.com/kjannette/trahn-prices/internal/models"
)

// Seed loads persisted snapshots into the cache so a restart does not start
// cold. Snapshots already past hard expiry are ignored. It returns how many
// entries were seeded.
func (s *Service) Seed(snaps []models.QuoteSnapshot) int {
	n := 0
	for _, snap := range snaps {
		ns := cache.Stocks
		if snap.Type == models.AssetCrypto {
			ns = cache.Crypto
		}
		if s.store.Seed(ns, snap.CacheKey, snap.Quote(), snap.FetchedAt) {
			n++
		}
	}
	if n > 0 {
		s.log.WithField("entries", n).Info("cache seeded from snapshots")
	}
	return n
}
