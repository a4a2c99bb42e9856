package external

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/kjannette/trahn-prices/internal/models"
)

// FallbackCrypto asks Secondary when Primary fails. Secondary may answer for
// only some ids; the rest stay absent from the result.
type FallbackCrypto struct {
	Primary   CryptoQuoter
	Secondary CryptoQuoter

	// OnPrimaryError sees the primary failure even when Secondary covers it.
	OnPrimaryError func(error)
}

func (f *FallbackCrypto) CryptoQuotes(ctx context.Context, ids []string) (map[string]models.PriceQuote, error) {
	got, err := f.Primary.CryptoQuotes(ctx, ids)
	if err == nil || f.Secondary == nil {
		return got, err
	}

	alt, altErr := f.Secondary.CryptoQuotes(ctx, ids)
	if altErr != nil || len(alt) == 0 {
		return nil, err
	}
	if f.OnPrimaryError != nil {
		f.OnPrimaryError(err)
	}
	logrus.WithFields(logrus.Fields{
		"component": "external",
		"answered":  len(alt),
		"requested": len(ids),
	}).WithError(err).Warn("primary crypto provider failed, using fallback")
	return alt, nil
}
