package external

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kjannette/trahn-prices/internal/external/mocks"
	"github.com/kjannette/trahn-prices/internal/models"
)

func TestFallbackCrypto_PrimaryOK(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockCryptoQuoter(ctrl)
	secondary := mocks.NewMockCryptoQuoter(ctrl)
	want := map[string]models.PriceQuote{"bitcoin": {Symbol: "BITCOIN", Price: 60000}}
	primary.EXPECT().CryptoQuotes(gomock.Any(), []string{"bitcoin"}).Return(want, nil)

	f := &FallbackCrypto{Primary: primary, Secondary: secondary}
	got, err := f.CryptoQuotes(context.Background(), []string{"bitcoin"})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFallbackCrypto_SecondaryCoversPart(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockCryptoQuoter(ctrl)
	secondary := mocks.NewMockCryptoQuoter(ctrl)
	ids := []string{"bitcoin", "ethereum"}
	rateLimited := &ProviderError{Provider: "coingecko", Kind: RateLimited}
	primary.EXPECT().CryptoQuotes(gomock.Any(), ids).Return(nil, rateLimited)
	secondary.EXPECT().CryptoQuotes(gomock.Any(), ids).
		Return(map[string]models.PriceQuote{"ethereum": {Symbol: "ETHEREUM", Price: 3500}}, nil)

	var seen error
	f := &FallbackCrypto{Primary: primary, Secondary: secondary, OnPrimaryError: func(err error) { seen = err }}
	got, err := f.CryptoQuotes(context.Background(), ids)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 3500.0, got["ethereum"].Price)
	assert.ErrorIs(t, seen, ErrRateLimited)
}

func TestFallbackCrypto_NothingFromSecondaryKeepsPrimaryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockCryptoQuoter(ctrl)
	secondary := mocks.NewMockCryptoQuoter(ctrl)
	timeout := &ProviderError{Provider: "coingecko", Kind: Timeout}
	primary.EXPECT().CryptoQuotes(gomock.Any(), gomock.Any()).Return(nil, timeout).Times(2)
	secondary.EXPECT().CryptoQuotes(gomock.Any(), []string{"solana"}).Return(map[string]models.PriceQuote{}, nil)
	secondary.EXPECT().CryptoQuotes(gomock.Any(), []string{"ethereum"}).Return(nil, errors.New("rpc down"))

	f := &FallbackCrypto{Primary: primary, Secondary: secondary}
	_, err := f.CryptoQuotes(context.Background(), []string{"solana"})
	assert.ErrorIs(t, err, ErrTimeout)
	_, err = f.CryptoQuotes(context.Background(), []string{"ethereum"})
	assert.ErrorIs(t, err, ErrTimeout)
}
