package external

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjannette/trahn-prices/internal/models"
)

func newCoinGeckoTest(t *testing.T, h http.HandlerFunc) *CoinGeckoClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewCoinGeckoClient(CoinGeckoOptions{BaseURL: srv.URL, APIKey: "demo"})
}

func TestCoinGeckoCryptoQuotes_OneCallForManyIDs(t *testing.T) {
	var calls atomic.Int32
	c := newCoinGeckoTest(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin,ethereum,nope", r.URL.Query().Get("ids"))
		assert.Equal(t, "demo", r.URL.Query().Get("x_cg_demo_api_key"))
		w.Write([]byte(`{
			"bitcoin":{"usd":60000,"usd_24h_change":20,"usd_24h_vol":1000000},
			"ethereum":{"usd":3000.5}
		}`))
	})

	out, err := c.CryptoQuotes(t.Context(), []string{"bitcoin", "ethereum", "nope"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())
	require.Len(t, out, 2)

	btc := out["bitcoin"]
	assert.Equal(t, models.AssetCrypto, btc.Type)
	assert.Equal(t, 60000.0, btc.Price)
	assert.Equal(t, 20.0, btc.ChangePercent)
	assert.InDelta(t, 10000.0, btc.Change, 1e-6)
	require.NotNil(t, btc.Volume)
	assert.Equal(t, 1000000.0, *btc.Volume)

	eth := out["ethereum"]
	assert.Equal(t, 3000.5, eth.Price)
	assert.Zero(t, eth.Change)
	_, ok := out["nope"]
	assert.False(t, ok)
}

func TestCoinGeckoCryptoQuotes_StatusEnvelope(t *testing.T) {
	c := newCoinGeckoTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":{"error_code":429,"error_message":"You've exceeded the Rate Limit."}}`))
	})
	_, err := c.CryptoQuotes(t.Context(), []string{"bitcoin"})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestCoinGeckoCryptoQuotes_NothingPricedIsNotFound(t *testing.T) {
	c := newCoinGeckoTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin":{"usd":0}}`))
	})
	_, err := c.CryptoQuotes(t.Context(), []string{"bitcoin"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCoinGeckoCryptoQuotes_EmptyIDs(t *testing.T) {
	c := NewCoinGeckoClient(CoinGeckoOptions{BaseURL: "http://127.0.0.1:1"})
	out, err := c.CryptoQuotes(t.Context(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCoinGeckoCryptoHistory(t *testing.T) {
	c := newCoinGeckoTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		w.Write([]byte(`{"prices":[[1711929600000,70000.1],[1711843200000,69000],[1711900000000,0]]}`))
	})

	pts, err := c.CryptoHistory(t.Context(), "bitcoin", 7)
	require.NoError(t, err)
	assert.Equal(t, []models.HistoryPoint{
		{T: 1711843200000, P: 69000},
		{T: 1711929600000, P: 70000.1},
	}, pts)
}

func TestCoinGeckoCryptoHistory_UnknownCoin(t *testing.T) {
	c := newCoinGeckoTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"coin not found"}`))
	})
	_, err := c.CryptoHistory(t.Context(), "nope", 7)
	assert.ErrorIs(t, err, ErrNotFound)
}
