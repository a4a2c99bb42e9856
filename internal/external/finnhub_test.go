package external

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjannette/trahn-prices/internal/models"
)

func newFinnhubTest(t *testing.T, h http.HandlerFunc) *FinnhubClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewFinnhubClient(FinnhubOptions{APIKey: "key", BaseURL: srv.URL})
}

func TestFinnhubStockQuote(t *testing.T) {
	c := newFinnhubTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "key", r.URL.Query().Get("token"))
		w.Write([]byte(`{"c":189.84,"d":1.25,"dp":0.6628,"h":190.1,"l":187.2,"o":188,"pc":188.59,"t":1710000000}`))
	})

	q, err := c.StockQuote(t.Context(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, models.AssetStock, q.Type)
	assert.Equal(t, 189.84, q.Price)
	assert.Equal(t, 1.25, q.Change)
	assert.Equal(t, 0.6628, q.ChangePercent)
	require.NotNil(t, q.PreviousClose)
	assert.Equal(t, 188.59, *q.PreviousClose)
	assert.Nil(t, q.Volume)
	assert.Equal(t, "finnhub", q.Source)
}

func TestFinnhubStockQuote_ZeroPriceIsNotFound(t *testing.T) {
	c := newFinnhubTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0,"t":0}`))
	})

	_, err := c.StockQuote(t.Context(), "ZZZZ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFinnhubStockQuote_ErrorFieldIsRateLimit(t *testing.T) {
	c := newFinnhubTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"API limit reached. Please try again later."}`))
	})

	_, err := c.StockQuote(t.Context(), "AAPL")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestFinnhubStockQuote_HTTPStatuses(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusForbidden, ErrUnavailable},
	}
	for _, tc := range cases {
		c := newFinnhubTest(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		})
		_, err := c.StockQuote(t.Context(), "AAPL")
		assert.ErrorIsf(t, err, tc.want, "status %d", tc.status)
	}
}

func TestFinnhubStockQuote_MalformedBody(t *testing.T) {
	c := newFinnhubTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	})
	_, err := c.StockQuote(t.Context(), "AAPL")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFinnhubStockQuote_NoKey(t *testing.T) {
	c := NewFinnhubClient(FinnhubOptions{})
	_, err := c.StockQuote(t.Context(), "AAPL")
	assert.ErrorIs(t, err, ErrUnavailable)
}
