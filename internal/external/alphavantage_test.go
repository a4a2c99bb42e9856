package external

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjannette/trahn-prices/internal/models"
)

func TestAlphaVantageSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SYMBOL_SEARCH", r.URL.Query().Get("function"))
		assert.Equal(t, "apple", r.URL.Query().Get("keywords"))
		w.Write([]byte(`{"bestMatches":[
			{"1. symbol":"AAPL","2. name":"Apple Inc","3. type":"Equity","4. region":"United States"},
			{"1. symbol":"AAPL.LON","2. name":"Apple Inc","3. type":"Equity","4. region":"United Kingdom"}
		]}`))
	}))
	defer srv.Close()

	c := NewAlphaVantageClient(AlphaVantageOptions{APIKey: "k", BaseURL: srv.URL})
	out, err := c.SearchSymbols(t.Context(), "apple")
	require.NoError(t, err)
	assert.Equal(t, []models.SearchResult{
		{Symbol: "AAPL", Name: "Apple Inc", Type: "Equity", Region: "United States"},
		{Symbol: "AAPL.LON", Name: "Apple Inc", Type: "Equity", Region: "United Kingdom"},
	}, out)
}

func TestAlphaVantageSearch_NoteIsRateLimit(t *testing.T) {
	for _, body := range []string{
		`{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`,
		`{"Information":"You have reached the daily request limit."}`,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		c := NewAlphaVantageClient(AlphaVantageOptions{APIKey: "k", BaseURL: srv.URL})
		_, err := c.SearchSymbols(t.Context(), "apple")
		assert.ErrorIs(t, err, ErrRateLimited)
		srv.Close()
	}
}

func TestAlphaVantageSearch_ErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Error Message":"Invalid API call."}`))
	}))
	defer srv.Close()
	c := NewAlphaVantageClient(AlphaVantageOptions{APIKey: "k", BaseURL: srv.URL})
	_, err := c.SearchSymbols(t.Context(), "apple")
	assert.ErrorIs(t, err, ErrMalformed)
}
