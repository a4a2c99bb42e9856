package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(url string) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func countingServer(t *testing.T, handler func(n int32, w http.ResponseWriter)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(attempts.Add(1), w)
	}))
	t.Cleanup(srv.Close)
	return srv, &attempts
}

func fastRetry(n int) Option {
	return WithRetry(RetryConfig{MaxAttempts: n, BaseDelay: 10 * time.Millisecond, MaxDelay: 40 * time.Millisecond})
}

func TestClientDo_SuccessFirstAttempt(t *testing.T) {
	srv, attempts := countingServer(t, func(_ int32, w http.ResponseWriter) {
		w.Write([]byte(`{"ok":true}`))
	})

	resp, err := NewClient("test", time.Second, fastRetry(3)).Do(t.Context(), get(srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClientDo_RetriesServerErrors(t *testing.T) {
	srv, attempts := countingServer(t, func(n int32, w http.ResponseWriter) {
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	resp, err := NewClient("test", time.Second, fastRetry(3)).Do(t.Context(), get(srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClientDo_LastErrorIsStatusError(t *testing.T) {
	srv, attempts := countingServer(t, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})

	_, err := NewClient("test", time.Second, fastRetry(2)).Do(t.Context(), get(srv.URL))
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, "upstream down", se.Body)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestClientDo_ClientErrorsAreNotRetried(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusTooManyRequests} {
		srv, attempts := countingServer(t, func(_ int32, w http.ResponseWriter) {
			w.WriteHeader(code)
		})

		resp, err := NewClient("test", time.Second, fastRetry(3)).Do(t.Context(), get(srv.URL))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, code, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load(), "status %d", code)
	}
}

func TestClientDo_ContextEndsBackoff(t *testing.T) {
	srv, _ := countingServer(t, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	c := NewClient("test", time.Second, WithRetry(RetryConfig{MaxAttempts: 10, BaseDelay: time.Second, MaxDelay: time.Second}))
	start := time.Now()
	_, err := c.Do(ctx, get(srv.URL))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestClientDo_LimiterPacesEveryAttempt(t *testing.T) {
	srv, attempts := countingServer(t, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
	defer cancel()

	c := NewClient("test", time.Second,
		WithRetry(RetryConfig{MaxAttempts: 3}),
		WithLimiter(NewTokenBucket(60, 2)))
	_, err := c.Do(ctx, get(srv.URL))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestClientDo_RedactsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/quote?symbol=AAPL&token=secret"
	srv.Close()

	c := NewClient("test", time.Second, WithRetry(RetryConfig{MaxAttempts: 1}), WithRedactedParams("token"))
	_, err := c.Do(t.Context(), get(url))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
	assert.Contains(t, err.Error(), "symbol=AAPL")
}
