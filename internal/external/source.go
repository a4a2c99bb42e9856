package external

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kjannette/trahn-prices/internal/httputil"
)

const defaultTimeout = 10 * time.Second

// Query parameters that carry credentials and must not reach logs.
var secretParams = []string{"token", "apikey", "x_cg_demo_api_key", "x_cg_pro_api_key"}

// source is the HTTP plumbing shared by the adapters.
type source struct {
	name      string
	baseURL   string
	client    *httputil.Client
	userAgent string
}

func newSource(name, baseURL string, timeout time.Duration, perMinute, burst int) source {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return source{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: httputil.NewClient(name, timeout,
			httputil.WithRetry(httputil.RetryConfig{
				MaxAttempts: 2,
				BaseDelay:   500 * time.Millisecond,
				MaxDelay:    2 * time.Second,
			}),
			httputil.WithLimiter(httputil.NewTokenBucket(perMinute, burst)),
			httputil.WithRedactedParams(secretParams...),
		),
	}
}

// getJSON performs one GET and decodes a 200 body into out. Every failure
// comes back as a *ProviderError.
func (s *source) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := s.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	resp, err := s.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if s.userAgent != "" {
			req.Header.Set("User-Agent", s.userAgent)
		}
		return req, nil
	})
	if err != nil {
		return &ProviderError{Provider: s.name, Kind: transportKind(err), Err: err}
	}
	defer resp.Body.Close()

	if err := s.checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return providerErr(s.name, Malformed, "decode: %w", err)
	}
	return nil
}

func (s *source) checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	msg := strings.TrimSpace(string(body))
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return providerErr(s.name, RateLimited, "status %d: %s", resp.StatusCode, msg)
	case http.StatusNotFound:
		return providerErr(s.name, NotFound, "status %d: %s", resp.StatusCode, msg)
	default:
		return providerErr(s.name, Unavailable, "status %d: %s", resp.StatusCode, msg)
	}
}
