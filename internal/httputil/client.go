package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

var DefaultRetry = RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   1 * time.Second,
	MaxDelay:    10 * time.Second,
}

// StatusError is the last 5xx answer seen when every attempt failed.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Client sends requests to one upstream. Every attempt, retries included,
// takes a token from the limiter first. Transport errors and 5xx answers are
// retried with exponential backoff; anything below 500 goes back to the caller.
type Client struct {
	http    *http.Client
	retry   RetryConfig
	limiter *TokenBucket
	secrets []string
	log     *logrus.Entry
}

type Option func(*Client)

func WithRetry(cfg RetryConfig) Option {
	return func(c *Client) {
		if cfg.MaxAttempts <= 0 {
			cfg.MaxAttempts = 1
		}
		c.retry = cfg
	}
}

// WithLimiter paces attempts. A nil bucket disables pacing.
func WithLimiter(tb *TokenBucket) Option {
	return func(c *Client) { c.limiter = tb }
}

// WithRedactedParams names query parameters that carry credentials. Their
// values are masked in returned transport errors.
func WithRedactedParams(names ...string) Option {
	return func(c *Client) { c.secrets = append(c.secrets, names...) }
}

func NewClient(name string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		http:  &http.Client{Timeout: timeout},
		retry: DefaultRetry,
		log:   logrus.WithFields(logrus.Fields{"component": "httputil", "upstream": name}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do calls build for a fresh request on every attempt, since a body is
// consumed by the previous one.
func (c *Client) Do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	delay := c.retry.BaseDelay
	var lastErr error

	for attempt := 1; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		req, err := build(ctx)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := c.http.Do(req)
		switch {
		case err != nil:
			c.redact(err)
			lastErr = err
		case resp.StatusCode >= 500:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			lastErr = &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		default:
			return resp, nil
		}

		if attempt >= c.retry.MaxAttempts || ctx.Err() != nil {
			return nil, fmt.Errorf("%d attempt(s) failed: %w", attempt, lastErr)
		}

		c.log.WithFields(logrus.Fields{
			"attempt": attempt,
			"of":      c.retry.MaxAttempts,
			"backoff": delay,
		}).WithError(lastErr).Warn("request failed, retrying")

		if err := sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("retry aborted after %d attempt(s): %w", attempt, err)
		}
		delay = min(delay*2, c.retry.MaxDelay)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// redact masks credential parameters in the URL of a transport error. It must
// run before the error is wrapped, since wrapping formats the message.
func (c *Client) redact(err error) {
	var ue *url.Error
	if len(c.secrets) == 0 || !errors.As(err, &ue) {
		return
	}
	u, perr := url.Parse(ue.URL)
	if perr != nil {
		ue.URL = "<redacted>"
		return
	}
	q := u.Query()
	for _, p := range c.secrets {
		if q.Has(p) {
			q.Set(p, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	ue.URL = u.String()
}
