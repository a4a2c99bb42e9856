package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kjannette/trahn-prices/internal/httputil"
)

const defaultName = "TrahnPrices"

type format int

const (
	formatSlack format = iota
	formatDiscord
)

// Sender posts short operational messages to a Slack or Discord webhook.
// The flavour is picked from the webhook host.
type Sender struct {
	webhookURL string
	name       string
	format     format
	client     *httputil.Client
	log        *logrus.Entry
}

func NewSender(webhookURL, name string) *Sender {
	if name == "" {
		name = defaultName
	}
	return &Sender{
		webhookURL: webhookURL,
		name:       name,
		format:     detectFormat(webhookURL),
		client: httputil.NewClient("webhook", 10*time.Second, httputil.WithRetry(httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
		})),
		log: logrus.WithField("component", "notify"),
	}
}

func detectFormat(webhookURL string) format {
	u, err := url.Parse(webhookURL)
	if err != nil {
		return formatSlack
	}
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, "discord") || strings.Contains(u.Path, "/discord") {
		return formatDiscord
	}
	return formatSlack
}

func (s *Sender) Enabled() bool {
	return s.webhookURL != ""
}

// Send logs msg and, when a webhook is configured, posts it. Delivery
// failures are logged only.
func (s *Sender) Send(ctx context.Context, msg string) {
	s.log.WithField("alert", true).Warn(msg)
	if !s.Enabled() {
		return
	}

	body, err := json.Marshal(s.payload(msg))
	if err != nil {
		s.log.WithError(err).Error("marshal webhook payload")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := s.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		s.log.WithError(err).Error("webhook delivery failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		s.log.WithField("status", resp.StatusCode).Error("webhook rejected message")
	}
}

func (s *Sender) payload(msg string) map[string]string {
	if s.format == formatDiscord {
		return map[string]string{
			"content":  fmt.Sprintf("**%s**: %s", s.name, msg),
			"username": s.name,
		}
	}
	return map[string]string{
		"text":     fmt.Sprintf("*%s*: %s", s.name, msg),
		"username": s.name,
	}
}
