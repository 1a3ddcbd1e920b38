package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// WebhookSender posts reminders as JSON to an incoming-webhook URL. The
// payload carries a Slack-compatible "text" field alongside the raw reminder.
type WebhookSender struct {
	url        string
	httpClient *http.Client
}

// WebhookOption configures a WebhookSender.
type WebhookOption func(*WebhookSender)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) WebhookOption {
	return func(s *WebhookSender) {
		s.httpClient = client
	}
}

func NewWebhookSender(url string, opts ...WebhookOption) *WebhookSender {
	s := &WebhookSender{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *WebhookSender) Name() string { return "webhook" }

type webhookPayload struct {
	Text     string   `json:"text"`
	Reminder Reminder `json:"reminder"`
}

func (s *WebhookSender) Send(ctx context.Context, r Reminder) error {
	body, err := json.Marshal(webhookPayload{
		Text:     fmt.Sprintf("*%s*\n%s", r.Title, r.Body),
		Reminder: r,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return nil
}
