package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/darrencarlin/reddit-scanner/internal/config"
)

// Payload carries the fields of a post that end up in the outbound message.
type Payload struct {
	Subreddit  string
	Title      string
	Permalink  string
	Author     string
	CreatedUTC int64
	Score      int
	URL        string
	SelfText   string
}

type Client struct {
	client    *http.Client
	url       string
	username  string
	avatarURL string
	limiter   *rate.Limiter
}

func NewClient(cfg config.WebhookConfig) *Client {
	c := &Client{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		url:       cfg.URL,
		username:  cfg.Username,
		avatarURL: cfg.AvatarURL,
	}
	if c.avatarURL == "" {
		c.avatarURL = redditIconURL
	}
	// Discord throttles webhooks; pace sends when an interval is configured.
	if cfg.PostInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(cfg.PostInterval), 1)
	}
	return c
}

// Send posts the notification for a single post. With no webhook URL
// configured it is a no-op. Failures are returned for the caller to log;
// there is no retry.
func (c *Client) Send(ctx context.Context, payload Payload) error {
	if c.url == "" {
		slog.Info("No webhook configured, skipping notification", "title", payload.Title)
		return nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait aborted: %w", err)
		}
	}

	body, err := json.Marshal(c.buildMessage(payload))
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "reddit-scanner/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook responded with status: %d", resp.StatusCode)
	}

	return nil
}
