package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/darrencarlin/reddit-scanner/internal/config"
)

const (
	defaultTokenURL = "https://www.reddit.com/api/v1/access_token"
	defaultAPIURL   = "https://oauth.reddit.com"

	// Reddit rejects requests with generic user agents.
	userAgent = "reddit-scanner/1.0"
)

// Post is a single entry from the subreddit's "new" listing.
type Post struct {
	ID         string
	Title      string
	Permalink  string
	Author     string
	CreatedUTC int64 // epoch seconds
	Score      int
	URL        string
	SelfText   string
}

type Client struct {
	client       *http.Client
	clientID     string
	clientSecret string
	subreddit    string

	tokenURL string
	apiURL   string

	// Token cache, scoped to this client instance. Never persisted.
	mu          sync.Mutex
	accessToken string
	tokenExp    time.Time
}

func NewClient(cfg config.RedditConfig) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		subreddit:    cfg.Subreddit,
		tokenURL:     defaultTokenURL,
		apiURL:       defaultAPIURL,
	}
}

// authenticate exchanges the client credentials for a bearer token, reusing
// the cached token while it is still valid.
func (c *Client) authenticate(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExp) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		slog.Error("Token request rejected", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access token")
	}

	ttl := time.Duration(tok.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	c.accessToken = tok.AccessToken
	c.tokenExp = time.Now().Add(ttl - time.Minute)

	return c.accessToken, nil
}

// FetchNewest returns the most recent posts from the subreddit's "new"
// listing, newest first, bounded by limit.
func (c *Client) FetchNewest(ctx context.Context, limit int) ([]Post, error) {
	token, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 5
	}

	listURL := fmt.Sprintf("%s/r/%s/new.json?limit=%d&raw_json=1", c.apiURL, url.PathEscape(c.subreddit), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		slog.Error("Listing request rejected", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("listing request returned status %d", resp.StatusCode)
	}

	var listing struct {
		Data struct {
			Children []struct {
				Data struct {
					ID         string  `json:"id"`
					Title      string  `json:"title"`
					Permalink  string  `json:"permalink"`
					Author     string  `json:"author"`
					CreatedUTC float64 `json:"created_utc"`
					Score      int     `json:"score"`
					URL        string  `json:"url"`
					SelfText   string  `json:"selftext"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing response: %w", err)
	}

	posts := make([]Post, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		d := child.Data
		posts = append(posts, Post{
			ID:         d.ID,
			Title:      d.Title,
			Permalink:  d.Permalink,
			Author:     d.Author,
			CreatedUTC: int64(d.CreatedUTC),
			Score:      d.Score,
			URL:        d.URL,
			SelfText:   d.SelfText,
		})
	}

	return posts, nil
}
