package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/darrencarlin/reddit-scanner/internal/config"
)

func TestSendPostsDiscordMessage(t *testing.T) {
	var got discordMessage
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode webhook body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := NewClient(config.WebhookConfig{URL: ts.URL, Username: "Reddit Scanner"})
	err := c.Send(context.Background(), Payload{
		Subreddit:  "golang",
		Title:      "Interesting post",
		Permalink:  "/r/golang/comments/abc/",
		Author:     "alice",
		CreatedUTC: 1700000000,
		Score:      7,
		URL:        "https://i.redd.it/abc.png",
		SelfText:   strings.Repeat("a", 400),
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got.Content != "New post on r/golang" {
		t.Errorf("unexpected content: %q", got.Content)
	}
	if got.Username != "Reddit Scanner" {
		t.Errorf("unexpected username: %q", got.Username)
	}
	if got.AvatarURL != redditIconURL {
		t.Errorf("expected the default avatar, got %q", got.AvatarURL)
	}
	if len(got.Embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(got.Embeds))
	}

	embed := got.Embeds[0]
	if embed.Title != "Interesting post" {
		t.Errorf("unexpected title: %q", embed.Title)
	}
	if embed.URL != "https://www.reddit.com/r/golang/comments/abc/" {
		t.Errorf("unexpected embed url: %q", embed.URL)
	}
	if embed.Author == nil || embed.Author.Name != "u/alice" {
		t.Errorf("unexpected author: %+v", embed.Author)
	}
	if n := len([]rune(embed.Description)); n != 300 || !strings.HasSuffix(embed.Description, "...") {
		t.Errorf("expected a 300 rune preview ending in ellipsis, got %d runes", n)
	}
	if embed.Image == nil || embed.Image.URL != "https://i.redd.it/abc.png" {
		t.Errorf("expected the post image to be embedded, got %+v", embed.Image)
	}
	if embed.Footer == nil || embed.Footer.Text != "r/golang" {
		t.Errorf("unexpected footer: %+v", embed.Footer)
	}
	if embed.Fields[0].Value != "7" {
		t.Errorf("unexpected score field: %q", embed.Fields[0].Value)
	}
	if embed.Timestamp != "2023-11-14T22:13:20Z" {
		t.Errorf("unexpected timestamp: %q", embed.Timestamp)
	}
}

func TestSendNoopWithoutURL(t *testing.T) {
	c := NewClient(config.WebhookConfig{})
	if err := c.Send(context.Background(), Payload{Title: "anything"}); err != nil {
		t.Fatalf("expected nil error with no webhook configured, got %v", err)
	}
}

func TestSendErrorOnBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	c := NewClient(config.WebhookConfig{URL: ts.URL})
	if err := c.Send(context.Background(), Payload{Title: "anything"}); err == nil {
		t.Fatalf("expected error on a 400 response")
	}
}

func TestSendPacesWithInterval(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := NewClient(config.WebhookConfig{URL: ts.URL, PostInterval: 50 * time.Millisecond})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := c.Send(ctx, Payload{Title: "anything"}); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Fatalf("expected sends to be paced, 3 sends took %v", elapsed)
	}
}

func TestBuildMessageSkipsImageForArticleURL(t *testing.T) {
	c := NewClient(config.WebhookConfig{})
	msg := c.buildMessage(Payload{
		Subreddit: "golang",
		Title:     "A link post",
		URL:       "https://example.com/article",
	})
	if msg.Embeds[0].Image != nil {
		t.Fatalf("expected no image embed for an article url, got %+v", msg.Embeds[0].Image)
	}
	if msg.Embeds[0].Description != "" {
		t.Fatalf("expected an empty description for an empty selftext")
	}
}

func TestIsImageURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://i.redd.it/abc123", true},
		{"https://i.imgur.com/xyz", true},
		{"https://example.com/photo.JPG", true},
		{"https://example.com/anim.webp", true},
		{"https://example.com/article", false},
		{"https://www.reddit.com/r/golang/comments/abc/", false},
		{"not a url", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isImageURL(tc.url); got != tc.want {
			t.Errorf("isImageURL(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 300); got != "short" {
		t.Errorf("expected short strings untouched, got %q", got)
	}

	exact := strings.Repeat("a", 300)
	if got := truncate(exact, 300); got != exact {
		t.Errorf("expected strings at the limit untouched")
	}

	long := strings.Repeat("a", 301)
	got := truncate(long, 300)
	if len([]rune(got)) != 300 || !strings.HasSuffix(got, "...") {
		t.Errorf("expected 300 runes ending in ellipsis, got %d runes", len([]rune(got)))
	}

	multibyte := strings.Repeat("é", 10)
	got = truncate(multibyte, 5)
	if len([]rune(got)) != 5 || !strings.HasSuffix(got, "...") {
		t.Errorf("expected rune-aware truncation, got %q", got)
	}
}
