package scanner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/darrencarlin/reddit-scanner/internal/config"
	"github.com/darrencarlin/reddit-scanner/internal/reddit"
	"github.com/darrencarlin/reddit-scanner/internal/state"
	"github.com/darrencarlin/reddit-scanner/internal/webhook"
)

var (
	metricFetchCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reddit_fetch_count_total",
		Help: "The total number of listing fetches",
	}, []string{"subreddit", "status"})

	metricNewPosts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reddit_new_posts_total",
		Help: "The total number of new posts ingested",
	}, []string{"subreddit"})

	metricNotifyCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discord_notify_count_total",
		Help: "The total number of notification attempts",
	}, []string{"status"})
)

// Feed produces the candidate posts for a tick.
type Feed interface {
	FetchNewest(ctx context.Context, limit int) ([]reddit.Post, error)
}

// Notifier delivers the outbound message for one post.
type Notifier interface {
	Send(ctx context.Context, payload webhook.Payload) error
}

type Scanner struct {
	feed      Feed
	records   *state.Records
	notifier  Notifier
	sweeper   *Sweeper
	subreddit string
	limit     int
}

func New(feed Feed, records *state.Records, notifier Notifier, sweeper *Sweeper, cfg config.RedditConfig) *Scanner {
	return &Scanner{
		feed:      feed,
		records:   records,
		notifier:  notifier,
		sweeper:   sweeper,
		subreddit: cfg.Subreddit,
		limit:     cfg.Limit,
	}
}

// Scan runs one tick: fetch candidates, diff against stored records, persist
// and notify each new post in listing order, then sweep expired records.
// Errors never escape the tick; a failed fetch aborts it, anything after
// that is handled per post.
func (s *Scanner) Scan(ctx context.Context) {
	logger := slog.With("subreddit", s.subreddit)
	logger.Info("Checking for new posts")

	posts, err := s.feed.FetchNewest(ctx, s.limit)
	if err != nil {
		logger.Error("Failed to fetch listing", "error", err)
		metricFetchCount.WithLabelValues(s.subreddit, "error").Inc()
		return
	}
	metricFetchCount.WithLabelValues(s.subreddit, "success").Inc()

	stored := s.records.LoadAll(ctx)
	seen := make(map[string]struct{}, len(stored))
	for _, rec := range stored {
		seen[rec.ID] = struct{}{}
	}

	// Listing order is preserved so notifications go out in the order the
	// feed returned the posts. Anything beyond the fetch limit that arrived
	// between ticks is missed; that is the cost of a fixed-size poll.
	var newPosts []reddit.Post
	for _, p := range posts {
		if _, ok := seen[p.ID]; !ok {
			newPosts = append(newPosts, p)
		}
	}

	if len(newPosts) == 0 {
		logger.Debug("No new posts")
	} else {
		logger.Info("Found new posts", "count", len(newPosts))
	}

	failed := 0
	for _, p := range newPosts {
		if err := s.process(ctx, p); err != nil {
			logger.Error("Failed to process post", "id", p.ID, "error", err)
			failed++
			continue
		}
		metricNewPosts.WithLabelValues(s.subreddit).Inc()
		logger.Info("Processed new post", "id", p.ID, "title", p.Title)
	}

	deleted := s.sweeper.Sweep(ctx)

	logger.Info("Scan complete", "new", len(newPosts)-failed, "failed", failed, "swept", deleted)
}

func (s *Scanner) process(ctx context.Context, post reddit.Post) error {
	if err := s.records.Save(ctx, post); err != nil {
		return fmt.Errorf("failed to save post: %w", err)
	}

	payload := webhook.Payload{
		Subreddit:  s.subreddit,
		Title:      post.Title,
		Permalink:  post.Permalink,
		Author:     post.Author,
		CreatedUTC: post.CreatedUTC,
		Score:      post.Score,
		URL:        post.URL,
		SelfText:   post.SelfText,
	}
	if err := s.notifier.Send(ctx, payload); err != nil {
		// The post is already persisted; the failure costs this one
		// notification, not the ingestion.
		slog.Error("Failed to send notification", "id", post.ID, "error", err)
		metricNotifyCount.WithLabelValues("error").Inc()
		return nil
	}
	metricNotifyCount.WithLabelValues("success").Inc()

	return nil
}
