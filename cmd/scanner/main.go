package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/darrencarlin/reddit-scanner/internal/config"
	"github.com/darrencarlin/reddit-scanner/internal/reddit"
	"github.com/darrencarlin/reddit-scanner/internal/scanner"
	"github.com/darrencarlin/reddit-scanner/internal/state"
	"github.com/darrencarlin/reddit-scanner/internal/webhook"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Setup Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Init Store
	var store state.Store
	switch cfg.Store.Type {
	case "redis":
		logger.Info("Using Redis Store", "address", cfg.Store.Address)
		s, err := state.NewRedisStore(cfg.Store.Address, cfg.Store.Password)
		if err != nil {
			logger.Error("Failed to initialize Redis store", "error", err)
			os.Exit(1)
		}
		store = s
	case "sqlite":
		logger.Info("Using SQLite Store", "path", cfg.Store.Path)
		s, err := state.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			logger.Error("Failed to initialize SQLite store", "error", err)
			os.Exit(1)
		}
		store = s
	case "", "memory":
		logger.Info("Using Memory Store")
		store = state.NewMemoryStore()
	default:
		logger.Error("Unknown store type", "type", cfg.Store.Type)
		os.Exit(1)
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	// Init Components
	records := state.NewRecords(store)
	feed := reddit.NewClient(cfg.Reddit)
	notifier := webhook.NewClient(cfg.Webhook)
	sweeper := scanner.NewSweeper(records, cfg.Retention.MaxAgeDays)
	sc := scanner.New(feed, records, notifier, sweeper, cfg.Reddit)

	// Metrics Server
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		logger.Info("Starting metrics server", "address", cfg.Metrics.Address)
		if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
			logger.Error("Metrics server failed", "error", err)
		}
	}()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutting down...")
		cancel()
	}()

	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, func() { sc.Scan(ctx) }); err != nil {
		logger.Error("Invalid schedule", "schedule", cfg.Schedule, "error", err)
		os.Exit(1)
	}

	logger.Info("Starting Reddit Scanner",
		"subreddit", cfg.Reddit.Subreddit,
		"schedule", cfg.Schedule,
		"limit", cfg.Reddit.Limit)

	// First scan runs immediately; the schedule takes over from there.
	sc.Scan(ctx)
	c.Start()

	<-ctx.Done()
	// Let an in-flight scan finish before exiting.
	<-c.Stop().Done()
	logger.Info("Scanner stopped")
}
