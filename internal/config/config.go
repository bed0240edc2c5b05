package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Reddit    RedditConfig    `yaml:"reddit"`
	Store     StoreConfig     `yaml:"store"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Schedule  string          `yaml:"schedule"` // cron spec or "@every <duration>"
	Retention RetentionConfig `yaml:"retention"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type RedditConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Subreddit    string `yaml:"subreddit"`
	Limit        int    `yaml:"limit"`
}

type StoreConfig struct {
	Type     string `yaml:"type"` // "memory", "redis" or "sqlite"
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	Path     string `yaml:"path"` // sqlite only
}

type WebhookConfig struct {
	URL          string        `yaml:"url"`
	Username     string        `yaml:"username"`
	AvatarURL    string        `yaml:"avatar_url"`
	PostInterval time.Duration `yaml:"post_interval"`
}

type RetentionConfig struct {
	MaxAgeDays int `yaml:"max_age_days"`
}

type MetricsConfig struct {
	Address string `yaml:"address"`
}

func Load(path string) (*Config, error) {
	// Defaults
	c := &Config{
		Reddit: RedditConfig{
			Limit: 5,
		},
		Store: StoreConfig{
			Type: "memory",
		},
		Webhook: WebhookConfig{
			Username: "Reddit Scanner",
		},
		Schedule: "@every 10m",
		Retention: RetentionConfig{
			MaxAgeDays: 30,
		},
		Metrics: MetricsConfig{
			Address: ":9090",
		},
	}

	if err := loadYaml(path, c); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Secrets may come from the environment instead of the file.
	if v := os.Getenv("REDDIT_CLIENT_ID"); v != "" {
		c.Reddit.ClientID = v
	}
	if v := os.Getenv("REDDIT_CLIENT_SECRET"); v != "" {
		c.Reddit.ClientSecret = v
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		c.Webhook.URL = v
	}

	if c.Reddit.Subreddit == "" {
		return nil, fmt.Errorf("no subreddit configured")
	}
	if c.Reddit.ClientID == "" || c.Reddit.ClientSecret == "" {
		return nil, fmt.Errorf("reddit client_id and client_secret are required")
	}
	if c.Reddit.Limit <= 0 {
		c.Reddit.Limit = 5
	}
	if c.Retention.MaxAgeDays <= 0 {
		c.Retention.MaxAgeDays = 30
	}

	return c, nil
}

func loadYaml(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}
