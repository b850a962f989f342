package telegram

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	// DefaultPollingTimeout is the long-poll timeout sent to getUpdates.
	DefaultPollingTimeout = 30 * time.Second
	// DefaultPollingLimit is the maximum batch size asked from getUpdates.
	DefaultPollingLimit = 100
	// DefaultBackoffBase is the initial transport retry delay.
	DefaultBackoffBase = time.Second
	// DefaultBackoffCap is the transport retry delay ceiling.
	DefaultBackoffCap = 30 * time.Second
)

// Config holds the enumerated transport options.
type Config struct {
	// Token is the opaque bot token. Required.
	Token string
	// BaseURL overrides the hosted API endpoint when set.
	BaseURL string
	// PollingTimeout is the getUpdates long-poll timeout, within [1s, 60s].
	PollingTimeout time.Duration
	// PollingLimit is the getUpdates batch limit, within [1, 100].
	PollingLimit int
	// WebhookURL is the public URL registered with the API in webhook mode.
	WebhookURL string
	// WebhookListenAddr is the local address the webhook receiver binds.
	WebhookListenAddr string
	// BackoffBase is the initial delay for transport retries.
	BackoffBase time.Duration
	// BackoffCap is the ceiling for transport retry delays.
	BackoffCap time.Duration
}

// Validate checks required fields and option ranges.
func (c Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("%w: missing token", ErrInvalidConfig)
	}
	if c.PollingTimeout < time.Second || c.PollingTimeout > 60*time.Second {
		return fmt.Errorf("%w: polling timeout %s outside [1s, 60s]", ErrInvalidConfig, c.PollingTimeout)
	}
	if c.PollingLimit < 1 || c.PollingLimit > 100 {
		return fmt.Errorf("%w: polling limit %d outside [1, 100]", ErrInvalidConfig, c.PollingLimit)
	}
	if c.BackoffBase <= 0 || c.BackoffCap < c.BackoffBase {
		return fmt.Errorf("%w: backoff base %s and cap %s", ErrInvalidConfig, c.BackoffBase, c.BackoffCap)
	}

	return nil
}

// LoadConfigFromEnv reads configuration from BOT_* environment variables and
// applies defaults for everything optional.
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		Token:             os.Getenv("BOT_TOKEN"),
		BaseURL:           os.Getenv("BOT_API_BASE_URL"),
		PollingTimeout:    DefaultPollingTimeout,
		PollingLimit:      DefaultPollingLimit,
		WebhookURL:        os.Getenv("BOT_WEBHOOK_URL"),
		WebhookListenAddr: os.Getenv("BOT_WEBHOOK_LISTEN_ADDR"),
		BackoffBase:       DefaultBackoffBase,
		BackoffCap:        DefaultBackoffCap,
	}

	if raw := os.Getenv("BOT_POLLING_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse BOT_POLLING_TIMEOUT_SECONDS: %w", err)
		}
		cfg.PollingTimeout = time.Duration(seconds) * time.Second
	}
	if raw := os.Getenv("BOT_POLLING_LIMIT"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse BOT_POLLING_LIMIT: %w", err)
		}
		cfg.PollingLimit = limit
	}
	if raw := os.Getenv("BOT_BACKOFF_BASE_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse BOT_BACKOFF_BASE_MS: %w", err)
		}
		cfg.BackoffBase = time.Duration(ms) * time.Millisecond
	}
	if raw := os.Getenv("BOT_BACKOFF_CAP_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse BOT_BACKOFF_CAP_MS: %w", err)
		}
		cfg.BackoffCap = time.Duration(ms) * time.Millisecond
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
