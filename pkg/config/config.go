package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file. An empty path loads the
// defaults, so every command can run without a config file.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and fills in defaults.
func Validate(cfg *Config) error {
	if err := validateLimits(&cfg.Limits); err != nil {
		return fmt.Errorf("limits: %w", err)
	}

	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	if err := validateWatch(&cfg.Watch); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			return fmt.Errorf("webhooks[%d] (%s): %w", i, cfg.Webhooks[i].DisplayName(), err)
		}
	}

	return nil
}

func validateLimits(l *LimitsConfig) error {
	if l.MaxLogSize < 0 {
		return errors.New("max_log_size must not be negative")
	}
	if l.MaxLogSize == 0 {
		l.MaxLogSize = DefaultMaxLogSize
	}

	if l.Workers < 0 {
		return errors.New("workers must not be negative")
	}
	if l.Workers == 0 {
		l.Workers = DefaultWorkers
	}

	return nil
}

func validateServer(s *ServerConfig) error {
	if s.Listen == "" {
		s.Listen = DefaultListen
	}

	if s.RateLimit < 0 {
		return errors.New("rate_limit must not be negative")
	}

	if s.Burst < 0 {
		return errors.New("burst must not be negative")
	}
	if s.RateLimit > 0 && s.Burst == 0 {
		s.Burst = 1
	}

	if s.ShutdownTimeout <= 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}

	return nil
}

func validateWatch(w *WatchConfig) error {
	if w.Pattern == "" {
		w.Pattern = DefaultWatchPattern
	}
	if _, err := filepath.Match(w.Pattern, ""); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", w.Pattern, err)
	}

	if w.Debounce < 0 {
		return errors.New("debounce must not be negative")
	}
	if w.Debounce == 0 {
		w.Debounce = DefaultWatchDebounce
	}

	return nil
}

func validateLogging(l *LoggingConfig) error {
	if l.Level == "" {
		l.Level = DefaultLogLevel
	}
	l.Level = strings.ToLower(l.Level)
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid level %q (must be debug, info, warn, or error)", l.Level)
	}

	if l.Format == "" {
		l.Format = DefaultLogFormat
	}
	switch l.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid format %q (must be console or json)", l.Format)
	}

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	// Validate URL format
	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	// Expand environment variables in token
	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerAlways
	case WebhookTriggerAlways, WebhookTriggerOnValid, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be always, on_valid, or never)", wh.Trigger)
	}

	switch wh.Format {
	case "":
		wh.Format = WebhookFormatDiscord
	case WebhookFormatDiscord, WebhookFormatJSON:
	default:
		return fmt.Errorf("invalid format %q (must be discord or json)", wh.Format)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	// Handle ${VAR} format
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	// Handle $VAR format (no braces)
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}

	return s
}
