// Package config provides configuration loading and validation for crashlog.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Limits   LimitsConfig    `yaml:"limits"`
	Server   ServerConfig    `yaml:"server"`
	Watch    WatchConfig     `yaml:"watch"`
	Logging  LoggingConfig   `yaml:"logging"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// LimitsConfig bounds the work done per crash log.
type LimitsConfig struct {
	// MaxLogSize is the largest log, in bytes, accepted for parsing.
	MaxLogSize int64 `yaml:"max_log_size"`

	// Workers is the number of logs parsed concurrently in batch mode.
	Workers int `yaml:"workers"`
}

// ServerConfig configures the crash upload service.
type ServerConfig struct {
	// Listen is the address the HTTP server binds to.
	Listen string `yaml:"listen"`

	// RateLimit is the sustained number of uploads accepted per second.
	// Zero disables rate limiting.
	RateLimit float64 `yaml:"rate_limit"`

	// Burst is the number of uploads accepted above RateLimit in a burst.
	Burst int `yaml:"burst"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// WatchConfig configures the directory watcher.
type WatchConfig struct {
	// Pattern selects the files that are treated as crash logs.
	Pattern string `yaml:"pattern"`

	// Debounce is how long a file must stay unchanged before it is parsed.
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerAlways fires for every log; invalid logs are forwarded without a summary (default).
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerOnValid fires only when a crash report was parsed.
	WebhookTriggerOnValid WebhookTrigger = "on_valid"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookFormat selects the request body sent to a webhook.
type WebhookFormat string

const (
	// WebhookFormatDiscord posts a multipart form with an embed and the original log (default).
	WebhookFormatDiscord WebhookFormat = "discord"
	// WebhookFormatJSON posts the report as a JSON document.
	WebhookFormatJSON WebhookFormat = "json"
)

// WebhookConfig defines a webhook endpoint that receives crash reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "always" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Format selects the payload shape.
	// Defaults to "discord" if not specified.
	Format WebhookFormat `yaml:"format,omitempty"`

	// AttachLog sends the original log file along with the report.
	// Only honored by the discord format.
	AttachLog *bool `yaml:"attach_log,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// DisplayName returns the webhook name, falling back to its URL.
func (w WebhookConfig) DisplayName() string {
	if w.Name != "" {
		return w.Name
	}
	return w.URL
}

// ShouldAttachLog reports whether the original log is sent with the report.
func (w WebhookConfig) ShouldAttachLog() bool {
	return w.AttachLog == nil || *w.AttachLog
}
