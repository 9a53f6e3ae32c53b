package config

import (
	"os"
	"time"
)

// Default values for configuration.
const (
	DefaultMaxLogSize      = 8 << 20
	DefaultWorkers         = 4
	DefaultListen          = ":8080"
	DefaultRateLimit       = 5
	DefaultBurst           = 10
	DefaultShutdownTimeout = 10 * time.Second
	DefaultWatchPattern    = "*.log"
	DefaultWatchDebounce   = 500 * time.Millisecond
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
	DefaultWebhookTimeout  = 10 * time.Second
)

// Environment variable names.
const (
	EnvListen     = "CRASHLOG_LISTEN"
	EnvLogLevel   = "CRASHLOG_LOG_LEVEL"
	EnvWebhookURL = "CRASHLOG_WEBHOOK_URL"
)

// envWebhookName names the webhook added from EnvWebhookURL.
const envWebhookName = "env"

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			MaxLogSize: DefaultMaxLogSize,
			Workers:    DefaultWorkers,
		},
		Server: ServerConfig{
			Listen:          DefaultListen,
			RateLimit:       DefaultRateLimit,
			Burst:           DefaultBurst,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Watch: WatchConfig{
			Pattern:  DefaultWatchPattern,
			Debounce: DefaultWatchDebounce,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if listen := os.Getenv(EnvListen); listen != "" {
		c.Server.Listen = listen
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}

	if url := os.Getenv(EnvWebhookURL); url != "" {
		for _, wh := range c.Webhooks {
			if wh.URL == url {
				return
			}
		}
		c.Webhooks = append(c.Webhooks, WebhookConfig{Name: envWebhookName, URL: url})
	}
}
