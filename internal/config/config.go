// Package config defines service configuration and its loading layers.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/okian/stationlens/internal/domain/aggregate"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// FeedURL is the station feed location: http(s) URL, file:// URL or path.
	FeedURL string `koanf:"feed_url"`

	// FeedTimeoutMS bounds one feed fetch.
	FeedTimeoutMS int `koanf:"feed_timeout_ms"`

	// RefreshIntervalMS sets the background re-fetch period. 0 disables it.
	RefreshIntervalMS int `koanf:"refresh_interval_ms"`

	// SeriesStartYear is the default first year of the historical series.
	SeriesStartYear int `koanf:"series_start_year"`

	// MaxSeriesYears caps the number of points in one series request.
	MaxSeriesYears int `koanf:"max_series_years"`

	// DisplayLimit caps the number of station rows returned to a view.
	DisplayLimit int `koanf:"display_limit"`

	// MemoSize bounds each derivation cache. 0 disables memoization.
	MemoSize int `koanf:"memo_size"`

	// RequireDefaultYear rejects end-year resolution when the feed has no
	// default_year instead of falling back to the current calendar year.
	RequireDefaultYear bool `koanf:"require_default_year"`

	// RateLimitRPS and RateLimitBurst throttle /api requests. RPS 0 disables.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// TrustProxyHeaders keys the rate limiter on X-Forwarded-For/X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool `koanf:"trust_proxy_headers"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsLabels are constant labels attached to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// LatencyBucketsMS overrides the derivation and HTTP latency buckets.
	LatencyBucketsMS []float64 `koanf:"latency_buckets_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		FeedURL:           "data/stations.json",
		FeedTimeoutMS:     15_000,
		RefreshIntervalMS: 300_000,
		SeriesStartYear:   aggregate.HistoricalFloor,
		MaxSeriesYears:    500,
		DisplayLimit:      500,
		MemoSize:          1024,
		RateLimitRPS:      50,
		RateLimitBurst:    100,
		MetricsNamespace:  "stationlens",
		MetricsSubsystem:  "dashboard",
	}
}

// FeedTimeout returns FeedTimeoutMS as a duration.
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.FeedTimeoutMS) * time.Millisecond
}

// RefreshInterval returns RefreshIntervalMS as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMS) * time.Millisecond
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.FeedURL) == "":
		return fmt.Errorf("%w: feed_url must not be empty", ErrInvalidConfig)
	case c.FeedTimeoutMS <= 0:
		return fmt.Errorf("%w: feed_timeout_ms must be positive, got %d", ErrInvalidConfig, c.FeedTimeoutMS)
	case c.RefreshIntervalMS < 0:
		return fmt.Errorf("%w: refresh_interval_ms must not be negative, got %d", ErrInvalidConfig, c.RefreshIntervalMS)
	case c.MaxSeriesYears <= 0:
		return fmt.Errorf("%w: max_series_years must be positive, got %d", ErrInvalidConfig, c.MaxSeriesYears)
	case c.DisplayLimit <= 0:
		return fmt.Errorf("%w: display_limit must be positive, got %d", ErrInvalidConfig, c.DisplayLimit)
	case c.MemoSize < 0:
		return fmt.Errorf("%w: memo_size must not be negative, got %d", ErrInvalidConfig, c.MemoSize)
	case c.RateLimitRPS < 0:
		return fmt.Errorf("%w: rate_limit_rps must not be negative, got %g", ErrInvalidConfig, c.RateLimitRPS)
	case c.RateLimitRPS > 0 && c.RateLimitBurst <= 0:
		return fmt.Errorf("%w: rate_limit_burst must be positive when rate limiting, got %d", ErrInvalidConfig, c.RateLimitBurst)
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

var metricNamePart = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func (c *Config) validateMetrics() error {
	if !metricNamePart.MatchString(c.MetricsNamespace) {
		return fmt.Errorf("%w: metrics_namespace %q is not a valid metric name", ErrInvalidConfig, c.MetricsNamespace)
	}
	if c.MetricsSubsystem != "" && !metricNamePart.MatchString(c.MetricsSubsystem) {
		return fmt.Errorf("%w: metrics_subsystem %q is not a valid metric name", ErrInvalidConfig, c.MetricsSubsystem)
	}
	for name := range c.MetricsLabels {
		if !metricNamePart.MatchString(name) || strings.HasPrefix(name, "__") {
			return fmt.Errorf("%w: metrics_labels key %q is not a valid label name", ErrInvalidConfig, name)
		}
	}
	for i := 1; i < len(c.LatencyBucketsMS); i++ {
		if c.LatencyBucketsMS[i] <= c.LatencyBucketsMS[i-1] {
			return fmt.Errorf("%w: latency_buckets_ms must be strictly increasing", ErrInvalidConfig)
		}
	}
	return nil
}
