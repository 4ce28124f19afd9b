package fetch

import "time"

// Config holds retry and transport settings for remote asset fetches.
type Config struct {
	// MaxAttempts is the number of tries per mirror before moving on.
	MaxAttempts int `mapstructure:"max_attempts" default:"3"`
	// InitialBackoffMs is the delay before the first retry on a mirror.
	InitialBackoffMs int `mapstructure:"initial_backoff_ms" default:"500"`
	// MaxBackoffMs caps the exponential delay.
	MaxBackoffMs int `mapstructure:"max_backoff_ms" default:"8000"`
	// TimeoutSeconds bounds a single HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"120"`
	// Concurrency caps parallel auxiliary downloads.
	Concurrency int `mapstructure:"concurrency" default:"3"`
}

// Backoff returns the backoff policy described by the config, filling in
// defaults for unset values.
func (c Config) Backoff() Backoff {
	b := Backoff{
		Initial:    time.Duration(c.InitialBackoffMs) * time.Millisecond,
		Max:        time.Duration(c.MaxBackoffMs) * time.Millisecond,
		Multiplier: 2,
	}
	if b.Initial <= 0 {
		b.Initial = 500 * time.Millisecond
	}
	if b.Max <= 0 {
		b.Max = 8 * time.Second
	}
	return b
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Limit returns the download concurrency cap, never below one.
func (c Config) Limit() int {
	if c.Concurrency <= 0 {
		return 3
	}
	return c.Concurrency
}
