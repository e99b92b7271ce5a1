package session

import "time"

// BackoffConfig defines reconnect backoff behavior for callers that
// re-dial a lost device link.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config defines per-exchange timing and size limits.
type Config struct {
	// WriteTimeout bounds sending one encoded request.
	WriteTimeout time.Duration
	// ReadTimeout bounds waiting for the first response byte, and the
	// whole response for fixed and terminated shapes.
	ReadTimeout time.Duration
	// IdleWindow is the silence that ends an idle-bounded response when
	// the command does not set its own window.
	IdleWindow time.Duration
	// MaxResponseBytes caps any accumulated response. Commands may set a
	// lower bound through their shape, never a higher one.
	MaxResponseBytes int
	Backoff          BackoffConfig
}

// DefaultConfig returns limits tuned for a 115200 baud serial link.
func DefaultConfig() Config {
	return Config{
		WriteTimeout:     2 * time.Second,
		ReadTimeout:      5 * time.Second,
		IdleWindow:       300 * time.Millisecond,
		MaxResponseBytes: 64 * 1024,
		Backoff: BackoffConfig{
			InitialDelay: 250 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
		},
	}
}

// WithDefaults fills unset fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = def.ReadTimeout
	}
	if c.IdleWindow <= 0 {
		c.IdleWindow = def.IdleWindow
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = def.MaxResponseBytes
	}
	if c.Backoff.InitialDelay <= 0 {
		c.Backoff = def.Backoff
	}
	return c
}
