package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cloudchamber-io/geigerctl/internal/observability"
	"github.com/cloudchamber-io/geigerctl/internal/protocol"
	"github.com/cloudchamber-io/geigerctl/internal/protocol/session"
)

// Reading is one sampled data point from a counter.
type Reading struct {
	Device    string    `json:"device"`
	CPM       int64     `json:"cpm"`
	DoseRate  float64   `json:"usv_per_hour"`
	SampledAt time.Time `json:"sampled_at"`
}

// Sink receives readings as they are sampled. Implementations must be
// safe for use from the sampling goroutine.
type Sink interface {
	Publish(ctx context.Context, r Reading) error
}

// Config controls the sampling cadence and the dose conversion.
type Config struct {
	// Device labels readings, log events and metrics.
	Device string

	// Interval is the time between samples.
	Interval time.Duration

	// TubeFactor converts counts per minute to microsieverts per
	// hour: dose = cpm / factor.
	TubeFactor float64
}

// Sampler polls one session for count rates.
type Sampler struct {
	session *session.Session
	cfg     Config
	log     zerolog.Logger
}

// NewSampler validates the config against the session's catalog.
func NewSampler(s *session.Session, cfg Config, log zerolog.Logger) (*Sampler, error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("monitor: interval must be positive, got %s", cfg.Interval)
	}
	if cfg.TubeFactor <= 0 {
		return nil, fmt.Errorf("monitor: tube factor must be positive, got %g", cfg.TubeFactor)
	}
	if cfg.Device == "" {
		cfg.Device = "device"
	}
	if !s.Catalog().Supports("GETCPM") {
		return nil, fmt.Errorf("monitor: %s does not report count rates", s.Catalog().Label())
	}
	return &Sampler{session: s, cfg: cfg, log: log}, nil
}

// Sample runs one count exchange and derives the dose rate.
func (m *Sampler) Sample(ctx context.Context) (Reading, error) {
	start := time.Now()
	value, err := m.session.Run(ctx, "GETCPM")
	observability.RecordExchange(m.cfg.Device, "GETCPM", Outcome(err), time.Since(start))
	if err != nil {
		return Reading{}, err
	}
	dose := float64(value.Int) / m.cfg.TubeFactor
	observability.RecordReading(m.cfg.Device, float64(value.Int), dose)
	return Reading{
		Device:    m.cfg.Device,
		CPM:       value.Int,
		DoseRate:  dose,
		SampledAt: start.UTC(),
	}, nil
}

// Run samples on the configured cadence and fans each reading out to
// every sink. Decode and shape failures, including device silence, are
// logged and the loop keeps polling; a transport failure ends the loop
// so the caller can reconnect, and ctx ends it for good.
func (m *Sampler) Run(ctx context.Context, sinks ...Sink) error {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		reading, err := m.Sample(ctx)
		if err != nil {
			var transportErr session.TransportError
			if errors.As(err, &transportErr) {
				return err
			}
			m.log.Warn().Err(err).Str("device", m.cfg.Device).Msg("sample failed")
		} else {
			m.log.Info().
				Str("device", m.cfg.Device).
				Int64("cpm", reading.CPM).
				Float64("usv_per_hour", reading.DoseRate).
				Msg("reading")
			for _, sink := range sinks {
				if err := sink.Publish(ctx, reading); err != nil {
					m.log.Warn().Err(err).Str("device", m.cfg.Device).Msg("sink publish failed")
				}
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Outcome maps an exchange error to a metrics label.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var (
		argErr   protocol.ArgumentError
		unsupErr protocol.UnsupportedCommandError
		decErr   protocol.DecodeError
		shapeErr session.ResponseShapeError
		transErr session.TransportError
	)
	switch {
	case errors.As(err, &argErr):
		return "argument"
	case errors.As(err, &unsupErr):
		return "unsupported"
	case errors.As(err, &decErr):
		return "decode"
	case errors.As(err, &shapeErr):
		if shapeErr.Timeout {
			return "timeout"
		}
		return "shape"
	case errors.As(err, &transErr):
		return "transport"
	default:
		return "error"
	}
}
