package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cloudchamber-io/geigerctl/internal/config"
	"github.com/cloudchamber-io/geigerctl/internal/device"
	"github.com/cloudchamber-io/geigerctl/internal/monitor"
	"github.com/cloudchamber-io/geigerctl/internal/observability"
	"github.com/cloudchamber-io/geigerctl/internal/protocol/gqrfc"
	"github.com/cloudchamber-io/geigerctl/internal/protocol/session"
	"github.com/cloudchamber-io/geigerctl/internal/telemetry"
)

const shutdownGrace = 5 * time.Second

// Service wires one monitored counter to the HTTP and MQTT surfaces.
type Service struct {
	cfg       config.Config
	log       zerolog.Logger
	rng       *rand.Rand
	startedAt time.Time
}

func main() {
	var (
		configPath string
		verbose    bool
	)
	flag.StringVar(&configPath, "config", "geigermon.toml", "TOML config file")
	flag.BoolVar(&verbose, "verbose", false, "debug logging")
	flag.Parse()

	logger := observability.InitLogger("geigermon", verbose)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log.Info().Str("path", configPath).Msg("loaded config")

	svc := NewService(cfg, logger)
	if err := svc.Run(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("geigermon stopped")
	}
	log.Info().Msg("geigermon stopped")
}

func NewService(cfg config.Config, logger zerolog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		log:       logger,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		startedAt: time.Now(),
	}
}

// Run blocks until signal shutdown or a fatal setup error.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	observability.RegisterMetrics()

	var sinks []monitor.Sink
	if s.cfg.MQTT.Broker != "" {
		publisher, err := telemetry.Connect(s.cfg.MQTT, s.log)
		if err != nil {
			return err
		}
		defer publisher.Close()
		sinks = append(sinks, publisher)
	}

	server := &http.Server{Addr: s.cfg.HTTP.Addr, Handler: s.router()}
	httpErr := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.HTTP.Addr).Msg("http listening")
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		httpErr <- err
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.log.Warn().Err(err).Msg("http shutdown failed")
		}
	}()

	deviceErr := make(chan error, 1)
	go func() {
		deviceErr <- s.deviceLoop(ctx, sinks)
	}()

	select {
	case err := <-httpErr:
		stop()
		<-deviceErr
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case err := <-deviceErr:
		return err
	}
}

// deviceLoop keeps one counter sampled, redialing with backoff when
// the transport drops.
func (s *Service) deviceLoop(ctx context.Context, sinks []monitor.Sink) error {
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		started := time.Now()
		err := s.connectAndSample(ctx, sinks)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Since(started) > time.Minute {
			// a sustained run restarts the backoff ladder
			attempt = 0
		}
		attempt++
		delay := session.NextBackoffDelay(s.cfg.Session.Backoff, attempt, s.rng)
		s.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("device unavailable")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (s *Service) connectAndSample(ctx context.Context, sinks []monitor.Sink) error {
	transport, err := openTransport(ctx, s.cfg.Device)
	if err != nil {
		return err
	}
	sess, err := s.openSession(ctx, transport)
	if err != nil {
		transport.Close()
		return err
	}
	defer sess.Close()

	sampler, err := monitor.NewSampler(sess, monitor.Config{
		Device:     deviceLabel(s.cfg.Device),
		Interval:   s.cfg.Monitor.Interval,
		TubeFactor: s.cfg.Monitor.TubeFactor,
	}, s.log)
	if err != nil {
		return err
	}
	return sampler.Run(ctx, sinks...)
}

func (s *Service) openSession(ctx context.Context, transport session.Transport) (*session.Session, error) {
	opts := []session.Option{session.WithConfig(s.cfg.Session), session.WithLogger(s.log)}
	if s.cfg.Device.Revision != "" {
		catalog, err := gqrfc.Lookup(s.cfg.Device.Revision)
		if err != nil {
			return nil, err
		}
		s.log.Info().Str("revision", catalog.Label()).Msg("revision pinned")
		return session.New(catalog, transport, opts...), nil
	}
	identity, sess, err := device.Identify(ctx, transport, opts...)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("version", identity.Version).
		Str("revision", identity.Catalog.Label()).
		Msg("device identified")
	return sess, nil
}

func openTransport(ctx context.Context, dev config.DeviceConfig) (session.Transport, error) {
	switch {
	case dev.Port != "":
		return device.OpenSerial(device.SerialConfig{Port: dev.Port, Baud: dev.Baud})
	case dev.Address != "":
		return device.DialTCP(ctx, device.TCPConfig{Address: dev.Address})
	}
	return nil, errors.New("no device configured: set device.port or device.address")
}

func deviceLabel(dev config.DeviceConfig) string {
	if dev.Port != "" {
		return dev.Port
	}
	return dev.Address
}

func (s *Service) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(s.log))
	r.Use(observability.RequestMetricsMiddleware("geigermon"))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.startedAt).String(),
			"service": "geigermon",
			"device":  deviceLabel(s.cfg.Device),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
