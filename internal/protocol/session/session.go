package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cloudchamber-io/geigerctl/internal/protocol"
)

// Transport is one byte-stream link to a device. Send writes the whole
// request. Receive blocks until at least one byte arrives or the context
// deadline elapses; a deadline with nothing read is ErrReceiveTimeout
// (possibly wrapped), while bytes read before the deadline return with a
// nil error.
type Transport interface {
	Send(ctx context.Context, p []byte) error
	Receive(ctx context.Context, p []byte) (int, error)
	Close() error
}

// Session drives command exchanges over a single transport, one at a
// time. The wire carries no framing, so interleaved exchanges would
// corrupt both responses; a mutex serializes them.
type Session struct {
	catalog   *protocol.CommandSet
	transport Transport
	cfg       Config
	log       zerolog.Logger

	mu     sync.Mutex
	closed bool
}

type Option func(*Session)

func WithConfig(cfg Config) Option {
	return func(s *Session) { s.cfg = cfg.WithDefaults() }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// New wraps transport with the given command catalog. The transport is
// owned by the session from here on; Close releases it.
func New(catalog *protocol.CommandSet, transport Transport, opts ...Option) *Session {
	s := &Session{
		catalog:   catalog,
		transport: transport,
		cfg:       DefaultConfig(),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the command catalog this session speaks.
func (s *Session) Catalog() *protocol.CommandSet { return s.catalog }

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.transport.Close()
}

// Run executes one command exchange: look up name in the catalog, encode
// the arguments, send the request, read the response per the command's
// shape, decode. Nothing reaches the wire unless lookup and encoding
// both succeed, and a failed exchange is never retried here.
func (s *Session) Run(ctx context.Context, name string, args ...string) (protocol.Value, error) {
	cmd, err := s.catalog.Lookup(name)
	if err != nil {
		return protocol.Value{}, err
	}
	request, err := cmd.Encode(args...)
	if err != nil {
		return protocol.Value{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return protocol.Value{}, ErrSessionClosed
	}

	start := time.Now()
	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
	err = s.transport.Send(sendCtx, request)
	cancel()
	if err != nil {
		return protocol.Value{}, TransportError{Op: "send", Err: err}
	}

	raw, err := s.read(ctx, cmd)
	if err != nil {
		s.log.Debug().Str("command", cmd.Name()).Dur("elapsed", time.Since(start)).Err(err).Msg("exchange failed")
		return protocol.Value{}, err
	}

	value, err := cmd.Decode(raw)
	if err != nil {
		return protocol.Value{}, err
	}
	s.log.Debug().
		Str("command", cmd.Name()).
		Int("response_bytes", len(raw)).
		Dur("elapsed", time.Since(start)).
		Msg("exchange complete")
	return value, nil
}
