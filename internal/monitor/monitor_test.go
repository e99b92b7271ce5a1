package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/cloudchamber-io/geigerctl/internal/protocol"
	"github.com/cloudchamber-io/geigerctl/internal/protocol/gqrfc"
	"github.com/cloudchamber-io/geigerctl/internal/protocol/session"
	"github.com/cloudchamber-io/geigerctl/internal/testutil/testlog"
)

func TestSampleDerivesDose(t *testing.T) {
	testlog.Start(t)

	tr := &repeatTransport{answer: []byte{0x01, 0x2c}}
	m := newSampler(t, tr, Config{Device: "gmc", Interval: time.Second, TubeFactor: 153.8})

	reading, err := m.Sample(context.Background())
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if reading.CPM != 300 {
		t.Fatalf("cpm = %d, want 300", reading.CPM)
	}
	if want := 300 / 153.8; reading.DoseRate != want {
		t.Fatalf("dose = %g, want %g", reading.DoseRate, want)
	}
	if reading.Device != "gmc" {
		t.Fatalf("device = %q, want gmc", reading.Device)
	}
	if reading.SampledAt.IsZero() {
		t.Fatal("reading has no timestamp")
	}
}

func TestSampleSurfacesDeviceSilence(t *testing.T) {
	testlog.Start(t)

	tr := &repeatTransport{silent: true}
	m := newSampler(t, tr, Config{Interval: time.Second, TubeFactor: 153.8})

	_, err := m.Sample(context.Background())
	var shapeErr session.ResponseShapeError
	if !errors.As(err, &shapeErr) || !shapeErr.Timeout {
		t.Fatalf("Sample error = %v, want response timeout", err)
	}
	if got := Outcome(err); got != "timeout" {
		t.Fatalf("Outcome = %q, want timeout", got)
	}
}

func TestNewSamplerRejectsBadConfig(t *testing.T) {
	testlog.Start(t)

	tr := &repeatTransport{}
	good := Config{Interval: time.Second, TubeFactor: 153.8}

	cases := []struct {
		name    string
		catalog *protocol.CommandSet
		mutate  func(*Config)
	}{
		{"zero interval", gqrfc.RFC1201, func(c *Config) { c.Interval = 0 }},
		{"zero tube factor", gqrfc.RFC1201, func(c *Config) { c.TubeFactor = 0 }},
		{"catalog without count rate", gqrfc.Probe, func(c *Config) {}},
	}
	for _, tc := range cases {
		cfg := good
		tc.mutate(&cfg)
		s := session.New(tc.catalog, tr)
		if _, err := NewSampler(s, cfg, testlog.Logger(t)); err == nil {
			t.Errorf("%s: NewSampler accepted bad input", tc.name)
		}
		s.Close()
	}
}

func TestRunFansOutAndSurvivesSinkFailure(t *testing.T) {
	testlog.Start(t)

	tr := &repeatTransport{answer: []byte{0x01, 0x2c}}
	m := newSampler(t, tr, Config{Device: "gmc", Interval: 2 * time.Millisecond, TubeFactor: 153.8})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	failing := &failingSink{}
	counting := &countingSink{limit: 3, stop: cancel}

	err := m.Run(ctx, failing, counting)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
	if got := counting.count(); got < 3 {
		t.Fatalf("sink saw %d readings, want at least 3", got)
	}
	if got := failing.count(); got < 3 {
		t.Fatalf("failing sink called %d times, want at least 3", got)
	}
	for _, r := range counting.readings() {
		if r.CPM != 300 {
			t.Fatalf("reading cpm = %d, want 300", r.CPM)
		}
	}
}

func TestRunStopsOnTransportLoss(t *testing.T) {
	testlog.Start(t)

	tr := &repeatTransport{answer: []byte{0x01, 0x2c}, failAfter: 2}
	m := newSampler(t, tr, Config{Interval: 2 * time.Millisecond, TubeFactor: 153.8})

	sink := &countingSink{}
	err := m.Run(context.Background(), sink)
	var transportErr session.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Run returned %v, want a transport error", err)
	}
	if got := sink.count(); got != 2 {
		t.Fatalf("sink saw %d readings before the loss, want 2", got)
	}
}

func TestOutcomeLabels(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{protocol.ArgumentError{Command: "WCFG", Reason: "bad"}, "argument"},
		{protocol.UnsupportedCommandError{Label: "GQ-RFC1201", Command: "GETCPS"}, "unsupported"},
		{protocol.DecodeError{Command: "GETCPM", Reason: "short"}, "decode"},
		{session.ResponseShapeError{Command: "GETCPM", Reason: "silent", Timeout: true}, "timeout"},
		{session.ResponseShapeError{Command: "GETCPM", Reason: "short"}, "shape"},
		{session.TransportError{Op: "send", Err: io.ErrClosedPipe}, "transport"},
		{fmt.Errorf("wrapped: %w", session.TransportError{Op: "receive", Err: io.EOF}), "transport"},
		{errors.New("mystery"), "error"},
	}
	for _, tc := range cases {
		if got := Outcome(tc.err); got != tc.want {
			t.Errorf("Outcome(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func newSampler(t *testing.T, tr session.Transport, cfg Config) *Sampler {
	t.Helper()
	s := session.New(gqrfc.RFC1201, tr, session.WithLogger(testlog.Logger(t)))
	t.Cleanup(func() { s.Close() })
	m, err := NewSampler(s, cfg, testlog.Logger(t))
	if err != nil {
		t.Fatalf("NewSampler: %v", err)
	}
	return m
}

// repeatTransport answers every exchange with the same bytes. It can
// instead stay silent, or fail hard after a number of answers.
type repeatTransport struct {
	mu        sync.Mutex
	answer    []byte
	silent    bool
	failAfter int
	sends     int
	receives  int
}

func (tr *repeatTransport) Send(ctx context.Context, data []byte) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.sends++
	return nil
}

func (tr *repeatTransport) Receive(ctx context.Context, buf []byte) (int, error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.silent {
		return 0, session.ErrReceiveTimeout
	}
	tr.receives++
	if tr.failAfter > 0 && tr.receives > tr.failAfter {
		return 0, io.ErrUnexpectedEOF
	}
	return copy(buf, tr.answer), nil
}

func (tr *repeatTransport) Close() error { return nil }

type countingSink struct {
	mu    sync.Mutex
	got   []Reading
	limit int
	stop  context.CancelFunc
}

func (s *countingSink) Publish(ctx context.Context, r Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, r)
	if s.limit > 0 && len(s.got) >= s.limit && s.stop != nil {
		s.stop()
	}
	return nil
}

func (s *countingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func (s *countingSink) readings() []Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Reading(nil), s.got...)
}

type failingSink struct {
	mu    sync.Mutex
	calls int
}

func (s *failingSink) Publish(ctx context.Context, r Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return errors.New("sink down")
}

func (s *failingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
