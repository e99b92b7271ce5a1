package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cloudchamber-io/geigerctl/internal/protocol"
)

func (s *Session) read(ctx context.Context, cmd protocol.Command) ([]byte, error) {
	switch shape := cmd.Shape().(type) {
	case protocol.FixedBytes:
		if shape.N == 0 {
			return nil, nil
		}
		return s.readFixed(ctx, cmd.Name(), shape.N)
	case protocol.UntilTerminator:
		return s.readUntilTerminator(ctx, cmd.Name(), shape)
	case protocol.UntilIdle:
		return s.readUntilIdle(ctx, cmd.Name(), shape)
	default:
		return nil, fmt.Errorf("session: %s: unknown response shape %T", cmd.Name(), shape)
	}
}

func (s *Session) readFixed(ctx context.Context, name string, n int) ([]byte, error) {
	readCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	buf := make([]byte, n)
	got := 0
	for got < n {
		r, err := s.transport.Receive(readCtx, buf[got:])
		got += r
		if err != nil {
			if !errors.Is(err, ErrReceiveTimeout) {
				return nil, TransportError{Op: "receive", Err: err}
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, TransportError{Op: "receive", Err: ctxErr}
			}
			return nil, ResponseShapeError{
				Command: name,
				Reason:  fmt.Sprintf("fixed response ended after %d of %d bytes", got, n),
				Timeout: got == 0,
			}
		}
	}
	return buf, nil
}

func (s *Session) readUntilTerminator(ctx context.Context, name string, shape protocol.UntilTerminator) ([]byte, error) {
	limit := s.responseLimit(shape.Max)
	readCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	buf := make([]byte, 0, 64)
	chunk := make([]byte, 256)
	for {
		r, err := s.transport.Receive(readCtx, chunk)
		buf = append(buf, chunk[:r]...)
		if i := bytes.Index(buf, shape.Delim); i >= 0 {
			if extra := len(buf) - i - len(shape.Delim); extra > 0 {
				s.log.Warn().Str("command", name).Int("bytes", extra).Msg("discarding data after terminator")
			}
			return buf[:i], nil
		}
		if err != nil {
			if !errors.Is(err, ErrReceiveTimeout) {
				return nil, TransportError{Op: "receive", Err: err}
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, TransportError{Op: "receive", Err: ctxErr}
			}
			return nil, ResponseShapeError{
				Command: name,
				Reason:  fmt.Sprintf("terminator % x missing after %d bytes", shape.Delim, len(buf)),
				Timeout: len(buf) == 0,
			}
		}
		if len(buf) > limit {
			return nil, ResponseShapeError{
				Command: name,
				Reason:  fmt.Sprintf("response exceeded %d bytes before terminator", limit),
			}
		}
	}
}

func (s *Session) readUntilIdle(ctx context.Context, name string, shape protocol.UntilIdle) ([]byte, error) {
	window := shape.Window
	if window <= 0 {
		window = s.cfg.IdleWindow
	}
	limit := s.responseLimit(shape.Max)

	buf := make([]byte, 0, 64)
	chunk := make([]byte, 512)
	wait := s.cfg.ReadTimeout
	for {
		readCtx, cancel := context.WithTimeout(ctx, wait)
		r, err := s.transport.Receive(readCtx, chunk)
		cancel()
		buf = append(buf, chunk[:r]...)
		if err != nil {
			if !errors.Is(err, ErrReceiveTimeout) {
				return nil, TransportError{Op: "receive", Err: err}
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, TransportError{Op: "receive", Err: ctxErr}
			}
			if len(buf) == 0 {
				return nil, ResponseShapeError{
					Command: name,
					Reason:  fmt.Sprintf("no response within %s", s.cfg.ReadTimeout),
					Timeout: true,
				}
			}
			return buf, nil
		}
		if len(buf) > limit {
			return nil, ResponseShapeError{
				Command: name,
				Reason:  fmt.Sprintf("response exceeded %d bytes without going idle", limit),
			}
		}
		wait = window
	}
}

// responseLimit clamps a shape's declared maximum to the session cap.
func (s *Session) responseLimit(max int) int {
	if max <= 0 || max > s.cfg.MaxResponseBytes {
		return s.cfg.MaxResponseBytes
	}
	return max
}
