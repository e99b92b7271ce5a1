package device

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/cloudchamber-io/geigerctl/internal/protocol/session"
)

// TCPConfig describes one serial-over-TCP bridge attachment, the kind a
// ser2net gateway or a counter's own WiFi module exposes.
type TCPConfig struct {
	Address     string
	DialTimeout time.Duration
}

// TCPTransport forwards the raw byte stream over a bridge connection.
type TCPTransport struct {
	conn net.Conn
}

func DialTCP(ctx context.Context, cfg TCPConfig) (*TCPTransport, error) {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	dialer := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("device: dial %s: %w", cfg.Address, err)
	}
	return &TCPTransport{conn: conn}, nil
}

func (t *TCPTransport) Send(ctx context.Context, p []byte) error {
	if err := t.conn.SetWriteDeadline(ctxDeadline(ctx)); err != nil {
		return err
	}
	_, err := t.conn.Write(p)
	return err
}

func (t *TCPTransport) Receive(ctx context.Context, p []byte) (int, error) {
	if err := t.conn.SetReadDeadline(ctxDeadline(ctx)); err != nil {
		return 0, err
	}
	n, err := t.conn.Read(p)
	if n > 0 {
		return n, nil
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return 0, session.ErrReceiveTimeout
	}
	return 0, err
}

func (t *TCPTransport) Close() error {
	return t.conn.Close()
}

func ctxDeadline(ctx context.Context) time.Time {
	if deadline, ok := ctx.Deadline(); ok {
		return deadline
	}
	return time.Time{}
}
