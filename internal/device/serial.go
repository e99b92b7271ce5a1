package device

import (
	"context"
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/cloudchamber-io/geigerctl/internal/protocol/session"
)

// DefaultBaud matches the factory setting of every GQ instrument made
// since the GMC-300E.
const DefaultBaud = 115200

// SerialConfig describes one local serial attachment.
type SerialConfig struct {
	Port string
	Baud int
}

// SerialTransport speaks to a device over a local serial port, 8N1.
type SerialTransport struct {
	port serial.Port
	name string
}

func OpenSerial(cfg SerialConfig) (*SerialTransport, error) {
	if cfg.Baud <= 0 {
		cfg.Baud = DefaultBaud
	}
	mode := &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("device: open %s: %w", cfg.Port, err)
	}
	return &SerialTransport{port: port, name: cfg.Port}, nil
}

// Send drops stale input before writing so the next read starts at the
// response's first byte.
func (t *SerialTransport) Send(ctx context.Context, p []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("device: reset input %s: %w", t.name, err)
	}
	if _, err := t.port.Write(p); err != nil {
		return fmt.Errorf("device: write %s: %w", t.name, err)
	}
	return nil
}

// Receive reads whatever the port delivers before the context deadline.
// The port library reports an expired read timeout as a zero length read.
func (t *SerialTransport) Receive(ctx context.Context, p []byte) (int, error) {
	window := time.Second
	if deadline, ok := ctx.Deadline(); ok {
		window = time.Until(deadline)
		if window <= 0 {
			return 0, session.ErrReceiveTimeout
		}
	}
	if err := t.port.SetReadTimeout(window); err != nil {
		return 0, fmt.Errorf("device: set read timeout %s: %w", t.name, err)
	}
	n, err := t.port.Read(p)
	if err != nil {
		return n, fmt.Errorf("device: read %s: %w", t.name, err)
	}
	if n == 0 {
		return 0, session.ErrReceiveTimeout
	}
	return n, nil
}

func (t *SerialTransport) Close() error {
	return t.port.Close()
}

// ListPorts returns the serial ports visible on this host.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
