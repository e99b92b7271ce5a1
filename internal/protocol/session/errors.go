package session

import (
	"errors"
	"fmt"
)

var (
	ErrSessionClosed = errors.New("session: closed")

	// ErrReceiveTimeout is returned by transports when the receive
	// deadline elapses before any byte arrives.
	ErrReceiveTimeout = errors.New("session: receive timeout")
)

// TransportError wraps a send or receive failure of the underlying link.
// The exchange outcome is unknown to the caller: the device may have
// executed the command even though its answer was lost.
type TransportError struct {
	Op  string
	Err error
}

func (e TransportError) Error() string {
	return fmt.Sprintf("session: transport %s: %v", e.Op, e.Err)
}

func (e TransportError) Unwrap() error { return e.Err }

// ResponseShapeError reports a response that violated the command's
// declared shape: too short, too long, or missing its terminator.
// Timeout marks the case where the device never answered at all.
type ResponseShapeError struct {
	Command string
	Reason  string
	Timeout bool
}

func (e ResponseShapeError) Error() string {
	return fmt.Sprintf("session: %s: response: %s", e.Command, e.Reason)
}
