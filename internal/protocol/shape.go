package protocol

import (
	"fmt"
	"time"
)

// ResponseShape describes how many bytes constitute one command response,
// independent of what those bytes mean.
type ResponseShape interface {
	fmt.Stringer
	responseShape()
}

// FixedBytes reads exactly N bytes. N of zero means the command sends no
// response and the read phase is skipped entirely.
type FixedBytes struct {
	N int
}

// UntilTerminator accumulates bytes until the trailing bytes equal Delim.
// The delimiter is consumed and stripped from the payload. Max, when
// positive, bounds the accumulated size before the session default applies.
type UntilTerminator struct {
	Delim []byte
	Max   int
}

// UntilIdle accumulates bytes until a window of Window elapses with no new
// data. A zero Window defers to the session's configured idle window. Max,
// when positive, bounds the accumulated size; commands with known variable
// output document their observed maximum here.
type UntilIdle struct {
	Window time.Duration
	Max    int
}

func (FixedBytes) responseShape()      {}
func (UntilTerminator) responseShape() {}
func (UntilIdle) responseShape()       {}

func (s FixedBytes) String() string {
	if s.N == 1 {
		return "1 byte"
	}
	return fmt.Sprintf("%d bytes", s.N)
}

func (s UntilTerminator) String() string {
	return fmt.Sprintf("until terminator % x", s.Delim)
}

func (s UntilIdle) String() string {
	return "until idle"
}

func validateShape(s ResponseShape) error {
	switch v := s.(type) {
	case FixedBytes:
		if v.N < 0 {
			return ErrNegativeCount
		}
	case UntilTerminator:
		if len(v.Delim) == 0 {
			return ErrEmptyDelimiter
		}
	case UntilIdle:
	case nil:
		return ErrNoResponseShape
	default:
		return fmt.Errorf("protocol: unknown response shape %T", s)
	}
	return nil
}
