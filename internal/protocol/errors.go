package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrNoCommandName    = errors.New("protocol: command name required")
	ErrNoDecodeRule     = errors.New("protocol: decode rule required")
	ErrNoResponseShape  = errors.New("protocol: response shape required")
	ErrNegativeCount    = errors.New("protocol: negative fixed response length")
	ErrEmptyDelimiter   = errors.New("protocol: empty terminator delimiter")
	ErrNoCatalogLabel   = errors.New("protocol: catalog label required")
	ErrMalformedRequest = errors.New("protocol: malformed request descriptor")
)

// ArgumentError reports call arguments rejected before any bytes were sent.
type ArgumentError struct {
	Command string
	Reason  string
}

func (e ArgumentError) Error() string {
	return fmt.Sprintf("protocol: %s: argument: %s", e.Command, e.Reason)
}

// DecodeError reports response bytes that did not match the structure the
// command's decode rule expects.
type DecodeError struct {
	Command string
	Reason  string
}

func (e DecodeError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("protocol: decode: %s", e.Reason)
	}
	return fmt.Sprintf("protocol: %s: decode: %s", e.Command, e.Reason)
}

// UnsupportedCommandError reports a lookup of a command absent from a
// catalog revision.
type UnsupportedCommandError struct {
	Label   string
	Command string
}

func (e UnsupportedCommandError) Error() string {
	return fmt.Sprintf("protocol: %s does not define command %q", e.Label, e.Command)
}

// DefinitionConflictError reports a malformed catalog construction or
// extension. It is only produced while catalogs are being built.
type DefinitionConflictError struct {
	Label   string
	Command string
	Reason  string
}

func (e DefinitionConflictError) Error() string {
	return fmt.Sprintf("protocol: %s: definition conflict on %q: %s", e.Label, e.Command, e.Reason)
}
