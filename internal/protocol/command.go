package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// Command is one immutable request/response definition for a device
// operation. Identity is by name within a CommandSet; definitions never
// change after construction, so Commands are safely shared by reference
// across sessions.
type Command struct {
	name   string
	help   string
	req    Request
	shape  ResponseShape
	decode DecodeFunc
}

// NewCommand validates and builds a command definition.
func NewCommand(name, help string, req Request, shape ResponseShape, decode DecodeFunc) (Command, error) {
	if strings.TrimSpace(name) == "" {
		return Command{}, ErrNoCommandName
	}
	if err := req.validate(); err != nil {
		return Command{}, fmt.Errorf("command %s: %w", name, err)
	}
	if err := validateShape(shape); err != nil {
		return Command{}, fmt.Errorf("command %s: %w", name, err)
	}
	if decode == nil {
		return Command{}, fmt.Errorf("command %s: %w", name, ErrNoDecodeRule)
	}
	return Command{name: name, help: help, req: req, shape: shape, decode: decode}, nil
}

// MustCommand is NewCommand for static catalog tables; an invalid
// definition panics at package initialization.
func MustCommand(name, help string, req Request, shape ResponseShape, decode DecodeFunc) Command {
	cmd, err := NewCommand(name, help, req, shape, decode)
	if err != nil {
		panic(err)
	}
	return cmd
}

// Name returns the command identifier.
func (c Command) Name() string { return c.name }

// Help returns the one-line description.
func (c Command) Help() string { return c.help }

// Arity returns the number of required call-time arguments.
func (c Command) Arity() int { return c.req.arity() }

// Args returns a copy of the argument schema, nil when the command takes
// no arguments.
func (c Command) Args() []ArgSpec {
	if len(c.req.specs) == 0 {
		return nil
	}
	out := make([]ArgSpec, len(c.req.specs))
	copy(out, c.req.specs)
	return out
}

// Shape returns the response shape.
func (c Command) Shape() ResponseShape { return c.shape }

// Encode validates args against the argument schema and returns the
// request bytes. It fails with ArgumentError before any I/O happens.
func (c Command) Encode(args ...string) ([]byte, error) {
	return c.req.encode(c.name, args)
}

// Decode applies the command's decode rule to one raw response payload.
func (c Command) Decode(raw []byte) (Value, error) {
	v, err := c.decode(raw)
	if err != nil {
		var derr DecodeError
		if errors.As(err, &derr) && derr.Command == "" {
			derr.Command = c.name
			return Value{}, derr
		}
		return Value{}, err
	}
	return v, nil
}
