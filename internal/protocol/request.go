package protocol

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ArgKind tags how one call-time argument is validated and placed on the
// wire.
type ArgKind uint8

const (
	ArgUint8 ArgKind = iota
	ArgUint16
	ArgUint24
	ArgChoice
)

// ArgSpec declares one required call-time argument. Numeric kinds accept
// decimal or 0x-prefixed input and are written big-endian at their kind's
// width. Choice kinds map an accepted token to its wire text.
type ArgSpec struct {
	Name    string
	Kind    ArgKind
	Max     uint32
	Choices map[string]string
}

type requestKind uint8

const (
	requestStatic requestKind = iota
	requestBinary
	requestChoice
)

// Request describes how a command and its arguments become wire bytes. The
// device envelope is an ASCII opcode opened with '<' and closed with ">>",
// with raw argument bytes or mapped choice text between prefix and close.
type Request struct {
	kind   requestKind
	opcode string
	specs  []ArgSpec
}

// StaticRequest is a complete fixed opcode with no arguments, e.g.
// "<GETVER>>".
func StaticRequest(opcode string) Request {
	return Request{kind: requestStatic, opcode: opcode}
}

// BinaryRequest writes one big-endian byte group per argument between the
// opcode prefix and the closing ">>", e.g. "<WCFG" + address + value + ">>".
func BinaryRequest(prefix string, specs ...ArgSpec) Request {
	return Request{kind: requestBinary, opcode: prefix, specs: specs}
}

// ChoiceRequest writes the wire text mapped from a single enumerated
// argument, e.g. "<POWER" + "ON" + ">>".
func ChoiceRequest(prefix string, spec ArgSpec) Request {
	return Request{kind: requestChoice, opcode: prefix, specs: []ArgSpec{spec}}
}

func (r Request) arity() int {
	return len(r.specs)
}

func (r Request) validate() error {
	switch r.kind {
	case requestStatic:
		if !strings.HasPrefix(r.opcode, "<") || !strings.HasSuffix(r.opcode, ">>") {
			return fmt.Errorf("%w: opcode %q", ErrMalformedRequest, r.opcode)
		}
		if len(r.specs) != 0 {
			return fmt.Errorf("%w: static opcode %q takes no arguments", ErrMalformedRequest, r.opcode)
		}
	case requestBinary, requestChoice:
		if !strings.HasPrefix(r.opcode, "<") || strings.HasSuffix(r.opcode, ">>") {
			return fmt.Errorf("%w: opcode prefix %q", ErrMalformedRequest, r.opcode)
		}
		for _, spec := range r.specs {
			if strings.TrimSpace(spec.Name) == "" {
				return fmt.Errorf("%w: unnamed argument on %q", ErrMalformedRequest, r.opcode)
			}
			switch {
			case r.kind == requestChoice && spec.Kind != ArgChoice:
				return fmt.Errorf("%w: argument %s of %q must be a choice", ErrMalformedRequest, spec.Name, r.opcode)
			case r.kind == requestBinary && spec.Kind == ArgChoice:
				return fmt.Errorf("%w: argument %s of %q cannot be a choice", ErrMalformedRequest, spec.Name, r.opcode)
			}
			if spec.Kind == ArgChoice && len(spec.Choices) == 0 {
				return fmt.Errorf("%w: argument %s of %q has no choices", ErrMalformedRequest, spec.Name, r.opcode)
			}
		}
	default:
		return ErrMalformedRequest
	}
	return nil
}

func (r Request) encode(command string, args []string) ([]byte, error) {
	if len(args) != len(r.specs) {
		return nil, ArgumentError{
			Command: command,
			Reason:  fmt.Sprintf("want %d argument(s), got %d", len(r.specs), len(args)),
		}
	}
	switch r.kind {
	case requestStatic:
		return []byte(r.opcode), nil
	case requestBinary:
		buf := []byte(r.opcode)
		for i, spec := range r.specs {
			wire, err := spec.wireBytes(command, args[i])
			if err != nil {
				return nil, err
			}
			buf = append(buf, wire...)
		}
		return append(buf, ">>"...), nil
	case requestChoice:
		spec := r.specs[0]
		token := strings.ToLower(strings.TrimSpace(args[0]))
		wire, ok := spec.Choices[token]
		if !ok {
			return nil, ArgumentError{
				Command: command,
				Reason:  fmt.Sprintf("%s must be one of %s", spec.Name, spec.choiceList()),
			}
		}
		buf := append([]byte(r.opcode), wire...)
		return append(buf, ">>"...), nil
	}
	return nil, ArgumentError{Command: command, Reason: "unknown request form"}
}

func (s ArgSpec) wireBytes(command, raw string) ([]byte, error) {
	var bits int
	switch s.Kind {
	case ArgUint8:
		bits = 8
	case ArgUint16:
		bits = 16
	case ArgUint24:
		bits = 24
	default:
		return nil, ArgumentError{
			Command: command,
			Reason:  fmt.Sprintf("%s is not numeric", s.Name),
		}
	}
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 0, bits)
	if err != nil {
		return nil, ArgumentError{
			Command: command,
			Reason:  fmt.Sprintf("%s: %q is not an unsigned %d-bit value", s.Name, raw, bits),
		}
	}
	if s.Max > 0 && v > uint64(s.Max) {
		return nil, ArgumentError{
			Command: command,
			Reason:  fmt.Sprintf("%s: %d exceeds maximum %d", s.Name, v, s.Max),
		}
	}
	switch s.Kind {
	case ArgUint8:
		return []byte{byte(v)}, nil
	case ArgUint16:
		return []byte{byte(v >> 8), byte(v)}, nil
	default:
		return []byte{byte(v >> 16), byte(v >> 8), byte(v)}, nil
	}
}

func (s ArgSpec) choiceList() string {
	tokens := make([]string, 0, len(s.Choices))
	for token := range s.Choices {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return strings.Join(tokens, "|")
}
