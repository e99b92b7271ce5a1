package protocol

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// Kind tags the concrete result type carried by a Value.
type Kind uint8

const (
	KindNone Kind = iota
	KindText
	KindHex
	KindTuple
	KindInt
	KindBytes
)

// Value is one decoded command response. Exactly the field selected by Kind
// is meaningful; every command's decode rule fixes its Kind at definition
// time.
type Value struct {
	Kind  Kind
	Text  string
	Tuple []string
	Int   int64
	Bytes []byte
}

// String renders the value for display. None renders as "ok" because the
// device acknowledged without data.
func (v Value) String() string {
	switch v.Kind {
	case KindText, KindHex:
		return v.Text
	case KindTuple:
		return strings.Join(v.Tuple, " ")
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindBytes:
		return hex.EncodeToString(v.Bytes)
	default:
		return "ok"
	}
}
