package protocol

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// DecodeFunc converts one raw response payload into a typed Value. Decode
// rules are pure, hold no state, and must be total over every payload the
// command's response shape can deliver, failing with DecodeError rather
// than panicking on malformed input.
type DecodeFunc func(raw []byte) (Value, error)

// TextField names one fixed-offset slice of a text response.
type TextField struct {
	Name  string
	Start int
	End   int
}

// DecodeNothing discards the payload. Used by commands whose response
// carries no data.
func DecodeNothing() DecodeFunc {
	return func([]byte) (Value, error) {
		return Value{Kind: KindNone}, nil
	}
}

// DecodeHex renders each byte as two lowercase hex digits, concatenated in
// receive order.
func DecodeHex() DecodeFunc {
	return func(raw []byte) (Value, error) {
		return Value{Kind: KindHex, Text: hex.EncodeToString(raw)}, nil
	}
}

// DecodeText decodes the whole payload as printable ASCII. Trailing NUL,
// space, CR and LF padding is trimmed; any other non-printable byte is a
// DecodeError.
func DecodeText() DecodeFunc {
	return func(raw []byte) (Value, error) {
		s, err := textSlice(raw)
		if err != nil {
			return Value{}, DecodeError{Reason: err.Error()}
		}
		return Value{Kind: KindText, Text: s}, nil
	}
}

// DecodeTextFields slices the payload at fixed offsets and decodes each
// slice as printable ASCII, producing a tuple in field order. A slice that
// falls outside the payload or contains non-printable bytes is a
// DecodeError, never a silent truncation.
func DecodeTextFields(fields ...TextField) DecodeFunc {
	return func(raw []byte) (Value, error) {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			if f.Start < 0 || f.End < f.Start || f.End > len(raw) {
				return Value{}, DecodeError{
					Reason: fmt.Sprintf("%s: slice [%d:%d] outside %d byte payload", f.Name, f.Start, f.End, len(raw)),
				}
			}
			s, err := textSlice(raw[f.Start:f.End])
			if err != nil {
				return Value{}, DecodeError{Reason: fmt.Sprintf("%s: %v", f.Name, err)}
			}
			parts = append(parts, s)
		}
		return Value{Kind: KindTuple, Tuple: parts}, nil
	}
}

// DecodeUintBE decodes the payload as one width-byte big-endian unsigned
// integer.
func DecodeUintBE(width int) DecodeFunc {
	return func(raw []byte) (Value, error) {
		if len(raw) != width {
			return Value{}, DecodeError{
				Reason: fmt.Sprintf("want %d byte(s), got %d", width, len(raw)),
			}
		}
		var v uint64
		for _, b := range raw {
			v = v<<8 | uint64(b)
		}
		return Value{Kind: KindInt, Int: int64(v)}, nil
	}
}

// DecodeAck requires a single acknowledge byte equal to want.
func DecodeAck(want byte) DecodeFunc {
	return func(raw []byte) (Value, error) {
		if len(raw) != 1 {
			return Value{}, DecodeError{
				Reason: fmt.Sprintf("want 1 acknowledge byte, got %d", len(raw)),
			}
		}
		if raw[0] != want {
			return Value{}, DecodeError{
				Reason: fmt.Sprintf("acknowledge byte 0x%02x, want 0x%02x", raw[0], want),
			}
		}
		return Value{Kind: KindNone}, nil
	}
}

// DecodeRaw returns the payload bytes unchanged.
func DecodeRaw() DecodeFunc {
	return func(raw []byte) (Value, error) {
		out := make([]byte, len(raw))
		copy(out, raw)
		return Value{Kind: KindBytes, Bytes: out}, nil
	}
}

// DecodeClock decodes a seven byte date/time block: year (offset from
// 2000), month, day, hour, minute, second, then an acknowledge byte equal
// to ack. Out-of-range calendar fields are a DecodeError.
func DecodeClock(ack byte) DecodeFunc {
	return func(raw []byte) (Value, error) {
		if len(raw) != 7 {
			return Value{}, DecodeError{
				Reason: fmt.Sprintf("want 7 bytes, got %d", len(raw)),
			}
		}
		if raw[6] != ack {
			return Value{}, DecodeError{
				Reason: fmt.Sprintf("trailing byte 0x%02x, want 0x%02x", raw[6], ack),
			}
		}
		yy, mo, dd := int(raw[0]), int(raw[1]), int(raw[2])
		hh, mi, ss := int(raw[3]), int(raw[4]), int(raw[5])
		if mo < 1 || mo > 12 || dd < 1 || dd > 31 || hh > 23 || mi > 59 || ss > 59 {
			return Value{}, DecodeError{
				Reason: fmt.Sprintf("calendar fields out of range: %02d-%02d-%02d %02d:%02d:%02d", yy, mo, dd, hh, mi, ss),
			}
		}
		return Value{
			Kind: KindText,
			Text: fmt.Sprintf("20%02d-%02d-%02d %02d:%02d:%02d", yy, mo, dd, hh, mi, ss),
		}, nil
	}
}

// DecodeTemperature decodes a four byte temperature block: integer part,
// tenths digit, sign flag (non-zero means negative), then an acknowledge
// byte equal to ack.
func DecodeTemperature(ack byte) DecodeFunc {
	return func(raw []byte) (Value, error) {
		if len(raw) != 4 {
			return Value{}, DecodeError{
				Reason: fmt.Sprintf("want 4 bytes, got %d", len(raw)),
			}
		}
		if raw[3] != ack {
			return Value{}, DecodeError{
				Reason: fmt.Sprintf("trailing byte 0x%02x, want 0x%02x", raw[3], ack),
			}
		}
		if raw[1] > 9 {
			return Value{}, DecodeError{
				Reason: fmt.Sprintf("tenths digit %d out of range", raw[1]),
			}
		}
		sign := ""
		if raw[2] != 0 {
			sign = "-"
		}
		return Value{
			Kind: KindText,
			Text: fmt.Sprintf("%s%d.%d", sign, raw[0], raw[1]),
		}, nil
	}
}

// DecodeGyro decodes three big-endian int16 axis readings followed by an
// acknowledge byte equal to ack, producing an (x, y, z) tuple.
func DecodeGyro(ack byte) DecodeFunc {
	return func(raw []byte) (Value, error) {
		if len(raw) != 7 {
			return Value{}, DecodeError{
				Reason: fmt.Sprintf("want 7 bytes, got %d", len(raw)),
			}
		}
		if raw[6] != ack {
			return Value{}, DecodeError{
				Reason: fmt.Sprintf("trailing byte 0x%02x, want 0x%02x", raw[6], ack),
			}
		}
		axes := make([]string, 0, 3)
		for i := 0; i < 6; i += 2 {
			v := int16(binary.BigEndian.Uint16(raw[i : i+2]))
			axes = append(axes, strconv.Itoa(int(v)))
		}
		return Value{Kind: KindTuple, Tuple: axes}, nil
	}
}

func textSlice(raw []byte) (string, error) {
	trimmed := strings.TrimRight(string(raw), "\x00 \r\n")
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if c < 0x20 || c > 0x7e {
			return "", fmt.Errorf("byte 0x%02x at offset %d is not printable text", c, i)
		}
	}
	return trimmed, nil
}
