// Package layout compiles ordered (kind, length) field descriptors into a
// fixed-width, big-endian record layout and packs or unpacks records with it.
//
// Supported kinds and lengths:
//
//	int   1, 2, 4, 8   two's complement, decoded as int64
//	uint  1, 2, 4, 8   decoded as uint64
//	bool  1            non-zero byte is true
//	float 4, 8         IEEE 754, decoded as float32 or float64
//	bytes any > 0      raw bytes, zero-padded on pack
//
// Any other combination, including an unknown kind, is compiled as a raw
// bytes field of the given length. A compiled Layout is immutable and safe
// for concurrent use.
package layout

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind names the type of a field.
type Kind string

const (
	Int   Kind = "int"
	Uint  Kind = "uint"
	Bool  Kind = "bool"
	Float Kind = "float"
	Bytes Kind = "bytes"
)

// Field is one (kind, length) descriptor.
type Field struct {
	Kind   Kind
	Length int
}

func (f Field) String() string {
	return string(f.Kind) + strconv.Itoa(f.Length)
}

// resolve returns the kind the field is actually encoded as.
func (f Field) resolve() Kind {
	switch f.Kind {
	case Bool:
		if f.Length == 1 {
			return Bool
		}
	case Float:
		if f.Length == 4 || f.Length == 8 {
			return Float
		}
	case Int, Uint:
		switch f.Length {
		case 1, 2, 4, 8:
			return f.Kind
		}
	}
	return Bytes
}

type slot struct {
	kind   Kind
	length int
	offset int
}

// Layout is a compiled record layout.
type Layout struct {
	fields []Field
	slots  []slot
	size   int
}

// Compile builds a layout from descriptors. Lengths must be positive.
func Compile(fields []Field) (*Layout, error) {
	l := &Layout{
		fields: append([]Field(nil), fields...),
		slots:  make([]slot, len(fields)),
	}
	for i, f := range fields {
		if f.Length <= 0 {
			return nil, &Error{Field: i, Kind: f.Kind, Reason: fmt.Sprintf("length %d is not positive", f.Length)}
		}
		l.slots[i] = slot{kind: f.resolve(), length: f.Length, offset: l.size}
		l.size += f.Length
	}
	return l, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(fields []Field) *Layout {
	l, err := Compile(fields)
	if err != nil {
		panic(err)
	}
	return l
}

// Size returns the record length in bytes.
func (l *Layout) Size() int { return l.size }

// Len returns the number of fields.
func (l *Layout) Len() int { return len(l.slots) }

// Kind returns the kind field i is encoded as, after fallback to Bytes.
func (l *Layout) Kind(i int) Kind { return l.slots[i].kind }

// Fields returns a copy of the descriptors the layout was compiled from.
func (l *Layout) Fields() []Field {
	return append([]Field(nil), l.fields...)
}

// String renders the effective layout, e.g. "uint4,bool1,bytes3".
func (l *Layout) String() string {
	parts := make([]string, len(l.slots))
	for i, s := range l.slots {
		parts[i] = Field{Kind: s.kind, Length: s.length}.String()
	}
	return strings.Join(parts, ",")
}

// Pack encodes one value per field. Nothing is returned on error.
func (l *Layout) Pack(values []any) ([]byte, error) {
	if len(values) != len(l.slots) {
		return nil, &Error{Field: -1, Reason: fmt.Sprintf("got %d values, want %d", len(values), len(l.slots))}
	}
	out := make([]byte, l.size)
	for i, s := range l.slots {
		if err := s.pack(out[s.offset:s.offset+s.length], values[i]); err != nil {
			err.Field = i
			return nil, err
		}
	}
	return out, nil
}

// Unpack decodes a record. data must be exactly Size bytes long.
func (l *Layout) Unpack(data []byte) ([]any, error) {
	if len(data) != l.size {
		return nil, &Error{Field: -1, Reason: fmt.Sprintf("record is %d bytes, want %d", len(data), l.size)}
	}
	values := make([]any, len(l.slots))
	for i, s := range l.slots {
		values[i] = s.unpack(data[s.offset : s.offset+s.length])
	}
	return values, nil
}

func (s slot) pack(dst []byte, v any) *Error {
	fail := func(format string, args ...any) *Error {
		return &Error{Kind: s.kind, Reason: fmt.Sprintf(format, args...)}
	}

	switch s.kind {
	case Int:
		n, ok := asInt64(v)
		if !ok {
			return fail("%T is not an integer", v)
		}
		bits := uint(8 * s.length)
		if bits < 64 && (n < -1<<(bits-1) || n >= 1<<(bits-1)) {
			return fail("%d overflows %d-byte signed integer", n, s.length)
		}
		putUint(dst, uint64(n))

	case Uint:
		n, ok := asUint64(v)
		if !ok {
			return fail("%v is not a non-negative integer", v)
		}
		bits := uint(8 * s.length)
		if bits < 64 && n >= 1<<bits {
			return fail("%d overflows %d-byte unsigned integer", n, s.length)
		}
		putUint(dst, n)

	case Bool:
		b, ok := v.(bool)
		if !ok {
			return fail("%T is not a bool", v)
		}
		if b {
			dst[0] = 1
		}

	case Float:
		f, ok := asFloat64(v)
		if !ok {
			return fail("%T is not a number", v)
		}
		if s.length == 4 {
			if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
				return fail("%g overflows float32", f)
			}
			binary.BigEndian.PutUint32(dst, math.Float32bits(float32(f)))
		} else {
			binary.BigEndian.PutUint64(dst, math.Float64bits(f))
		}

	default:
		var raw []byte
		switch b := v.(type) {
		case []byte:
			raw = b
		case string:
			raw = []byte(b)
		default:
			return fail("%T is not bytes", v)
		}
		if len(raw) > s.length {
			return fail("%d bytes do not fit in %d", len(raw), s.length)
		}
		copy(dst, raw)
	}
	return nil
}

func (s slot) unpack(src []byte) any {
	switch s.kind {
	case Int:
		switch s.length {
		case 1:
			return int64(int8(src[0]))
		case 2:
			return int64(int16(binary.BigEndian.Uint16(src)))
		case 4:
			return int64(int32(binary.BigEndian.Uint32(src)))
		default:
			return int64(binary.BigEndian.Uint64(src))
		}
	case Uint:
		return getUint(src)
	case Bool:
		return src[0] != 0
	case Float:
		if s.length == 4 {
			return math.Float32frombits(binary.BigEndian.Uint32(src))
		}
		return math.Float64frombits(binary.BigEndian.Uint64(src))
	default:
		return append([]byte(nil), src...)
	}
}

func putUint(dst []byte, n uint64) {
	switch len(dst) {
	case 1:
		dst[0] = byte(n)
	case 2:
		binary.BigEndian.PutUint16(dst, uint16(n))
	case 4:
		binary.BigEndian.PutUint32(dst, uint32(n))
	default:
		binary.BigEndian.PutUint64(dst, n)
	}
}

func getUint(src []byte) uint64 {
	switch len(src) {
	case 1:
		return uint64(src[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(src))
	case 4:
		return uint64(binary.BigEndian.Uint32(src))
	default:
		return binary.BigEndian.Uint64(src)
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func asUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	}
	n, ok := asInt64(v)
	if !ok || n < 0 {
		return 0, false
	}
	return uint64(n), true
}

func asFloat64(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	}
	if n, ok := asInt64(v); ok {
		return float64(n), true
	}
	if n, ok := asUint64(v); ok {
		return float64(n), true
	}
	return 0, false
}

// ParseFields reads a comma separated descriptor list such as
// "uint:4,bool:1,bytes:16".
func ParseFields(s string) ([]Field, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	fields := make([]Field, 0, len(parts))
	for i, p := range parts {
		rawKind, length, ok := strings.Cut(strings.TrimSpace(p), ":")
		if !ok {
			return nil, &Error{Field: i, Reason: fmt.Sprintf("descriptor %q is not kind:length", p)}
		}
		kind := Kind(strings.ToLower(strings.TrimSpace(rawKind)))
		n, err := strconv.Atoi(strings.TrimSpace(length))
		if err != nil {
			return nil, &Error{Field: i, Kind: kind, Reason: "length is not a number", Err: err}
		}
		fields = append(fields, Field{Kind: kind, Length: n})
	}
	return fields, nil
}
