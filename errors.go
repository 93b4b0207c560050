package binproto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pior/binproto/charset"
	"github.com/pior/binproto/layout"
)

var (
	// ErrTooManyMalformed is returned by Pump when its breaker opens after
	// too many consecutive chunks with decode errors.
	ErrTooManyMalformed = errors.New("binproto: too many malformed chunks")

	ErrPoolClosed = errors.New("binproto: pool closed")
)

// ArityError is reported when a tuple does not match the shape a protocol
// expects: the wrong number of values, or a value of the wrong type.
type ArityError struct {
	Want int
	Got  int

	// Index and Type describe a value of the wrong type. Type is empty for
	// a count mismatch.
	Index int
	Type  string
}

func (e *ArityError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("binproto: value %d is %s", e.Index, e.Type)
	}
	return fmt.Sprintf("binproto: got %d values, want %d", e.Got, e.Want)
}

// EncodeError is reported when text holds characters the encoding cannot
// represent in strict mode. The whole value is dropped.
type EncodeError struct {
	Encoding string
	Text     string
	Runes    []charset.Unrepresentable
}

func (e *EncodeError) Error() string {
	parts := make([]string, len(e.Runes))
	for i, r := range e.Runes {
		parts[i] = r.String()
	}
	return fmt.Sprintf("binproto: %s cannot encode %s", e.Encoding, strings.Join(parts, ", "))
}

// DecodeError is reported for a byte run that is not valid in the encoding.
//
// Offset is the position of the run in the stream, counted from the first
// byte received since the protocol was created or reset. Truncated is set
// when the stream ended in the middle of a sequence.
type DecodeError struct {
	Encoding  string
	Offset    int64
	Bytes     []byte
	Truncated bool
}

func (e *DecodeError) Error() string {
	what := "invalid"
	if e.Truncated {
		what = "truncated"
	}
	return fmt.Sprintf("binproto: %s %s sequence % x at offset %d-%d",
		what, e.Encoding, e.Bytes, e.Offset, e.Offset+int64(len(e.Bytes)))
}

// LayoutError reports a fixed-width record of the wrong length or a field
// value that does not fit its field.
type LayoutError = layout.Error

// Kind returns the name of the error kind carried by err, or "" when err is
// not one of the protocol error types.
func Kind(err error) string {
	var (
		arityErr  *ArityError
		encodeErr *EncodeError
		decodeErr *DecodeError
		layoutErr *LayoutError
	)
	switch {
	case errors.As(err, &arityErr):
		return "ArityError"
	case errors.As(err, &encodeErr):
		return "EncodeError"
	case errors.As(err, &decodeErr):
		return "DecodeError"
	case errors.As(err, &layoutErr):
		return "LayoutError"
	}
	return ""
}
