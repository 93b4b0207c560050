package binproto

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pior/binproto/charset"
	"github.com/pior/binproto/internal"
	"github.com/pior/binproto/queue"
)

// Mode selects how a Text protocol handles data the encoding cannot carry.
type Mode string

const (
	// Strict reports the error and drops the offending unit.
	Strict Mode = "strict"

	// Replace substitutes a placeholder and continues: U+FFFD when
	// decoding, the encoding's '?' when encoding.
	Replace Mode = "replace"
)

// ParseMode parses "strict" or "replace". An empty string is Strict.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Strict:
		return Strict, nil
	case Replace, "substitute":
		return Replace, nil
	}
	return "", fmt.Errorf("binproto: unknown error mode %q", s)
}

// TextConfig configures a Text protocol.
type TextConfig struct {
	// Encoding is any name charset.Lookup resolves. Defaults to utf-8.
	Encoding string

	// EncodeErrors and DecodeErrors select the error mode per direction.
	// Default: Strict.
	EncodeErrors Mode
	DecodeErrors Mode

	// QueueCapacity bounds each result queue. Default: 100.
	QueueCapacity int

	// Reporter receives recovered errors. Default: DefaultReporter().
	Reporter Reporter
}

// DefaultTextConfig returns the configuration used for zero fields.
func DefaultTextConfig() TextConfig {
	return TextConfig{
		Encoding:      "utf-8",
		EncodeErrors:  Strict,
		DecodeErrors:  Strict,
		QueueCapacity: queue.DefaultCapacity,
	}
}

var textBuffers = internal.NewByteBufferPool(256)

// Text is a streaming protocol for character-encoded strings. Tuples hold
// exactly one string.
//
// Inbound chunks may split a multi-byte character anywhere. When a chunk
// ends with a sequence that more bytes could still complete, those bytes are
// held back and prepended to the next chunk. A sequence that can never
// become valid is reported (Strict) or replaced with U+FFFD (Replace), and
// decoding resumes right after it.
type Text struct {
	queues

	codec      charset.Codec
	encodeMode Mode
	decodeMode Mode

	pending  []byte
	received int64 // stream bytes seen since creation or Reset
}

var _ Protocol = (*Text)(nil)

// NewText creates a Text protocol. It fails for an unknown encoding name or
// error mode.
func NewText(cfg TextConfig) (*Text, error) {
	codec, err := charset.Lookup(cfg.Encoding)
	if err != nil {
		return nil, fmt.Errorf("binproto: %w", err)
	}
	encodeMode, err := ParseMode(string(cfg.EncodeErrors))
	if err != nil {
		return nil, err
	}
	decodeMode, err := ParseMode(string(cfg.DecodeErrors))
	if err != nil {
		return nil, err
	}

	return &Text{
		queues:     newQueues(cfg.QueueCapacity, cfg.Reporter),
		codec:      codec,
		encodeMode: encodeMode,
		decodeMode: decodeMode,
	}, nil
}

// Encoding returns the canonical name of the configured encoding.
func (t *Text) Encoding() string { return t.codec.Name() }

// Pending returns the number of bytes held back waiting for more input.
func (t *Text) Pending() int { return len(t.pending) }

// ProcessOutbound encodes Tuple{string} and enqueues the bytes.
func (t *Text) ProcessOutbound(values Tuple) {
	t.stats.recordOutbound()

	if len(values) != 1 {
		t.report(&ArityError{Want: 1, Got: len(values)})
		return
	}
	s, ok := values[0].(string)
	if !ok {
		t.report(&ArityError{Want: 1, Got: 1, Index: 0, Type: fmt.Sprintf("%T, want string", values[0])})
		return
	}

	b, err := t.Encode(s)
	if err != nil {
		t.report(err)
		return
	}
	t.submitSerialised(b)
}

// Encode encodes s as a whole value, without touching the queues.
func (t *Text) Encode(s string) ([]byte, error) {
	out, bad := t.codec.Encode(nil, s, t.encodeMode == Replace)
	if len(bad) > 0 && t.encodeMode == Strict {
		return nil, &EncodeError{Encoding: t.codec.Name(), Text: s, Runes: bad}
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

// ProcessInbound decodes data, together with any bytes held back from the
// previous call, and enqueues the decoded text. An empty chunk is a no-op.
func (t *Text) ProcessInbound(data []byte) {
	if len(data) == 0 {
		return
	}
	t.stats.recordInbound(len(data))

	buf := data
	if len(t.pending) > 0 {
		buf = append(t.pending, data...)
		t.pending = nil
	}
	base := t.received + int64(len(data)) - int64(len(buf))
	t.received += int64(len(data))

	if t.decodeMode == Replace {
		t.decodeReplace(buf)
	} else {
		t.decodeStrict(buf, base)
	}
}

// decodeStrict enqueues every valid run as its own tuple and reports every
// invalid run between them. A truncated tail is held back.
func (t *Text) decodeStrict(buf []byte, base int64) {
	for pos := 0; pos < len(buf); {
		span := t.codec.Scan(buf[pos:])
		if span.Valid > 0 {
			t.submitDeserialised(Tuple{span.Text})
		}
		if span.Invalid == 0 {
			return
		}

		start := pos + span.Valid
		if span.Truncated {
			t.pending = bytes.Clone(buf[start:])
			return
		}

		end := start + span.Invalid
		t.report(&DecodeError{
			Encoding: t.codec.Name(),
			Offset:   base + int64(start),
			Bytes:    bytes.Clone(buf[start:end]),
		})
		pos = end
	}
}

// decodeReplace enqueues the whole buffer as one tuple with U+FFFD in place
// of every invalid run. A truncated tail is still held back.
func (t *Text) decodeReplace(buf []byte) {
	sb := textBuffers.Get()
	defer textBuffers.Put(sb)

	for pos := 0; pos < len(buf); {
		span := t.codec.Scan(buf[pos:])
		sb.WriteString(span.Text)
		if span.Invalid == 0 {
			break
		}

		start := pos + span.Valid
		if span.Truncated {
			t.pending = bytes.Clone(buf[start:])
			break
		}

		sb.WriteRune(utf8.RuneError)
		t.stats.recordReplacement()
		pos = start + span.Invalid
	}

	if sb.Len() > 0 {
		t.submitDeserialised(Tuple{sb.String()})
	}
}

// Flush ends the stream. Held-back bytes are reported as a truncated
// sequence (Strict) or enqueued as a single U+FFFD (Replace).
func (t *Text) Flush() {
	if len(t.pending) == 0 {
		return
	}
	tail := t.pending
	t.pending = nil

	if t.decodeMode == Replace {
		t.stats.recordReplacement()
		t.submitDeserialised(Tuple{string(utf8.RuneError)})
		return
	}
	t.report(&DecodeError{
		Encoding:  t.codec.Name(),
		Offset:    t.received - int64(len(tail)),
		Bytes:     tail,
		Truncated: true,
	})
}

// Decode decodes data as a complete value, without touching the queues or
// the held-back bytes. In Strict mode the first invalid or truncated
// sequence is returned as a *DecodeError.
func (t *Text) Decode(data []byte) (string, error) {
	sb := textBuffers.Get()
	defer textBuffers.Put(sb)

	for pos := 0; pos < len(data); {
		span := t.codec.Scan(data[pos:])
		sb.WriteString(span.Text)
		if span.Invalid == 0 {
			break
		}

		start := pos + span.Valid
		if t.decodeMode == Strict {
			return "", &DecodeError{
				Encoding:  t.codec.Name(),
				Offset:    int64(start),
				Bytes:     bytes.Clone(data[start : start+span.Invalid]),
				Truncated: span.Truncated,
			}
		}
		sb.WriteRune(utf8.RuneError)
		pos = start + span.Invalid
	}
	return sb.String(), nil
}

// Reset drops queued results and held-back bytes and restarts stream
// offsets at zero. Counters are kept.
func (t *Text) Reset() {
	t.clear()
	t.pending = nil
	t.received = 0
}
