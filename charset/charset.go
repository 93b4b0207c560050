// Package charset resolves character encodings by name and exposes them
// through a strict, position-aware Codec interface.
//
// Codecs never substitute on their own while decoding: Scan stops at the
// first invalid run and says whether that run might still be completed by
// more input. This is what lets a streaming decoder tell "not enough bytes
// yet" apart from "malformed".
package charset

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

var (
	// ErrUnknownEncoding is returned by Lookup when no codec matches a name.
	ErrUnknownEncoding = errors.New("charset: unknown encoding")

	// ErrStatefulEncoding is returned by Lookup for encodings whose meaning
	// of a byte depends on earlier bytes (shift sequences, byte order marks).
	// Such streams cannot be decoded from an arbitrary chunk boundary.
	ErrStatefulEncoding = errors.New("charset: stateful encoding not supported")
)

// stateful lists canonical names, lower-cased, of the encodings Lookup
// rejects. "replacement" is the WHATWG decoder that maps a whole stream to
// a single U+FFFD.
var stateful = map[string]bool{
	"iso-2022-jp": true,
	"hz-gb-2312":  true,
	"utf-16":      true,
	"utf-32":      true,
	"utf-7":       true,
	"replacement": true,
}

// Span describes the result of scanning a byte slice.
type Span struct {
	// Text is the decoded form of src[:Valid].
	Text string

	// Valid is the length of the longest valid prefix.
	Valid int

	// Invalid is the length of the invalid run starting at Valid.
	// Zero means src decoded cleanly.
	Invalid int

	// Truncated reports that the invalid run reaches the end of src and is a
	// proper prefix of a valid sequence, so more bytes could complete it.
	Truncated bool
}

// Unrepresentable is a character the target encoding cannot express.
type Unrepresentable struct {
	Offset int  // byte offset in the source string
	Rune   rune // utf8.RuneError for invalid UTF-8 in the source
}

func (u Unrepresentable) String() string {
	return fmt.Sprintf("%q at offset %d", u.Rune, u.Offset)
}

// Codec converts between text and one byte encoding.
type Codec interface {
	// Name returns the canonical encoding name.
	Name() string

	// Scan decodes the longest valid prefix of src.
	Scan(src []byte) Span

	// Encode appends the encoding of s to dst. Every character the encoding
	// cannot represent is returned; when replace is set each one is written
	// as the encoding's form of '?', otherwise it is skipped.
	Encode(dst []byte, s string, replace bool) ([]byte, []Unrepresentable)
}

// Lookup returns the codec registered under name. Matching ignores case and
// surrounding whitespace. UTF-8 and ASCII are served natively; other names
// are resolved against the IANA registry, then the WHATWG encoding labels.
//
// Stateful encodings (ISO-2022-JP, HZ-GB-2312, UTF-16 and UTF-32 with a
// byte order mark) fail with ErrStatefulEncoding. Use the explicit
// endianness names, e.g. UTF-16LE, instead of UTF-16.
func Lookup(name string) (Codec, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch strings.ReplaceAll(key, "_", "-") {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "ascii", "us-ascii":
		return ASCII, nil
	}

	enc, err := ianaindex.IANA.Encoding(key)
	if err == nil && enc != nil {
		canonical, nerr := ianaindex.IANA.Name(enc)
		if nerr != nil {
			canonical = key
		}
		return statelessCodec(name, canonical, enc)
	}

	enc, err = htmlindex.Get(key)
	if err == nil && enc != nil {
		canonical, nerr := htmlindex.Name(enc)
		if nerr != nil {
			canonical = key
		}
		return statelessCodec(name, canonical, enc)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

func statelessCodec(name, canonical string, enc encoding.Encoding) (Codec, error) {
	if stateful[strings.ToLower(canonical)] {
		return nil, fmt.Errorf("%w: %q", ErrStatefulEncoding, name)
	}
	return newTextCodec(canonical, enc), nil
}

// FromEncoding wraps an x/text encoding as a Codec. enc must be stateless:
// each Scan starts a fresh decoder.
func FromEncoding(name string, enc encoding.Encoding) Codec {
	return newTextCodec(name, enc)
}
