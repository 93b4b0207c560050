package charset

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

var runeErrorBytes = []byte(string(utf8.RuneError))

// textCodec adapts an x/text encoding. x/text decoders replace invalid input
// with U+FFFD on their own, so invalid runs are recovered by decoding one
// character at a time and checking whether a U+FFFD was really in the input.
type textCodec struct {
	name        string
	enc         encoding.Encoding
	literalFFFD []byte // the encoding's own bytes for U+FFFD, nil if it has none
	question    []byte // the encoding's bytes for '?'
	unit        int    // code unit size: 2 for UTF-16, 4 for UTF-32, 1 otherwise
}

func newTextCodec(name string, enc encoding.Encoding) *textCodec {
	c := &textCodec{name: name, enc: enc, question: []byte{'?'}, unit: 1}
	if b, err := enc.NewEncoder().Bytes(runeErrorBytes); err == nil {
		c.literalFFFD = b
	}
	if b, err := enc.NewEncoder().String("?"); err == nil {
		c.question = []byte(b)
	}
	// The size of one more ASCII character, past any byte order mark.
	one, err1 := enc.NewEncoder().String("a")
	two, err2 := enc.NewEncoder().String("ab")
	if err1 == nil && err2 == nil && len(two) > len(one) {
		c.unit = len(two) - len(one)
	}
	return c
}

func (c *textCodec) Name() string { return c.name }

func (c *textCodec) Scan(src []byte) Span {
	// Fast path: one pass over the whole buffer.
	out, n, err := decodePrefix(c.enc.NewDecoder(), src)
	if !bytes.Contains(out, runeErrorBytes) {
		switch {
		case n == len(src):
			return Span{Text: string(out), Valid: n}
		case err == transform.ErrShortSrc:
			return Span{Text: string(out), Valid: n, Invalid: len(src) - n, Truncated: true}
		}
	}
	return c.scanSlow(src)
}

// scanSlow feeds the decoder the smallest slice that yields progress, so
// each step covers exactly one character.
func (c *textCodec) scanSlow(src []byte) Span {
	dec := c.enc.NewDecoder()
	var sb strings.Builder
	dst := make([]byte, 4*utf8.UTFMax)

	pos := 0
	for pos < len(src) {
		k := 1
		for {
			nDst, nSrc, err := dec.Transform(dst, src[pos:pos+k], false)
			if nSrc > 0 {
				out := dst[:nDst]
				if c.isError(out, src[pos:pos+nSrc]) {
					return Span{Text: sb.String(), Valid: pos, Invalid: c.invalidRun(src[pos:], nSrc)}
				}
				sb.Write(out)
				pos += nSrc
				break
			}
			switch err {
			case transform.ErrShortSrc, nil:
				if pos+k >= len(src) {
					return Span{Text: sb.String(), Valid: pos, Invalid: len(src) - pos, Truncated: true}
				}
				k++
				continue
			case transform.ErrShortDst:
				dst = make([]byte, 2*len(dst))
				continue
			}
			return Span{Text: sb.String(), Valid: pos, Invalid: k}
		}
	}
	return Span{Text: sb.String(), Valid: pos}
}

// isError reports whether decoding in produced a U+FFFD that in does not
// literally encode.
func (c *textCodec) isError(out, in []byte) bool {
	return bytes.Contains(out, runeErrorBytes) && !bytes.Equal(in, c.literalFFFD)
}

// invalidRun shrinks the n bytes the decoder consumed around a U+FFFD to the
// shortest prefix, in code units, after which decoding resumes. Decoders
// often consume the next valid characters in the same step.
func (c *textCodec) invalidRun(src []byte, n int) int {
	for m := c.unit; m < n; m += c.unit {
		if c.resumes(src[m:]) {
			return m
		}
	}
	return n
}

// resumes reports whether the first character of src decodes cleanly or is
// still incomplete.
func (c *textCodec) resumes(src []byte) bool {
	dec := c.enc.NewDecoder()
	dst := make([]byte, 4*utf8.UTFMax)
	for k := 1; k <= len(src); k++ {
		nDst, nSrc, err := dec.Transform(dst, src[:k], false)
		if nSrc > 0 {
			return !c.isError(dst[:nDst], src[:nSrc])
		}
		if err != nil && err != transform.ErrShortSrc {
			return err == transform.ErrShortDst
		}
	}
	return true
}

func (c *textCodec) Encode(dst []byte, s string, replace bool) ([]byte, []Unrepresentable) {
	enc := c.enc.NewEncoder()
	buf := make([]byte, 4*utf8.UTFMax)
	var bad []Unrepresentable

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		ok := !(r == utf8.RuneError && size == 1)
		if ok {
			dst, buf, ok = transformRune(enc, dst, buf, []byte(s[i:i+size]))
		}
		if !ok {
			bad = append(bad, Unrepresentable{Offset: i, Rune: r})
			if replace {
				dst = append(dst, c.question...)
			}
		}
		i += size
	}

	// Let stateful encodings return to their initial state.
	for {
		nDst, _, err := enc.Transform(buf, nil, true)
		dst = append(dst, buf[:nDst]...)
		if err != transform.ErrShortDst {
			break
		}
		buf = make([]byte, 2*len(buf))
	}
	return dst, bad
}

func transformRune(t transform.Transformer, dst, buf, in []byte) ([]byte, []byte, bool) {
	for {
		nDst, nSrc, err := t.Transform(buf, in, false)
		dst = append(dst, buf[:nDst]...)
		in = in[nSrc:]
		switch err {
		case nil:
			return dst, buf, true
		case transform.ErrShortDst:
			if nDst == 0 && nSrc == 0 {
				buf = make([]byte, 2*len(buf))
			}
		default:
			return dst, buf, false
		}
	}
}

// decodePrefix runs t over src without signalling EOF and returns the output
// and the number of source bytes consumed.
func decodePrefix(t transform.Transformer, src []byte) ([]byte, int, error) {
	out := make([]byte, 0, len(src)+len(src)/2)
	dst := make([]byte, max(len(src)*2, 4*utf8.UTFMax))
	n := 0
	for {
		nDst, nSrc, err := t.Transform(dst, src[n:], false)
		out = append(out, dst[:nDst]...)
		n += nSrc
		if err != transform.ErrShortDst {
			return out, n, err
		}
		if nDst == 0 && nSrc == 0 {
			dst = make([]byte, 2*len(dst))
		}
	}
}
