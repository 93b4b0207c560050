package charset

import "unicode/utf8"

// UTF8 is the native UTF-8 codec.
var UTF8 Codec = utf8Codec{}

type utf8Codec struct{}

func (utf8Codec) Name() string { return "utf-8" }

func (utf8Codec) Scan(src []byte) Span {
	if utf8.Valid(src) {
		return Span{Text: string(src), Valid: len(src)}
	}

	i := 0
	for i < len(src) {
		if src[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(src[i:])
		if r == utf8.RuneError && size == 1 {
			n, truncated := invalidRun(src[i:])
			return Span{Text: string(src[:i]), Valid: i, Invalid: n, Truncated: truncated}
		}
		i += size
	}
	return Span{Text: string(src), Valid: len(src)}
}

func (utf8Codec) Encode(dst []byte, s string, replace bool) ([]byte, []Unrepresentable) {
	if utf8.ValidString(s) {
		return append(dst, s...), nil
	}

	var bad []Unrepresentable
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			bad = append(bad, Unrepresentable{Offset: i, Rune: r})
			if replace {
				dst = append(dst, '?')
			}
		} else {
			dst = append(dst, s[i:i+size]...)
		}
		i += size
	}
	return dst, bad
}

// invalidRun measures the maximal subpart of an ill-formed sequence starting
// at p[0]: the lead byte plus every continuation byte that is still valid
// for it. truncated is set when p ends before the sequence could be judged.
func invalidRun(p []byte) (n int, truncated bool) {
	lead := p[0]
	lo, hi := byte(0x80), byte(0xBF)
	var need int
	switch {
	case lead >= 0xC2 && lead <= 0xDF:
		need = 1
	case lead == 0xE0:
		need, lo = 2, 0xA0
	case lead == 0xED:
		need, hi = 2, 0x9F
	case lead >= 0xE1 && lead <= 0xEF:
		need = 2
	case lead == 0xF0:
		need, lo = 3, 0x90
	case lead == 0xF4:
		need, hi = 3, 0x8F
	case lead >= 0xF1 && lead <= 0xF3:
		need = 3
	default:
		return 1, false
	}

	n = 1
	for i := 1; i <= need; i++ {
		if i >= len(p) {
			return n, true
		}
		b := p[i]
		if i == 1 {
			if b < lo || b > hi {
				return n, false
			}
		} else if b < 0x80 || b > 0xBF {
			return n, false
		}
		n++
	}
	return n, false
}
