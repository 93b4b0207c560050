package charset

import "unicode/utf8"

// ASCII is the native 7-bit ASCII codec.
var ASCII Codec = asciiCodec{}

type asciiCodec struct{}

func (asciiCodec) Name() string { return "ascii" }

func (asciiCodec) Scan(src []byte) Span {
	for i, b := range src {
		if b >= utf8.RuneSelf {
			return Span{Text: string(src[:i]), Valid: i, Invalid: 1}
		}
	}
	return Span{Text: string(src), Valid: len(src)}
}

func (asciiCodec) Encode(dst []byte, s string, replace bool) ([]byte, []Unrepresentable) {
	var bad []Unrepresentable
	for i := 0; i < len(s); {
		if s[i] < utf8.RuneSelf {
			dst = append(dst, s[i])
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		bad = append(bad, Unrepresentable{Offset: i, Rune: r})
		if replace {
			dst = append(dst, '?')
		}
		i += size
	}
	return dst, bad
}
