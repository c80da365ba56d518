// Package normalize repairs text mangled by upstream double-encoding, where
// raw UTF-8 bytes leak into feed text as literal \xHH escape sequences.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var hexEscapeRe = regexp.MustCompile(`\\x([0-9a-fA-F]{2})`)

// Normalize rewrites literal \xHH escapes back into the bytes they encode and
// re-decodes the whole result as UTF-8. Escaped and unescaped spans are
// accumulated into a single byte stream before decoding, so multi-byte UTF-8
// sequences split across adjacent escapes survive intact. Invalid bytes decode
// to the replacement character; Normalize never fails.
func Normalize(raw string) string {
	matches := hexEscapeRe.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return toValidUTF8(raw)
	}

	var buf []byte
	end := 0
	for _, m := range matches {
		buf = append(buf, raw[end:m[0]]...)
		b, err := strconv.ParseUint(raw[m[2]:m[3]], 16, 8)
		if err != nil {
			// unreachable, the pattern only matches two hex digits
			buf = append(buf, raw[m[0]:m[1]]...)
		} else {
			buf = append(buf, byte(b))
		}
		end = m[1]
	}
	buf = append(buf, raw[end:]...)

	return toValidUTF8(string(buf))
}

// toValidUTF8 substitutes the replacement character for every invalid byte
func toValidUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		sb.WriteRune(r)
		i += size
	}
	return sb.String()
}
