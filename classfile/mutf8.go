package classfile

import "unicode/utf8"

// decodeModifiedUtf8 decodes the JVM's modified UTF-8: NUL is encoded in two
// bytes and supplementary characters as surrogate pairs of three bytes each.
// Lone surrogates and bytes that form no valid sequence are copied into the
// result unchanged, so appendModifiedUtf8 writes them back as they were read.
func decodeModifiedUtf8(b []byte) string {
	ascii := true
	for _, c := range b {
		if c&0x80 != 0 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b)
	}

	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c&0x80 == 0:
			out = append(out, c)
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b) && continuation(b[i+1]):
			out = utf8.AppendRune(out, rune(c&0x1F)<<6|rune(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b) && continuation(b[i+1]) && continuation(b[i+2]):
			r := rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(b) && b[i+3]&0xF0 == 0xE0 &&
				continuation(b[i+4]) && continuation(b[i+5]) {
				low := rune(b[i+3]&0x0F)<<12 | rune(b[i+4]&0x3F)<<6 | rune(b[i+5]&0x3F)
				if low >= 0xDC00 && low <= 0xDFFF {
					out = utf8.AppendRune(out, 0x10000+((r-0xD800)<<10)+(low-0xDC00))
					i += 6
					continue
				}
			}
			if r >= 0xD800 && r <= 0xDFFF {
				out = append(out, b[i:i+3]...)
			} else {
				out = utf8.AppendRune(out, r)
			}
			i += 3
		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

func continuation(c byte) bool { return c&0xC0 == 0x80 }

// appendModifiedUtf8 is the inverse of decodeModifiedUtf8. Bytes of s that
// are not valid UTF-8 are written verbatim.
func appendModifiedUtf8(dst []byte, s string) []byte {
	for i := 0; i < len(s); {
		c := s[i]
		if c != 0 && c < utf8.RuneSelf {
			dst = append(dst, c)
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			dst = append(dst, c)
		case r == 0:
			dst = append(dst, 0xC0, 0x80)
		case r < 0x800:
			dst = append(dst, byte(0xC0|r>>6), byte(0x80|r&0x3F))
		case r < 0x10000:
			dst = appendThreeByte(dst, r)
		default:
			r -= 0x10000
			dst = appendThreeByte(dst, 0xD800+(r>>10))
			dst = appendThreeByte(dst, 0xDC00+(r&0x3FF))
		}
		i += size
	}
	return dst
}

func appendThreeByte(dst []byte, r rune) []byte {
	return append(dst, byte(0xE0|r>>12), byte(0x80|(r>>6)&0x3F), byte(0x80|r&0x3F))
}

func modifiedUtf8Len(s string) int {
	n := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c != 0 && c < utf8.RuneSelf {
			n++
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == utf8.RuneError && size == 1:
			n++
		case r == 0, r < 0x800:
			n += 2
		case r < 0x10000:
			n += 3
		default:
			n += 6
		}
	}
	return n
}
