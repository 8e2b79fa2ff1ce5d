package scanner

import (
	"fmt"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// shortString scans a single-line '...' or "..." literal. The opening quote
// has already been consumed.
func (s *Scanner) shortString(opening rune) (lit, decoded string) {
	start := s.off - 1
	s.sb.Reset()
	s.pendingSurrogate = 0

	for {
		cur := s.cur
		if cur == '\n' || cur < 0 {
			s.error(start, "string literal not terminated")
			break
		}
		s.advance()
		if cur == opening {
			break
		}
		if cur == '\\' {
			s.escape()
		} else {
			s.writeStringLitRune(cur)
		}
	}
	if s.pendingSurrogate != 0 {
		s.sb.WriteRune(utf8.RuneError)
	}
	return string(s.src[start:s.off]), s.sb.String()
}

var simpleEscapes = [...]byte{
	'a': '\a', 'b': '\b', 'f': '\f', 'n': '\n', 'r': '\r', 't': '\t', 'v': '\v',
	'\\': '\\', '\'': '\'', '"': '"', '\n': '\n',
}

// escape parses an escape sequence; the leading backslash is already
// consumed.
func (s *Scanner) escape() {
	start := s.off - 1

	if cur := s.cur; s.advanceIf('a', 'b', 'f', 'n', 'r', 't', 'v', '\\', '"', '\'', '\n') {
		s.writeStringLitRune(rune(simpleEscapes[cur]))
		return
	}

	illegalOrIncomplete := func() {
		msg := fmt.Sprintf("illegal character %#U in escape sequence", s.cur)
		if s.cur < 0 {
			msg = "escape sequence not terminated"
		}
		s.error(start, msg)
	}

	var max, rn uint32
	if isDecimal(s.cur) {
		max = 255
		rn = uint32(digitVal(s.cur))
		s.advance()
		for i := 0; i < 2 && isDecimal(s.cur); i++ {
			rn = rn*10 + uint32(digitVal(s.cur))
			s.advance()
		}
	} else if s.advanceIf('x') {
		max = 255
		for i := 0; i < 2; i++ {
			if !isHexadecimal(s.cur) {
				illegalOrIncomplete()
				return
			}
			rn = rn*16 + uint32(digitVal(s.cur))
			s.advance()
		}
	} else if s.advanceIf('u') {
		max = unicode.MaxRune
		for i := 0; i < 4; i++ {
			if !isHexadecimal(s.cur) {
				illegalOrIncomplete()
				return
			}
			rn = rn*16 + uint32(digitVal(s.cur))
			s.advance()
		}
	} else {
		msg := "unknown escape sequence"
		if s.cur < 0 {
			msg = "escape sequence not terminated"
		}
		s.error(start, msg)
		return
	}

	if rn > max {
		msg := "escape sequence is invalid Unicode code point"
		if max == 255 {
			msg = "escape sequence is invalid byte value"
		}
		s.error(start, msg)
		return
	}
	if utf16.IsSurrogate(rune(rn)) {
		s.writeStringLitSurrogate(rune(rn))
		return
	}
	s.writeStringLitRune(rune(rn))
}

func (s *Scanner) writeStringLitRune(rn rune) {
	if s.pendingSurrogate != 0 {
		s.sb.WriteRune(utf8.RuneError)
		s.pendingSurrogate = 0
	}
	s.sb.WriteRune(rn)
}

func (s *Scanner) writeStringLitSurrogate(rn rune) {
	if s.pendingSurrogate == 0 {
		s.pendingSurrogate = rn
	} else {
		s.sb.WriteRune(utf16.DecodeRune(s.pendingSurrogate, rn))
		s.pendingSurrogate = 0
	}
}

func isHexadecimal(rn rune) bool {
	return isDecimal(rn) || 'a' <= rn && rn <= 'f' || 'A' <= rn && rn <= 'F'
}

func digitVal(rn rune) int {
	switch {
	case '0' <= rn && rn <= '9':
		return int(rn - '0')
	case 'a' <= rn && rn <= 'f':
		return int(rn - 'a' + 10)
	case 'A' <= rn && rn <= 'F':
		return int(rn - 'A' + 10)
	}
	return 16
}
