package scanner

import (
	"strconv"

	"github.com/rzubek/botl/lang/token"
)

func (s *Scanner) number() (tok token.Token, lit string) {
	start := s.off
	tok = token.INT

	if s.cur != '.' {
		s.digits()
	}
	if s.cur == '.' && isDecimal(rune(s.peek())) {
		tok = token.FLOAT
		s.advance()
		s.digits()
	}
	if e := lower(s.cur); e == 'e' {
		s.advance()
		tok = token.FLOAT
		if s.cur == '+' || s.cur == '-' {
			s.advance()
		}
		if !isDecimal(s.cur) {
			s.error(s.off, "exponent has no digits")
		}
		s.digits()
	}

	return tok, string(s.src[start:s.off])
}

func isDecimal(rn rune) bool { return '0' <= rn && rn <= '9' }

func (s *Scanner) digits() {
	for isDecimal(s.cur) {
		s.advance()
	}
}

func lower(ch rune) rune { return ('a' - 'A') | ch }

func numberToInt(lit string) (int64, error) {
	return strconv.ParseInt(lit, 10, 64)
}

func numberToFloat(lit string) (float64, error) {
	return strconv.ParseFloat(lit, 64)
}
