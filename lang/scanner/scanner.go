// Package scanner tokenizes the surface syntax (spec.md §6) for the parser.
//
// Parts of this scanner are adapted from the Go source code:
// https://cs.opensource.google/go/go/+/refs/tags/go1.22.1:src/go/scanner/scanner.go
//
// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package scanner

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rzubek/botl/lang/token"
)

// TokenAndValue combines the token type with the token value type in the
// same struct, as produced by ScanAll.
type TokenAndValue struct {
	Token token.Token
	Value token.Value
}

// ScanAll tokenizes src in full and returns the resulting token stream,
// always ending with a final token.EOF. errs receives every error
// encountered but scanning continues to the end of input regardless.
func ScanAll(src []byte, errs func(pos token.Pos, msg string)) []TokenAndValue {
	var (
		s   Scanner
		val token.Value
		out []TokenAndValue
	)
	s.Init(src, errs)
	for {
		tok := s.Scan(&val)
		out = append(out, TokenAndValue{Token: tok, Value: val})
		if tok == token.EOF {
			return out
		}
	}
}

// Scanner tokenizes a single source buffer for the parser to consume.
type Scanner struct {
	src []byte
	err func(pos token.Pos, msg string)

	sb               strings.Builder
	pendingSurrogate rune
	invalidByte      byte

	cur       rune
	off, roff int
	line, col int
}

// Init (re)initializes the scanner to tokenize src from the beginning.
func (s *Scanner) Init(src []byte, errHandler func(token.Pos, string)) {
	s.src = src
	s.err = errHandler
	s.sb.Reset()
	s.pendingSurrogate = 0
	s.invalidByte = 0
	s.cur = ' '
	s.off, s.roff = 0, 0
	s.line, s.col = 1, 0

	if bytes.HasPrefix(src, []byte{0xEF, 0xBB, 0xBF}) {
		s.off, s.roff = 3, 3
	}
	s.advance()
}

func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

func (s *Scanner) advance() {
	if s.cur == '\n' {
		s.line++
		s.col = 0
	}
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		s.cur = -1
		return
	}

	s.off = s.roff
	s.invalidByte = 0
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.off, "illegal UTF-8 encoding")
			s.invalidByte = s.src[s.roff]
		}
	}
	s.roff += w
	s.cur = r
	s.col++
}

func (s *Scanner) pos() token.Pos {
	if s.line > token.MaxLines || s.col > token.MaxCols {
		return token.Unknown
	}
	return token.MakePos(s.line, s.col)
}

func (s *Scanner) error(off int, msg string) {
	if s.err != nil {
		s.err(s.pos(), msg)
	}
}

func (s *Scanner) errorf(off int, format string, args ...any) {
	s.error(off, fmt.Sprintf(format, args...))
}

func (s *Scanner) advanceIf(matches ...byte) bool {
	if bytes.ContainsRune(matches, s.cur) {
		s.advance()
		return true
	}
	return false
}

// Scan returns the next token, populating val with its literal payload.
func (s *Scanner) Scan(val *token.Value) (tok token.Token) {
	s.skipWhitespaceAndComments()

	pos := s.pos()
	start := s.off

	switch cur := s.cur; {
	case isUpper(cur) || cur == '_':
		lit := s.name()
		*val = token.Value{Raw: lit, Pos: pos, String: lit}
		return token.VAR

	case isLower(cur):
		lit := s.name()
		*val = token.Value{Raw: lit, Pos: pos, String: lit}
		return token.IDENT

	case isDecimal(cur) || (cur == '.' && isDecimal(rune(s.peek()))):
		tok, lit := s.number()
		*val = token.Value{Raw: lit, Pos: pos}
		switch tok {
		case token.INT:
			v, _ := numberToInt(lit)
			val.Int = v
		case token.FLOAT:
			v, _ := numberToFloat(lit)
			val.Float = float32(v)
		}
		return tok
	}

	cur := s.cur
	s.advance()
	switch cur {
	case -1:
		*val = token.Value{Raw: "", Pos: pos}
		return token.EOF

	case '(':
		*val = token.Value{Raw: "(", Pos: pos}
		return token.LPAREN
	case ')':
		*val = token.Value{Raw: ")", Pos: pos}
		return token.RPAREN
	case '[':
		*val = token.Value{Raw: "[", Pos: pos}
		return token.LBRACK
	case ']':
		*val = token.Value{Raw: "]", Pos: pos}
		return token.RBRACK
	case ',':
		*val = token.Value{Raw: ",", Pos: pos}
		return token.COMMA

	case '"':
		lit, decoded := s.shortString('"')
		*val = token.Value{Raw: lit, Pos: pos, String: decoded}
		return token.STRING

	case '\'':
		// a quoted atom, e.g. 'Foo Bar', scans like a string but yields an IDENT
		lit, decoded := s.shortString('\'')
		*val = token.Value{Raw: lit, Pos: pos, String: decoded}
		return token.IDENT

	case '!':
		*val = token.Value{Raw: "!", Pos: pos}
		return token.CUT

	case '+':
		*val = token.Value{Raw: "+", Pos: pos}
		return token.PLUS
	case '-':
		*val = token.Value{Raw: "-", Pos: pos}
		return token.MINUS
	case '*':
		*val = token.Value{Raw: "*", Pos: pos}
		return token.STAR

	case '=':
		tok = token.EQ
		if s.advanceIf('=') {
			tok = token.EQEQ
		}
		*val = token.Value{Raw: tok.String(), Pos: pos}
		return tok

	case '\\':
		if s.advanceIf('=') {
			*val = token.Value{Raw: `\=`, Pos: pos}
			return token.NEQ
		}
		s.errorf(start, "illegal character %#U", cur)
		*val = token.Value{Raw: `\`, Pos: pos}
		return token.ILLEGAL

	case '<':
		tok = token.LT
		if s.advanceIf('=') {
			tok = token.LE
		}
		*val = token.Value{Raw: tok.String(), Pos: pos}
		return tok

	case '>':
		tok = token.GT
		if s.advanceIf('=') {
			tok = token.GE
		}
		*val = token.Value{Raw: tok.String(), Pos: pos}
		return tok

	case '/':
		tok = token.SLASH
		if s.advanceIf('>') {
			tok = token.SLASHGT
		}
		*val = token.Value{Raw: tok.String(), Pos: pos}
		return tok

	case ':':
		tok = token.COLON
		if s.advanceIf(':') {
			tok = token.COLONCOLON
		} else if s.advanceIf('-') {
			tok = token.ARROW
		}
		*val = token.Value{Raw: tok.String(), Pos: pos}
		return tok

	case ';':
		*val = token.Value{Raw: ";", Pos: pos}
		return token.SEMI

	case '.':
		// clause terminator, unless it was actually the start of a float
		// handled above
		*val = token.Value{Raw: ".", Pos: pos}
		return token.DOT

	default:
		if cur == utf8.RuneError && s.invalidByte > 0 {
			cur = rune(s.invalidByte)
			s.invalidByte = 0
		}
		s.errorf(start, "illegal character %#U", cur)
		*val = token.Value{Raw: string(cur), Pos: pos}
		return token.ILLEGAL
	}
}

// name scans an identifier or variable name: a letter or underscore followed
// by letters, digits, or underscores.
func (s *Scanner) name() string {
	start := s.off
	for isLetter(s.cur) || isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch {
		case isWhitespace(s.cur):
			s.advance()
		case s.cur == '%':
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
		default:
			return
		}
	}
}

func isWhitespace(rn rune) bool { return rn == ' ' || rn == '\t' || rn == '\n' || rn == '\r' }

func isUpper(rn rune) bool { return 'A' <= rn && rn <= 'Z' }
func isLower(rn rune) bool {
	return 'a' <= rn && rn <= 'z' || (rn >= utf8.RuneSelf && unicode.IsLower(rn))
}

func isLetter(rn rune) bool {
	return 'a' <= rn && rn <= 'z' ||
		'A' <= rn && rn <= 'Z' ||
		rn == '_' ||
		rn >= utf8.RuneSelf && unicode.IsLetter(rn)
}

func isDigit(rn rune) bool {
	return '0' <= rn && rn <= '9' || rn >= utf8.RuneSelf && unicode.IsDigit(rn)
}
