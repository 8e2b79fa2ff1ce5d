package scanner

import (
	"testing"

	"github.com/rzubek/botl/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []TokenAndValue {
	t.Helper()
	var errs []string
	toks := ScanAll([]byte(src), func(pos token.Pos, msg string) {
		errs = append(errs, msg)
	})
	require.Empty(t, errs, "unexpected scan errors: %v", errs)
	return toks
}

func kinds(toks []TokenAndValue) []token.Token {
	out := make([]token.Token, len(toks))
	for i, tv := range toks {
		out[i] = tv.Token
	}
	return out
}

func TestScanAtomsAndVars(t *testing.T) {
	toks := scanAll(t, "parent(tom, X)")
	require.Equal(t, []token.Token{
		token.IDENT, token.LPAREN, token.IDENT, token.COMMA, token.VAR, token.RPAREN, token.EOF,
	}, kinds(toks))
	require.Equal(t, "parent", toks[0].Value.Raw)
	require.Equal(t, "X", toks[4].Value.Raw)
}

func TestScanRule(t *testing.T) {
	toks := scanAll(t, "grandparent(X, Z) :- parent(X, Y), parent(Y, Z).")
	kk := kinds(toks)
	require.Contains(t, kk, token.ARROW)
	require.Contains(t, kk, token.DOT)
	require.Equal(t, token.EOF, kk[len(kk)-1])
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll(t, "42 3.14 2e10")
	require.Equal(t, token.INT, toks[0].Token)
	require.EqualValues(t, 42, toks[0].Value.Int)
	require.Equal(t, token.FLOAT, toks[1].Token)
	require.InDelta(t, 3.14, toks[1].Value.Float, 1e-6)
	require.Equal(t, token.FLOAT, toks[2].Token)
}

func TestScanString(t *testing.T) {
	toks := scanAll(t, `"hello\nworld"`)
	require.Equal(t, token.STRING, toks[0].Token)
	require.Equal(t, "hello\nworld", toks[0].Value.String)
}

func TestScanQuotedAtom(t *testing.T) {
	toks := scanAll(t, `'has space'(a)`)
	require.Equal(t, token.IDENT, toks[0].Token)
	require.Equal(t, "has space", toks[0].Value.String)
}

func TestScanComment(t *testing.T) {
	toks := scanAll(t, "foo. % a trailing comment\nbar.")
	kk := kinds(toks)
	require.Equal(t, []token.Token{
		token.IDENT, token.DOT, token.IDENT, token.DOT, token.EOF,
	}, kk)
}

func TestScanOperators(t *testing.T) {
	toks := scanAll(t, "X = 1, Y \\= 2, X < Y, X >= Y.")
	kk := kinds(toks)
	require.Contains(t, kk, token.EQ)
	require.Contains(t, kk, token.NEQ)
	require.Contains(t, kk, token.LT)
	require.Contains(t, kk, token.GE)
}

func TestScanIllegalCharacter(t *testing.T) {
	var errs []string
	toks := ScanAll([]byte("foo($)"), func(pos token.Pos, msg string) {
		errs = append(errs, msg)
	})
	require.NotEmpty(t, errs)
	require.Contains(t, kinds(toks), token.ILLEGAL)
}
