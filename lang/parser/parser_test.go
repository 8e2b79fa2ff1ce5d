package parser

import (
	"testing"

	"github.com/rzubek/botl/lang/ast"
	"github.com/rzubek/botl/lang/symbol"
	"github.com/stretchr/testify/require"
)

func TestParseFact(t *testing.T) {
	tbl := symbol.NewTable()
	terms, err := ParseProgram([]byte(`parent(tom, liz).`), tbl)
	require.NoError(t, err)
	require.Len(t, terms, 1)

	c, ok := terms[0].(*ast.Call)
	require.True(t, ok)
	require.Equal(t, "parent", c.Functor.Name())
	require.Equal(t, 2, c.Arity())
}

func TestParseRule(t *testing.T) {
	tbl := symbol.NewTable()
	terms, err := ParseProgram([]byte(`grandparent(X, Z) :- parent(X, Y), parent(Y, Z).`), tbl)
	require.NoError(t, err)
	require.Len(t, terms, 1)

	rule, ok := ast.IsRule(terms[0])
	require.True(t, ok)
	head, ok := rule.Args[0].(*ast.Call)
	require.True(t, ok)
	require.Equal(t, "grandparent", head.Functor.Name())

	conj, ok := ast.IsConjunction(rule.Args[1])
	require.True(t, ok)
	require.Len(t, conj.Args, 2)
}

func TestParseSharedVariableOccurrences(t *testing.T) {
	tbl := symbol.NewTable()
	terms, err := ParseProgram([]byte(`p(X, X).`), tbl)
	require.NoError(t, err)

	c := terms[0].(*ast.Call)
	require.Same(t, c.Args[0], c.Args[1])
}

func TestParseDisjunction(t *testing.T) {
	tbl := symbol.NewTable()
	terms, err := ParseProgram([]byte(`p(X) :- q(X) ; r(X).`), tbl)
	require.NoError(t, err)

	rule, _ := ast.IsRule(terms[0])
	_, ok := ast.IsDisjunction(rule.Args[1])
	require.True(t, ok)
}

func TestParseCutAndComparison(t *testing.T) {
	tbl := symbol.NewTable()
	terms, err := ParseProgram([]byte(`max(X, Y, X) :- X >= Y, !.`), tbl)
	require.NoError(t, err)

	rule, _ := ast.IsRule(terms[0])
	conj, ok := ast.IsConjunction(rule.Args[1])
	require.True(t, ok)
	require.True(t, ast.IsCut(conj.Args[1]))
}

func TestParseArithmetic(t *testing.T) {
	tbl := symbol.NewTable()
	term, err := ParseTerm([]byte(`Z = X + Y * 2`), tbl)
	require.NoError(t, err)

	c, ok := term.(*ast.Call)
	require.True(t, ok)
	require.Equal(t, "=", c.Functor.Name())
	rhs := c.Args[1].(*ast.Call)
	require.Equal(t, "+", rhs.Functor.Name())
	mul := rhs.Args[1].(*ast.Call)
	require.Equal(t, "*", mul.Functor.Name())
}

func TestParseListLiteral(t *testing.T) {
	tbl := symbol.NewTable()
	term, err := ParseTerm([]byte(`[1, 2, 3]`), tbl)
	require.NoError(t, err)

	c, ok := term.(*ast.Call)
	require.True(t, ok)
	require.Equal(t, "$array", c.Functor.Name())
	require.Len(t, c.Args, 3)
}

func TestParseEmptyListLiteral(t *testing.T) {
	tbl := symbol.NewTable()
	term, err := ParseTerm([]byte(`[]`), tbl)
	require.NoError(t, err)
	s, ok := term.(*ast.Sym)
	require.True(t, ok)
	require.Equal(t, "$array", s.Name.Name())
}

func TestParseErrorRecoversAtNextClause(t *testing.T) {
	tbl := symbol.NewTable()
	terms, err := ParseProgram([]byte("p(X) :- .\nq(a).\n"), tbl)
	require.Error(t, err)
	require.Len(t, terms, 2)
	require.Nil(t, terms[0])
	c, ok := terms[1].(*ast.Call)
	require.True(t, ok)
	require.Equal(t, "q", c.Functor.Name())
}
