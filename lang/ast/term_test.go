package ast

import (
	"bytes"
	"testing"

	"github.com/rzubek/botl/lang/symbol"
	"github.com/rzubek/botl/lang/token"
	"github.com/stretchr/testify/require"
)

func TestCallString(t *testing.T) {
	tbl := symbol.NewTable()
	foo := tbl.Intern("foo")
	x := NewVar("X", token.Unknown)
	n := NewInt(3, token.Unknown)
	c := NewCall(foo, []Term{x, n}, token.Unknown)
	require.Equal(t, "foo(X, 3)", c.String())
	require.Equal(t, 2, c.Arity())
}

func TestNewCallPanicsOnArityZero(t *testing.T) {
	tbl := symbol.NewTable()
	foo := tbl.Intern("foo")
	require.Panics(t, func() { NewCall(foo, nil, token.Unknown) })
}

func TestVarAnonymous(t *testing.T) {
	require.True(t, NewVar("_", token.Unknown).Anonymous())
	require.True(t, NewVar("_Rest", token.Unknown).Anonymous())
	require.False(t, NewVar("X", token.Unknown).Anonymous())
}

func TestEqual(t *testing.T) {
	tbl := symbol.NewTable()
	foo := tbl.Intern("foo")
	a := NewCall(foo, []Term{NewInt(1, token.Unknown), NewVar("X", token.Unknown)}, token.Unknown)
	b := NewCall(foo, []Term{NewInt(1, token.Unknown), NewVar("X", token.Unknown)}, token.Unknown)
	require.True(t, Equal(a, b))

	c := NewCall(foo, []Term{NewInt(2, token.Unknown), NewVar("X", token.Unknown)}, token.Unknown)
	require.False(t, Equal(a, c))
}

func TestEqualArityMismatch(t *testing.T) {
	tbl := symbol.NewTable()
	foo := tbl.Intern("foo")
	a := NewCall(foo, []Term{NewInt(1, token.Unknown)}, token.Unknown)
	b := NewCall(foo, []Term{NewInt(1, token.Unknown), NewInt(2, token.Unknown)}, token.Unknown)
	require.False(t, Equal(a, b))
}

func TestWalkVisitsChildren(t *testing.T) {
	tbl := symbol.NewTable()
	foo := tbl.Intern("foo")
	inner := NewCall(foo, []Term{NewInt(1, token.Unknown)}, token.Unknown)
	outer := NewCall(foo, []Term{inner, NewVar("X", token.Unknown)}, token.Unknown)

	var seen []string
	Walk(visitFunc(func(t Term) Visitor {
		seen = append(seen, t.String())
		return visitFunc(func(t Term) Visitor { seen = append(seen, t.String()); return nil })
	}), outer)

	require.Contains(t, seen, outer.String())
}

type visitFunc func(t Term) Visitor

func (f visitFunc) Visit(t Term) Visitor { return f(t) }

func TestPrinter(t *testing.T) {
	tbl := symbol.NewTable()
	foo := tbl.Intern("foo")
	c := NewCall(foo, []Term{NewInt(1, token.Unknown)}, token.Unknown)
	var buf bytes.Buffer
	p := &Printer{Output: &buf}
	require.NoError(t, p.Print(c))
	require.Equal(t, "foo(1)\n", buf.String())
}
