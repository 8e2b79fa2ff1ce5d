package compiler_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rzubek/botl/lang/compiler"
	"github.com/rzubek/botl/lang/parser"
	"github.com/rzubek/botl/lang/store"
	"github.com/rzubek/botl/lang/symbol"
	"github.com/rzubek/botl/lang/vm"
	"github.com/stretchr/testify/require"
)

func compileSource(t *testing.T, st *store.Store, src string) {
	t.Helper()
	terms, err := parser.ParseProgram([]byte(src), st.Symbols)
	require.NoError(t, err)
	c := compiler.New(st)
	require.NoError(t, c.CompileProgram(terms))
}

func newStore() *store.Store {
	return store.New(symbol.NewTable())
}

func TestCompileFactsAndQuery(t *testing.T) {
	st := newStore()
	compileSource(t, st, `
parent(tom, bob).
parent(tom, liz).
`)
	m := vm.NewMachine(st, 256)
	ind := vm.Indicator{Name: st.Symbols.Intern("parent"), Arity: 2}
	ok, err := m.Solve(context.Background(), ind, []vm.Cell{vm.ObjCell("tom"), vm.Unbound()})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "bob", m.ArgCell(1).Obj)

	ok, err = m.NextSolution()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "liz", m.ArgCell(1).Obj)
}

func TestCompileRuleWithConjunction(t *testing.T) {
	st := newStore()
	compileSource(t, st, `
parent(tom, bob).
parent(bob, ann).
grandparent(X, Z) :- parent(X, Y), parent(Y, Z).
`)
	m := vm.NewMachine(st, 256)
	ind := vm.Indicator{Name: st.Symbols.Intern("grandparent"), Arity: 2}
	ok, err := m.Solve(context.Background(), ind, []vm.Cell{vm.ObjCell("tom"), vm.Unbound()})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ann", m.ArgCell(1).Obj)
}

func TestCompileCutCommitsToFirstClause(t *testing.T) {
	st := newStore()
	compileSource(t, st, `
choose(X, Y, X) :- X >= Y, !.
choose(X, Y, Y).
`)
	m := vm.NewMachine(st, 256)
	ind := vm.Indicator{Name: st.Symbols.Intern("choose"), Arity: 3}

	ok, err := m.Solve(context.Background(), ind, []vm.Cell{vm.IntCell(5), vm.IntCell(3), vm.Unbound()})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(5), m.ArgCell(2).Num)

	ok, err = m.NextSolution()
	require.NoError(t, err)
	require.False(t, ok, "cut should have discarded the second clause's choice point")
}

func TestCompileDisjunction(t *testing.T) {
	st := newStore()
	compileSource(t, st, `
likes(alice, X) :- (X = tea ; X = coffee).
`)
	m := vm.NewMachine(st, 256)
	ind := vm.Indicator{Name: st.Symbols.Intern("likes"), Arity: 2}

	ok, err := m.Solve(context.Background(), ind, []vm.Cell{vm.ObjCell("alice"), vm.Unbound()})
	require.NoError(t, err)
	require.True(t, ok)
	first := m.ArgCell(1).Obj

	ok, err = m.NextSolution()
	require.NoError(t, err)
	require.True(t, ok)
	second := m.ArgCell(1).Obj

	require.ElementsMatch(t, []any{"tea", "coffee"}, []any{first, second})

	ok, err = m.NextSolution()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCompileComparisonAndArithmeticExpr(t *testing.T) {
	st := newStore()
	compileSource(t, st, `
big(X) :- X > 10.
double(X, Y) :- Y = X * 2.
`)
	m := vm.NewMachine(st, 256)
	bigInd := vm.Indicator{Name: st.Symbols.Intern("big"), Arity: 1}

	ok, err := m.Solve(context.Background(), bigInd, []vm.Cell{vm.IntCell(20)})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m.Solve(context.Background(), bigInd, []vm.Cell{vm.IntCell(5)})
	require.NoError(t, err)
	require.False(t, ok)

	doubleInd := vm.Indicator{Name: st.Symbols.Intern("double"), Arity: 2}
	ok, err = m.Solve(context.Background(), doubleInd, []vm.Cell{vm.IntCell(21), vm.Unbound()})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(42), m.ArgCell(1).Num)
}

func TestCompileMetaCall(t *testing.T) {
	st := newStore()
	compileSource(t, st, `
succ2(X, Y) :- Y = X + 1.
apply_succ2(X, Y) :- call(succ2, X, Y).
`)
	m := vm.NewMachine(st, 256)
	ind := vm.Indicator{Name: st.Symbols.Intern("apply_succ2"), Arity: 2}
	ok, err := m.Solve(context.Background(), ind, []vm.Cell{vm.IntCell(4), vm.Unbound()})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(5), m.ArgCell(1).Num)
}

func TestCompileGlobalDeclaration(t *testing.T) {
	st := newStore()
	compileSource(t, st, `
global(hits).
record :- set_global(hits, 7).
`)
	m := vm.NewMachine(st, 256)
	ind := vm.Indicator{Name: st.Symbols.Intern("record"), Arity: 0}
	ok, err := m.Solve(context.Background(), ind, nil)
	require.NoError(t, err)
	require.True(t, ok)

	v, ok2 := st.Globals.Get("hits")
	require.True(t, ok2)
	require.Equal(t, int64(7), v.Num)
}

func TestCompileStructDeclaration(t *testing.T) {
	st := newStore()
	compileSource(t, st, `struct(point, [x, y]).`)

	m := vm.NewMachine(st, 256)
	ctorInd := vm.Indicator{Name: st.Symbols.Intern("point"), Arity: 3}
	ok, err := m.Solve(context.Background(), ctorInd, []vm.Cell{vm.IntCell(1), vm.IntCell(2), vm.Unbound()})
	require.NoError(t, err)
	require.True(t, ok)
	built := m.ArgCell(2)

	yInd := vm.Indicator{Name: st.Symbols.Intern("point_y"), Arity: 2}
	m2 := vm.NewMachine(st, 256)
	ok, err = m2.Solve(context.Background(), yInd, []vm.Cell{built, vm.Unbound()})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(2), m2.ArgCell(1).Num)
}

func TestCompileTableDeclarationAppendsRows(t *testing.T) {
	st := newStore()
	compileSource(t, st, `
table(score/2).
score(alice, 10).
score(bob, 20).
`)
	ind := vm.Indicator{Name: st.Symbols.Intern("score"), Arity: 2}
	p, ok := st.Lookup(ind)
	require.True(t, ok)
	require.Equal(t, vm.KindTable, p.Kind)
	require.Len(t, p.Rows, 2)
}

func TestCompileELEdgeFact(t *testing.T) {
	st := newStore()
	compileSource(t, st, `animal : dog.`)
	require.ElementsMatch(t, []string{"dog"}, st.EL.Exclusive("animal"))
}

func TestCompileRequireIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested.pl")
	require.NoError(t, os.WriteFile(nested, []byte("nested_fact(ok).\n"), 0o644))

	st := newStore()
	terms, err := parser.ParseProgram([]byte(`require("nested.pl"). require("nested.pl").`), st.Symbols)
	require.NoError(t, err)

	c := compiler.New(st)
	c.BaseDir = dir
	require.NoError(t, c.CompileProgram(terms))

	ind := vm.Indicator{Name: st.Symbols.Intern("nested_fact"), Arity: 1}
	p, ok := st.Lookup(ind)
	require.True(t, ok)
	require.Len(t, p.Clauses, 1, "requiring the same file twice should only compile it once")
}
