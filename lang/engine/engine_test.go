package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rzubek/botl/lang/engine"
	"github.com/rzubek/botl/lang/vm"
	"github.com/stretchr/testify/require"
)

func TestCompileAndRun(t *testing.T) {
	e := engine.New()
	require.NoError(t, e.Compile(`
parent(tom, bob).
parent(bob, ann).
grandparent(X, Z) :- parent(X, Y), parent(Y, Z).
`))

	ok, bindings, err := e.RunQuery(`grandparent(tom, Z)`)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ann", bindings["Z"].Obj)
}

func TestRunReportsFailure(t *testing.T) {
	e := engine.New()
	require.NoError(t, e.Compile(`owns(alice, car).`))

	ok, err := e.Run(`owns(bob, car)`)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCompileFileIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "facts.pl")
	require.NoError(t, os.WriteFile(path, []byte("counted(1).\ncounted(2).\n"), 0o644))

	e := engine.New()
	require.NoError(t, e.CompileFile(path))
	require.NoError(t, e.CompileFile(path))

	ind := vm.Indicator{Name: e.Store.Symbols.Intern("counted"), Arity: 1}
	p, ok := e.Store.Lookup(ind)
	require.True(t, ok)
	require.Len(t, p.Clauses, 2, "recompiling the same canonical path should be a no-op")
}

func TestDefineGlobalAndFind(t *testing.T) {
	e := engine.New()
	e.DefineGlobal("counter", vm.IntCell(3))

	v, ok := e.Find("counter")
	require.True(t, ok)
	require.Equal(t, int64(3), v.Num)
}

func TestLoadTableInfersArityFromFirstRow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scores.csv")
	require.NoError(t, os.WriteFile(path, []byte("alice,10\nbob,20\n"), 0o644))

	e := engine.New()
	p, err := e.LoadTable("score", path)
	require.NoError(t, err)
	require.Equal(t, vm.KindTable, p.Kind)
	require.Len(t, p.Rows, 2)
	require.Equal(t, 2, p.Indicator.Arity)
}
