package store

import (
	"context"
	"strings"
	"testing"

	"github.com/rzubek/botl/lang/symbol"
	"github.com/rzubek/botl/lang/vm"
	"github.com/stretchr/testify/require"
)

func fact(tbl *symbol.Table, owner *vm.Predicate, args ...vm.Cell) *vm.CompiledClause {
	var head vm.Assembler
	for _, a := range args {
		switch a.Tag {
		case vm.TagInt:
			idx := owner.Pool.AddInt(a.Num)
			head.EmitConst(vm.HeadConst, vm.ConstInt, uint32(idx))
		case vm.TagObj:
			idx := owner.Pool.AddObject(a.Obj)
			head.EmitConst(vm.HeadConst, vm.ConstObject, uint32(idx))
		default:
			panic("unsupported literal in test fact")
		}
	}
	var body vm.Assembler
	body.Emit(vm.CNoGoal, 0)
	return &vm.CompiledClause{HeadCode: head.Code, BodyCode: body.Code, EnvSize: 0}
}

func TestAddClauseAndResolve(t *testing.T) {
	tbl := symbol.NewTable()
	s := New(tbl)

	ind := vm.Indicator{Name: tbl.Intern("parent"), Arity: 2}
	p, ok0 := s.Lookup(ind)
	require.False(t, ok0)
	require.Nil(t, p)

	owner := s.Predicate(ind)
	require.NoError(t, s.AddClause(ind, fact(tbl, owner, vm.ObjCell("tom"), vm.ObjCell("bob"))))
	require.NoError(t, s.AddClause(ind, fact(tbl, owner, vm.ObjCell("tom"), vm.ObjCell("liz"))))

	p, ok := s.Lookup(ind)
	require.True(t, ok)
	require.Len(t, p.Clauses, 2)

	m := vm.NewMachine(s, 64)
	ok2, err := m.Solve(context.Background(), ind, []vm.Cell{vm.ObjCell("tom"), vm.Unbound()})
	require.NoError(t, err)
	require.True(t, ok2)
	require.Equal(t, "bob", m.ArgCell(1).Obj)
}

func TestAddClauseRejectsTableOrPrimop(t *testing.T) {
	s := New(nil)
	s.DefinePrimop("boom", 1, vm.BuiltinTrue)
	ind := vm.Indicator{Name: s.Symbols.Intern("boom"), Arity: 1}
	err := s.AddClause(ind, &vm.CompiledClause{BodyCode: []byte{byte(vm.CNoGoal)}})
	require.Error(t, err)
}

func TestDefinePrimopSolvesViaMachine(t *testing.T) {
	s := New(nil)
	s.DefinePrimop("is_answer", 1, func(m *vm.Machine, argBase int) bool {
		_, c := m.Stack.Deref(argBase)
		return c.Tag == vm.TagInt && c.Num == 42
	})
	ind := vm.Indicator{Name: s.Symbols.Intern("is_answer"), Arity: 1}

	m := vm.NewMachine(s, 64)
	ok, err := m.Solve(context.Background(), ind, []vm.Cell{vm.IntCell(42)})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m.Solve(context.Background(), ind, []vm.Cell{vm.IntCell(7)})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLoadTableFromCSV(t *testing.T) {
	s := New(nil)
	p, err := s.LoadTable("score", 2, strings.NewReader("alice,10\nbob,20\n"))
	require.NoError(t, err)
	require.Equal(t, vm.KindTable, p.Kind)
	require.Len(t, p.Rows, 2)
	require.Equal(t, "alice", p.Rows[0][0].Obj)
	require.Equal(t, int64(10), p.Rows[0][1].Num)

	ind := vm.Indicator{Name: s.Symbols.Intern("score"), Arity: 2}
	m := vm.NewMachine(s, 64)
	ok, err := m.Solve(context.Background(), ind, []vm.Cell{vm.ObjCell("bob"), vm.Unbound()})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(20), m.ArgCell(1).Num)
}

func TestDefineStructConstructAndAccess(t *testing.T) {
	s := New(nil)
	s.DefineStruct("point", []string{"x", "y"})

	ctorInd := vm.Indicator{Name: s.Symbols.Intern("point"), Arity: 3}
	m := vm.NewMachine(s, 64)
	ok, err := m.Solve(context.Background(), ctorInd, []vm.Cell{vm.IntCell(1), vm.IntCell(2), vm.Unbound()})
	require.NoError(t, err)
	require.True(t, ok)
	built := m.ArgCell(2)
	require.Equal(t, vm.TagObj, built.Tag)

	yInd := vm.Indicator{Name: s.Symbols.Intern("point_y"), Arity: 2}
	m2 := vm.NewMachine(s, 64)
	ok, err = m2.Solve(context.Background(), yInd, []vm.Cell{built, vm.Unbound()})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(2), m2.ArgCell(1).Num)
}

func TestGlobalsGetSet(t *testing.T) {
	g := newGlobals()
	g.Declare("counter")
	_, ok := g.Get("counter")
	require.True(t, ok)

	g.Set("counter", vm.IntCell(5))
	v, ok := g.Get("counter")
	require.True(t, ok)
	require.Equal(t, int64(5), v.Num)
}

func TestELTreeAssertions(t *testing.T) {
	tr := newELTree()
	tr.Assert("animal", "dog", elEdgeExclusive)
	tr.Assert("animal", "cat", elEdgeExclusive)
	tr.Assert("dog", "rex", elEdgeNonExclusive)
	tr.Assert("canine", "dog", elEdgeDirectional)

	require.ElementsMatch(t, []string{"dog", "cat"}, tr.Exclusive("animal"))
	require.ElementsMatch(t, []string{"rex"}, tr.Children("dog"))
	require.ElementsMatch(t, []string{"canine"}, tr.Parents("dog"))
}

func TestGetSetGlobalPrimops(t *testing.T) {
	s := New(nil)
	s.Globals.Declare("hits")

	setInd := vm.Indicator{Name: s.Symbols.Intern("set_global"), Arity: 2}
	m := vm.NewMachine(s, 64)
	ok, err := m.Solve(context.Background(), setInd, []vm.Cell{vm.ObjCell("hits"), vm.IntCell(3)})
	require.NoError(t, err)
	require.True(t, ok)

	getInd := vm.Indicator{Name: s.Symbols.Intern("get_global"), Arity: 2}
	m2 := vm.NewMachine(s, 64)
	ok, err = m2.Solve(context.Background(), getInd, []vm.Cell{vm.ObjCell("hits"), vm.Unbound()})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(3), m2.ArgCell(1).Num)
}

func TestMarkRequiredIdempotent(t *testing.T) {
	s := New(nil)
	require.True(t, s.MarkRequired("/a/b.pl"))
	require.False(t, s.MarkRequired("/a/b.pl"))
}
