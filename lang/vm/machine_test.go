package vm

import (
	"context"
	"testing"

	"github.com/rzubek/botl/lang/symbol"
	"github.com/stretchr/testify/require"
)

// testResolver is a bare map-backed Resolver, standing in for lang/store in
// these tests so the Goal VM can be exercised without a compiler.
type testResolver map[Indicator]*Predicate

func (r testResolver) Lookup(ind Indicator) (*Predicate, bool) {
	p, ok := r[ind]
	return p, ok
}

func fact(tbl *symbol.Table, owner *Predicate, args ...Cell) *CompiledClause {
	var asm, body Assembler
	for _, a := range args {
		switch a.Tag {
		case TagInt:
			idx := owner.Pool.AddInt(a.Num)
			asm.EmitConst(HeadConst, ConstInt, uint32(idx))
		case TagObj:
			idx := owner.Pool.AddObject(a.Obj)
			asm.EmitConst(HeadConst, ConstObject, uint32(idx))
		default:
			panic("unsupported literal in test fact")
		}
	}
	body.Emit(CNoGoal, 0)
	return &CompiledClause{HeadCode: asm.Code, BodyCode: body.Code, EnvSize: 0, Owner: owner, Pool: &owner.Pool}
}

func newPred(name string, arity int) *Predicate {
	p := &Predicate{Indicator: Indicator{Name: symbol.Intern(name), Arity: arity}, Kind: KindRule}
	return p
}

func TestUnifyAndUndo(t *testing.T) {
	s := NewStack(8)
	a := s.Alloc(1)
	b := s.Alloc(1)

	mark := s.TrailMark()
	require.True(t, Unify(s, a, b))
	require.True(t, UnifyValue(s, a, IntCell(42)))
	_, va := s.Deref(a)
	_, vb := s.Deref(b)
	require.Equal(t, IntCell(42), va)
	require.Equal(t, IntCell(42), vb)

	s.Undo(mark)
	_, va2 := s.Deref(a)
	require.Equal(t, TagUnbound, va2.Tag)
}

func TestSolveFactsEnumerate(t *testing.T) {
	tom := "tom"
	bob := "bob"
	liz := "liz"

	parent := newPred("parent", 2)
	parent.Clauses = []*CompiledClause{
		fact(nil, parent, ObjCell(tom), ObjCell(bob)),
		fact(nil, parent, ObjCell(tom), ObjCell(liz)),
	}

	resolver := testResolver{parent.Indicator: parent}
	m := NewMachine(resolver, 64)

	ok, err := m.Solve(context.Background(), parent.Indicator, []Cell{ObjCell(tom), Unbound()})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bob, m.ArgCell(1).Obj)

	ok, err = m.NextSolution()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, liz, m.ArgCell(1).Obj)

	ok, err = m.NextSolution()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSolveNoMatchFails(t *testing.T) {
	parent := newPred("parent", 2)
	parent.Clauses = []*CompiledClause{
		fact(nil, parent, ObjCell("tom"), ObjCell("bob")),
	}
	resolver := testResolver{parent.Indicator: parent}
	m := NewMachine(resolver, 64)

	ok, err := m.Solve(context.Background(), parent.Indicator, []Cell{ObjCell("nobody"), Unbound()})
	require.NoError(t, err)
	require.False(t, ok)
}

// TestCutCommitsToFirstClause builds first(X) :- choice(X), ! by hand: two
// facts for choice/1, and a rule whose body calls choice/1 then cuts. Only
// one solution should ever be produced, even though choice/1 itself has two.
func TestCutCommitsToFirstClause(t *testing.T) {
	choice := newPred("choice", 1)
	choice.Clauses = []*CompiledClause{
		fact(nil, choice, ObjCell("a")),
		fact(nil, choice, ObjCell("b")),
	}

	first := newPred("first", 1)
	// head: HeadVarFirst(slot 0) -- bind env slot 0 to the caller's argument.
	var head Assembler
	head.Emit(HeadVarFirst, 0)

	choiceIdx := first.Pool.AddObject(choice.Indicator)
	var body Assembler
	body.Emit(CCall, uint32(choiceIdx))
	body.Emit(GoalVarFirst, 0) // pass env slot 0 (X) as choice's argument
	body.Emit(CCut, 0)
	body.Emit(CNoGoal, 0)

	first.Clauses = []*CompiledClause{
		{HeadCode: head.Code, BodyCode: body.Code, EnvSize: 1, Owner: first, Pool: &first.Pool},
	}

	resolver := testResolver{choice.Indicator: choice, first.Indicator: first}
	m := NewMachine(resolver, 64)

	ok, err := m.Solve(context.Background(), first.Indicator, []Cell{Unbound()})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a", m.ArgCell(0).Obj)

	ok, err = m.NextSolution()
	require.NoError(t, err)
	require.False(t, ok, "cut must prevent backtracking into choice/1's second fact")
}

func TestEvalFVMArithmetic(t *testing.T) {
	var pool ConstantPool
	two := pool.AddInt(2)
	three := pool.AddInt(3)

	// (2 + 3) * 2
	var f FAssembler
	f.Emit(FConst, uint32(two))
	f.Emit(FConst, uint32(three))
	f.Emit(FAdd, 0)
	f.Emit(FConst, uint32(two))
	f.Emit(FMul, 0)
	f.Emit(FReturn, 0)

	m := &Machine{}
	result, err := m.evalFVM(f.Code, &pool, 0)
	require.NoError(t, err)
	require.Equal(t, IntCell(10), result)
}

func TestEvalFVMComparison(t *testing.T) {
	var pool ConstantPool
	a := pool.AddInt(5)
	b := pool.AddInt(7)

	var f FAssembler
	f.Emit(FConst, uint32(a))
	f.Emit(FConst, uint32(b))
	f.Emit(FLt, 0)
	f.Emit(FReturn, 0)

	m := &Machine{}
	result, err := m.evalFVM(f.Code, &pool, 0)
	require.NoError(t, err)
	require.True(t, result.Bool())
}

func TestBudgetExceedsMaxSteps(t *testing.T) {
	b := Budget{MaxSteps: 2}
	b.start()
	require.Nil(t, b.tick(nil))
	require.Nil(t, b.tick(nil))
	err := b.tick(nil)
	require.Error(t, err)
	require.Equal(t, ErrBudget, err.Kind)
}

func TestThrowPropagatesAsError(t *testing.T) {
	thrower := newPred("boom", 1)
	thrower.Kind = KindPrimop
	thrower.Primop = BuiltinThrow

	var head Assembler
	head.Emit(HeadVarFirst, 0)
	// single synthetic clause whose body is exactly CSpecial, per the
	// table/primop representation.
	var body Assembler
	body.Emit(CSpecial, 0)
	thrower.Clauses = []*CompiledClause{
		{HeadCode: head.Code, BodyCode: body.Code, EnvSize: 1, Owner: thrower, Pool: &thrower.Pool},
	}

	resolver := testResolver{thrower.Indicator: thrower}
	m := NewMachine(resolver, 64)

	_, err := m.Solve(context.Background(), thrower.Indicator, []Cell{IntCell(1)})
	require.Error(t, err)
	ve, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ErrDomain, ve.Kind)
}
