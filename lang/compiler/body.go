package compiler

import (
	"fmt"

	"github.com/rzubek/botl/lang/ast"
	"github.com/rzubek/botl/lang/vm"
)

// flattenConj linearizes a conjunction term into its goal sequence. The
// parser's precedence climbing produces a left-associative tree (`(A,B),C`
// parses as that shape, not `A,(B,C)`), but flattenConj recurses into both
// sides of every "," node it finds so the result is correct regardless of
// associativity.
func flattenConj(t ast.Term) []ast.Term {
	c, ok := ast.IsConjunction(t)
	if !ok {
		return []ast.Term{t}
	}
	return append(flattenConj(c.Args[0]), flattenConj(c.Args[1])...)
}

// comparisonFExprFunctors are the comparison operators the parser can
// produce from infix syntax that also have a direct FOpcode: these compile
// to an inline CFuncExpr condition rather than a predicate call.
var comparisonFExprFunctors = map[string]bool{
	"<": true, ">": true, "<=": true, ">=": true, "==": true,
}

// compileGoal compiles one conjunct of a clause body. isLast controls
// whether an ordinary predicate call is emitted as CCall or CLastCall (last-
// call optimisation): only the final goal of a body has no bytecode left to
// resume, so only it hands its clause's continuation straight to the callee.
func (c *Compiler) compileGoal(ctx *clauseCtx, body *vm.Assembler, pool *vm.ConstantPool, g ast.Term, isLast bool) error {
	if ast.IsCut(g) {
		body.Emit(vm.CCut, 0)
		return nil
	}

	if disj, ok := ast.IsDisjunction(g); ok {
		return c.compileDisjunction(ctx, body, pool, disj, isLast)
	}

	if call, ok := g.(*ast.Call); ok {
		if call.Functor.Name() == "call" {
			return c.compileMetaCall(ctx, body, pool, call, isLast)
		}
		if comparisonFExprFunctors[call.Functor.Name()] && len(call.Args) == 2 {
			prog, err := compileFExpr(ctx, pool, call)
			if err != nil {
				return err
			}
			body.Emit(vm.CFuncExpr, uint32(pool.AddObject(prog)))
			return nil
		}
	}

	name, arity, ok := ast.Indicator(g)
	if !ok {
		return fmt.Errorf("goal at %s is not callable", g.Pos())
	}
	ind := vm.Indicator{Name: c.Store.Symbols.Intern(name.Name()), Arity: arity}
	return c.emitCall(ctx, body, pool, ind, callArgs(g), isLast)
}

// emitCall emits a CCall/CLastCall to ind with args compiled as goal
// arguments.
func (c *Compiler) emitCall(ctx *clauseCtx, body *vm.Assembler, pool *vm.ConstantPool, ind vm.Indicator, args []ast.Term, isLast bool) error {
	op := vm.CCall
	if isLast {
		op = vm.CLastCall
	}
	body.Emit(op, uint32(pool.AddObject(ind)))
	for _, a := range args {
		if err := emitGoalArg(ctx, body, pool, a); err != nil {
			return fmt.Errorf("%s: %w", ind, err)
		}
	}
	return nil
}

func callArgs(t ast.Term) []ast.Term {
	if c, ok := t.(*ast.Call); ok {
		return c.Args
	}
	return nil
}

// compileMetaCall compiles `call(G, Extra...)` (spec.md §6 meta-call). The
// target predicate must be statically known: G is either a bare atom (the
// predicate name, arity = len(Extra)) or a partially-applied call term
// (its own args are prepended to Extra). A variable G can't be resolved
// without a runtime compound-term representation, which this Cell model
// doesn't have, so that case is a compile error rather than a silent
// no-op.
func (c *Compiler) compileMetaCall(ctx *clauseCtx, body *vm.Assembler, pool *vm.ConstantPool, call *ast.Call, isLast bool) error {
	goal := call.Args[0]
	extra := call.Args[1:]

	var funcName string
	var baseArgs []ast.Term
	switch g := goal.(type) {
	case *ast.Sym:
		funcName = g.Name.Name()
	case *ast.Call:
		funcName = g.Functor.Name()
		baseArgs = g.Args
	default:
		return fmt.Errorf("call/%d at %s: meta-call target must be statically known", len(call.Args), call.Pos())
	}

	args := append(append([]ast.Term{}, baseArgs...), extra...)
	ind := vm.Indicator{Name: c.Store.Symbols.Intern(funcName), Arity: len(args)}
	return c.emitCall(ctx, body, pool, ind, args, isLast)
}

// compileDisjunction compiles `A ; B` as a call to a freshly-gensymmed
// nested predicate with two clauses, one per disjunct, each taking every
// variable referenced anywhere in the disjunction as an argument (spec.md
// §4.3's compiled representation for disjunction). Passing every referenced
// variable, rather than only ones proven to escape, is a conservative
// over-approximation: a variable local to one branch still round-trips
// through an argument slot, which is harmless, just not free.
func (c *Compiler) compileDisjunction(ctx *clauseCtx, body *vm.Assembler, pool *vm.ConstantPool, disj *ast.Call, isLast bool) error {
	captured := scanVars(disj).order

	genName := c.nextGensym("or")
	ind := vm.Indicator{Name: c.Store.Symbols.Intern(genName), Arity: len(captured)}
	p := c.Store.Predicate(ind)
	p.IsNestedPredicate = true
	bpool := &p.Pool

	for _, branch := range disj.Args {
		if err := c.compileDisjunctBranch(ind, bpool, captured, branch); err != nil {
			return err
		}
	}

	args := make([]ast.Term, len(captured))
	for i, name := range captured {
		args[i] = ast.NewVar(name, disj.Pos())
	}
	return c.emitCall(ctx, body, pool, ind, args, isLast)
}

func (c *Compiler) compileDisjunctBranch(ind vm.Indicator, pool *vm.ConstantPool, captured []string, branch ast.Term) error {
	bctx := &clauseCtx{slots: map[string]int{}, seen: map[string]bool{}}
	for i, name := range captured {
		bctx.slots[name] = i
		bctx.seen[name] = true
	}
	bctx.next = len(captured)

	var head vm.Assembler
	for i := range captured {
		head.Emit(vm.HeadVarFirst, uint32(i))
	}

	var bodyAsm vm.Assembler
	goals := flattenConj(branch)
	for i, g := range goals {
		if err := c.compileGoal(bctx, &bodyAsm, pool, g, i == len(goals)-1); err != nil {
			return fmt.Errorf("%s (disjunct): %w", ind, err)
		}
	}

	clause := &vm.CompiledClause{HeadCode: head.Code, BodyCode: bodyAsm.Code, EnvSize: bctx.next}
	return c.Store.AddClause(ind, clause)
}

// exprFunctors are the functors emitGoalArg compiles through the F-VM
// expression compiler rather than rejecting as an unsupported nested
// compound.
var exprFunctors = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "$array": true,
	"<": true, ">": true, "<=": true, ">=": true, "==": true,
}

// emitGoalArg emits one goal-position argument opcode.
func emitGoalArg(ctx *clauseCtx, body *vm.Assembler, pool *vm.ConstantPool, arg ast.Term) error {
	switch v := arg.(type) {
	case *ast.Var:
		if v.Anonymous() {
			body.Emit(vm.GoalVoid, 0)
			return nil
		}
		slot := ctx.varSlot(v.Name)
		if ctx.seen[v.Name] {
			body.Emit(vm.GoalVarMatch, uint32(slot))
		} else {
			ctx.seen[v.Name] = true
			body.Emit(vm.GoalVarFirst, uint32(slot))
		}
	case *ast.Int:
		body.EmitConst(vm.GoalConst, vm.ConstInt, uint32(pool.AddInt(v.Value)))
	case *ast.Float:
		body.EmitConst(vm.GoalConst, vm.ConstFloat, uint32(pool.AddFloat(float64(v.Value))))
	case *ast.Bool:
		body.EmitConst(vm.GoalConst, vm.ConstBool, boolOperand(v.Value))
	case *ast.Str:
		body.EmitConst(vm.GoalConst, vm.ConstObject, uint32(pool.AddObject(v.Value)))
	case *ast.Sym:
		if v.Name.Name() == "$array" {
			// empty list literal
			prog, err := compileFExpr(ctx, pool, v)
			if err != nil {
				return err
			}
			body.EmitConst(vm.GoalConst, vm.ConstFuncExpr, uint32(pool.AddObject(prog)))
			return nil
		}
		body.EmitConst(vm.GoalConst, vm.ConstObject, uint32(pool.AddObject(v.Name.Name())))
	case *ast.Call:
		if !exprFunctors[v.Functor.Name()] {
			return fmt.Errorf("nested compound term %q is not supported as a call argument", v.Functor.Name())
		}
		prog, err := compileFExpr(ctx, pool, v)
		if err != nil {
			return err
		}
		body.EmitConst(vm.GoalConst, vm.ConstFuncExpr, uint32(pool.AddObject(prog)))
	default:
		return fmt.Errorf("unsupported argument term %T", arg)
	}
	return nil
}
