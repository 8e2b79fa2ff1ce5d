package compiler

import (
	"fmt"

	"github.com/rzubek/botl/lang/ast"
	"github.com/rzubek/botl/lang/vm"
)

// clauseCtx tracks per-clause environment-slot allocation (Pass 3) and
// first-occurrence bookkeeping (Pass 6/7) while head and body bytecode are
// emitted. Slots are assigned lazily, in the same left-to-right order the
// emitter visits terms, which is exactly Pass 3's "textual first occurrence"
// rule — no separate pre-pass is needed to get the same numbering a
// dedicated analysis pass would produce.
type clauseCtx struct {
	slots map[string]int
	next  int
	seen  map[string]bool
}

func (ctx *clauseCtx) varSlot(name string) int {
	if slot, ok := ctx.slots[name]; ok {
		return slot
	}
	slot := ctx.next
	ctx.next++
	ctx.slots[name] = slot
	return slot
}

func (ctx *clauseCtx) slotOf(name string) (int, bool) {
	slot, ok := ctx.slots[name]
	return slot, ok
}

// varScan collects every named (non-anonymous) variable occurrence across
// one or more terms, in first-occurrence order, with a total occurrence
// count per name (Pass 7's singleton-variable check).
type varScan struct {
	order  []string
	counts map[string]int
}

func (vs *varScan) Visit(t ast.Term) ast.Visitor {
	if v, ok := t.(*ast.Var); ok && !v.Anonymous() {
		if vs.counts[v.Name] == 0 {
			vs.order = append(vs.order, v.Name)
		}
		vs.counts[v.Name]++
	}
	return vs
}

func scanVars(terms ...ast.Term) *varScan {
	vs := &varScan{counts: map[string]int{}}
	for _, t := range terms {
		if t != nil {
			ast.Walk(vs, t)
		}
	}
	return vs
}

// QueryVariables returns the distinct named variables occurring in t, in
// first-occurrence order. lang/engine.Engine.Run uses this to build the
// argument list of the synthetic predicate it compiles a top-level query
// goal into, so it can read the query's variable bindings back off the
// Goal VM's argument registers after a successful Solve.
func QueryVariables(t ast.Term) []string {
	return scanVars(t).order
}

// compileClause runs Passes 3 through 7 over a single non-declaration
// top-level term: a fact (bare callable head) or a rule (Head :- Body).
func (c *Compiler) compileClause(t ast.Term) error {
	var head, bodyTerm ast.Term
	if r, ok := ast.IsRule(t); ok {
		head, bodyTerm = r.Args[0], r.Args[1]
	} else {
		head = t
	}

	name, arity, ok := ast.Indicator(head)
	if !ok {
		return fmt.Errorf("compiler: clause head at %s is not callable", t.Pos())
	}

	// A ground two-argument fact whose functor is one of the EL edge
	// operators asserts into the EL tree instead of compiling into a
	// predicate (spec.md §3's "/", ":", "/>" edge declarations).
	if bodyTerm == nil {
		if hc, ok2 := head.(*ast.Call); ok2 && len(hc.Args) == 2 {
			if a0, ok3 := atomName(hc.Args[0]); ok3 {
				if a1, ok4 := atomName(hc.Args[1]); ok4 {
					if c.Store.EL.AssertFunctor(hc.Functor.Name(), a0, a1) {
						return nil
					}
				}
			}
		}
	}

	ind := vm.Indicator{Name: c.Store.Symbols.Intern(name.Name()), Arity: arity}

	if existing, found := c.Store.Lookup(ind); found && existing.Kind == vm.KindTable {
		if bodyTerm != nil {
			return fmt.Errorf("compiler: %s: cannot add a rule body to a table predicate at %s", ind, t.Pos())
		}
		row, err := groundRow(head)
		if err != nil {
			return fmt.Errorf("compiler: %s: %w", ind, err)
		}
		return c.Store.AddRow(ind, row)
	}

	p := c.Store.Predicate(ind)
	pool := &p.Pool
	ctx := &clauseCtx{slots: map[string]int{}, seen: map[string]bool{}}

	var headAsm vm.Assembler
	if hc, ok2 := head.(*ast.Call); ok2 {
		for _, a := range hc.Args {
			if err := emitHeadArg(ctx, &headAsm, pool, a); err != nil {
				return fmt.Errorf("compiler: %s: %w", ind, err)
			}
		}
	}

	var bodyAsm vm.Assembler
	if bodyTerm == nil {
		bodyAsm.Emit(vm.CNoGoal, 0)
	} else {
		goals := flattenConj(bodyTerm)
		for i, g := range goals {
			if err := c.compileGoal(ctx, &bodyAsm, pool, g, i == len(goals)-1); err != nil {
				return fmt.Errorf("compiler: %s: %w", ind, err)
			}
		}
	}

	c.warnSingletons(head, bodyTerm)

	line, _ := t.Pos().LineCol()
	clause := &vm.CompiledClause{
		Source:   t,
		HeadCode: headAsm.Code,
		BodyCode: bodyAsm.Code,
		EnvSize:  ctx.next,
		File:     c.File,
		Line:     line,
	}
	return c.Store.AddClause(ind, clause)
}

func (c *Compiler) warnSingletons(head, bodyTerm ast.Term) {
	vs := scanVars(head, bodyTerm)
	for _, name := range vs.order {
		if vs.counts[name] == 1 {
			c.warnf(head.Pos(), "singleton variable %s", name)
		}
	}
}

// groundRow evaluates a fully ground fact head into a table row, used when a
// fact's indicator was already declared `table`.
func groundRow(head ast.Term) (vm.TableRow, error) {
	hc, ok := head.(*ast.Call)
	if !ok {
		return nil, nil
	}
	row := make(vm.TableRow, len(hc.Args))
	for i, a := range hc.Args {
		cell, err := groundCell(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		row[i] = cell
	}
	return row, nil
}

// groundCell converts a literal term into its runtime Cell. Variables and
// nested compounds have no ground representation.
func groundCell(t ast.Term) (vm.Cell, error) {
	switch v := t.(type) {
	case *ast.Int:
		return vm.IntCell(v.Value), nil
	case *ast.Float:
		return vm.FloatCell(float64(v.Value)), nil
	case *ast.Bool:
		return vm.BoolCell(v.Value), nil
	case *ast.Str:
		return vm.ObjCell(v.Value), nil
	case *ast.Sym:
		return vm.ObjCell(v.Name.Name()), nil
	default:
		return vm.Cell{}, fmt.Errorf("not a ground literal: %s", t)
	}
}

// emitHeadArg emits one head-position argument opcode. Heads are patterns
// only: a nested compound term has no runtime representation to unify
// against (this language's Cell has no compound/structure tag), so it is a
// compile error rather than a silently-dropped feature.
func emitHeadArg(ctx *clauseCtx, head *vm.Assembler, pool *vm.ConstantPool, arg ast.Term) error {
	switch v := arg.(type) {
	case *ast.Var:
		if v.Anonymous() {
			head.Emit(vm.HeadVoid, 0)
			return nil
		}
		slot := ctx.varSlot(v.Name)
		if ctx.seen[v.Name] {
			head.Emit(vm.HeadVarMatch, uint32(slot))
		} else {
			ctx.seen[v.Name] = true
			head.Emit(vm.HeadVarFirst, uint32(slot))
		}
	case *ast.Int:
		head.EmitConst(vm.HeadConst, vm.ConstInt, uint32(pool.AddInt(v.Value)))
	case *ast.Float:
		head.EmitConst(vm.HeadConst, vm.ConstFloat, uint32(pool.AddFloat(float64(v.Value))))
	case *ast.Bool:
		head.EmitConst(vm.HeadConst, vm.ConstBool, boolOperand(v.Value))
	case *ast.Str:
		head.EmitConst(vm.HeadConst, vm.ConstObject, uint32(pool.AddObject(v.Value)))
	case *ast.Sym:
		head.EmitConst(vm.HeadConst, vm.ConstObject, uint32(pool.AddObject(v.Name.Name())))
	default:
		return fmt.Errorf("nested compound terms are not supported in head arguments (got %T)", arg)
	}
	return nil
}

func boolOperand(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
