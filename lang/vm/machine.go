package vm

import "context"

// Resolver looks up a predicate by indicator. lang/store implements it; vm
// depends only on the interface so the two packages don't import each other
// (store builds on top of vm's Predicate/CompiledClause types, not the
// reverse).
type Resolver interface {
	Lookup(Indicator) (*Predicate, bool)
}

// maxCallDepth guards against runaway recursion growing Go's own call stack
// without bound. CLastCall does not reset the depth: every predicate call,
// tail call or not, adds one level, so tail-recursive loops are bounded by
// this limit too.
const maxCallDepth = 100_000

// Machine is one instance of the Goal VM: a data stack, a predicate
// resolver, and the state needed to drive a single in-progress query's
// incremental enumeration of solutions (spec.md §4 "Solve returns the first
// solution; NextSolution backtracks for the next one").
//
// Solve/NextSolution expose an iterator over a search that is, underneath,
// one ordinary recursive descent: the goroutine started by Solve runs the
// whole backtracking search and parks at every success by sending on
// resultCh and blocking on resumeCh, so the Go call stack beneath the parked
// point — which is exactly the set of pending clause alternatives, i.e. the
// choice points spec.md asks for — stays alive across the Solve/NextSolution
// call boundary without the caller ever seeing a goroutine. Cut does not use
// this channel at all: it is a within-query control signal carried by
// cutBarrier tokens threaded through Goal continuations (see stack.go).
type Machine struct {
	Stack    *Stack
	Resolver Resolver
	Budget   Budget

	// MaxCallDepth overrides maxCallDepth when non-zero (lang/engine.Config's
	// BOTL_MAX_CALL_DEPTH knob).
	MaxCallDepth int

	// Trace, when set, is called on every call to a predicate with IsTraced
	// set (the trace/1 declaration), or on every call at all when TraceAll
	// is set (lang/engine.Config's BOTL_TRACE knob).
	Trace    func(ind Indicator, depth int)
	TraceAll bool

	ctx context.Context

	argBase int
	arity   int
	thrown  error // set by the throw/1 primop; checked right after a Primop call returns

	resultCh chan solveResult
	resumeCh chan bool
	active   bool
}

type solveResult struct {
	solved bool
	err    error
}

// NewMachine returns a Machine with a freshly allocated data stack.
func NewMachine(resolver Resolver, stackCapacity int) *Machine {
	return &Machine{
		Stack:    NewStack(stackCapacity),
		Resolver: resolver,
		Budget:   DefaultBudget,
	}
}

// Solve starts a new query: resolve ind against args, returning the first
// solution if one exists. Bound argument cells can be read back with
// ArgCell. A prior unfinished query, if any, is stopped first.
func (m *Machine) Solve(ctx context.Context, ind Indicator, args []Cell) (bool, error) {
	if m.active {
		m.Stop()
	}
	pred, ok := m.Resolver.Lookup(ind)
	if !ok {
		return false, newError(ErrExistence, ind, "unknown predicate")
	}
	if pred.Indicator.Arity != len(args) {
		return false, newError(ErrType, ind, "called with %d arguments, expected %d", len(args), pred.Indicator.Arity)
	}

	argBase := m.Stack.Alloc(len(args))
	for i, c := range args {
		m.Stack.Set(argBase+i, c)
	}
	m.argBase = argBase
	m.arity = len(args)
	m.ctx = ctx
	m.Budget.start()

	m.resultCh = make(chan solveResult)
	m.resumeCh = make(chan bool)
	m.active = true

	go func() {
		_, _, err := m.callPredicate(pred, argBase, nil, 0)
		m.resultCh <- solveResult{solved: false, err: err}
		close(m.resultCh)
	}()

	return m.awaitNext()
}

// NextSolution backtracks into the in-progress query for another solution.
// It reports false, nil once the search is exhausted.
func (m *Machine) NextSolution() (bool, error) {
	if !m.active {
		return false, nil
	}
	m.resumeCh <- true
	return m.awaitNext()
}

// Stop abandons an in-progress query without exhausting it. Safe to call
// even if no query is active.
func (m *Machine) Stop() {
	if !m.active {
		return
	}
	close(m.resumeCh)
	for range m.resultCh {
	}
	m.active = false
}

func (m *Machine) awaitNext() (bool, error) {
	res, ok := <-m.resultCh
	if !ok {
		m.active = false
		return false, nil
	}
	if res.err != nil {
		m.active = false
		return false, res.err
	}
	if res.solved {
		return true, nil
	}
	m.active = false
	return false, nil
}

// ArgCell returns the fully-dereferenced cell bound to Solve's i'th argument.
func (m *Machine) ArgCell(i int) Cell {
	_, c := m.Stack.Deref(m.argBase + i)
	return c
}

// success is reached whenever a continuation chain runs out (Goal == nil):
// every goal in the query has succeeded. It reports the solution to whoever
// is waiting on resultCh and parks until told whether to keep searching.
func (m *Machine) success() (abort bool, cut *cutBarrier, err error) {
	m.resultCh <- solveResult{solved: true}
	cont, ok := <-m.resumeCh
	if !ok || !cont {
		return true, nil, nil
	}
	return false, nil, nil
}

// runGoal resumes continuation g, or reports success if g is nil.
func (m *Machine) runGoal(g *Goal) (abort bool, cut *cutBarrier, err error) {
	if g == nil {
		return m.success()
	}
	return m.runBody(g.Clause, g.PC, g.EnvBase, g.Barrier, g.Depth, g.Next)
}

// callPredicate tries pred's clauses in order against argBase's arguments,
// running cont after each clause whose head matches. It returns once either
// the consumer has aborted enumeration (abort==true), an error was thrown,
// a cut fired that this call does not own (cut != nil, propagate upward), or
// every clause has been tried without finding a path the consumer accepted.
func (m *Machine) callPredicate(pred *Predicate, argBase int, cont *Goal, depth int) (abort bool, cut *cutBarrier, err error) {
	limit := maxCallDepth
	if m.MaxCallDepth > 0 {
		limit = m.MaxCallDepth
	}
	if depth > limit {
		return false, nil, newError(ErrBudget, pred.Indicator, "exceeded max call depth (%d)", limit)
	}
	if stepErr := m.Budget.tick(m.ctx); stepErr != nil {
		return false, nil, stepErr
	}
	if (pred.IsTraced || m.TraceAll) && m.Trace != nil {
		m.Trace(pred.Indicator, depth)
	}

	barrier := &cutBarrier{}
	for _, clause := range pred.Clauses {
		mark := m.Stack.TrailMark()
		top := m.Stack.Top()
		envBase := m.Stack.Alloc(clause.EnvSize)

		matched, herr := m.runHead(clause, argBase, envBase)
		if herr != nil {
			return false, nil, herr
		}
		if matched {
			abort, bodyCut, berr := m.runBody(clause, 0, envBase, barrier, depth+1, cont)
			if berr != nil {
				return false, nil, berr
			}
			if abort {
				return true, nil, nil
			}
			if bodyCut != nil {
				m.Stack.Undo(mark)
				m.Stack.Shrink(top)
				if bodyCut == barrier {
					return false, nil, nil // my own cut: stop trying my remaining clauses
				}
				return false, bodyCut, nil // an ancestor's cut: keep propagating
			}
		}
		m.Stack.Undo(mark)
		m.Stack.Shrink(top)
	}
	return false, nil, nil
}

// runHead matches clause's head against the arguments at argBase, binding
// its environment slots as it goes.
func (m *Machine) runHead(clause *CompiledClause, argBase, envBase int) (bool, error) {
	code := clause.HeadCode
	pc := 0
	argIdx := 0
	for pc < len(code) {
		op := Opcode(code[pc])
		pc++
		switch op {
		case HeadVoid:
			argIdx++
		case HeadVarFirst, HeadVarMatch:
			slot, n := readUvarint(code, pc)
			pc = n
			if !Unify(m.Stack, envBase+int(slot), argBase+argIdx) {
				return false, nil
			}
			argIdx++
		case HeadConst:
			kind := ConstKind(code[pc])
			pc++
			idx, n := readUvarint(code, pc)
			pc = n
			lit, err := m.constCell(clause.Pool, kind, idx)
			if err != nil {
				return false, err
			}
			if !UnifyValue(m.Stack, argBase+argIdx, lit) {
				return false, nil
			}
			argIdx++
		default:
			return false, newError(ErrType, clause.Owner.Indicator, "malformed bytecode: unexpected head opcode %v", op)
		}
	}
	return true, nil
}

// runBody resumes clause's BodyCode at pc (0 at first entry, or a saved
// resumption point when a prior non-tail call into this body succeeds) and
// runs until it either makes the clause's next call (delegating the rest of
// the bytecode onward as a Goal continuation), reaches CNoGoal/end of code
// (the clause's body is satisfied; hand off to cont), or fails.
func (m *Machine) runBody(clause *CompiledClause, pc, envBase int, barrier *cutBarrier, depth int, cont *Goal) (abort bool, cut *cutBarrier, err error) {
	// wrap is where every exit from this function funnels through. Its job
	// is to convert a clean "no more alternatives below me" result (false,
	// nil, nil) into a cut signal if this body's own barrier has fired by
	// the time that result bubbles back up here — catching not just the
	// call site where cut was last executed (handled inline there too) but
	// also the CNoGoal exit, which delegates straight to cont without a
	// call of its own and would otherwise let backtracking sneak past a cut
	// that fired earlier in this very body.
	wrap := func(a bool, c *cutBarrier, e error) (bool, *cutBarrier, error) {
		if !a && c == nil && e == nil && barrier.fired {
			return false, barrier, nil
		}
		return a, c, e
	}

	code := clause.BodyCode
	for pc < len(code) {
		op := Opcode(code[pc])
		pc++

		switch op {
		case CNoGoal:
			return wrap(m.runGoal(cont))

		case CCut:
			barrier.fired = true
			continue

		case CFuncExpr:
			idx, n := readUvarint(code, pc)
			pc = n
			prog, _ := clause.Pool.Objects[idx].([]byte)
			val, ferr := m.evalFVM(prog, clause.Pool, envBase)
			if ferr != nil {
				return false, nil, ferr
			}
			if val.Bool() {
				continue
			}
			return wrap(false, nil, nil)

		case CCall, CLastCall, CSpecial:
			poolIdx, n := readUvarint(code, pc)
			pc = n

			var target *Predicate
			if op == CSpecial {
				target = clause.Owner
			} else {
				ref, rok := clause.Pool.Objects[poolIdx].(Indicator)
				if !rok {
					return false, nil, newError(ErrType, clause.Owner.Indicator, "malformed bytecode: call operand is not a predicate reference")
				}
				target, rok = m.Resolver.Lookup(ref)
				if !rok {
					return false, nil, newError(ErrExistence, ref, "unknown predicate")
				}
			}

			arity := target.Indicator.Arity
			var argBase int
			if op == CSpecial {
				// The special clause's own environment slots double as its
				// argument registers: the head already read every caller
				// argument into env slots 0..arity-1.
				argBase = envBase
			} else {
				argBase = m.Stack.Alloc(arity)
				for i := 0; i < arity; i++ {
					gop := Opcode(code[pc])
					pc++
					switch gop {
					case GoalVoid:
						m.Stack.Set(argBase+i, Unbound())
					case GoalVarFirst, GoalVarMatch:
						slot, gn := readUvarint(code, pc)
						pc = gn
						m.Stack.Set(argBase+i, RefCell(envBase+int(slot)))
					case GoalConst:
						kind := ConstKind(code[pc])
						pc++
						idx, gn := readUvarint(code, pc)
						pc = gn
						if kind == ConstFuncExpr {
							prog, _ := clause.Pool.Objects[idx].([]byte)
							val, ferr := m.evalFVM(prog, clause.Pool, envBase)
							if ferr != nil {
								return false, nil, ferr
							}
							m.Stack.Set(argBase+i, val)
						} else {
							lit, cerr := m.constCell(clause.Pool, kind, idx)
							if cerr != nil {
								return false, nil, cerr
							}
							m.Stack.Set(argBase+i, lit)
						}
					default:
						return false, nil, newError(ErrType, clause.Owner.Indicator, "malformed bytecode: expected goal-arg opcode, got %v", gop)
					}
				}
			}

			var nextCont *Goal
			if op == CLastCall {
				nextCont = cont
			} else {
				nextCont = &Goal{Clause: clause, PC: pc, EnvBase: envBase, Barrier: barrier, Depth: depth, Next: cont}
			}

			return wrap(m.dispatch(target, argBase, nextCont, depth))

		default:
			return false, nil, newError(ErrType, clause.Owner.Indicator, "malformed bytecode: unexpected body opcode %v", op)
		}
	}
	return wrap(m.runGoal(cont))
}

// dispatch invokes target according to its Kind. Rule predicates go through
// the ordinary clause-trial loop (callPredicate); table and primop
// predicates are represented as a single synthetic clause whose body is
// exactly [CSpecial], so CSpecial reaching here means "invoke the row
// iterator or native callback instead of trying more clauses."
func (m *Machine) dispatch(target *Predicate, argBase int, cont *Goal, depth int) (abort bool, cut *cutBarrier, err error) {
	switch target.Kind {
	case KindPrimop:
		mark := m.Stack.TrailMark()
		ok := target.Primop(m, argBase)
		if m.thrown != nil {
			thrown := m.thrown
			m.thrown = nil
			return false, nil, thrown
		}
		if ok {
			abort, cut, err := m.runGoal(cont)
			if abort || err != nil || cut != nil {
				return abort, cut, err
			}
		}
		m.Stack.Undo(mark)
		return false, nil, nil

	case KindTable:
		for _, row := range target.Rows {
			mark := m.Stack.TrailMark()
			if matchRow(m.Stack, argBase, row) {
				abort, cut, err := m.runGoal(cont)
				if abort || err != nil || cut != nil {
					return abort, cut, err
				}
			}
			m.Stack.Undo(mark)
		}
		return false, nil, nil

	default: // KindRule
		return m.callPredicate(target, argBase, cont, depth)
	}
}

// matchRow unifies a table row's values against the arguments starting at
// argBase, stopping at the first mismatch.
func matchRow(s *Stack, argBase int, row TableRow) bool {
	for i, v := range row {
		if !UnifyValue(s, argBase+i, v) {
			return false
		}
	}
	return true
}

// constCell materializes a HeadConst/GoalConst literal operand. Kind
// ConstFuncExpr is handled by the caller (it needs an env base to evaluate
// against) and never reaches here.
func (m *Machine) constCell(pool *ConstantPool, kind ConstKind, idx uint32) (Cell, error) {
	switch kind {
	case ConstInt:
		return IntCell(pool.Ints[idx]), nil
	case ConstFloat:
		return FloatCell(pool.Floats[idx]), nil
	case ConstBool:
		return BoolCell(idx != 0), nil
	case ConstObject, ConstPredRef:
		return ObjCell(pool.Objects[idx]), nil
	default:
		return Cell{}, newError(ErrType, Indicator{}, "malformed bytecode: unexpected const kind %d", kind)
	}
}
