package vm

// The functions in this file are the native predicates (spec.md §5
// "Primops") installed by lang/store at startup: type tests, unification
// control, and the handful of control predicates (true/0, fail/0, throw/1)
// that don't fit the ordinary clause-trial model because they need direct
// access to the Machine.

// BuiltinTrue always succeeds (true/0).
func BuiltinTrue(m *Machine, argBase int) bool { return true }

// BuiltinFail always fails (fail/0).
func BuiltinFail(m *Machine, argBase int) bool { return false }

// BuiltinUnify is =/2: unify the two arguments, binding whichever side is
// unbound.
func BuiltinUnify(m *Machine, argBase int) bool {
	return Unify(m.Stack, argBase, argBase+1)
}

// BuiltinNotUnify is \=/2: succeed only if the two arguments do not unify,
// leaving no bindings behind either way.
func BuiltinNotUnify(m *Machine, argBase int) bool {
	mark := m.Stack.TrailMark()
	ok := Unify(m.Stack, argBase, argBase+1)
	m.Stack.Undo(mark)
	return !ok
}

// BuiltinVar is var/1.
func BuiltinVar(m *Machine, argBase int) bool {
	_, c := m.Stack.Deref(argBase)
	return c.Tag == TagUnbound
}

// BuiltinNonvar is nonvar/1.
func BuiltinNonvar(m *Machine, argBase int) bool {
	_, c := m.Stack.Deref(argBase)
	return c.Tag != TagUnbound
}

// BuiltinAtomic is atomic/1: bound to a ground scalar, any tag but unbound.
func BuiltinAtomic(m *Machine, argBase int) bool {
	_, c := m.Stack.Deref(argBase)
	return c.Tag != TagUnbound
}

// BuiltinNumber is number/1.
func BuiltinNumber(m *Machine, argBase int) bool {
	_, c := m.Stack.Deref(argBase)
	return c.Tag == TagInt || c.Tag == TagFloat
}

// BuiltinInteger is integer/1.
func BuiltinInteger(m *Machine, argBase int) bool {
	_, c := m.Stack.Deref(argBase)
	return c.Tag == TagInt
}

// BuiltinAtom is atom/1: a bound object cell carrying an interned symbol or
// string, as opposed to a number, bool, or host value.
func BuiltinAtom(m *Machine, argBase int) bool {
	_, c := m.Stack.Deref(argBase)
	if c.Tag != TagObj {
		return false
	}
	switch c.Obj.(type) {
	case string:
		return true
	default:
		return isSymbol(c.Obj)
	}
}

// isSymbol reports whether v is an interned *symbol.Symbol without this
// package importing lang/symbol for a type assertion alone; a second
// assertion site (lang/store, which does import symbol) is what actually
// produces these cells, so this only needs to recognize the shape.
func isSymbol(v any) bool {
	type named interface{ Name() string }
	_, ok := v.(named)
	return ok
}

// compareNumArgs backs </2, >/2, <=/2, >=/2, =:=/2, =\=/2 by delegating to
// the F-VM's comparison opcodes on two already-evaluated numeric cells, so
// the six primops are thin wrappers around one FOpcode each (lang/store
// registers each indicator with its BuiltinNum* wrapper below).
func compareNumArgs(m *Machine, argBase int, op FOpcode) bool {
	_, a := m.Stack.Deref(argBase)
	_, b := m.Stack.Deref(argBase + 1)
	c, err := compare(op, a, b)
	if err != nil {
		m.thrown = err
		return false
	}
	return c.Bool()
}

// BuiltinNumLt is </2.
func BuiltinNumLt(m *Machine, argBase int) bool { return compareNumArgs(m, argBase, FLt) }

// BuiltinNumLe is <=/2.
func BuiltinNumLe(m *Machine, argBase int) bool { return compareNumArgs(m, argBase, FLe) }

// BuiltinNumGt is >/2.
func BuiltinNumGt(m *Machine, argBase int) bool { return compareNumArgs(m, argBase, FGt) }

// BuiltinNumGe is >=/2.
func BuiltinNumGe(m *Machine, argBase int) bool { return compareNumArgs(m, argBase, FGe) }

// BuiltinNumEq is =:=/2.
func BuiltinNumEq(m *Machine, argBase int) bool { return compareNumArgs(m, argBase, FEq) }

// BuiltinNumNeq is =\=/2.
func BuiltinNumNeq(m *Machine, argBase int) bool { return compareNumArgs(m, argBase, FNeq) }

// BuiltinThrow is throw/1: records the argument as a thrown error. Builtin's
// bool-only return can't carry an error, so dispatch checks m.thrown
// immediately after calling a Primop and, if set, reports it as a real
// error instead of treating the false return as an ordinary failed goal.
func BuiltinThrow(m *Machine, argBase int) bool {
	_, c := m.Stack.Deref(argBase)
	m.thrown = newError(ErrDomain, Indicator{}, "uncaught throw: %s", c)
	return false
}
