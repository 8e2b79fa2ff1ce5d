package vm

import "reflect"

// evalFVM interprets an F-VM expression program to a single Cell (spec.md
// §4.4). The F-VM operates on a small Go-slice scratch stack private to this
// call rather than m.Stack: expressions are purely functional (no variable
// binding, nothing to trail), so there is nothing for backtracking to undo
// and no reason to pay for Stack's bookkeeping.
func (m *Machine) evalFVM(prog []byte, pool *ConstantPool, envBase int) (Cell, error) {
	var stack []Cell
	push := func(c Cell) { stack = append(stack, c) }
	pop := func() Cell {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return c
	}

	pc := 0
	for pc < len(prog) {
		op := FOpcode(prog[pc])
		pc++

		switch op {
		case FConst:
			idx, n := readUvarint(prog, pc)
			pc = n
			c, err := m.fConstCell(pool, idx)
			if err != nil {
				return Cell{}, err
			}
			push(c)

		case FLocal:
			idx, n := readUvarint(prog, pc)
			pc = n
			_, c := m.Stack.Deref(envBase + int(idx))
			push(c)

		case FAdd, FSub, FMul, FDiv:
			b := pop()
			a := pop()
			c, err := arith(op, a, b)
			if err != nil {
				return Cell{}, err
			}
			push(c)

		case FLt, FLe, FGt, FGe, FEq, FNeq:
			b := pop()
			a := pop()
			c, err := compare(op, a, b)
			if err != nil {
				return Cell{}, err
			}
			push(c)

		case FFieldRef:
			target := pop()
			name := pop()
			v, err := hostField(target, name)
			if err != nil {
				return Cell{}, err
			}
			push(v)

		case FMethodCall:
			argc, n := readUvarint(prog, pc)
			pc = n
			args := make([]Cell, argc)
			for i := int(argc) - 1; i >= 0; i-- {
				args[i] = pop()
			}
			name := pop()
			target := pop()
			v, err := hostMethodCall(target, name, args)
			if err != nil {
				return Cell{}, err
			}
			push(v)

		case FConstructor:
			argc, n := readUvarint(prog, pc)
			pc = n
			args := make([]Cell, argc)
			for i := int(argc) - 1; i >= 0; i-- {
				args[i] = pop()
			}
			typ := pop()
			v, err := hostConstruct(typ, args)
			if err != nil {
				return Cell{}, err
			}
			push(v)

		case FComponentLookup:
			key := pop()
			target := pop()
			v, err := hostField(target, key)
			if err != nil {
				return Cell{}, err
			}
			push(v)

		case FArray, FArrayList, FHashset:
			n, nn := readUvarint(prog, pc)
			pc = nn
			elems := make([]any, n)
			for i := int(n) - 1; i >= 0; i-- {
				elems[i] = cellToAny(pop())
			}
			push(ObjCell(aggregate(op, elems)))

		case FReturn:
			return pop(), nil

		default:
			return Cell{}, newError(ErrType, Indicator{}, "malformed f-expr: unexpected opcode %v", op)
		}
	}
	if len(stack) == 0 {
		return Cell{}, newError(ErrType, Indicator{}, "malformed f-expr: fell off the end without freturn")
	}
	return stack[len(stack)-1], nil
}

func (m *Machine) fConstCell(pool *ConstantPool, idx uint32) (Cell, error) {
	// F-expr constants share the owning clause's pool and the same index
	// convention as GoalConst/HeadConst, minus the kind byte. FConst reads
	// the pool's Ints only: the compiler emits it solely for integer
	// literals and rejects other literal kinds inside an expression.
	if int(idx) < len(pool.Ints) {
		return IntCell(pool.Ints[idx]), nil
	}
	return Cell{}, newError(ErrDomain, Indicator{}, "f-expr constant pool index %d out of range", idx)
}

func arith(op FOpcode, a, b Cell) (Cell, error) {
	if a.Tag == TagFloat || b.Tag == TagFloat {
		af, aok := numeric(a)
		bf, bok := numeric(b)
		if !aok || !bok {
			return Cell{}, newError(ErrType, Indicator{}, "arithmetic on non-numeric operand")
		}
		switch op {
		case FAdd:
			return FloatCell(af + bf), nil
		case FSub:
			return FloatCell(af - bf), nil
		case FMul:
			return FloatCell(af * bf), nil
		case FDiv:
			if bf == 0 {
				return Cell{}, newError(ErrDomain, Indicator{}, "division by zero")
			}
			return FloatCell(af / bf), nil
		}
	}
	if a.Tag != TagInt || b.Tag != TagInt {
		return Cell{}, newError(ErrType, Indicator{}, "arithmetic on non-numeric operand")
	}
	switch op {
	case FAdd:
		return IntCell(a.Num + b.Num), nil
	case FSub:
		return IntCell(a.Num - b.Num), nil
	case FMul:
		return IntCell(a.Num * b.Num), nil
	case FDiv:
		if b.Num == 0 {
			return Cell{}, newError(ErrDomain, Indicator{}, "division by zero")
		}
		return FloatCell(float64(a.Num) / float64(b.Num)), nil
	}
	return Cell{}, newError(ErrType, Indicator{}, "unreachable arithmetic opcode %v", op)
}

func compare(op FOpcode, a, b Cell) (Cell, error) {
	if op == FEq || op == FNeq {
		eq := Equal(a, b)
		if op == FNeq {
			eq = !eq
		}
		return BoolCell(eq), nil
	}
	af, aok := numeric(a)
	bf, bok := numeric(b)
	if !aok || !bok {
		return Cell{}, newError(ErrType, Indicator{}, "comparison on non-numeric operand")
	}
	switch op {
	case FLt:
		return BoolCell(af < bf), nil
	case FLe:
		return BoolCell(af <= bf), nil
	case FGt:
		return BoolCell(af > bf), nil
	case FGe:
		return BoolCell(af >= bf), nil
	}
	return Cell{}, newError(ErrType, Indicator{}, "unreachable comparison opcode %v", op)
}

func numeric(c Cell) (float64, bool) {
	switch c.Tag {
	case TagInt:
		return float64(c.Num), true
	case TagFloat:
		return c.F, true
	default:
		return 0, false
	}
}

func cellToAny(c Cell) any {
	switch c.Tag {
	case TagInt:
		return c.Num
	case TagFloat:
		return c.F
	case TagBool:
		return c.Bool()
	case TagObj:
		return c.Obj
	default:
		return nil
	}
}

func aggregate(op FOpcode, elems []any) any {
	switch op {
	case FHashset:
		set := make(map[any]struct{}, len(elems))
		for _, e := range elems {
			set[e] = struct{}{}
		}
		return set
	default: // FArray, FArrayList: both surface as a Go slice; the distinction
		// (fixed-size vs growable) only matters to the host language this is
		// embedded in, which reads the slice back out via reflect.
		out := make([]any, len(elems))
		copy(out, elems)
		return out
	}
}

// hostField, hostMethodCall and hostConstruct implement the F-VM's host
// interop trio entirely with reflect, since the call site only knows the
// target's Go type at runtime: these three opcodes are how a compiled
// expression reaches into an embedding host's structs without the compiler
// ever needing to see that host's types.
func hostField(target, name Cell) (Cell, error) {
	n, ok := name.Obj.(string)
	if !ok {
		return Cell{}, newError(ErrType, Indicator{}, "field name must be a string")
	}
	rv, err := hostValue(target)
	if err != nil {
		return Cell{}, err
	}
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return Cell{}, newError(ErrDomain, Indicator{}, "nil target in field access %q", n)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return Cell{}, newError(ErrType, Indicator{}, "field access %q on non-struct target", n)
	}
	fv := rv.FieldByName(n)
	if !fv.IsValid() {
		return Cell{}, newError(ErrExistence, Indicator{}, "no field %q on %s", n, rv.Type())
	}
	return anyToCell(fv.Interface()), nil
}

func hostMethodCall(target, name Cell, args []Cell) (Cell, error) {
	n, ok := name.Obj.(string)
	if !ok {
		return Cell{}, newError(ErrType, Indicator{}, "method name must be a string")
	}
	rv, err := hostValue(target)
	if err != nil {
		return Cell{}, err
	}
	mv := rv.MethodByName(n)
	if !mv.IsValid() {
		return Cell{}, newError(ErrExistence, Indicator{}, "no method %q on %s", n, rv.Type())
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		in[i] = reflect.ValueOf(cellToAny(a))
	}
	out := mv.Call(in)
	if len(out) == 0 {
		return BoolCell(true), nil
	}
	return anyToCell(out[0].Interface()), nil
}

func hostConstruct(typ Cell, args []Cell) (Cell, error) {
	// Construction is necessarily limited to what the host registers ahead
	// of time: the F-VM has no type metadata of its own to call reflect.New
	// against from a bare name. typ.Obj is expected to carry a func([]any)
	// any factory installed by the embedding application.
	factory, ok := typ.Obj.(func([]any) any)
	if !ok {
		return Cell{}, newError(ErrPermission, Indicator{}, "constructor target is not a registered factory")
	}
	raw := make([]any, len(args))
	for i, a := range args {
		raw[i] = cellToAny(a)
	}
	return ObjCell(factory(raw)), nil
}

func hostValue(target Cell) (reflect.Value, error) {
	if target.Tag != TagObj || target.Obj == nil {
		return reflect.Value{}, newError(ErrType, Indicator{}, "host interop target is not an object")
	}
	return reflect.ValueOf(target.Obj), nil
}

func anyToCell(v any) Cell {
	switch x := v.(type) {
	case int64:
		return IntCell(x)
	case int:
		return IntCell(int64(x))
	case float64:
		return FloatCell(x)
	case float32:
		return FloatCell(float64(x))
	case bool:
		return BoolCell(x)
	default:
		return ObjCell(v)
	}
}
