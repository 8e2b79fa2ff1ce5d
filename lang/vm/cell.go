// Package vm implements the two-stack-machine runtime (spec.md §4): the
// Goal VM that performs SLD-resolution over compiled clauses, and the F-VM
// that evaluates functional expressions (arithmetic, host interop,
// aggregate construction) on a scratch stack of its own, separate from the
// data stack.
package vm

import "fmt"

// Tag discriminates the payload of a Cell (spec.md §3 "uniform fixed-width
// cell" representation).
type Tag uint8

const (
	// TagUnbound marks an unbound logic variable.
	TagUnbound Tag = iota
	// TagRef marks a cell bound to another cell, by stack index (Num). Deref
	// follows a chain of TagRef cells until a non-reference is reached.
	TagRef
	// TagInt holds an int64 in Num.
	TagInt
	// TagFloat holds a float32 (widened to float64 for storage) in F.
	TagFloat
	// TagBool holds 0 or 1 in Num.
	TagBool
	// TagStackRef identifies a compile-time environment-slot reference, used
	// in head-model metadata for tracing/listing rather than during
	// unification proper.
	TagStackRef
	// TagObj holds an opaque payload in Obj: an interned atom name, a string,
	// a predicate indicator, or a host-interop/aggregate result.
	TagObj
)

func (t Tag) String() string {
	switch t {
	case TagUnbound:
		return "unbound"
	case TagRef:
		return "ref"
	case TagInt:
		return "int"
	case TagFloat:
		return "float"
	case TagBool:
		return "bool"
	case TagStackRef:
		return "stackref"
	case TagObj:
		return "obj"
	default:
		return fmt.Sprintf("illegal tag (%d)", t)
	}
}

// Cell is the uniform, fixed-shape tagged value that flows through both the
// Goal VM's data stack and the F-VM's scratch stack. It deliberately avoids
// an interface-per-concrete-type hierarchy (spec.md §3): every operand,
// whether an unbound variable, a reference, a number, or an opaque object,
// is the same Go struct, so stack slots can be allocated and copied without
// boxing or type switches in the hot unification path.
type Cell struct {
	Tag Tag
	Num int64   // TagInt, TagBool (0/1), TagRef/TagStackRef (stack index)
	F   float64 // TagFloat payload (surface syntax produces float32, widened here)
	Obj any     // TagObj payload: *symbol.Symbol, string, Indicator, or host value
}

// Unbound returns the zero-value unbound cell.
func Unbound() Cell { return Cell{Tag: TagUnbound} }

// IntCell returns a Cell holding an integer.
func IntCell(v int64) Cell { return Cell{Tag: TagInt, Num: v} }

// FloatCell returns a Cell holding a float.
func FloatCell(v float64) Cell { return Cell{Tag: TagFloat, F: v} }

// BoolCell returns a Cell holding a boolean.
func BoolCell(v bool) Cell {
	var n int64
	if v {
		n = 1
	}
	return Cell{Tag: TagBool, Num: n}
}

// ObjCell returns a Cell holding an opaque object (an interned atom symbol,
// a string, a predicate indicator, or a host value).
func ObjCell(v any) Cell { return Cell{Tag: TagObj, Obj: v} }

// RefCell returns a Cell that defers to the cell at stack index idx.
func RefCell(idx int) Cell { return Cell{Tag: TagRef, Num: int64(idx)} }

// StackRefCell returns a Cell describing an environment-slot reference, used
// only in head-model metadata (spec.md §3 "CompiledClause").
func StackRefCell(idx int) Cell { return Cell{Tag: TagStackRef, Num: int64(idx)} }

// Bool reports the boolean payload of a TagBool cell.
func (c Cell) Bool() bool { return c.Num != 0 }

func (c Cell) String() string {
	switch c.Tag {
	case TagUnbound:
		return "_"
	case TagRef:
		return fmt.Sprintf("->@%d", c.Num)
	case TagInt:
		return fmt.Sprintf("%d", c.Num)
	case TagFloat:
		return fmt.Sprintf("%g", c.F)
	case TagBool:
		return fmt.Sprintf("%t", c.Bool())
	case TagStackRef:
		return fmt.Sprintf("@%d", c.Num)
	case TagObj:
		return fmt.Sprintf("%v", c.Obj)
	default:
		return c.Tag.String()
	}
}

// Equal reports whether two cells are the same ground value. It does not
// deref: callers must deref both cells via a Stack first if either may be a
// variable.
func Equal(a, b Cell) bool {
	if a.Tag != b.Tag {
		// an int and a float compare numerically across tags; any other
		// pair of differing tags is unequal.
		af, aok := numeric(a)
		bf, bok := numeric(b)
		return aok && bok && af == bf
	}
	switch a.Tag {
	case TagUnbound:
		return false // two distinct unbound variables are never == ; use Unify instead
	case TagInt, TagBool:
		return a.Num == b.Num
	case TagFloat:
		return a.F == b.F
	case TagObj:
		return objEqual(a.Obj, b.Obj)
	default:
		return a.Num == b.Num
	}
}

func objEqual(a, b any) bool {
	if a == b {
		return true
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	return aok && bok && as == bs
}
