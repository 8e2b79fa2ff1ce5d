package vm

import (
	"fmt"

	"github.com/rzubek/botl/lang/symbol"
)

// Indicator identifies a predicate by name and arity (spec.md §3
// "Predicate... Identified by its indicator").
type Indicator struct {
	Name  *symbol.Symbol
	Arity int
}

func (pi Indicator) String() string { return fmt.Sprintf("%s/%d", pi.Name.Name(), pi.Arity) }

// Kind distinguishes the three predicate variants spec.md §5 names:
// ordinary rule predicates, tables (row-set extensions), and primops
// (native Go callbacks).
type Kind uint8

const (
	KindRule Kind = iota
	KindTable
	KindPrimop
)

// Builtin is the signature of a native predicate callback (a primop).
// argBase is the index of the first argument cell on m.Stack; it returns
// true on success, having bound whatever argument cells it needs to (with
// m.Stack.Bind so bindings undo correctly on backtracking).
type Builtin func(m *Machine, argBase int) bool

// TableRow is one row of a loaded table predicate (spec.md §3 "Table": "a
// predicate whose extension is a row set rather than a clause list").
type TableRow []Cell

// Predicate holds everything the VM needs to resolve calls to one
// Name/Arity indicator (spec.md §3 "Predicate").
type Predicate struct {
	Indicator Indicator
	Kind      Kind

	// Rule predicates: an ordered list of compiled clauses.
	Clauses []*CompiledClause

	// Table predicates: a materialized row set, matched by the special
	// clause's CSpecial dispatch.
	Rows []TableRow

	// Primops: a native callback, invoked directly instead of going through
	// the bytecode head/goal dispatch.
	Primop Builtin

	// Signature records a documentation/type-check tuple of type-name symbols
	// for a table or rule predicate (spec.md §3 "optional signature").
	Signature []*symbol.Symbol

	IsTraced            bool
	IsNestedPredicate   bool // compiled disjunction body, anonymous
	IsExternallyCalled  bool
	MandatoryInstantiation []bool // per-argument "must be bound on call" flags

	// Per-predicate constant pools (spec.md §3 "owns per-predicate constant
	// pools: ints, floats, objects"), populated during compilation and
	// read-only once any clause has executed.
	Pool ConstantPool
}

// ConstantPool holds the per-predicate literal tables referenced by
// HeadConst/GoalConst operands (spec.md §3, §4.1 "constant-pool indices in
// bytecode are bytes").
type ConstantPool struct {
	Ints    []int64
	Floats  []float64
	Objects []any // strings, interned symbols, nested Indicators, F-VM programs ([]byte)
}

func (cp *ConstantPool) addInt(v int64) int {
	for i, x := range cp.Ints {
		if x == v {
			return i
		}
	}
	cp.Ints = append(cp.Ints, v)
	return len(cp.Ints) - 1
}

func (cp *ConstantPool) addFloat(v float64) int {
	for i, x := range cp.Floats {
		if x == v {
			return i
		}
	}
	cp.Floats = append(cp.Floats, v)
	return len(cp.Floats) - 1
}

func (cp *ConstantPool) addObject(v any) int {
	// F-VM programs ([]byte) are not comparable with ==, so each one gets
	// its own entry instead of being deduplicated.
	if _, isProg := v.([]byte); !isProg {
		for i, x := range cp.Objects {
			if x == v {
				return i
			}
		}
	}
	cp.Objects = append(cp.Objects, v)
	return len(cp.Objects) - 1
}

// AddInt interns v in the pool and returns its pool index.
func (cp *ConstantPool) AddInt(v int64) int { return cp.addInt(v) }

// AddFloat interns v in the pool and returns its pool index.
func (cp *ConstantPool) AddFloat(v float64) int { return cp.addFloat(v) }

// AddObject interns v in the pool and returns its pool index. A []byte F-VM
// program is always appended as a new entry.
func (cp *ConstantPool) AddObject(v any) int { return cp.addObject(v) }
