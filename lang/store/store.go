// Package store implements the predicate registry and supporting tables
// that back a running engine: the name+arity -> predicate map the Goal VM
// resolves calls against, the table-predicate and primop special-clause
// representation, the global-variable table, and the exclusive-logic (EL)
// assertion tree. It is a thin layer on top of lang/vm's types, importing
// vm one-way so vm itself never needs to know about stores, loaders, or
// declarations (spec.md §3 "Store").
package store

import (
	"fmt"
	"sync"

	"github.com/dolthub/swiss"
	"github.com/rzubek/botl/lang/symbol"
	"github.com/rzubek/botl/lang/vm"
)

// Store owns every predicate known to one engine instance, plus the
// ancillary state (globals, EL tree, require bookkeeping) that declaration
// processing (lang/compiler/decl.go) mutates during compilation. It
// implements vm.Resolver so a vm.Machine can be pointed directly at a
// Store.
type Store struct {
	mu    sync.Mutex
	preds *swiss.Map[vm.Indicator, *vm.Predicate]

	Symbols *symbol.Table
	Globals *Globals
	EL      *ELTree

	required map[string]bool // canonical paths already processed by require/1
}

// New returns an empty Store ready to register predicates into. tbl is the
// symbol table predicate names and atoms are interned against; pass nil to
// use the ambient default table (symbol.Default()).
func New(tbl *symbol.Table) *Store {
	if tbl == nil {
		tbl = symbol.Default()
	}
	s := &Store{
		preds:    swiss.NewMap[vm.Indicator, *vm.Predicate](256),
		Symbols:  tbl,
		Globals:  newGlobals(),
		EL:       newELTree(),
		required: make(map[string]bool),
	}
	s.installGlobalPrimops()
	s.installCorePrimops()
	return s
}

// installCorePrimops registers the control and type-test predicates
// lang/vm/builtins.go implements as native Go callbacks (spec.md §5
// "Primops"): true/0, fail/0, unification control, type tests, numeric
// comparisons, and throw/1. Every reserved functor the parser can produce
// as an ordinary call (rather than inline F-VM syntax) needs a predicate
// behind it for lang/compiler to resolve against.
func (s *Store) installCorePrimops() {
	s.DefinePrimop("true", 0, vm.BuiltinTrue)
	s.DefinePrimop("fail", 0, vm.BuiltinFail)
	s.DefinePrimop("false", 0, vm.BuiltinFail)
	s.DefinePrimop("=", 2, vm.BuiltinUnify)
	s.DefinePrimop("\\=", 2, vm.BuiltinNotUnify)
	s.DefinePrimop("var", 1, vm.BuiltinVar)
	s.DefinePrimop("nonvar", 1, vm.BuiltinNonvar)
	s.DefinePrimop("atomic", 1, vm.BuiltinAtomic)
	s.DefinePrimop("number", 1, vm.BuiltinNumber)
	s.DefinePrimop("integer", 1, vm.BuiltinInteger)
	s.DefinePrimop("atom", 1, vm.BuiltinAtom)
	s.DefinePrimop("<", 2, vm.BuiltinNumLt)
	s.DefinePrimop(">", 2, vm.BuiltinNumGt)
	s.DefinePrimop("<=", 2, vm.BuiltinNumLe)
	s.DefinePrimop(">=", 2, vm.BuiltinNumGe)
	s.DefinePrimop("=:=", 2, vm.BuiltinNumEq)
	s.DefinePrimop("=\\=", 2, vm.BuiltinNumNeq)
	s.DefinePrimop("throw", 1, vm.BuiltinThrow)
}

// AddRow appends row to the table predicate named by ind. The predicate
// must already be a table (DefineTable); otherwise AddRow returns an error.
// Row width is not checked against the arity. lang/compiler uses this for
// ground facts compiled against a predicate already declared `table` (the
// table/1 declaration).
func (s *Store) AddRow(ind vm.Indicator, row vm.TableRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.predicate(ind)
	if p.Kind != vm.KindTable {
		return fmt.Errorf("store: cannot add a row to %s, not a table predicate", ind)
	}
	p.Rows = append(p.Rows, row)
	return nil
}

// Lookup implements vm.Resolver.
func (s *Store) Lookup(ind vm.Indicator) (*vm.Predicate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.preds.Get(ind)
	return p, ok
}

// predicate returns the Predicate for ind, creating an empty KindRule one
// if it doesn't exist yet. Callers hold s.mu.
func (s *Store) predicate(ind vm.Indicator) *vm.Predicate {
	if p, ok := s.preds.Get(ind); ok {
		return p
	}
	p := &vm.Predicate{Indicator: ind, Kind: vm.KindRule}
	s.preds.Put(ind, p)
	return p
}

// Predicate returns the Predicate registered for ind, creating an empty
// KindRule one if needed. lang/compiler calls this to obtain the owning
// predicate's ConstantPool before it finishes assembling a clause's
// bytecode, then passes the finished clause to AddClause.
func (s *Store) Predicate(ind vm.Indicator) *vm.Predicate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.predicate(ind)
}

// AddClause appends a compiled clause to the rule predicate named by ind,
// creating the predicate on first use (spec.md §3 "Store... append-only").
// It is an error to add a clause to a predicate already defined as a table
// or primop.
func (s *Store) AddClause(ind vm.Indicator, c *vm.CompiledClause) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.predicate(ind)
	if p.Kind != vm.KindRule {
		return fmt.Errorf("store: cannot add clause to %s, already defined as %v", ind, p.Kind)
	}
	c.Owner = p
	c.Pool = &p.Pool
	p.Clauses = append(p.Clauses, c)
	return nil
}

// DefinePrimop registers a native Go callback as the predicate named by
// ind. The predicate is given a single synthetic clause whose head binds
// every argument to an environment slot and whose body is exactly
// [CSpecial] (spec.md §3 "Table... represented identically to an ordinary
// predicate with exactly one clause"). A top-level Solve enters through
// that clause; a call from a clause body is routed by vm.Machine.dispatch
// straight to the callback.
func (s *Store) DefinePrimop(name string, arity int, fn vm.Builtin) *vm.Predicate {
	s.mu.Lock()
	defer s.mu.Unlock()
	ind := vm.Indicator{Name: s.Symbols.Intern(name), Arity: arity}
	p := s.predicate(ind)
	p.Kind = vm.KindPrimop
	p.Primop = fn
	p.Clauses = []*vm.CompiledClause{specialClause(p, arity)}
	return p
}

// DefineTable registers name/arity as a table predicate with the given
// rows, replacing any rows already present. Like a primop, a table gets
// one synthetic clause whose body is [CSpecial]; vm.Machine.dispatch
// matches the caller's arguments against Rows via matchRow instead of
// invoking a callback.
func (s *Store) DefineTable(name string, arity int, rows []vm.TableRow) *vm.Predicate {
	s.mu.Lock()
	defer s.mu.Unlock()
	ind := vm.Indicator{Name: s.Symbols.Intern(name), Arity: arity}
	p := s.predicate(ind)
	p.Kind = vm.KindTable
	p.Rows = rows
	p.Clauses = []*vm.CompiledClause{specialClause(p, arity)}
	return p
}

// specialClause builds the synthetic HeadVarFirst(0..arity-1)/[CSpecial]
// clause shared by table and primop predicates (spec.md §3). Binding every
// argument into an environment slot first, rather than dispatching
// straight off the raw argument cells, lets CSpecial handlers (matchRow,
// Builtin callbacks) read arguments the same way a rule body would: via
// the clause's own environment.
func specialClause(p *vm.Predicate, arity int) *vm.CompiledClause {
	var head vm.Assembler
	for i := 0; i < arity; i++ {
		head.Emit(vm.HeadVarFirst, uint32(i))
	}
	var body vm.Assembler
	body.Emit(vm.CSpecial, 0)
	return &vm.CompiledClause{
		HeadCode: head.Code,
		BodyCode: body.Code,
		EnvSize:  arity,
		Owner:    p,
		Pool:     &p.Pool,
	}
}

// Each calls fn once for every predicate currently registered, in
// unspecified order. cmd/botl's `compile` subcommand uses this to print a
// disassembly of an entire compiled program.
func (s *Store) Each(fn func(ind vm.Indicator, p *vm.Predicate)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preds.Iter(func(k vm.Indicator, v *vm.Predicate) (stop bool) {
		fn(k, v)
		return false
	})
}

// MarkRequired records canonical path p as having been processed by a
// require/1 declaration, returning false if it was already marked so
// lang/compiler/decl.go can skip re-processing a file required twice.
func (s *Store) MarkRequired(path string) (first bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.required[path] {
		return false
	}
	s.required[path] = true
	return true
}
