package store

import (
	"sync"

	"github.com/dolthub/swiss"
	"github.com/rzubek/botl/lang/vm"
)

// Globals is a process-wide mutable variable table, the target of a
// global/1 declaration and the get_global/2, set_global/2 primops
// (spec.md §3 "Global variable: a mutable named cell outside the trail, not
// undone by backtracking"). Unlike a clause environment slot, a Global's
// value survives Stack.Undo, which is the whole point of declaring one:
// counters and accumulators that must not be rolled back when a goal fails.
type Globals struct {
	mu   sync.Mutex
	vals *swiss.Map[string, vm.Cell]
}

func newGlobals() *Globals {
	return &Globals{vals: swiss.NewMap[string, vm.Cell](32)}
}

// Declare registers name as a known global, initialized unbound, if it
// isn't already present. Called from a global/1 declaration
// (lang/compiler/decl.go); re-declaring an existing global is a no-op so a
// file required twice doesn't clobber an already-mutated value.
func (g *Globals) Declare(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.vals.Get(name); !ok {
		g.vals.Put(name, vm.Unbound())
	}
}

// Get returns the current value of name and whether it has been declared.
func (g *Globals) Get(name string) (vm.Cell, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.vals.Get(name)
}

// Set stores v as name's current value, declaring it first if needed.
func (g *Globals) Set(name string, v vm.Cell) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.vals.Put(name, v)
}

// BuiltinGetGlobal is get_global/2: unify the second argument with the
// named global's current value. globalName dereferences arg 0 and fails
// unless it is a TagObj cell holding the global's name (an interned symbol
// or string).
func (s *Store) BuiltinGetGlobal(m *vm.Machine, argBase int) bool {
	name, ok := s.globalName(m, argBase)
	if !ok {
		return false
	}
	val, ok := s.Globals.Get(name)
	if !ok {
		return false
	}
	return vm.UnifyValue(m.Stack, argBase+1, val)
}

// BuiltinSetGlobal is set_global/2: overwrite the named global's value with
// the second argument, bypassing the trail so the write survives
// backtracking.
func (s *Store) BuiltinSetGlobal(m *vm.Machine, argBase int) bool {
	name, ok := s.globalName(m, argBase)
	if !ok {
		return false
	}
	_, val := m.Stack.Deref(argBase + 1)
	s.Globals.Set(name, val)
	return true
}

// installGlobalPrimops registers get_global/2 and set_global/2 against s;
// New calls it once while installing the built-in primops.
func (s *Store) installGlobalPrimops() {
	s.DefinePrimop("get_global", 2, s.BuiltinGetGlobal)
	s.DefinePrimop("set_global", 2, s.BuiltinSetGlobal)
}

func (s *Store) globalName(m *vm.Machine, argBase int) (string, bool) {
	_, c := m.Stack.Deref(argBase)
	if c.Tag != vm.TagObj {
		return "", false
	}
	switch v := c.Obj.(type) {
	case string:
		return v, true
	case interface{ Name() string }:
		return v.Name(), true
	default:
		return "", false
	}
}
