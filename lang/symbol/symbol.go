// Package symbol implements the interned-name table used throughout the
// compiler and VM: functor names, variable names, and atoms are represented
// as pointers into this table so that name equality is pointer equality
// (spec.md §3 "Symbol").
package symbol

import (
	"sync"

	"github.com/dolthub/swiss"
)

// A Symbol is an interned name. Two Symbols are the same name iff they are
// the same pointer.
type Symbol struct {
	name string
}

func (s *Symbol) String() string { return s.name }

// Name returns the symbol's textual name.
func (s *Symbol) Name() string { return s.name }

// Table is a process-wide (or per-Engine) interning table, backed by the
// same open-addressing swiss.Map the teacher uses for its own hot-path
// lookups (lang/machine/map.go), rather than the stdlib map, since this
// table is read on nearly every parse and compile step. The zero value is
// ready to use.
type Table struct {
	mu   sync.Mutex
	syms *swiss.Map[string, *Symbol]
}

// NewTable returns a ready-to-use symbol table.
func NewTable() *Table {
	return &Table{syms: swiss.NewMap[string, *Symbol](64)}
}

// Intern returns the unique *Symbol for name, creating it on first use.
func (t *Table) Intern(name string) *Symbol {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.syms == nil {
		t.syms = swiss.NewMap[string, *Symbol](64)
	}
	if s, ok := t.syms.Get(name); ok {
		return s
	}
	s := &Symbol{name: name}
	t.syms.Put(name, s)
	return s
}

// default is the ambient process-wide table, used by embedding code that
// does not care to manage its own Table (spec.md §5, "process-wide
// singletons with init-on-first-use lifecycle").
var def = NewTable()

// Default returns the ambient process-wide symbol table.
func Default() *Table { return def }

// Intern interns name in the ambient default table.
func Intern(name string) *Symbol { return def.Intern(name) }
