// Package ast defines the term data model produced by the surface parser and
// consumed by the compiler (spec.md §3 "Symbol", "Variable", "Call").
package ast

import (
	"fmt"
	"strconv"

	"github.com/rzubek/botl/lang/symbol"
	"github.com/rzubek/botl/lang/token"
)

// Term is any node of the surface-syntax term tree: a Sym, a *Var, a *Call,
// or a literal (Int, Float, Bool, Str).
type Term interface {
	// String returns a source-like rendering of the term.
	String() string
	// Pos returns the term's source position, or the zero Pos if unknown.
	Pos() token.Pos
	// Walk visits this term and, recursively, its children.
	Walk(v Visitor)
}

// Visitor is implemented by callers that want to traverse a Term tree (used
// by the pretty-printer and by variable-analysis passes that pre-walk a
// clause before compilation).
type Visitor interface {
	Visit(t Term) (w Visitor)
}

// Walk traverses t in depth-first order, invoking v.Visit for every node. If
// v.Visit(t) returns a non-nil w, Walk is recursively invoked with w for each
// of t's children.
func Walk(v Visitor, t Term) {
	if v = v.Visit(t); v == nil {
		return
	}
	t.Walk(v)
}

// Sym is a bare-symbol term: an atom, or a zero-arity functor occurrence.
type Sym struct {
	Name   *symbol.Symbol
	at     token.Pos
}

// NewSym returns a Sym term for the given interned name.
func NewSym(name *symbol.Symbol, at token.Pos) *Sym { return &Sym{Name: name, at: at} }

func (s *Sym) String() string  { return s.Name.Name() }
func (s *Sym) Pos() token.Pos  { return s.at }
func (s *Sym) Walk(v Visitor)  {}

// Var is a surface-syntax variable occurrence. Distinct occurrences of the
// same textual name within one clause share one *Var (spec.md §3
// "Variable"); the parser/variablize pass is responsible for that sharing,
// via a per-clause binding environment keyed on Name.
type Var struct {
	Name      string // e.g. "X", "_Foo", "_"
	Generated bool   // suppresses singleton warnings (§4.5)
	at        token.Pos
}

// NewVar returns a Var term. A name of "_" or starting with "_" is
// conventionally anonymous/void (§3, §4.5 singleton-warning rule).
func NewVar(name string, at token.Pos) *Var { return &Var{Name: name, at: at} }

func (v *Var) String() string { return v.Name }
func (v *Var) Pos() token.Pos { return v.at }
func (v *Var) Walk(vis Visitor) {}

// Anonymous reports whether this occurrence is the anonymous variable "_" or
// an underscore-prefixed name, which is always Void (§4.5 Pass 4).
func (v *Var) Anonymous() bool {
	return v.Name == "_" || (len(v.Name) > 0 && v.Name[0] == '_')
}

// Call is a compound term: a functor symbol applied to one or more
// arguments (spec.md §3 "Call (compound term)"). Arity 0 is represented by a
// bare Sym, never a *Call with no Args.
type Call struct {
	Functor *symbol.Symbol
	Args    []Term
	at      token.Pos
}

// NewCall returns a compound term. len(args) must be >= 1.
func NewCall(functor *symbol.Symbol, args []Term, at token.Pos) *Call {
	if len(args) == 0 {
		panic("ast.NewCall: arity must be >= 1, use Sym for arity 0")
	}
	return &Call{Functor: functor, Args: args, at: at}
}

func (c *Call) Pos() token.Pos { return c.at }

func (c *Call) String() string {
	s := c.Functor.Name() + "("
	for i, a := range c.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

func (c *Call) Walk(v Visitor) {
	for _, a := range c.Args {
		Walk(v, a)
	}
}

// Arity returns the number of arguments.
func (c *Call) Arity() int { return len(c.Args) }

// Int is an integer literal term.
type Int struct {
	Value int64
	at    token.Pos
}

func NewInt(v int64, at token.Pos) *Int { return &Int{Value: v, at: at} }
func (i *Int) String() string           { return strconv.FormatInt(i.Value, 10) }
func (i *Int) Pos() token.Pos           { return i.at }
func (i *Int) Walk(v Visitor)           {}

// Float is a floating-point literal term.
type Float struct {
	Value float32
	at    token.Pos
}

func NewFloat(v float32, at token.Pos) *Float { return &Float{Value: v, at: at} }
func (f *Float) String() string               { return fmt.Sprintf("%g", f.Value) }
func (f *Float) Pos() token.Pos               { return f.at }
func (f *Float) Walk(v Visitor)               {}

// Bool is a boolean literal term.
type Bool struct {
	Value bool
	at    token.Pos
}

func NewBool(v bool, at token.Pos) *Bool { return &Bool{Value: v, at: at} }
func (b *Bool) String() string           { return strconv.FormatBool(b.Value) }
func (b *Bool) Pos() token.Pos           { return b.at }
func (b *Bool) Walk(v Visitor)           {}

// Str is a string literal term.
type Str struct {
	Value string
	at    token.Pos
}

func NewStr(v string, at token.Pos) *Str { return &Str{Value: v, at: at} }
func (s *Str) String() string            { return strconv.Quote(s.Value) }
func (s *Str) Pos() token.Pos            { return s.at }
func (s *Str) Walk(v Visitor)            {}

var (
	_ Term = (*Sym)(nil)
	_ Term = (*Var)(nil)
	_ Term = (*Call)(nil)
	_ Term = (*Int)(nil)
	_ Term = (*Float)(nil)
	_ Term = (*Bool)(nil)
	_ Term = (*Str)(nil)
)
