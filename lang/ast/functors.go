package ast

import "github.com/rzubek/botl/lang/symbol"

// Reserved functor symbols (spec.md §6). Interned once in the ambient
// default symbol table so that identity comparisons against them are cheap
// pointer comparisons throughout the compiler.
var (
	FunctorConj    = symbol.Intern(",")  // conjunction
	FunctorDisj    = symbol.Intern(";")  // disjunction
	FunctorImplies = symbol.Intern(":-") // rule head <- body
	FunctorCut     = symbol.Intern("!")
	FunctorSlash   = symbol.Intern("/") // predicate indicator / EL non-exclusive edge
	FunctorColon   = symbol.Intern(":") // EL exclusive edge
	FunctorELEdge  = symbol.Intern("/>")
	FunctorUnify   = symbol.Intern("=")
	FunctorDot     = symbol.Intern(".")  // field access
	FunctorColon2  = symbol.Intern("::") // component access
	FunctorNew     = symbol.Intern("new")
	FunctorCall    = symbol.Intern("call")
	FunctorFail    = symbol.Intern("fail")
	FunctorTrue    = symbol.Intern("true")
	FunctorFalse   = symbol.Intern("false")
)

// Functor identity is checked by name rather than by pointer equality to
// FunctorConj/FunctorDisj/etc: a caller may parse with its own
// *symbol.Table (e.g. for test isolation) rather than the ambient default
// one these vars are interned into, so two occurrences of "," from
// different tables would otherwise compare unequal despite meaning the
// same functor.

// IsConjunction reports whether t is a binary `,` term.
func IsConjunction(t Term) (*Call, bool) {
	c, ok := t.(*Call)
	return c, ok && c.Functor.Name() == "," && len(c.Args) == 2
}

// IsDisjunction reports whether t is a binary `;` term.
func IsDisjunction(t Term) (*Call, bool) {
	c, ok := t.(*Call)
	return c, ok && c.Functor.Name() == ";" && len(c.Args) == 2
}

// IsRule reports whether t is a binary `:-` term (spec.md §4.5 Pass 5).
func IsRule(t Term) (*Call, bool) {
	c, ok := t.(*Call)
	return c, ok && c.Functor.Name() == ":-" && len(c.Args) == 2
}

// IsCut reports whether t is the bare `!` atom.
func IsCut(t Term) bool {
	s, ok := t.(*Sym)
	return ok && s.Name.Name() == "!"
}

// IsFail reports whether t is `fail` or the literal `false`.
func IsFail(t Term) bool {
	if s, ok := t.(*Sym); ok && s.Name.Name() == "fail" {
		return true
	}
	if b, ok := t.(*Bool); ok && !b.Value {
		return true
	}
	return false
}

// Indicator returns the (name, arity) pair for a callable term: a bare Sym
// has arity 0, a *Call has arity len(Args).
func Indicator(t Term) (*symbol.Symbol, int, bool) {
	switch t := t.(type) {
	case *Sym:
		return t.Name, 0, true
	case *Call:
		return t.Functor, len(t.Args), true
	default:
		return nil, 0, false
	}
}
