package ast

import (
	"fmt"
	"io"
)

// Printer pretty-prints a Term tree to Output. It is the round-trip half of
// spec.md §8's "Parse ∘ pretty-print of a head-model reconstruction equals
// the original head term under functor/argument equality" law: printing a
// Term and re-parsing it must reconstruct an equal term.
type Printer struct {
	Output io.Writer
}

// Print writes t's source-like rendering followed by a newline.
func (p *Printer) Print(t Term) error {
	_, err := fmt.Fprintln(p.Output, t.String())
	return err
}

// Equal reports whether two terms are structurally equal: same functor
// name and arity for Call/Sym, same literal value for literals, and — for
// Var — the same textual name (variable *identity* is a clause-local
// concept; Equal compares the surface spelling, which is what the round-trip
// law in §8 requires).
func Equal(a, b Term) bool {
	switch a := a.(type) {
	case *Sym:
		b, ok := b.(*Sym)
		return ok && a.Name.Name() == b.Name.Name()
	case *Var:
		b, ok := b.(*Var)
		return ok && a.Name == b.Name
	case *Call:
		b, ok := b.(*Call)
		if !ok || a.Functor.Name() != b.Functor.Name() || len(a.Args) != len(b.Args) {
			return false
		}
		for i, arg := range a.Args {
			if !Equal(arg, b.Args[i]) {
				return false
			}
		}
		return true
	case *Int:
		b, ok := b.(*Int)
		return ok && a.Value == b.Value
	case *Float:
		b, ok := b.(*Float)
		return ok && a.Value == b.Value
	case *Bool:
		b, ok := b.(*Bool)
		return ok && a.Value == b.Value
	case *Str:
		b, ok := b.(*Str)
		return ok && a.Value == b.Value
	default:
		return false
	}
}
