package vm

// Unify attempts to unify the cells at stack indices a and b (spec.md §4.2).
// Compound terms never reach Unify directly: the compiler lowers an
// arithmetic or aggregate goal argument into a functional expression
// evaluated by the F-VM and rejects any other compound argument, in heads
// and goals alike (spec.md §4.1 Pass 6, and the Non-goals'
// explicit "no cons-cells/lists as first-class terms"), so Unify only ever
// has to reconcile unbound variables, references, and ground scalars.
func Unify(s *Stack, a, b int) bool {
	ai, av := s.Deref(a)
	bi, bv := s.Deref(b)

	if ai == bi {
		return true
	}
	switch {
	case av.Tag == TagUnbound && bv.Tag == TagUnbound:
		// bind the younger (higher-indexed) cell to the older one, so that
		// undoing the trail in reverse order always restores a valid chain.
		if ai < bi {
			s.Bind(bi, RefCell(ai))
		} else {
			s.Bind(ai, RefCell(bi))
		}
		return true

	case av.Tag == TagUnbound:
		s.Bind(ai, bv)
		return true

	case bv.Tag == TagUnbound:
		s.Bind(bi, av)
		return true

	default:
		return Equal(av, bv)
	}
}

// UnifyValue unifies the cell at stack index a with a ground value c
// (a convenience for head/goal matching against a constant-pool literal).
func UnifyValue(s *Stack, a int, c Cell) bool {
	ai, av := s.Deref(a)
	if av.Tag == TagUnbound {
		s.Bind(ai, c)
		return true
	}
	return Equal(av, c)
}
