package store

import "sync"

// elEdgeKind distinguishes the three edge relations an EL declaration can
// assert between two atoms: a plain non-exclusive edge, an exclusive edge
// (asserting child excludes every other child previously attached to the
// same parent via an exclusive edge), and a directional non-exclusive edge
// that additionally records which endpoint is the parent.
type elEdgeKind uint8

const (
	elEdgeNonExclusive elEdgeKind = iota // "/"
	elEdgeExclusive                      // ":"
	elEdgeDirectional                    // "/>"
)

// elEdge is one assertion recorded in the tree.
type elEdge struct {
	Parent, Child string
	Kind          elEdgeKind
}

// ELTree is a minimal assert-only store for the "exclusive-logic" relation
// declarations (spec.md §3 "EL tree: `/` non-exclusive edge, `:` exclusive
// edge, `/>` directional non-exclusive edge with explicit parent"). It
// exists to let a program declare a taxonomy or part-of hierarchy among
// atoms without hand-writing the equivalent as ordinary clauses. No
// predicate queries the tree from a program; it is read only through this
// type's Go methods. There is no retract operation: like
// clause assertion elsewhere in this runtime, once a fact is in the tree it
// stays for the lifetime of the Store.
type ELTree struct {
	mu        sync.Mutex
	edges     []elEdge
	exclusive map[string][]string // parent -> children asserted via ":"
}

func newELTree() *ELTree {
	return &ELTree{exclusive: make(map[string][]string)}
}

// Assert records one edge. For an exclusive edge, it also appends child to
// parent's exclusive sibling set, which Exclusive later reports.
func (t *ELTree) Assert(parent, child string, kind elEdgeKind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.edges = append(t.edges, elEdge{Parent: parent, Child: child, Kind: kind})
	if kind == elEdgeExclusive {
		t.exclusive[parent] = append(t.exclusive[parent], child)
	}
}

// Children returns every child asserted under parent, across all edge
// kinds, in assertion order.
func (t *ELTree) Children(parent string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for _, e := range t.edges {
		if e.Parent == parent {
			out = append(out, e.Child)
		}
	}
	return out
}

// Exclusive returns the set of children asserted as mutually exclusive
// under parent (every child attached via a ":" edge).
func (t *ELTree) Exclusive(parent string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.exclusive[parent]...)
}

// AssertFunctor records an edge given the source-syntax functor that
// introduced it ("/" non-exclusive, ":" exclusive, "/>" directional),
// reporting false for any other op so lang/compiler can fall back to
// compiling the term as an ordinary clause instead.
func (t *ELTree) AssertFunctor(op, parent, child string) bool {
	var kind elEdgeKind
	switch op {
	case "/":
		kind = elEdgeNonExclusive
	case ":":
		kind = elEdgeExclusive
	case "/>":
		kind = elEdgeDirectional
	default:
		return false
	}
	t.Assert(parent, child, kind)
	return true
}

// Parents returns every node asserted as a directional ("/>") parent of
// child.
func (t *ELTree) Parents(child string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for _, e := range t.edges {
		if e.Kind == elEdgeDirectional && e.Child == child {
			out = append(out, e.Parent)
		}
	}
	return out
}
