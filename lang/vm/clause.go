package vm

import "github.com/rzubek/botl/lang/ast"

// HeadSlotKind distinguishes the two kinds of entry in a CompiledClause's
// HeadModel (spec.md §3 "CompiledClause... head model (array used to
// reconstruct the head term for tracing — each slot either a literal or a
// StackRef index)").
type HeadSlotKind uint8

const (
	HeadSlotLiteral HeadSlotKind = iota
	HeadSlotStackRef
)

// HeadSlot is one reconstructable argument position of a clause head.
type HeadSlot struct {
	Kind    HeadSlotKind
	Literal Cell // valid when Kind == HeadSlotLiteral
	Slot    int  // environment slot index, valid when Kind == HeadSlotStackRef
}

// CompiledClause is one compiled rule or fact belonging to a Predicate
// (spec.md §3 "CompiledClause"). Head and body are kept as two separate
// bytecode buffers rather than one contiguous stream with a split offset:
// runHead and runBody each start reading at 0, and a fact's BodyCode is
// simply the single-byte [CNoGoal] sequence.
type CompiledClause struct {
	Source ast.Term // original source term, retained for listing/tracing

	HeadCode []byte
	BodyCode []byte
	EnvSize  int // environment slot count (permanent variables)

	HeadModel []HeadSlot

	// Owner and Pool back-reference the Predicate this clause belongs to, so
	// the Goal VM can resolve a CCall's pool index and dispatch CSpecial
	// without threading the owning Predicate through every call. Set by
	// store.Store when the clause is appended to its predicate.
	Owner *Predicate
	Pool  *ConstantPool

	File string
	Line int
}
