package vm

import "fmt"

// FOpcode is a single byte instruction of the F-VM, the separate
// stack-machine that evaluates functional expressions — arithmetic, host
// interop, and aggregate construction — that appear as clause arguments or
// in comparisons (spec.md §4.4). It operates on a Go-slice scratch stack
// private to each evaluation (see evalFVM), not on the data stack, so
// arithmetic never perturbs unification cells.
type FOpcode uint8

const ( //nolint:revive
	FConst FOpcode = iota // push ConstPool[operand]
	FLocal                // push environment slot [operand]

	// arithmetic (binary, pop 2 push 1)
	FAdd
	FSub
	FMul
	FDiv

	// comparisons (binary, pop 2 push 1 bool)
	FLt
	FLe
	FGt
	FGe
	FEq
	FNeq

	// host interop
	FFieldRef    // pops name, target -> pushes field value
	FMethodCall  // pops argc args, name, target -> pushes result
	FConstructor // pops argc args, type -> pushes new instance
	FComponentLookup // embedding-specific scene-graph lookup

	// aggregates: consume the top n cells, push a single reference
	FArray
	FArrayList
	FHashset

	FReturn // end of expression, top of scratch stack is the result
)

var fOpcodeNames = [...]string{
	FConst: "fconst", FLocal: "flocal",
	FAdd: "fadd", FSub: "fsub", FMul: "fmul", FDiv: "fdiv",
	FLt: "flt", FLe: "fle", FGt: "fgt", FGe: "fge", FEq: "feq", FNeq: "fneq",
	FFieldRef: "ffieldref", FMethodCall: "fmethodcall", FConstructor: "fconstructor",
	FComponentLookup: "fcomponentlookup",
	FArray:           "farray", FArrayList: "farraylist", FHashset: "fhashset",
	FReturn: "freturn",
}

func (op FOpcode) String() string {
	if int(op) < len(fOpcodeNames) && fOpcodeNames[op] != "" {
		return fOpcodeNames[op]
	}
	return fmt.Sprintf("illegal fop (%d)", op)
}

// fOpcodeHasArg reports whether op carries a varint operand byte.
func fOpcodeHasArg(op FOpcode) bool {
	switch op {
	case FConst, FLocal, FMethodCall, FConstructor, FArray, FArrayList, FHashset:
		return true
	default:
		return false
	}
}
