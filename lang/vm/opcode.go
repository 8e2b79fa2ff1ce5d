package vm

import "fmt"

// Opcode is a single byte instruction of the clause bytecode (spec.md §4.1).
// Instruction encoding is byte-oriented: an opcode byte followed by zero or
// more varint byte operands (environment-slot indices, constant-pool
// indices, or small immediates).
//
// Head opcodes run while a clause is being entered and match the caller's
// argument cells against the clause head. Goal opcodes are the very same
// operations biased by goalOffset: instead of unifying with a caller cell,
// they push arguments for the next call onto the data stack. The compiler
// emits one family in heads (Pass 6) and the other in bodies (Pass 7) via a
// single op+goalOffset lookup, matching the teacher's single opcode-table
// dispatch idiom (lang/compiler/opcode.go) generalized to two instruction
// families instead of one.
type Opcode uint8

// goalOffset biases a head opcode into its goal-family counterpart.
const goalOffset = 8

const ( //nolint:revive
	// --- head family: unify the caller's argument cell ---
	HeadVoid     Opcode = 0 // skip one argument, no binding
	HeadVarFirst Opcode = 1 // first occurrence of a permanent var: copy caller cell to env slot
	HeadVarMatch Opcode = 2 // subsequent occurrence: unify caller cell with env slot
	HeadConst    Opcode = 3 // unify caller cell with a constant-pool literal

	// --- goal family: push arguments for the next call (head op + goalOffset) ---
	GoalVoid     = HeadVoid + goalOffset
	GoalVarFirst = HeadVarFirst + goalOffset
	GoalVarMatch = HeadVarMatch + goalOffset
	GoalConst    = HeadConst + goalOffset

	// --- control opcodes, numbered past both families ---
	CCall     Opcode = 16 // call predicate at ConstPool object index, not last call
	CLastCall Opcode = 17 // tail call: pass the caller's continuation on instead of a resumption point (LCO); the caller's environment frame is not reused
	CNoGoal   Opcode = 18 // clause body is empty (a fact): succeed immediately
	CCut      Opcode = 19 // commit: discard choice points back to the clause's cut barrier
	CSpecial  Opcode = 20 // delegate to the predicate's table-row iterator or primop
	CFuncExpr Opcode = 21 // evaluate an inline F-VM condition (comparisons); fail unless it yields true
)

// ConstKind selects the literal kind carried by a HeadConst/GoalConst
// operand's second byte (spec.md §4.1 "the kind byte selects int/float/
// bool/object/functional-expression/predicate-reference").
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstBool
	ConstObject
	ConstFuncExpr
	ConstPredRef
)

var opcodeNames = map[Opcode]string{
	HeadVoid:     "head_void",
	HeadVarFirst: "head_var_first",
	HeadVarMatch: "head_var_match",
	HeadConst:    "head_const",
	GoalVoid:     "goal_void",
	GoalVarFirst: "goal_var_first",
	GoalVarMatch: "goal_var_match",
	GoalConst:    "goal_const",
	CCall:        "ccall",
	CLastCall:    "clastcall",
	CNoGoal:      "cnogoal",
	CCut:         "ccut",
	CSpecial:     "cspecial",
	CFuncExpr:    "cfuncexpr",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("illegal op (%d)", op)
}

// IsGoalFamily reports whether op is a goal-family opcode (HeadX + goalOffset).
func IsGoalFamily(op Opcode) bool { return op >= GoalVoid && op <= GoalConst }

// ToGoal rebiases a head-family opcode into its goal-family counterpart.
func ToGoal(op Opcode) Opcode { return op + goalOffset }

// ToHead rebiases a goal-family opcode back to its head-family counterpart.
func ToHead(op Opcode) Opcode { return op - goalOffset }

// hasArgs reports whether op carries varint operand bytes.
func hasArgs(op Opcode) bool {
	switch op {
	case HeadVoid, GoalVoid, CNoGoal, CCut:
		return false
	default:
		return true
	}
}
