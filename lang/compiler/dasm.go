package compiler

import (
	"fmt"
	"strings"

	"github.com/rzubek/botl/lang/vm"
)

// Dasm renders a predicate's clauses for `botl compile`/the `listing`
// declaration: each clause's original source text, followed by a
// disassembly of its compiled head and body bytecode. The byte/varint
// layout mirrors lang/vm's private Assembler encoding (vm.hasArgs,
// vm.readUvarint aren't exported, so the decode is reimplemented here
// against the same opcode table vm.Opcode.String() already exposes).
func Dasm(p *vm.Predicate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%v, %d clause(s))\n", p.Indicator, p.Kind, len(p.Clauses))
	for i, c := range p.Clauses {
		fmt.Fprintf(&b, "  clause %d", i)
		if c.Source != nil {
			fmt.Fprintf(&b, ": %s", c.Source)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "    head: %s\n", dasmCode(c.HeadCode))
		fmt.Fprintf(&b, "    body: %s\n", dasmCode(c.BodyCode))
	}
	return b.String()
}

func dasmCode(code []byte) string {
	if len(code) == 0 {
		return "(empty)"
	}
	var parts []string
	pc := 0
	for pc < len(code) {
		op := vm.Opcode(code[pc])
		pc++
		switch {
		case op == vm.HeadConst || op == vm.GoalConst:
			kind := code[pc]
			pc++
			idx, n := readUvarintLocal(code, pc)
			pc = n
			parts = append(parts, fmt.Sprintf("%s(kind=%d, %d)", op, kind, idx))
		case dasmHasArgs(op):
			idx, n := readUvarintLocal(code, pc)
			pc = n
			parts = append(parts, fmt.Sprintf("%s(%d)", op, idx))
		default:
			parts = append(parts, op.String())
		}
	}
	return strings.Join(parts, " ")
}

func dasmHasArgs(op vm.Opcode) bool {
	switch op {
	case vm.HeadVoid, vm.GoalVoid, vm.CNoGoal, vm.CCut:
		return false
	default:
		return true
	}
}

func readUvarintLocal(code []byte, off int) (uint32, int) {
	var x uint32
	var shift uint
	for {
		b := code[off]
		off++
		x |= uint32(b&0x7f) << shift
		if b < 0x80 {
			return x, off
		}
		shift += 7
	}
}
