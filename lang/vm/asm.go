package vm

// Assembler builds a clause's Goal VM bytecode buffer. It is a thin
// append-only byte builder: the compiler (lang/compiler) is responsible for
// emitting opcodes in the right order and order of env-slot allocation;
// Assembler only handles the byte/varint encoding, mirroring the teacher's
// encodeInsn/addUint32 idiom (lang/compiler/compiler.go) with the jump-
// padding logic dropped, since clause bodies have no internal jumps — all
// control flow here is calls, cuts, and backtracking, not branches.
type Assembler struct {
	Code []byte
}

// Emit appends op and, if it takes one, its varint-encoded operand.
func (a *Assembler) Emit(op Opcode, arg uint32) {
	a.Code = append(a.Code, byte(op))
	if hasArgs(op) {
		a.Code = appendUvarint(a.Code, arg)
	}
}

// EmitConst appends a HeadConst/GoalConst instruction: opcode, kind byte,
// then the pool-index operand.
func (a *Assembler) EmitConst(op Opcode, kind ConstKind, poolIdx uint32) {
	a.Code = append(a.Code, byte(op), byte(kind))
	a.Code = appendUvarint(a.Code, poolIdx)
}

// FAssembler builds an F-VM expression's bytecode buffer.
type FAssembler struct {
	Code []byte
}

// Emit appends op and, if it takes one, its varint-encoded operand.
func (a *FAssembler) Emit(op FOpcode, arg uint32) {
	a.Code = append(a.Code, byte(op))
	if fOpcodeHasArg(op) {
		a.Code = appendUvarint(a.Code, arg)
	}
}

// appendUvarint encodes x as a 7-bit little-endian varint, LEB128-style,
// the same scheme as the teacher's addUint32 (lang/compiler/compiler.go)
// minus the jump-padding parameter this domain never needs.
func appendUvarint(code []byte, x uint32) []byte {
	for x >= 0x80 {
		code = append(code, byte(x)|0x80)
		x >>= 7
	}
	return append(code, byte(x))
}

// readUvarint decodes a varint starting at code[off], returning the value
// and the offset of the next byte after it.
func readUvarint(code []byte, off int) (uint32, int) {
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
