package bytecode

// Instruction is a single 32-bit encoded VM instruction, in one of three
// layouts (iABC/iABx/iAsBx), grounded directly on `other_examples`
// sentra-language's internal/vmregister/bytecode.go encoding scheme:
//
//	iABC:  [8-bit op][8-bit A][8-bit B][8-bit C]
//	iABx:  [8-bit op][8-bit A][16-bit Bx]
//	iAsBx: [8-bit op][8-bit A][16-bit signed Bx]
type Instruction uint32

const (
	posOp = 0
	posA  = 8
	posB  = 16
	posC  = 24

	sizeOp = 8
	sizeA  = 8
	sizeB  = 8
	sizeC  = 8
	sizeBx = 16

	maskOp = (1 << sizeOp) - 1
	maskA  = (1 << sizeA) - 1
	maskB  = (1 << sizeB) - 1
	maskC  = (1 << sizeC) - 1
	maskBx = (1 << sizeBx) - 1

	// MaxArgA and MaxArgBx are the largest A and Bx operands an
	// instruction can carry, and MaxsBx the largest signed jump offset.
	// The compiler does not check operands against these limits and has
	// no fallback form for a constant index or jump that would not fit.
	MaxArgA  = maskA
	MaxArgBx = maskBx
	MaxsBx   = maskBx >> 1
)

func ABC(op OpCode, a, b, c uint8) Instruction {
	return Instruction(op) | Instruction(a)<<posA | Instruction(b)<<posB | Instruction(c)<<posC
}

func ABx(op OpCode, a uint8, bx uint16) Instruction {
	return Instruction(op) | Instruction(a)<<posA | Instruction(bx)<<posB
}

func AsBx(op OpCode, a uint8, sbx int32) Instruction {
	return ABx(op, a, uint16(sbx+MaxsBx))
}

func (i Instruction) OpCode() OpCode { return OpCode(i & maskOp) }
func (i Instruction) A() uint8       { return uint8((i >> posA) & maskA) }
func (i Instruction) B() uint8       { return uint8((i >> posB) & maskB) }
func (i Instruction) C() uint8       { return uint8((i >> posC) & maskC) }
func (i Instruction) Bx() uint16     { return uint16((i >> posB) & maskBx) }
func (i Instruction) SBx() int32     { return int32(i.Bx()) - MaxsBx }

// SetSBx rewrites the signed-offset field of a jump-family instruction in
// place, used by the compiler's jump-patching pass once a target PC is
// known (spec.md §4.2's "pending jump-patch lists").
func (i Instruction) SetSBx(sbx int32) Instruction {
	return ABx(i.OpCode(), i.A(), uint16(sbx+MaxsBx))
}
