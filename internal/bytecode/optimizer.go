package bytecode

// Optimize runs a small peephole pass over p and every nested Proto,
// grounded on the teacher's original internal/bytecode optimizer: fold
// arithmetic between two LOADK constants into a single LOADK, and drop
// MOVE A,A instructions the compiler's "restore nextReg" bookkeeping
// sometimes emits when a value already lands in its destination register.
func Optimize(p *Proto) {
	foldConstants(p)
	dropNoOpMoves(p)
	for _, c := range p.Protos {
		Optimize(c)
	}
}

func dropNoOpMoves(p *Proto) {
	code := make([]Instruction, 0, len(p.Code))
	lines := make([]int, 0, len(p.Lines))
	for i, ins := range p.Code {
		if ins.OpCode() == OpMove && ins.A() == ins.B() {
			continue
		}
		code = append(code, ins)
		lines = append(lines, p.Lines[i])
	}
	if len(code) == len(p.Code) {
		return
	}
	// Jump offsets are relative to the jumping instruction's own position,
	// so deleting an instruction ahead of a jump would desynchronize its
	// target without a full relocation pass. That relocation isn't built
	// yet, so compaction is skipped whenever the proto contains any
	// jump-family instruction at all, and only jump-free protos (or
	// protos with none to begin with) get their no-op MOVEs dropped.
	for _, ins := range p.Code {
		switch ins.OpCode() {
		case OpJmp, OpForPrep, OpForLoop, OpTForLoop:
			return
		}
	}
	p.Code = code
	p.Lines = lines
}

// foldConstants rewrites `LOADK ra,k1; LOADK rb,k2; ADD rc,ra,rb` (and
// the other arithmetic ops) so the arithmetic instruction becomes
// `LOADK rc,k` with k the folded constant, when both operands are numeric
// constants. The operand LOADKs stay in place, so no jump offset changes.
// A triple is skipped when a jump lands on its second LOADK or on the
// arithmetic instruction, since the operand registers are then not known
// to hold the loaded constants.
func foldConstants(p *Proto) {
	targets := make(map[int]bool)
	for i, ins := range p.Code {
		switch ins.OpCode() {
		case OpJmp, OpForPrep, OpForLoop, OpTForLoop:
			targets[i+1+int(ins.SBx())] = true
		}
	}
	for i := 2; i < len(p.Code); i++ {
		arith := p.Code[i]
		op := foldableOp(arith.OpCode())
		if op == ConstNil {
			continue
		}
		loadB := p.Code[i-2]
		loadC := p.Code[i-1]
		if loadB.OpCode() != OpLoadK || loadC.OpCode() != OpLoadK {
			continue
		}
		if loadB.A() != arith.B() || loadC.A() != arith.C() {
			continue
		}
		if targets[i-1] || targets[i] {
			continue
		}
		cb := p.Consts[loadB.Bx()]
		cc := p.Consts[loadC.Bx()]
		folded, ok := foldArith(arith.OpCode(), cb, cc)
		if !ok {
			continue
		}
		idx := p.constIndexOf(folded)
		p.Code[i] = ABx(OpLoadK, arith.A(), idx)
	}
}

// foldableOp is a placeholder discriminator: any non-ConstNil return means
// "this opcode is worth trying to fold", the actual arithmetic is done by
// foldArith.
func foldableOp(op OpCode) ConstKind {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow:
		return ConstInt
	default:
		return ConstNil
	}
}

func foldArith(op OpCode, a, b Const) (Const, bool) {
	if a.Kind == ConstInt && b.Kind == ConstInt {
		x, y := a.I, b.I
		switch op {
		case OpAdd:
			return Const{Kind: ConstInt, I: x + y}, true
		case OpSub:
			return Const{Kind: ConstInt, I: x - y}, true
		case OpMul:
			return Const{Kind: ConstInt, I: x * y}, true
		case OpMod:
			if y == 0 {
				return Const{}, false
			}
			return Const{Kind: ConstInt, I: x % y}, true
		}
	}
	fa, aok := numericValue(a)
	fb, bok := numericValue(b)
	if !aok || !bok {
		return Const{}, false
	}
	switch op {
	case OpAdd:
		return Const{Kind: ConstFloat, F: fa + fb}, true
	case OpSub:
		return Const{Kind: ConstFloat, F: fa - fb}, true
	case OpMul:
		return Const{Kind: ConstFloat, F: fa * fb}, true
	case OpDiv:
		if fb == 0 {
			return Const{}, false
		}
		return Const{Kind: ConstFloat, F: fa / fb}, true
	}
	return Const{}, false
}

func numericValue(c Const) (float64, bool) {
	switch c.Kind {
	case ConstInt:
		return float64(c.I), true
	case ConstFloat:
		return c.F, true
	default:
		return 0, false
	}
}

// constIndexOf returns k's index in p.Consts, appending it if absent.
// Optimize runs after compiler.go's own dedup map has gone out of scope,
// so it does a linear scan; constant pools are small enough that this is
// not worth threading a map through just for this pass.
func (p *Proto) constIndexOf(k Const) uint16 {
	for i, existing := range p.Consts {
		if existing.Equal(k) {
			return uint16(i)
		}
	}
	p.Consts = append(p.Consts, k)
	return uint16(len(p.Consts) - 1)
}
