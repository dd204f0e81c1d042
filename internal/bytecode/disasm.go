package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders p and its nested Protos as human-readable text, in
// the same register/operand style as the teacher's original bytecode
// disassembler: one line per instruction, operand fields named by
// position rather than meaning, constants rendered inline.
func Disassemble(p *Proto) string {
	var b strings.Builder
	disasmProto(&b, p, 0)
	return b.String()
}

func disasmProto(b *strings.Builder, p *Proto, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%sfunction %s(%d params%s) -- %d upvalues, %d regs\n",
		indent, protoLabel(p), p.NumParams, varargSuffix(p), len(p.Upvalues), p.MaxStack)

	for i, ins := range p.Code {
		line := 0
		if i < len(p.Lines) {
			line = p.Lines[i]
		}
		fmt.Fprintf(b, "%s  [%3d] %-4d %s\n", indent, line, i, disasmInstruction(p, ins))
	}

	for i, c := range p.Protos {
		fmt.Fprintf(b, "%s  -- closure %d --\n", indent, i)
		disasmProto(b, c, depth+1)
	}
}

func protoLabel(p *Proto) string {
	if p.Name == "" {
		return "<anonymous>"
	}
	return p.Name
}

func varargSuffix(p *Proto) string {
	if p.IsVararg {
		return ", vararg"
	}
	return ""
}

func disasmInstruction(p *Proto, i Instruction) string {
	op := i.OpCode()
	switch op {
	case OpLoadK, OpGetGlobal, OpSetGlobal:
		return fmt.Sprintf("%-10s A=%d Bx=%d  ; %s", op, i.A(), i.Bx(), constOperand(p, int(i.Bx())))
	case OpGetTableK, OpSetTableK:
		return fmt.Sprintf("%-10s A=%d B=%d C=%d  ; key=%s", op, i.A(), i.B(), i.C(), constOperand(p, int(i.C())))
	case OpJmp, OpForPrep, OpForLoop, OpTForLoop:
		return fmt.Sprintf("%-10s A=%d sBx=%d", op, i.A(), i.SBx())
	case OpClosure:
		return fmt.Sprintf("%-10s A=%d Bx=%d  ; proto %d", op, i.A(), i.Bx(), i.Bx())
	default:
		return fmt.Sprintf("%-10s A=%d B=%d C=%d", op, i.A(), i.B(), i.C())
	}
}

func constOperand(p *Proto, idx int) string {
	if idx < 0 || idx >= len(p.Consts) {
		return "?"
	}
	return p.Consts[idx].String()
}
