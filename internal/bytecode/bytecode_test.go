package bytecode

import (
	"testing"

	"github.com/behl-lang/behl-go/internal/lexer"
	"github.com/behl-lang/behl-go/internal/parser"
	"github.com/behl-lang/behl-go/internal/semantic"
)

func compileSrc(t *testing.T, src string) *Proto {
	t.Helper()
	toks := lexer.Tokenize(src)
	prog, perrs := parser.Parse(toks)
	if len(perrs) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, perrs)
	}
	if errs := semantic.Analyze(prog); len(errs) != 0 {
		t.Fatalf("unexpected semantic errors for %q: %v", src, errs)
	}
	proto, errs := Compile(prog)
	if len(errs) != 0 {
		t.Fatalf("unexpected compile errors for %q: %v", src, errs)
	}
	return proto
}

func opcodes(p *Proto) []OpCode {
	ops := make([]OpCode, len(p.Code))
	for i, ins := range p.Code {
		ops[i] = ins.OpCode()
	}
	return ops
}

func assertOps(t *testing.T, got []OpCode, want ...OpCode) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("opcode count mismatch: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("opcode %d: got %s, want %s (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestCompileLetAndReturn(t *testing.T) {
	p := compileSrc(t, `let x = 1; return x;`)
	// The explicit return, then Compile's implicit trailing RETURN.
	assertOps(t, opcodes(p), OpLoadK, OpMove, OpReturn, OpReturn)
}

func TestCompileArithmeticIntoLocal(t *testing.T) {
	p := compileSrc(t, `let x = 1 + 2 * 3;`)
	ops := opcodes(p)
	if ops[len(ops)-1] != OpReturn {
		t.Fatalf("expected trailing implicit RETURN, got %v", ops)
	}
	var sawMul, sawAdd bool
	for _, op := range ops {
		sawMul = sawMul || op == OpMul
		sawAdd = sawAdd || op == OpAdd
	}
	if !sawMul || !sawAdd {
		t.Fatalf("expected both MUL and ADD in %v", ops)
	}
}

func TestCompileIfElse(t *testing.T) {
	p := compileSrc(t, `
		let x = 0;
		if (x == 0) {
			x = 1;
		} else {
			x = 2;
		}
	`)
	var sawTest, sawJmp int
	for _, op := range opcodes(p) {
		if op == OpTest {
			sawTest++
		}
		if op == OpJmp {
			sawJmp++
		}
	}
	if sawTest != 1 {
		t.Fatalf("expected exactly one TEST for the if condition, got %d", sawTest)
	}
	if sawJmp != 2 {
		t.Fatalf("expected two JMPs (skip-then, end-of-then), got %d", sawJmp)
	}
}

func TestCompileWhileLoop(t *testing.T) {
	p := compileSrc(t, `
		let i = 0;
		while (i < 10) {
			i = i + 1;
		}
	`)
	foundBackJump := false
	for _, ins := range p.Code {
		if ins.OpCode() == OpJmp && ins.SBx() < 0 {
			foundBackJump = true
		}
	}
	if !foundBackJump {
		t.Fatalf("expected a backward JMP closing the while loop, got %v", opcodes(p))
	}
}

func TestCompileCStyleForLoop(t *testing.T) {
	p := compileSrc(t, `
		for (let i = 0; i < 3; i = i + 1) {
		}
	`)
	ops := opcodes(p)
	var sawJmp bool
	for _, op := range ops {
		sawJmp = sawJmp || op == OpJmp
	}
	if !sawJmp {
		t.Fatalf("expected a JMP in the C-style for loop, got %v", ops)
	}
}

func TestCompileNumericForLoop(t *testing.T) {
	p := compileSrc(t, `
		for (i = 0, 3) {
		}
	`)
	var sawPrep, sawLoop bool
	for _, ins := range p.Code {
		sawPrep = sawPrep || ins.OpCode() == OpForPrep
		sawLoop = sawLoop || ins.OpCode() == OpForLoop
	}
	if !sawPrep || !sawLoop {
		t.Fatalf("expected FORPREP and FORLOOP in %v", opcodes(p))
	}
}

func TestCompileForeachLoop(t *testing.T) {
	p := compileSrc(t, `
		let t = {1, 2, 3};
		foreach (k, v in t) {
		}
	`)
	ops := opcodes(p)
	var sawCall, sawTForCall, sawTForLoop bool
	for _, op := range ops {
		sawCall = sawCall || op == OpCall
		sawTForCall = sawTForCall || op == OpTForCall
		sawTForLoop = sawTForLoop || op == OpTForLoop
	}
	if !sawCall || !sawTForCall || !sawTForLoop {
		t.Fatalf("expected CALL (to pairs), TFORCALL, TFORLOOP in %v", ops)
	}
}

func TestCompileFunctionClosure(t *testing.T) {
	p := compileSrc(t, `
		function make() {
			let n = 0;
			return function() { n = n + 1; return n; };
		}
	`)
	if len(p.Protos) != 1 {
		t.Fatalf("expected one nested proto for make(), got %d", len(p.Protos))
	}
	inner := p.Protos[0]
	if len(inner.Protos) != 1 {
		t.Fatalf("expected one nested proto for the closure literal, got %d", len(inner.Protos))
	}
	closure := inner.Protos[0]
	if len(closure.Upvalues) != 1 || closure.Upvalues[0].Name != "n" {
		t.Fatalf("expected closure to capture upvalue n, got %+v", closure.Upvalues)
	}
	var sawGetUpval, sawSetUpval bool
	for _, ins := range closure.Code {
		sawGetUpval = sawGetUpval || ins.OpCode() == OpGetUpval
		sawSetUpval = sawSetUpval || ins.OpCode() == OpSetUpval
	}
	if !sawGetUpval || !sawSetUpval {
		t.Fatalf("expected both GETUPVAL and SETUPVAL in closure body")
	}
}

func TestCompileDeferRunsBeforeReturn(t *testing.T) {
	p := compileSrc(t, `
		function f() {
			defer print(1);
			return 2;
		}
	`)
	inner := p.Protos[0]
	var callIdx, returnIdx = -1, -1
	for i, ins := range inner.Code {
		switch ins.OpCode() {
		case OpCall:
			if callIdx == -1 {
				callIdx = i
			}
		case OpReturn:
			if returnIdx == -1 {
				returnIdx = i
			}
		}
	}
	if callIdx == -1 || returnIdx == -1 || callIdx > returnIdx {
		t.Fatalf("expected deferred call to be emitted before RETURN, code=%v", opcodes(inner))
	}
}

func TestCompileTableConstructor(t *testing.T) {
	p := compileSrc(t, `let t = {1, 2, x = 3, [y()] = 4};`)
	var sawNewTable, sawSetTableK, sawSetTable int
	for _, ins := range p.Code {
		switch ins.OpCode() {
		case OpNewTable:
			sawNewTable++
		case OpSetTableK:
			sawSetTableK++
		case OpSetTable:
			sawSetTable++
		}
	}
	if sawNewTable != 1 {
		t.Fatalf("expected one NEWTABLE, got %d", sawNewTable)
	}
	if sawSetTableK != 1 {
		t.Fatalf("expected one SETTABLEK for the x=3 entry, got %d", sawSetTableK)
	}
	if sawSetTable != 3 {
		t.Fatalf("expected three SETTABLE (two positional, one computed key), got %d", sawSetTable)
	}
}

func TestDisassembleIncludesOpcodeNames(t *testing.T) {
	p := compileSrc(t, `let x = 1;`)
	out := Disassemble(p)
	if out == "" {
		t.Fatalf("expected non-empty disassembly")
	}
}

func TestOptimizeFoldsConstantArithmetic(t *testing.T) {
	p := compileSrc(t, `let x = 1 + 2;`)
	Optimize(p)
	var sawAdd bool
	for _, ins := range p.Code {
		if ins.OpCode() == OpAdd {
			sawAdd = true
		}
	}
	if sawAdd {
		t.Fatalf("expected constant-fold to remove ADD, code=%v", opcodes(p))
	}
}
