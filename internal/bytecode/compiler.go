package bytecode

import (
	"github.com/behl-lang/behl-go/internal/ast"
	"github.com/behl-lang/behl-go/internal/errfmt"
	"github.com/behl-lang/behl-go/pkg/token"
)

// Compile lowers a semantically-resolved *ast.Program into a tree of
// Protos (spec.md §4.2). The program's top-level chunk is compiled as an
// implicit function whose Proto is marked vararg (see DESIGN.md's
// "Top-level return" note); internal/semantic's resolver resolves that
// chunk as a non-vararg scope, so `...` at top level is rejected there.
func Compile(prog *ast.Program) (*Proto, []*errfmt.Error) {
	c := &compiler{}
	fc := newFuncCompiler(c, nil, "main", prog.NumLocals, 0, true)
	fc.compileStmtList(ast.Statements(prog.Body))
	fc.runDefers()
	fc.emit(ABC(OpReturn, 0, 1, 0))
	fc.proto.MaxStack = fc.maxReg
	return fc.proto, c.errs
}

type compiler struct {
	errs []*errfmt.Error
}

func (c *compiler) errorf(pos token.Position, format string, args ...any) {
	c.errs = append(c.errs, errfmt.New(errfmt.SemanticError, pos, format, args...))
}

// loopCtx tracks the pending-jump lists a loop's break/continue statements
// append to (spec.md §4.2: "Break/continue record pending jumps into
// lists owned by the innermost loop").
type loopCtx struct {
	breaks    []int // instruction indices of JMP placeholders to patch to loop end
	continues []int // instruction indices of JMP placeholders to patch to the continue target
}

// funcCompiler is the per-function compilation state: instruction buffer,
// constant pool, register allocator, and the loop/defer stacks scoped to
// this function (spec.md §4.2).
type funcCompiler struct {
	c      *compiler
	parent *funcCompiler
	proto  *Proto

	constIndex map[Const]int

	localBase uint8 // first register not occupied by a fixed local slot

	// tempFloor is where resetTemps rewinds to between statements. It
	// equals localBase except while compiling the body of a numeric/foreach
	// loop, which reserves a block of registers (the FORPREP/TFORCALL
	// control registers) that must survive every statement in the body —
	// raising the floor for that span stops the body's own temporaries
	// from reusing and clobbering them.
	tempFloor uint8
	nextReg   uint8
	maxReg    int

	loops  []*loopCtx
	defers []ast.Expression // DeferStmt.Call, in registration order
}

func newFuncCompiler(c *compiler, parent *funcCompiler, name string, numLocals, numParams int, vararg bool) *funcCompiler {
	fc := &funcCompiler{
		c:          c,
		parent:     parent,
		constIndex: make(map[Const]int),
		localBase:  uint8(numLocals),
		tempFloor:  uint8(numLocals),
		nextReg:    uint8(numLocals),
	}
	fc.proto = &Proto{Name: name, NumParams: numParams, IsVararg: vararg}
	fc.maxReg = numLocals
	return fc
}

func (fc *funcCompiler) emit(i Instruction) int {
	fc.proto.Code = append(fc.proto.Code, i)
	fc.proto.Lines = append(fc.proto.Lines, 0)
	return len(fc.proto.Code) - 1
}

func (fc *funcCompiler) emitAt(pos token.Position, i Instruction) int {
	idx := fc.emit(i)
	fc.proto.Lines[idx] = pos.Line
	return idx
}

func (fc *funcCompiler) pc() int { return len(fc.proto.Code) }

func (fc *funcCompiler) patchJump(idx int, target int) {
	fc.proto.Code[idx] = fc.proto.Code[idx].SetSBx(int32(target - (idx + 1)))
}

func (fc *funcCompiler) patchAll(idxs []int, target int) {
	for _, idx := range idxs {
		fc.patchJump(idx, target)
	}
}

func (fc *funcCompiler) constIdx(k Const) uint16 {
	if idx, ok := fc.constIndex[k]; ok {
		return uint16(idx)
	}
	idx := len(fc.proto.Consts)
	fc.proto.Consts = append(fc.proto.Consts, k)
	fc.constIndex[k] = idx
	return uint16(idx)
}

func (fc *funcCompiler) stringConst(s string) uint16 { return fc.constIdx(Const{Kind: ConstString, S: s}) }

func (fc *funcCompiler) alloc() uint8 {
	r := fc.nextReg
	fc.nextReg++
	if int(fc.nextReg) > fc.maxReg {
		fc.maxReg = int(fc.nextReg)
	}
	return r
}

func (fc *funcCompiler) allocN(n int) uint8 {
	base := fc.nextReg
	fc.nextReg += uint8(n)
	if int(fc.nextReg) > fc.maxReg {
		fc.maxReg = int(fc.nextReg)
	}
	return base
}

func (fc *funcCompiler) resetTemps() { fc.nextReg = fc.tempFloor }

// withRaisedFloor reserves [fc.tempFloor, newFloor) for the duration of body's
// compilation and restores the previous floor afterward.
func (fc *funcCompiler) withRaisedFloor(newFloor uint8, body func()) {
	prev := fc.tempFloor
	fc.tempFloor = newFloor
	body()
	fc.tempFloor = prev
}

// --- statements ---

func (fc *funcCompiler) compileStmtList(stmts []ast.Statement) {
	for _, s := range stmts {
		fc.resetTemps()
		fc.compileStmt(s)
	}
}

func (fc *funcCompiler) compileStmt(s ast.Statement) {
	switch n := s.(type) {
	case nil:
		return
	case *ast.ExprStmt:
		fc.compileExprForEffect(n.Expr)
	case *ast.LetStmt:
		fc.compileLet(n)
	case *ast.Block:
		fc.compileStmtList(ast.Statements(n.Stmts))
	case *ast.IfStmt:
		fc.compileIf(n)
	case *ast.WhileStmt:
		fc.compileWhile(n)
	case *ast.ForCStmt:
		fc.compileForC(n)
	case *ast.ForNumericStmt:
		fc.compileForNumeric(n)
	case *ast.ForInStmt:
		fc.compileForIn(n)
	case *ast.BreakStmt:
		if len(fc.loops) == 0 {
			return // already rejected by internal/semantic
		}
		l := fc.loops[len(fc.loops)-1]
		l.breaks = append(l.breaks, fc.emit(AsBx(OpJmp, 0, 0)))
	case *ast.ContinueStmt:
		if len(fc.loops) == 0 {
			return
		}
		l := fc.loops[len(fc.loops)-1]
		l.continues = append(l.continues, fc.emit(AsBx(OpJmp, 0, 0)))
	case *ast.ReturnStmt:
		fc.runDefers()
		if n.Value == nil {
			fc.emitAt(n.Pos(), ABC(OpReturn, 0, 1, 0))
			return
		}
		r := fc.alloc()
		fc.exprInto(r, n.Value)
		fc.emitAt(n.Pos(), ABC(OpReturn, r, 2, 0))
	case *ast.DeferStmt:
		fc.defers = append(fc.defers, n.Call)
	case *ast.FunctionDeclStmt:
		fc.compileClosureInto(uint8(n.Slot), n.Fn)
	case *ast.ModuleStmt:
		// purely declarative; nothing to emit
	default:
		fc.c.errorf(s.Pos(), "bytecode: unsupported statement %T", s)
	}
}

func (fc *funcCompiler) compileLet(n *ast.LetStmt) {
	for i, name := range n.Names {
		_ = name
		dst := uint8(n.Slots[i])
		if n.Values[i] == nil {
			fc.emit(ABC(OpLoadNil, dst, 1, 0))
			continue
		}
		fc.exprInto(dst, n.Values[i])
	}
}

// runDefers emits the pending-defer call list in reverse registration
// order, as plain discarded-result calls (spec.md §4.2).
func (fc *funcCompiler) runDefers() {
	for i := len(fc.defers) - 1; i >= 0; i-- {
		fc.compileExprForEffect(fc.defers[i])
	}
}

func (fc *funcCompiler) compileIf(n *ast.IfStmt) {
	var endJumps []int
	fc.compileCondBranch(n.Cond, n.Then, &endJumps)
	for _, ei := range n.ElseIfs {
		fc.compileCondBranch(ei.Cond, ei.Body, &endJumps)
	}
	if n.Else != nil {
		fc.compileStmt(n.Else)
	}
	fc.patchAll(endJumps, fc.pc())
}

// compileCondBranch emits `if (cond) { then } goto end` for one arm of an
// if/elseif chain: a false condition falls through to whatever comes
// after (the next elseif test, or the else block).
func (fc *funcCompiler) compileCondBranch(cond ast.Expression, then *ast.Block, endJumps *[]int) {
	fc.resetTemps()
	condReg := fc.exprAnyReg(cond)
	fc.emit(ABC(OpTest, condReg, 1, 0))
	skipJmp := fc.emit(AsBx(OpJmp, 0, 0))
	fc.compileStmt(then)
	*endJumps = append(*endJumps, fc.emit(AsBx(OpJmp, 0, 0)))
	fc.patchJump(skipJmp, fc.pc())
}

func (fc *funcCompiler) compileWhile(n *ast.WhileStmt) {
	start := fc.pc()
	fc.resetTemps()
	condReg := fc.exprAnyReg(n.Cond)
	fc.emit(ABC(OpTest, condReg, 1, 0))
	exitJmp := fc.emit(AsBx(OpJmp, 0, 0))

	l := &loopCtx{}
	fc.loops = append(fc.loops, l)
	fc.compileStmt(n.Body)
	fc.emit(AsBx(OpJmp, 0, int32(start-(fc.pc()+1))))
	fc.loops = fc.loops[:len(fc.loops)-1]

	end := fc.pc()
	fc.patchJump(exitJmp, end)
	fc.patchAll(l.breaks, end)
	fc.patchAll(l.continues, start)
}

func (fc *funcCompiler) compileForC(n *ast.ForCStmt) {
	fc.resetTemps()
	if n.Init != nil {
		fc.compileStmt(n.Init)
	}
	start := fc.pc()
	var exitJmp = -1
	if n.Cond != nil {
		fc.resetTemps()
		condReg := fc.exprAnyReg(n.Cond)
		fc.emit(ABC(OpTest, condReg, 1, 0))
		exitJmp = fc.emit(AsBx(OpJmp, 0, 0))
	}

	l := &loopCtx{}
	fc.loops = append(fc.loops, l)
	fc.compileStmt(n.Body)
	continueTarget := fc.pc()
	if n.Post != nil {
		fc.resetTemps()
		fc.compileStmt(n.Post)
	}
	fc.emit(AsBx(OpJmp, 0, int32(start-(fc.pc()+1))))
	fc.loops = fc.loops[:len(fc.loops)-1]

	end := fc.pc()
	if exitJmp >= 0 {
		fc.patchJump(exitJmp, end)
	}
	fc.patchAll(l.breaks, end)
	fc.patchAll(l.continues, continueTarget)
}

func (fc *funcCompiler) compileForNumeric(n *ast.ForNumericStmt) {
	fc.resetTemps()
	base := fc.allocN(4) // counter, limit, step, visible
	fc.exprInto(base, n.Start)
	fc.exprInto(base+1, n.Stop)
	if n.Step != nil {
		fc.exprInto(base+2, n.Step)
	} else {
		fc.emit(ABx(OpLoadK, base+2, fc.constIdx(Const{Kind: ConstInt, I: 1})))
	}

	prep := fc.emit(AsBx(OpForPrep, base, 0))
	bodyStart := fc.pc()
	fc.emit(ABC(OpMove, uint8(n.Slot), base+3, 0))

	l := &loopCtx{}
	fc.loops = append(fc.loops, l)
	fc.withRaisedFloor(base+4, func() { fc.compileStmt(n.Body) })
	loopTest := fc.emit(AsBx(OpForLoop, base, int32(bodyStart-(fc.pc()+1))))
	fc.loops = fc.loops[:len(fc.loops)-1]

	fc.patchJump(prep, loopTest)
	end := fc.pc()
	fc.patchAll(l.breaks, end)
	fc.patchAll(l.continues, loopTest)
}

func (fc *funcCompiler) compileForIn(n *ast.ForInStmt) {
	fc.resetTemps()
	nvars := 2
	if n.Key == "" {
		nvars = 1
	}
	base := fc.allocN(3 + nvars)
	fc.emit(ABx(OpGetGlobal, base, fc.stringConst("pairs")))
	fc.exprInto(base+1, n.Expr)
	fc.emit(ABC(OpCall, base, 2, 4))

	loopStart := fc.pc()
	fc.emit(ABC(OpTForCall, base, uint8(nvars), 0))
	if nvars == 2 {
		fc.emit(ABC(OpMove, uint8(n.KeySlot), base+3, 0))
		fc.emit(ABC(OpMove, uint8(n.ValueSlot), base+4, 0))
	} else {
		fc.emit(ABC(OpMove, uint8(n.ValueSlot), base+3, 0))
	}

	l := &loopCtx{}
	fc.loops = append(fc.loops, l)
	fc.withRaisedFloor(base+uint8(3+nvars), func() { fc.compileStmt(n.Body) })
	loopTest := fc.emit(AsBx(OpTForLoop, base, int32(loopStart-(fc.pc()+1))))
	fc.loops = fc.loops[:len(fc.loops)-1]

	end := fc.pc()
	fc.patchAll(l.breaks, end)
	fc.patchAll(l.continues, loopTest)
}

// --- expressions ---

// exprInto compiles e so its value ends up in register dst, restoring the
// temp-register high-water mark to its entry value before returning (any
// temporary registers it needed above dst are reclaimed).
func (fc *funcCompiler) exprInto(dst uint8, e ast.Expression) {
	mark := fc.nextReg
	fc.compileExprInto(dst, e)
	fc.nextReg = mark
}

// exprAnyReg returns a register holding e's value: the identifier's own
// slot/upvalue-loaded register when that needs no computation, or a fresh
// temp otherwise.
func (fc *funcCompiler) exprAnyReg(e ast.Expression) uint8 {
	if id, ok := e.(*ast.Identifier); ok && id.Scope == ast.ScopeLocal {
		return uint8(id.Slot)
	}
	r := fc.alloc()
	fc.compileExprInto(r, e)
	return r
}

func (fc *funcCompiler) compileExprForEffect(e ast.Expression) {
	mark := fc.nextReg
	r := fc.alloc()
	fc.compileExprInto(r, e)
	fc.nextReg = mark
}

func (fc *funcCompiler) compileExprInto(dst uint8, e ast.Expression) {
	switch n := e.(type) {
	case *ast.NilLiteral:
		fc.emit(ABC(OpLoadNil, dst, 1, 0))
	case *ast.BoolLiteral:
		b := uint8(0)
		if n.Value {
			b = 1
		}
		fc.emit(ABC(OpLoadBool, dst, b, 0))
	case *ast.IntLiteral:
		fc.emit(ABx(OpLoadK, dst, fc.constIdx(Const{Kind: ConstInt, I: n.Value})))
	case *ast.FloatLiteral:
		fc.emit(ABx(OpLoadK, dst, fc.constIdx(Const{Kind: ConstFloat, F: n.Value})))
	case *ast.StringLiteral:
		fc.emit(ABx(OpLoadK, dst, fc.stringConst(n.Value)))
	case *ast.VarargExpr:
		// Multi-value vararg expansion belongs to call/return argument
		// lists. Loading a single vararg slot directly has no dedicated
		// opcode in spec.md's minimum set, so in a single-value context
		// it is compiled as a GETGLOBAL of the "..." pseudo-global name.
		fc.emit(ABx(OpGetGlobal, dst, fc.stringConst("...")))
	case *ast.Identifier:
		fc.compileIdentRead(dst, n)
	case *ast.UnaryExpr:
		fc.compileUnary(dst, n)
	case *ast.BinaryExpr:
		fc.compileBinary(dst, n)
	case *ast.LogicalExpr:
		fc.compileLogical(dst, n)
	case *ast.TernaryExpr:
		fc.compileTernary(dst, n)
	case *ast.AssignExpr:
		fc.compileAssign(dst, n)
	case *ast.CompoundAssignExpr:
		fc.compileCompoundAssign(dst, n)
	case *ast.IncDecExpr:
		fc.compileIncDec(dst, n)
	case *ast.CallExpr:
		fc.compileCall(dst, n, 1)
	case *ast.MemberExpr:
		objReg := fc.exprAnyReg(n.Object)
		fc.emit(ABC(OpGetTableK, dst, objReg, uint8(fc.stringConst(n.Property))))
	case *ast.IndexExpr:
		objReg := fc.exprAnyReg(n.Object)
		idxReg := fc.exprAnyReg(n.Index)
		fc.emit(ABC(OpGetTable, dst, objReg, idxReg))
	case *ast.TableConstructor:
		fc.compileTableConstructor(dst, n)
	case *ast.FunctionLiteral:
		fc.compileClosureInto(dst, n)
	default:
		fc.c.errorf(e.Pos(), "bytecode: unsupported expression %T", e)
	}
}

func (fc *funcCompiler) compileIdentRead(dst uint8, id *ast.Identifier) {
	switch id.Scope {
	case ast.ScopeLocal:
		if dst != uint8(id.Slot) {
			fc.emit(ABC(OpMove, dst, uint8(id.Slot), 0))
		}
	case ast.ScopeUpvalue:
		fc.emit(ABC(OpGetUpval, dst, uint8(id.Slot), 0))
	default:
		fc.emit(ABx(OpGetGlobal, dst, fc.stringConst(id.Name)))
	}
}

var unaryOps = map[token.Type]OpCode{
	token.MINUS: OpUnm,
	token.BANG:  OpNot,
	token.NOT:   OpNot,
	token.HASH:  OpLen,
	token.TILDE: OpBNot,
}

func (fc *funcCompiler) compileUnary(dst uint8, n *ast.UnaryExpr) {
	op, ok := unaryOps[n.Op]
	if !ok {
		fc.c.errorf(n.Pos(), "bytecode: unsupported unary operator %s", n.Op)
		return
	}
	src := fc.exprAnyReg(n.Operand)
	fc.emit(ABC(op, dst, src, 0))
}

var binaryOps = map[token.Type]OpCode{
	token.PLUS:    OpAdd,
	token.MINUS:   OpSub,
	token.STAR:    OpMul,
	token.SLASH:   OpDiv,
	token.PERCENT: OpMod,
	token.POW:     OpPow,
	token.AMP:     OpBAnd,
	token.PIPE:    OpBOr,
	token.CARET:   OpBXor,
	token.SHL:     OpShl,
	token.SHR:     OpShr,
	token.EQ:      OpEq,
	token.LT:      OpLt,
	token.LE:      OpLe,
}

func (fc *funcCompiler) compileBinary(dst uint8, n *ast.BinaryExpr) {
	// `+` on two strings is concat; the remaining arithmetic/comparison
	// operators map directly onto an opcode. A dedicated CONCAT opcode
	// would require the compiler to know operand types statically, which
	// spec.md's dynamically-typed value model does not allow, so PLUS
	// always compiles to ADD; telling string concat apart from addition
	// is left to whatever executes ADD, not done here.
	switch n.Op {
	case token.NEQ:
		l := fc.exprAnyReg(n.Left)
		r := fc.exprAnyReg(n.Right)
		fc.emit(ABC(OpEq, dst, l, r))
		fc.emit(ABC(OpNot, dst, dst, 0))
		return
	case token.GT:
		l := fc.exprAnyReg(n.Left)
		r := fc.exprAnyReg(n.Right)
		fc.emit(ABC(OpLe, dst, l, r))
		fc.emit(ABC(OpNot, dst, dst, 0))
		return
	case token.GE:
		l := fc.exprAnyReg(n.Left)
		r := fc.exprAnyReg(n.Right)
		fc.emit(ABC(OpLt, dst, l, r))
		fc.emit(ABC(OpNot, dst, dst, 0))
		return
	}
	op, ok := binaryOps[n.Op]
	if !ok {
		fc.c.errorf(n.Pos(), "bytecode: unsupported binary operator %s", n.Op)
		return
	}
	l := fc.exprAnyReg(n.Left)
	r := fc.exprAnyReg(n.Right)
	fc.emit(ABC(op, dst, l, r))
}

func isAndOp(op token.Type) bool { return op == token.LOGAND || op == token.AND }

// compileLogical implements `&&`/`and` and `||`/`or` as a single
// TEST+JMP pair sharing dst as both operands' destination (spec.md
// §4.2's "chain of TESTs with combined true/false patch lists" collapses
// to one link per binary node; nested Logical nodes chain naturally since
// each compiles its own TEST/JMP into the shared dst).
func (fc *funcCompiler) compileLogical(dst uint8, n *ast.LogicalExpr) {
	fc.exprInto(dst, n.Left)
	cond := uint8(0)
	if isAndOp(n.Op) {
		cond = 1
	}
	fc.emit(ABC(OpTest, dst, cond, 0))
	skip := fc.emit(AsBx(OpJmp, 0, 0))
	fc.exprInto(dst, n.Right)
	fc.patchJump(skip, fc.pc())
}

func (fc *funcCompiler) compileTernary(dst uint8, n *ast.TernaryExpr) {
	condReg := fc.exprAnyReg(n.Cond)
	fc.emit(ABC(OpTest, condReg, 1, 0))
	toElse := fc.emit(AsBx(OpJmp, 0, 0))
	fc.exprInto(dst, n.Then)
	toEnd := fc.emit(AsBx(OpJmp, 0, 0))
	fc.patchJump(toElse, fc.pc())
	fc.exprInto(dst, n.Else)
	fc.patchJump(toEnd, fc.pc())
}

// compileTargetRead loads the current value of an assignment target
// (Identifier/Member/Index) into a fresh register, for compound-assign
// and inc/dec.
func (fc *funcCompiler) compileTargetRead(target ast.Expression) uint8 {
	r := fc.alloc()
	fc.compileExprInto(r, target)
	return r
}

// compileTargetWrite stores src into target, per spec.md §4.1's note that
// Member/Index targets stay generic while Identifier targets are
// Scope/Slot-resolved.
func (fc *funcCompiler) compileTargetWrite(target ast.Expression, src uint8) {
	switch t := target.(type) {
	case *ast.Identifier:
		switch t.Scope {
		case ast.ScopeLocal:
			if src != uint8(t.Slot) {
				fc.emit(ABC(OpMove, uint8(t.Slot), src, 0))
			}
		case ast.ScopeUpvalue:
			fc.emit(ABC(OpSetUpval, src, uint8(t.Slot), 0))
		default:
			fc.emit(ABx(OpSetGlobal, src, fc.stringConst(t.Name)))
		}
	case *ast.MemberExpr:
		objReg := fc.exprAnyReg(t.Object)
		fc.emit(ABC(OpSetTableK, objReg, uint8(fc.stringConst(t.Property)), src))
	case *ast.IndexExpr:
		objReg := fc.exprAnyReg(t.Object)
		idxReg := fc.exprAnyReg(t.Index)
		fc.emit(ABC(OpSetTable, objReg, idxReg, src))
	default:
		fc.c.errorf(target.Pos(), "bytecode: unsupported assignment target %T", target)
	}
}

func (fc *funcCompiler) compileAssign(dst uint8, n *ast.AssignExpr) {
	fc.exprInto(dst, n.Value)
	fc.compileTargetWrite(n.Target, dst)
}

var compoundOps = map[token.Type]OpCode{
	token.PLUSEQ:    OpAdd,
	token.MINUSEQ:   OpSub,
	token.STAREQ:    OpMul,
	token.SLASHEQ:   OpDiv,
	token.PERCENTEQ: OpMod,
}

func (fc *funcCompiler) compileCompoundAssign(dst uint8, n *ast.CompoundAssignExpr) {
	op, ok := compoundOps[n.Op]
	if !ok {
		fc.c.errorf(n.Pos(), "bytecode: unsupported compound assignment %s", n.Op)
		return
	}
	cur := fc.compileTargetRead(n.Target)
	rhs := fc.exprAnyReg(n.Value)
	fc.emit(ABC(op, dst, cur, rhs))
	fc.compileTargetWrite(n.Target, dst)
}

func (fc *funcCompiler) compileIncDec(dst uint8, n *ast.IncDecExpr) {
	op := OpAdd
	if n.Op == token.DEC {
		op = OpSub
	}
	cur := fc.compileTargetRead(n.Target)
	one := fc.alloc()
	fc.emit(ABx(OpLoadK, one, fc.constIdx(Const{Kind: ConstInt, I: 1})))
	updated := fc.alloc()
	fc.emit(ABC(op, updated, cur, one))
	fc.compileTargetWrite(n.Target, updated)
	if n.Prefix {
		fc.emit(ABC(OpMove, dst, updated, 0))
	} else {
		fc.emit(ABC(OpMove, dst, cur, 0))
	}
}

// compileCall compiles a call expression with nresults desired results
// (spec.md §4.3: -1 means "all values", used only from call/return
// argument-list expansion, not reachable from this single-value path).
func (fc *funcCompiler) compileCall(dst uint8, n *ast.CallExpr, nresults int) {
	mark := fc.nextReg
	calleeReg := fc.alloc()
	fc.compileExprInto(calleeReg, n.Callee)
	fc.nextReg = calleeReg + 1

	args := ast.Expressions(n.Args)
	for _, a := range args {
		r := fc.alloc()
		fc.compileExprInto(r, a)
		fc.nextReg = r + 1
	}

	b := uint8(len(args) + 1)
	c := uint8(nresults + 1)
	fc.emitAt(n.Pos(), ABC(OpCall, calleeReg, b, c))
	if dst != calleeReg {
		fc.emit(ABC(OpMove, dst, calleeReg, 0))
	}
	fc.nextReg = mark
}

func (fc *funcCompiler) compileTableConstructor(dst uint8, n *ast.TableConstructor) {
	items := ast.TableItems(n.Items)
	arrayHint, hashHint := 0, 0
	for _, it := range items {
		if it.Key == nil {
			arrayHint++
		} else {
			hashHint++
		}
	}
	fc.emit(ABC(OpNewTable, dst, uint8(arrayHint), uint8(hashHint)))

	arrayIdx := int64(0)
	for _, it := range items {
		mark := fc.nextReg
		if it.Key == nil {
			valReg := fc.exprAnyReg(it.Value)
			keyReg := fc.alloc()
			fc.emit(ABx(OpLoadK, keyReg, fc.constIdx(Const{Kind: ConstInt, I: arrayIdx})))
			fc.emit(ABC(OpSetTable, dst, keyReg, valReg))
			arrayIdx++
		} else if sl, ok := it.Key.(*ast.StringLiteral); ok {
			valReg := fc.exprAnyReg(it.Value)
			fc.emit(ABC(OpSetTableK, dst, uint8(fc.stringConst(sl.Value)), valReg))
		} else {
			keyReg := fc.exprAnyReg(it.Key)
			valReg := fc.exprAnyReg(it.Value)
			fc.emit(ABC(OpSetTable, dst, keyReg, valReg))
		}
		fc.nextReg = mark
	}
}

// compileClosureInto compiles fn as a nested Proto and emits a CLOSURE
// instruction binding it into dst, per spec.md §4.2's upvalue-emission
// rule: fn.Upvalues (filled in by internal/semantic) tells the VM how to
// capture each cell when CLOSURE executes.
func (fc *funcCompiler) compileClosureInto(dst uint8, fn *ast.FunctionLiteral) {
	child := newFuncCompiler(fc.c, fc, fn.Name, fn.NumLocals, len(ast.Params(fn.Params)), fn.Vararg)
	for _, uv := range fn.Upvalues {
		child.proto.Upvalues = append(child.proto.Upvalues, UpvalueDesc{
			Name: uv.Name, FromParentLocal: uv.FromParentLocal, Index: uv.Index,
		})
	}
	child.compileStmtList(ast.Statements(fn.Body.Stmts))
	child.runDefers()
	child.emit(ABC(OpReturn, 0, 1, 0))
	child.proto.MaxStack = child.maxReg

	protoIdx := len(fc.proto.Protos)
	fc.proto.Protos = append(fc.proto.Protos, child.proto)
	fc.emit(ABx(OpClosure, dst, uint16(protoIdx)))
}
