package semantic

import (
	"github.com/behl-lang/behl-go/internal/ast"
	"github.com/behl-lang/behl-go/internal/errfmt"
	"github.com/behl-lang/behl-go/pkg/token"
)

// resolver walks a freshly parsed (and, if applicable, module-transformed)
// program, binding every identifier to a local slot, an upvalue index, or
// the global table, desugaring method calls, and validating const/break/
// continue/vararg usage along the way. It rebuilds each ast.NodeList it
// touches (the same pattern ast.Clone uses) rather than mutating sibling
// links in place, since a method call site can be replaced wholesale by
// its desugared CallExpr.
type resolver struct {
	arena *ast.Arena
	cur   *funcScope
	errs  []*errfmt.Error
}

func newResolver(arena *ast.Arena) *resolver {
	return &resolver{arena: arena}
}

func (r *resolver) errorf(pos token.Position, format string, args ...any) {
	r.errs = append(r.errs, errfmt.New(errfmt.SemanticError, pos, format, args...))
}

func (r *resolver) resolveProgram(prog *ast.Program) {
	r.cur = newFuncScope(nil, false)
	prog.Body = r.resolveStmtList(prog.Body)
	prog.NumLocals = r.cur.nextSlot
}

func (r *resolver) resolveStmtList(l ast.NodeList) ast.NodeList {
	var out ast.NodeList
	for _, s := range ast.Statements(l) {
		if resolved := r.resolveStmt(s); resolved != nil {
			out.Push(resolved)
		}
	}
	return out
}

func (r *resolver) resolveExprList(l ast.NodeList) ast.NodeList {
	var out ast.NodeList
	for _, e := range ast.Expressions(l) {
		out.Push(r.resolveExpr(e))
	}
	return out
}

func (r *resolver) resolveTableItemList(l ast.NodeList) ast.NodeList {
	var out ast.NodeList
	for _, item := range ast.TableItems(l) {
		var key ast.Expression
		if item.Key != nil {
			key = r.resolveExpr(item.Key)
		}
		out.Push(ast.NewTableItem(r.arena, item.Pos(), key, r.resolveExpr(item.Value)))
	}
	return out
}

// resolveIdent binds id to local/upvalue/global and returns whether the
// binding it resolved to was declared const.
func (r *resolver) resolveIdent(id *ast.Identifier) bool {
	if li, ok := r.cur.lookupLocal(id.Name); ok {
		id.Scope, id.Slot = ast.ScopeLocal, li.slot
		return li.isConst
	}
	if idx, isConst, ok := resolveUpvalue(r.cur, id.Name); ok {
		id.Scope, id.Slot = ast.ScopeUpvalue, idx
		return isConst
	}
	id.Scope = ast.ScopeGlobal
	return false
}

// resolveAssignTarget resolves an assignment/compound-assignment/inc-dec
// target. Plain-identifier targets are the only ones spec.md §4.1 lowers
// to a scope-specific form (see DESIGN.md); table-index and member
// targets stay generic but still need their subexpressions resolved.
func (r *resolver) resolveAssignTarget(target ast.Expression) ast.Expression {
	if id, ok := target.(*ast.Identifier); ok {
		if r.resolveIdent(id) {
			r.errorf(id.Pos(), "cannot assign to const variable %q", id.Name)
		}
		return id
	}
	return r.resolveExpr(target)
}

func (r *resolver) resolveStmt(s ast.Statement) ast.Statement {
	switch v := s.(type) {
	case *ast.ExprStmt:
		v.Expr = r.resolveExpr(v.Expr)
		return v

	case *ast.LetStmt:
		for i, val := range v.Values {
			if val != nil {
				v.Values[i] = r.resolveExpr(val)
			}
		}
		v.Slots = make([]int, len(v.Names))
		for i, name := range v.Names {
			v.Slots[i] = r.cur.declareLocal(name, v.Const)
		}
		return v

	case *ast.Block:
		r.cur.pushBlock()
		v.Stmts = r.resolveStmtList(v.Stmts)
		r.cur.popBlock()
		return v

	case *ast.IfStmt:
		v.Cond = r.resolveExpr(v.Cond)
		v.Then = r.resolveBlock(v.Then)
		for i := range v.ElseIfs {
			v.ElseIfs[i].Cond = r.resolveExpr(v.ElseIfs[i].Cond)
			v.ElseIfs[i].Body = r.resolveBlock(v.ElseIfs[i].Body)
		}
		if v.Else != nil {
			v.Else = r.resolveBlock(v.Else)
		}
		return v

	case *ast.WhileStmt:
		v.Cond = r.resolveExpr(v.Cond)
		v.Body = r.resolveLoopBody(v.Body)
		return v

	case *ast.ForCStmt:
		r.cur.pushBlock()
		if v.Init != nil {
			v.Init = r.resolveStmt(v.Init)
		}
		if v.Cond != nil {
			v.Cond = r.resolveExpr(v.Cond)
		}
		if v.Post != nil {
			v.Post = r.resolveStmt(v.Post)
		}
		v.Body = r.resolveLoopBody(v.Body)
		r.cur.popBlock()
		return v

	case *ast.ForNumericStmt:
		v.Start = r.resolveExpr(v.Start)
		v.Stop = r.resolveExpr(v.Stop)
		if v.Step != nil {
			v.Step = r.resolveExpr(v.Step)
		}
		r.cur.pushBlock()
		v.Slot = r.cur.declareLocal(v.Var, false)
		v.Body = r.resolveLoopBody(v.Body)
		r.cur.popBlock()
		return v

	case *ast.ForInStmt:
		v.Expr = r.resolveExpr(v.Expr)
		r.cur.pushBlock()
		if v.Key == "" {
			v.ValueSlot = r.cur.declareLocal(v.Value, false)
		} else {
			v.KeySlot = r.cur.declareLocal(v.Key, false)
			v.ValueSlot = r.cur.declareLocal(v.Value, false)
		}
		v.Body = r.resolveLoopBody(v.Body)
		r.cur.popBlock()
		return v

	case *ast.BreakStmt:
		if r.cur.loopDepth == 0 {
			r.errorf(v.Pos(), "break outside loop")
		}
		return v

	case *ast.ContinueStmt:
		if r.cur.loopDepth == 0 {
			r.errorf(v.Pos(), "continue outside loop")
		}
		return v

	case *ast.ReturnStmt:
		if v.Value != nil {
			v.Value = r.resolveExpr(v.Value)
		}
		return v

	case *ast.DeferStmt:
		v.Call = r.resolveExpr(v.Call)
		return v

	case *ast.FunctionDeclStmt:
		v.Slot = r.cur.declareLocal(v.Name, false)
		r.resolveFunctionLiteral(v.Fn)
		return v

	case *ast.ModuleStmt:
		return v

	case nil:
		return nil

	default:
		r.errorf(s.Pos(), "semantic: unhandled statement %T", s)
		return s
	}
}

// resolveBlock resolves a Block that does not itself introduce a loop
// (if/elseif/else arms); resolveStmt's *ast.Block case already pushes and
// pops the block scope.
func (r *resolver) resolveBlock(b *ast.Block) *ast.Block {
	return r.resolveStmt(b).(*ast.Block)
}

// resolveLoopBody resolves a loop's body with loopDepth incremented, so
// break/continue validate correctly; the caller owns the surrounding
// block scope (loop variables live one level up from the body itself).
func (r *resolver) resolveLoopBody(b *ast.Block) *ast.Block {
	r.cur.loopDepth++
	out := r.resolveBlock(b)
	r.cur.loopDepth--
	return out
}

func (r *resolver) resolveExpr(e ast.Expression) ast.Expression {
	switch v := e.(type) {
	case *ast.Identifier:
		r.resolveIdent(v)
		return v

	case *ast.IntLiteral, *ast.FloatLiteral, *ast.StringLiteral, *ast.BoolLiteral, *ast.NilLiteral:
		return v

	case *ast.VarargExpr:
		if !r.cur.isVararg {
			r.errorf(v.Pos(), "'...' used outside a vararg function")
		}
		return v

	case *ast.UnaryExpr:
		v.Operand = r.resolveExpr(v.Operand)
		return v

	case *ast.BinaryExpr:
		v.Left = r.resolveExpr(v.Left)
		v.Right = r.resolveExpr(v.Right)
		return v

	case *ast.LogicalExpr:
		v.Left = r.resolveExpr(v.Left)
		v.Right = r.resolveExpr(v.Right)
		return v

	case *ast.TernaryExpr:
		v.Cond = r.resolveExpr(v.Cond)
		v.Then = r.resolveExpr(v.Then)
		v.Else = r.resolveExpr(v.Else)
		return v

	case *ast.AssignExpr:
		v.Value = r.resolveExpr(v.Value)
		v.Target = r.resolveAssignTarget(v.Target)
		return v

	case *ast.CompoundAssignExpr:
		v.Value = r.resolveExpr(v.Value)
		v.Target = r.resolveAssignTarget(v.Target)
		return v

	case *ast.IncDecExpr:
		v.Target = r.resolveAssignTarget(v.Target)
		return v

	case *ast.CallExpr:
		v.Callee = r.resolveExpr(v.Callee)
		v.Args = r.resolveExprList(v.Args)
		return v

	case *ast.MethodCallExpr:
		return r.desugarMethodCall(v)

	case *ast.MemberExpr:
		v.Object = r.resolveExpr(v.Object)
		return v

	case *ast.IndexExpr:
		v.Object = r.resolveExpr(v.Object)
		v.Index = r.resolveExpr(v.Index)
		return v

	case *ast.FunctionLiteral:
		r.resolveFunctionLiteral(v)
		return v

	case *ast.TableConstructor:
		v.Items = r.resolveTableItemList(v.Items)
		return v

	default:
		r.errorf(e.Pos(), "semantic: unhandled expression %T", e)
		return e
	}
}

// desugarMethodCall turns `recv:meth(args)` into a member load of `meth`
// on `recv` called with a clone of `recv` prepended as the implicit
// `self` argument, per spec.md §4.1/§9. recv is resolved once and the
// clone copies its already-resolved Scope/Slot fields (ast.Clone copies
// Identifier.Scope/Slot), so both occurrences see the same binding.
func (r *resolver) desugarMethodCall(mc *ast.MethodCallExpr) ast.Expression {
	recv := r.resolveExpr(mc.Receiver)
	args := r.resolveExprList(mc.Args)

	recvCopy := ast.Clone(r.arena, recv).(ast.Expression)
	member := ast.NewMemberExpr(r.arena, mc.Pos(), recv, mc.Method)

	var newArgs ast.NodeList
	newArgs.Push(recvCopy)
	for _, a := range ast.Expressions(args) {
		newArgs.Push(a)
	}

	return ast.NewCallExpr(r.arena, mc.Pos(), member, newArgs)
}

// resolveFunctionLiteral resolves fn's body in a fresh function scope
// nested under the current one, filling in NumLocals and Upvalues for the
// bytecode compiler to consume. IsMethod functions get their implicit
// `self` parameter inserted here, matching where the call-site half of
// the same desugaring (desugarMethodCall) lives.
func (r *resolver) resolveFunctionLiteral(fn *ast.FunctionLiteral) {
	if fn.IsMethod {
		insertSelfParam(r.arena, fn)
	}

	fs := newFuncScope(r.cur, fn.Vararg)
	prev := r.cur
	r.cur = fs

	for _, p := range ast.Params(fn.Params) {
		fs.declareLocal(p.Name, false)
	}
	fn.Body.Stmts = r.resolveStmtList(fn.Body.Stmts)

	fn.NumLocals = fs.nextSlot
	fn.Upvalues = fs.upvalues

	r.cur = prev
}

func insertSelfParam(arena *ast.Arena, fn *ast.FunctionLiteral) {
	var params ast.NodeList
	params.Push(ast.NewParam(arena, fn.Pos(), "self"))
	for _, p := range ast.Params(fn.Params) {
		params.Push(p)
	}
	fn.Params = params
}
