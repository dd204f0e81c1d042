package ast

// Clone deep-copies n into fresh nodes allocated from a, leaving the
// sibling links of the copies unset (the caller re-threads copies into
// whatever NodeList it is building). This is used by the semantic pass's
// method-desugaring step, which needs an independent copy of a receiver
// expression to insert as a call's implicit first argument (spec.md §9).
func Clone(a *Arena, n Node) Node {
	if n == nil {
		return nil
	}

	switch v := n.(type) {
	case *Identifier:
		c := NewIdentifier(a, v.position, v.Name)
		c.Scope, c.Slot = v.Scope, v.Slot
		return c
	case *IntLiteral:
		return NewIntLiteral(a, v.position, v.Value)
	case *FloatLiteral:
		return NewFloatLiteral(a, v.position, v.Value)
	case *StringLiteral:
		return NewStringLiteral(a, v.position, v.Value)
	case *BoolLiteral:
		return NewBoolLiteral(a, v.position, v.Value)
	case *NilLiteral:
		return NewNilLiteral(a, v.position)
	case *VarargExpr:
		return NewVarargExpr(a, v.position)
	case *UnaryExpr:
		return NewUnaryExpr(a, v.position, v.Op, Clone(a, v.Operand).(Expression))
	case *BinaryExpr:
		return NewBinaryExpr(a, v.position, v.Op, Clone(a, v.Left).(Expression), Clone(a, v.Right).(Expression))
	case *LogicalExpr:
		return NewLogicalExpr(a, v.position, v.Op, Clone(a, v.Left).(Expression), Clone(a, v.Right).(Expression))
	case *TernaryExpr:
		return NewTernaryExpr(a, v.position, Clone(a, v.Cond).(Expression), Clone(a, v.Then).(Expression), Clone(a, v.Else).(Expression))
	case *AssignExpr:
		return NewAssignExpr(a, v.position, Clone(a, v.Target).(Expression), Clone(a, v.Value).(Expression))
	case *CompoundAssignExpr:
		return NewCompoundAssignExpr(a, v.position, v.Op, Clone(a, v.Target).(Expression), Clone(a, v.Value).(Expression))
	case *IncDecExpr:
		return NewIncDecExpr(a, v.position, v.Op, Clone(a, v.Target).(Expression), v.Prefix)
	case *CallExpr:
		return NewCallExpr(a, v.position, Clone(a, v.Callee).(Expression), cloneList(a, v.Args))
	case *MethodCallExpr:
		return NewMethodCallExpr(a, v.position, Clone(a, v.Receiver).(Expression), v.Method, cloneList(a, v.Args))
	case *MemberExpr:
		return NewMemberExpr(a, v.position, Clone(a, v.Object).(Expression), v.Property)
	case *IndexExpr:
		return NewIndexExpr(a, v.position, Clone(a, v.Object).(Expression), Clone(a, v.Index).(Expression))
	case *Param:
		return NewParam(a, v.position, v.Name)
	case *FunctionLiteral:
		c := NewFunctionLiteral(a, v.position, cloneList(a, v.Params), v.Vararg, Clone(a, v.Body).(*Block))
		c.Name = v.Name
		c.IsMethod = v.IsMethod
		c.NumLocals = v.NumLocals
		c.Upvalues = append([]UpvalueDesc(nil), v.Upvalues...)
		return c
	case *TableItem:
		var key Expression
		if v.Key != nil {
			key = Clone(a, v.Key).(Expression)
		}
		return NewTableItem(a, v.position, key, Clone(a, v.Value).(Expression))
	case *TableConstructor:
		return NewTableConstructor(a, v.position, cloneList(a, v.Items))

	case *ExprStmt:
		return NewExprStmt(a, v.position, Clone(a, v.Expr).(Expression))
	case *LetStmt:
		values := make([]Expression, len(v.Values))
		for i, val := range v.Values {
			values[i] = Clone(a, val).(Expression)
		}
		names := append([]string(nil), v.Names...)
		c := NewLetStmt(a, v.position, names, values, v.Const)
		c.Slots = append([]int(nil), v.Slots...)
		return c
	case *Block:
		return NewBlock(a, v.position, cloneList(a, v.Stmts))
	case *IfStmt:
		elseIfs := make([]ElseIfClause, len(v.ElseIfs))
		for i, ei := range v.ElseIfs {
			elseIfs[i] = ElseIfClause{Cond: Clone(a, ei.Cond).(Expression), Body: Clone(a, ei.Body).(*Block)}
		}
		var els *Block
		if v.Else != nil {
			els = Clone(a, v.Else).(*Block)
		}
		return NewIfStmt(a, v.position, Clone(a, v.Cond).(Expression), Clone(a, v.Then).(*Block), elseIfs, els)
	case *WhileStmt:
		return NewWhileStmt(a, v.position, Clone(a, v.Cond).(Expression), Clone(a, v.Body).(*Block))
	case *ForCStmt:
		var init, post Statement
		if v.Init != nil {
			init = Clone(a, v.Init).(Statement)
		}
		var cond Expression
		if v.Cond != nil {
			cond = Clone(a, v.Cond).(Expression)
		}
		if v.Post != nil {
			post = Clone(a, v.Post).(Statement)
		}
		return NewForCStmt(a, v.position, init, cond, post, Clone(a, v.Body).(*Block))
	case *ForNumericStmt:
		var step Expression
		if v.Step != nil {
			step = Clone(a, v.Step).(Expression)
		}
		c := NewForNumericStmt(a, v.position, v.Var, Clone(a, v.Start).(Expression), Clone(a, v.Stop).(Expression), step, Clone(a, v.Body).(*Block))
		c.Slot = v.Slot
		return c
	case *ForInStmt:
		c := NewForInStmt(a, v.position, v.Key, v.Value, Clone(a, v.Expr).(Expression), Clone(a, v.Body).(*Block))
		c.KeySlot, c.ValueSlot = v.KeySlot, v.ValueSlot
		return c
	case *BreakStmt:
		return NewBreakStmt(a, v.position)
	case *ContinueStmt:
		return NewContinueStmt(a, v.position)
	case *ReturnStmt:
		var val Expression
		if v.Value != nil {
			val = Clone(a, v.Value).(Expression)
		}
		return NewReturnStmt(a, v.position, val)
	case *DeferStmt:
		return NewDeferStmt(a, v.position, Clone(a, v.Call).(Expression))
	case *FunctionDeclStmt:
		return NewFunctionDeclStmt(a, v.position, v.Name, Clone(a, v.Fn).(*FunctionLiteral))
	case *ExportDeclStmt:
		var decl Statement
		if v.Decl != nil {
			decl = Clone(a, v.Decl).(Statement)
		}
		return NewExportDeclStmt(a, v.position, decl, append([]string(nil), v.Names...))
	case *ModuleStmt:
		return NewModuleStmt(a, v.position, v.Name)
	case *Program:
		var mod *ModuleStmt
		if v.Module != nil {
			mod = Clone(a, v.Module).(*ModuleStmt)
		}
		c := NewProgram(a, mod, cloneList(a, v.Body))
		c.Exports = append([]string(nil), v.Exports...)
		return c

	default:
		panic("ast.Clone: unhandled node type")
	}
}

func cloneList(a *Arena, l NodeList) NodeList {
	var out NodeList
	for n := l.First(); n != nil; n = n.next() {
		out.Push(Clone(a, n))
	}
	return out
}
