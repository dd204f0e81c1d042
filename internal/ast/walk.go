package ast

// Visitor is called for every node Walk encounters. If it returns false,
// Walk does not descend into that node's children.
type Visitor func(Node) bool

// Walk traverses the tree rooted at n in depth-first order, calling visit
// for each node. This mirrors go/ast.Inspect's shape, but dispatches via a
// single type-switch over Kind rather than an Accept method per node type,
// consistent with the package's "one type-switch, not virtual dispatch"
// design (see node.go).
func Walk(n Node, visit Visitor) {
	if n == nil || !visit(n) {
		return
	}

	switch v := n.(type) {
	case *Identifier, *IntLiteral, *FloatLiteral, *StringLiteral, *BoolLiteral,
		*NilLiteral, *VarargExpr, *BreakStmt, *ContinueStmt, *ModuleStmt:
		// leaves

	case *UnaryExpr:
		Walk(v.Operand, visit)
	case *BinaryExpr:
		Walk(v.Left, visit)
		Walk(v.Right, visit)
	case *LogicalExpr:
		Walk(v.Left, visit)
		Walk(v.Right, visit)
	case *TernaryExpr:
		Walk(v.Cond, visit)
		Walk(v.Then, visit)
		Walk(v.Else, visit)
	case *AssignExpr:
		Walk(v.Target, visit)
		Walk(v.Value, visit)
	case *CompoundAssignExpr:
		Walk(v.Target, visit)
		Walk(v.Value, visit)
	case *IncDecExpr:
		Walk(v.Target, visit)
	case *CallExpr:
		Walk(v.Callee, visit)
		for _, arg := range Expressions(v.Args) {
			Walk(arg, visit)
		}
	case *MethodCallExpr:
		Walk(v.Receiver, visit)
		for _, arg := range Expressions(v.Args) {
			Walk(arg, visit)
		}
	case *MemberExpr:
		Walk(v.Object, visit)
	case *IndexExpr:
		Walk(v.Object, visit)
		Walk(v.Index, visit)
	case *Param:
		// leaf
	case *FunctionLiteral:
		for _, p := range Params(v.Params) {
			Walk(p, visit)
		}
		Walk(v.Body, visit)
	case *TableItem:
		if v.Key != nil {
			Walk(v.Key, visit)
		}
		Walk(v.Value, visit)
	case *TableConstructor:
		for _, item := range TableItems(v.Items) {
			Walk(item, visit)
		}

	case *ExprStmt:
		Walk(v.Expr, visit)
	case *LetStmt:
		for _, val := range v.Values {
			Walk(val, visit)
		}
	case *Block:
		for _, s := range Statements(v.Stmts) {
			Walk(s, visit)
		}
	case *IfStmt:
		Walk(v.Cond, visit)
		Walk(v.Then, visit)
		for _, ei := range v.ElseIfs {
			Walk(ei.Cond, visit)
			Walk(ei.Body, visit)
		}
		if v.Else != nil {
			Walk(v.Else, visit)
		}
	case *WhileStmt:
		Walk(v.Cond, visit)
		Walk(v.Body, visit)
	case *ForCStmt:
		if v.Init != nil {
			Walk(v.Init, visit)
		}
		if v.Cond != nil {
			Walk(v.Cond, visit)
		}
		if v.Post != nil {
			Walk(v.Post, visit)
		}
		Walk(v.Body, visit)
	case *ForNumericStmt:
		Walk(v.Start, visit)
		Walk(v.Stop, visit)
		if v.Step != nil {
			Walk(v.Step, visit)
		}
		Walk(v.Body, visit)
	case *ForInStmt:
		Walk(v.Expr, visit)
		Walk(v.Body, visit)
	case *ReturnStmt:
		if v.Value != nil {
			Walk(v.Value, visit)
		}
	case *DeferStmt:
		Walk(v.Call, visit)
	case *FunctionDeclStmt:
		Walk(v.Fn, visit)
	case *ExportDeclStmt:
		if v.Decl != nil {
			Walk(v.Decl, visit)
		}
	case *Program:
		if v.Module != nil {
			Walk(v.Module, visit)
		}
		for _, s := range Statements(v.Body) {
			Walk(s, visit)
		}

	default:
		panic("ast.Walk: unhandled node type")
	}
}
