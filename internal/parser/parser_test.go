package parser

import (
	"fmt"
	"testing"

	"github.com/behl-lang/behl-go/internal/ast"
	"github.com/behl-lang/behl-go/internal/lexer"
)

// parseSource tokenizes and parses input, failing the test immediately if
// any parse error was produced.
func parseSource(t *testing.T, input string) *ast.Program {
	t.Helper()
	toks := lexer.Tokenize(input)
	prog, errs := Parse(toks)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", input, errs)
	}
	return prog
}

func parseSourceExpectError(t *testing.T, input string) []*Error {
	t.Helper()
	toks := lexer.Tokenize(input)
	_, errs := Parse(toks)
	if len(errs) == 0 {
		t.Fatalf("expected parse error for %q, got none", input)
	}
	return errs
}

func soleExprStmt(t *testing.T, prog *ast.Program) ast.Expression {
	t.Helper()
	stmts := ast.Statements(prog.Body)
	if len(stmts) != 1 {
		t.Fatalf("expected exactly 1 statement, got %d: %v", len(stmts), stmts)
	}
	es, ok := stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected *ast.ExprStmt, got %T", stmts[0])
	}
	return es.Expr
}

func TestParseLiteralsAndOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3;", "(1 + (2 * 3))"},
		{"(1 + 2) * 3;", "((1 + 2) * 3)"},
		{"2 ** 3 ** 2;", "(2 ** (3 ** 2))"},
		{"-1 + 2;", "((-1) + 2)"},
		{"1 < 2 == 3 < 4;", "((1 < 2) == (3 < 4))"},
		{"a && b || c;", "((a && b) || c)"},
		{"not a and b;", "((not a) and b)"},
		{"a = b = 1;", "(a = (b = 1))"},
		{"a += 1;", "(a += 1)"},
		{"a.b.c;", "a.b.c"},
		{"a[0][1];", "a[0][1]"},
		{"f(1, 2)(3);", "f(1, 2)(3)"},
		{"a++;", "(a++)"},
		{"--a;", "(--a)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := parseSource(t, tt.input)
			got := soleExprStmt(t, prog).String()
			if got != tt.want {
				t.Errorf("parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestTernaryMethodCallColonAmbiguity exercises the noMethodColon fix:
// a bare `:` inside a ternary's `then` branch must never be mistaken for
// a method call, while method calls elsewhere (including the `else`
// branch, and parenthesized in `then`) still parse.
func TestTernaryMethodCallColonAmbiguity(t *testing.T) {
	t.Run("plain value then branch with a method-call-shaped else operand", func(t *testing.T) {
		prog := parseSource(t, "cond ? x : len(s);")
		got := soleExprStmt(t, prog).String()
		want := "(cond ? x : len(s))"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("arithmetic in then branch is unaffected", func(t *testing.T) {
		prog := parseSource(t, "cond ? a + 1 : b;")
		got := soleExprStmt(t, prog).String()
		want := "(cond ? (a + 1) : b)"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("logical operators in then branch are unaffected", func(t *testing.T) {
		prog := parseSource(t, "cond ? a && b : c;")
		got := soleExprStmt(t, prog).String()
		want := "(cond ? (a && b) : c)"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("method call legal in else branch", func(t *testing.T) {
		prog := parseSource(t, "cond ? x : obj:method();")
		got := soleExprStmt(t, prog).String()
		want := `(cond ? x : obj:method())`
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("parenthesized method call legal in then branch", func(t *testing.T) {
		prog := parseSource(t, "cond ? (obj:method()) : x;")
		got := soleExprStmt(t, prog).String()
		want := `(cond ? obj:method() : x)`
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("bare method call in then branch stops before the colon", func(t *testing.T) {
		// Without parens, `obj:method` in `then` only ever parses the
		// receiver: the colon is reserved for the ternary separator. `method`
		// becomes the else operand rather than being consumed as a method
		// name, which is the documented restriction.
		prog := parseSource(t, "cond ? obj : method;")
		got := soleExprStmt(t, prog).String()
		want := "(cond ? obj : method)"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("chained ternary associates right", func(t *testing.T) {
		prog := parseSource(t, "a ? b : c ? d : e;")
		got := soleExprStmt(t, prog).String()
		want := "(a ? b : (c ? d : e))"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}

func TestParseMethodCallExpr(t *testing.T) {
	prog := parseSource(t, `obj:doThing(1, 2);`)
	call, ok := soleExprStmt(t, prog).(*ast.MethodCallExpr)
	if !ok {
		t.Fatalf("expected *ast.MethodCallExpr, got %T", soleExprStmt(t, prog))
	}
	if call.Method != "doThing" {
		t.Errorf("Method = %q, want doThing", call.Method)
	}
	if n := len(ast.Expressions(call.Args)); n != 2 {
		t.Errorf("len(Args) = %d, want 2", n)
	}
}

func TestParseLetStmtPadsValuesToNames(t *testing.T) {
	prog := parseSource(t, "let x = 1, y, z = f();")
	stmts := ast.Statements(prog.Body)
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	let, ok := stmts[0].(*ast.LetStmt)
	if !ok {
		t.Fatalf("expected *ast.LetStmt, got %T", stmts[0])
	}
	if len(let.Names) != 3 || len(let.Values) != 3 {
		t.Fatalf("expected 3 names and 3 values, got %d names, %d values", len(let.Names), len(let.Values))
	}
	if let.Names[1] != "y" || let.Values[1] != nil {
		t.Errorf("expected middle name y with nil initializer, got name %q value %v", let.Names[1], let.Values[1])
	}
	if let.Values[0] == nil || let.Values[2] == nil {
		t.Errorf("expected x and z to have initializers")
	}
}

func TestParseConstStmt(t *testing.T) {
	prog := parseSource(t, "const PI = 3;")
	let := ast.Statements(prog.Body)[0].(*ast.LetStmt)
	if !let.Const {
		t.Errorf("expected Const=true")
	}
}

func TestParseIfElseIfElse(t *testing.T) {
	prog := parseSource(t, `
		if (a) { f(); } elseif (b) { g(); } elseif (c) { h(); } else { k(); }
	`)
	stmt := ast.Statements(prog.Body)[0].(*ast.IfStmt)
	if len(stmt.ElseIfs) != 2 {
		t.Fatalf("expected 2 elseif clauses, got %d", len(stmt.ElseIfs))
	}
	if stmt.Else == nil {
		t.Fatalf("expected an else clause")
	}
}

func TestParseIfSingleStatementBody(t *testing.T) {
	prog := parseSource(t, "if (a) f(); else g();")
	stmt := ast.Statements(prog.Body)[0].(*ast.IfStmt)
	if n := len(ast.Statements(stmt.Then.Stmts)); n != 1 {
		t.Fatalf("expected 1 statement in single-statement then body, got %d", n)
	}
	if n := len(ast.Statements(stmt.Else.Stmts)); n != 1 {
		t.Fatalf("expected 1 statement in single-statement else body, got %d", n)
	}
}

func TestParseWhileStmt(t *testing.T) {
	prog := parseSource(t, "while (a < 10) { a = a + 1; }")
	stmt := ast.Statements(prog.Body)[0].(*ast.WhileStmt)
	if stmt.Cond == nil || stmt.Body == nil {
		t.Fatalf("expected non-nil Cond and Body")
	}
}

func TestParseForCStmt(t *testing.T) {
	prog := parseSource(t, "for (i = 0; i < 10; i++) { f(i); }")
	stmt := ast.Statements(prog.Body)[0].(*ast.ForCStmt)
	if stmt.Init == nil || stmt.Cond == nil || stmt.Post == nil {
		t.Fatalf("expected non-nil Init, Cond, Post")
	}
}

func TestParseForCStmtWithLet(t *testing.T) {
	prog := parseSource(t, "for (let i = 0; i < 10; i += 1) { f(i); }")
	stmt := ast.Statements(prog.Body)[0].(*ast.ForCStmt)
	if _, ok := stmt.Init.(*ast.LetStmt); !ok {
		t.Fatalf("expected Init to be *ast.LetStmt, got %T", stmt.Init)
	}
}

func TestParseForNumericStmt(t *testing.T) {
	tests := []struct {
		input    string
		wantStep bool
	}{
		{"for (i = 0, 10) { f(i); }", false},
		{"for (i = 0, 10, 2) { f(i); }", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := parseSource(t, tt.input)
			stmt := ast.Statements(prog.Body)[0].(*ast.ForNumericStmt)
			if stmt.Var != "i" {
				t.Errorf("Var = %q, want i", stmt.Var)
			}
			if (stmt.Step != nil) != tt.wantStep {
				t.Errorf("Step present = %v, want %v", stmt.Step != nil, tt.wantStep)
			}
		})
	}
}

func TestParseForeachStmt(t *testing.T) {
	t.Run("two vars", func(t *testing.T) {
		prog := parseSource(t, "foreach (k, v in t) { f(k, v); }")
		stmt := ast.Statements(prog.Body)[0].(*ast.ForInStmt)
		if stmt.Key != "k" || stmt.Value != "v" {
			t.Errorf("Key=%q Value=%q, want k,v", stmt.Key, stmt.Value)
		}
	})
	t.Run("single var binds value and discards key", func(t *testing.T) {
		prog := parseSource(t, "foreach (v in t) { f(v); }")
		stmt := ast.Statements(prog.Body)[0].(*ast.ForInStmt)
		if stmt.Key != "" || stmt.Value != "v" {
			t.Errorf("Key=%q Value=%q, want \"\",v", stmt.Key, stmt.Value)
		}
	})
}

func TestParseBreakContinue(t *testing.T) {
	prog := parseSource(t, "while (true) { break; continue; }")
	body := ast.Statements(prog.Body)[0].(*ast.WhileStmt).Body
	stmts := ast.Statements(body.Stmts)
	if _, ok := stmts[0].(*ast.BreakStmt); !ok {
		t.Errorf("expected *ast.BreakStmt, got %T", stmts[0])
	}
	if _, ok := stmts[1].(*ast.ContinueStmt); !ok {
		t.Errorf("expected *ast.ContinueStmt, got %T", stmts[1])
	}
}

func TestParseReturnStmt(t *testing.T) {
	t.Run("bare return", func(t *testing.T) {
		prog := parseSource(t, "function f() { return; }")
		fn := ast.Statements(prog.Body)[0].(*ast.FunctionDeclStmt).Fn
		stmt := ast.Statements(fn.Body.Stmts)[0].(*ast.ReturnStmt)
		if stmt.Value != nil {
			t.Errorf("expected nil Value for bare return")
		}
	})
	t.Run("return with value", func(t *testing.T) {
		prog := parseSource(t, "function f() { return 1 + 2; }")
		fn := ast.Statements(prog.Body)[0].(*ast.FunctionDeclStmt).Fn
		stmt := ast.Statements(fn.Body.Stmts)[0].(*ast.ReturnStmt)
		if stmt.Value == nil {
			t.Errorf("expected non-nil Value")
		}
	})
}

func TestParseDeferStmt(t *testing.T) {
	prog := parseSource(t, "function f() { defer cleanup(); }")
	fn := ast.Statements(prog.Body)[0].(*ast.FunctionDeclStmt).Fn
	stmt := ast.Statements(fn.Body.Stmts)[0].(*ast.DeferStmt)
	if _, ok := stmt.Call.(*ast.CallExpr); !ok {
		t.Errorf("expected Call to be *ast.CallExpr, got %T", stmt.Call)
	}
}

func TestParseFunctionDeclStmt(t *testing.T) {
	prog := parseSource(t, "function add(a, b) { return a + b; }")
	decl := ast.Statements(prog.Body)[0].(*ast.FunctionDeclStmt)
	if decl.Name != "add" {
		t.Errorf("Name = %q, want add", decl.Name)
	}
	if n := len(ast.Params(decl.Fn.Params)); n != 2 {
		t.Errorf("len(Params) = %d, want 2", n)
	}
}

func TestParseFunctionDeclVararg(t *testing.T) {
	prog := parseSource(t, "function f(a, ...) { return a; }")
	decl := ast.Statements(prog.Body)[0].(*ast.FunctionDeclStmt)
	if !decl.Fn.Vararg {
		t.Errorf("expected Vararg=true")
	}
}

// TestParseMethodDeclSugar covers `function obj:meth(args) {...}`, which
// desugars to an assignment of a method-flagged function literal to
// obj.meth; the implicit `self` parameter is the semantic pass's job, not
// the parser's, so Params here has no leading self.
func TestParseMethodDeclSugar(t *testing.T) {
	prog := parseSource(t, "function obj:meth(a) { return a; }")
	stmt := ast.Statements(prog.Body)[0].(*ast.ExprStmt)
	assign, ok := stmt.Expr.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected *ast.AssignExpr, got %T", stmt.Expr)
	}
	member, ok := assign.Target.(*ast.MemberExpr)
	if !ok {
		t.Fatalf("expected Target to be *ast.MemberExpr, got %T", assign.Target)
	}
	if member.Property != "meth" {
		t.Errorf("member.Property = %q, want meth", member.Property)
	}
	fn, ok := assign.Value.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expected Value to be *ast.FunctionLiteral, got %T", assign.Value)
	}
	if !fn.IsMethod {
		t.Errorf("expected IsMethod=true")
	}
	if n := len(ast.Params(fn.Params)); n != 1 {
		t.Errorf("len(Params) = %d, want 1 (no implicit self at parse time)", n)
	}
}

func TestParseExportDecl(t *testing.T) {
	t.Run("export const", func(t *testing.T) {
		prog := parseSource(t, `export const X = 1;`)
		decl := ast.Statements(prog.Body)[0].(*ast.ExportDeclStmt)
		if _, ok := decl.Decl.(*ast.LetStmt); !ok {
			t.Errorf("expected Decl to be *ast.LetStmt, got %T", decl.Decl)
		}
	})
	t.Run("export function", func(t *testing.T) {
		prog := parseSource(t, `export function f() { return 1; }`)
		decl := ast.Statements(prog.Body)[0].(*ast.ExportDeclStmt)
		if _, ok := decl.Decl.(*ast.FunctionDeclStmt); !ok {
			t.Errorf("expected Decl to be *ast.FunctionDeclStmt, got %T", decl.Decl)
		}
	})
	t.Run("export list", func(t *testing.T) {
		prog := parseSource(t, `export { a, b, c };`)
		decl := ast.Statements(prog.Body)[0].(*ast.ExportDeclStmt)
		if decl.Decl != nil {
			t.Errorf("expected nil Decl for export-list form")
		}
		if len(decl.Names) != 3 {
			t.Fatalf("expected 3 names, got %d", len(decl.Names))
		}
	})
}

func TestParseModuleStmt(t *testing.T) {
	prog := parseSource(t, `module "geometry"; function area() { return 1; }`)
	if !prog.IsModule() {
		t.Fatalf("expected IsModule()=true")
	}
	if prog.Module.Name != "geometry" {
		t.Errorf("Module.Name = %q, want geometry", prog.Module.Name)
	}
	if n := len(ast.Statements(prog.Body)); n != 1 {
		t.Errorf("expected 1 statement after the module declaration, got %d", n)
	}
}

func TestParseOptionalSemicolons(t *testing.T) {
	// spec.md §6: semicolons are optional separators, so a sequence of
	// statements with none at all still parses as the same three
	// statements.
	prog := parseSource(t, "let x = 1\nlet y = 2\nf(x, y)")
	if n := len(ast.Statements(prog.Body)); n != 3 {
		t.Fatalf("expected 3 statements, got %d", n)
	}
}

func TestParseTableConstructor(t *testing.T) {
	// Parenthesized: a `{` at the start of a statement opens a block.
	prog := parseSource(t, `({1, 2, x = 3, [y] = 4});`)
	tc, ok := soleExprStmt(t, prog).(*ast.TableConstructor)
	if !ok {
		t.Fatalf("expected *ast.TableConstructor, got %T", soleExprStmt(t, prog))
	}
	if n := len(ast.TableItems(tc.Items)); n != 4 {
		t.Fatalf("expected 4 items, got %d", n)
	}
}

func TestParseFunctionLiteralExpr(t *testing.T) {
	prog := parseSource(t, `let f = function (a, b) { return a + b; };`)
	let := ast.Statements(prog.Body)[0].(*ast.LetStmt)
	fn, ok := let.Values[0].(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expected *ast.FunctionLiteral, got %T", let.Values[0])
	}
	if n := len(ast.Params(fn.Params)); n != 2 {
		t.Errorf("len(Params) = %d, want 2", n)
	}
}

func TestParseErrorsOnMalformedInput(t *testing.T) {
	tests := []string{
		"let x = ;",
		"if (a { f(); }",
		"function (",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			errs := parseSourceExpectError(t, input)
			if len(errs) == 0 {
				t.Fatalf("expected at least one error")
			}
		})
	}
}

func ExampleParse() {
	toks := lexer.Tokenize("let x = 1 + 2;")
	prog, errs := Parse(toks)
	if len(errs) != 0 {
		fmt.Println(errs)
		return
	}
	fmt.Println(prog.Body.First().(*ast.LetStmt).Values[0])
	// Output: (1 + 2)
}
