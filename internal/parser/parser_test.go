package parser_test

import (
	"testing"

	"github.com/nalgeon/be"

	"minic/internal/ast"
	"minic/internal/lexer"
	"minic/internal/parser"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func parseInput(t *testing.T, input string) *ast.Program {
	t.Helper()
	tokens, lexErrs := lexer.Lex(input)
	if len(lexErrs) > 0 {
		t.Fatalf("lex errors: %v", lexErrs)
	}
	prog, parseErrs := parser.Parse(tokens)
	if len(parseErrs) > 0 {
		for _, e := range parseErrs {
			t.Errorf("parse error: %s", e.Error())
		}
		t.FailNow()
	}
	return prog
}

func parseInputExpectErrors(t *testing.T, input string) (*ast.Program, []parser.ParseError) {
	t.Helper()
	tokens, _ := lexer.Lex(input)
	return parser.Parse(tokens)
}

func onlyFunc(t *testing.T, prog *ast.Program) *ast.FuncDecl {
	t.Helper()
	fns := prog.Functions()
	if len(fns) != 1 {
		t.Fatalf("expected 1 function, got %d", len(fns))
	}
	return fns[0]
}

// ---------------------------------------------------------------------------
// Global declarations
// ---------------------------------------------------------------------------

func TestParseGlobalVar(t *testing.T) {
	prog := parseInput(t, "int x = 5;")
	globals := prog.Globals()
	be.Equal(t, len(globals), 1)
	g := globals[0]
	be.Equal(t, g.Name, "x")
	be.Equal(t, g.Type.Name, "int")
	be.Equal(t, g.Const, false)
	be.Equal(t, g.ValueText, "5")
	be.Equal(t, g.Pos.Line, 1)
}

func TestParseConstWithoutInitializer(t *testing.T) {
	prog := parseInput(t, "const double pi;")
	g := prog.Globals()[0]
	be.True(t, g.Const)
	be.Equal(t, g.Type.Name, "double")
	be.True(t, g.Value == nil)
	be.Equal(t, g.ValueText, "")
}

func TestInitializerTextDropsWhitespace(t *testing.T) {
	prog := parseInput(t, `string s = "a b" + name ( 1 , 2 );`)
	be.Equal(t, prog.Globals()[0].ValueText, `"a b"+name(1,2)`)
}

func TestDeclarationOrderIsPreserved(t *testing.T) {
	prog := parseInput(t, "int a; void f() {} float b = 1.5;")
	be.Equal(t, len(prog.Decls), 3)
	_, isVar := prog.Decls[0].(*ast.VarDecl)
	_, isFunc := prog.Decls[1].(*ast.FuncDecl)
	_, isVar2 := prog.Decls[2].(*ast.VarDecl)
	be.True(t, isVar && isFunc && isVar2)
}

// ---------------------------------------------------------------------------
// Function declarations
// ---------------------------------------------------------------------------

func TestParseFuncDeclEmpty(t *testing.T) {
	fn := onlyFunc(t, parseInput(t, "int main() {}"))
	be.Equal(t, fn.Name, "main")
	be.Equal(t, len(fn.Params), 0)
	be.Equal(t, fn.ReturnType.Name, "int")
	be.Equal(t, len(fn.Body.Stmts), 0)
}

func TestParseFuncDeclWithParams(t *testing.T) {
	fn := onlyFunc(t, parseInput(t, "float add(int a, float b) { return a + b; }"))
	be.Equal(t, len(fn.Params), 2)
	be.Equal(t, fn.Params[0].Name, "a")
	be.Equal(t, fn.Params[0].Type.Name, "int")
	be.Equal(t, fn.Params[1].Name, "b")
	be.Equal(t, fn.Params[1].Type.Name, "float")
	ret, ok := fn.Body.Stmts[0].(*ast.ReturnStmt)
	be.True(t, ok)
	be.Equal(t, ast.ExprString(ret.Value), "(a + b)")
}

func TestParseFuncDeclWithoutReturnType(t *testing.T) {
	fn := onlyFunc(t, parseInput(t, "helper(int n) { }"))
	be.Equal(t, fn.Name, "helper")
	be.True(t, fn.ReturnType == nil)
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func TestParseStatements(t *testing.T) {
	src := `void f() {
	int x = 1;
	x = x + 1;
	g(x);
	{ bool b; }
	return;
}`
	fn := onlyFunc(t, parseInput(t, src))
	be.Equal(t, len(fn.Body.Stmts), 5)

	decl := fn.Body.Stmts[0].(*ast.VarDecl)
	be.Equal(t, decl.Pos.Line, 2)

	assign := fn.Body.Stmts[1].(*ast.AssignStmt)
	be.Equal(t, assign.Name, "x")
	be.Equal(t, ast.ExprString(assign.Value), "(x + 1)")
	be.Equal(t, assign.Pos.Line, 3)

	call := fn.Body.Stmts[2].(*ast.ExprStmt).Expression.(*ast.CallExpr)
	be.Equal(t, call.Name, "g")
	be.Equal(t, len(call.Args), 1)

	block := fn.Body.Stmts[3].(*ast.BlockStmt)
	be.Equal(t, len(block.Stmts), 1)

	ret := fn.Body.Stmts[4].(*ast.ReturnStmt)
	be.True(t, ret.Value == nil)
}

func TestParseIfElseChain(t *testing.T) {
	src := "void f() { if (a) { } else if (b) { } else { } }"
	fn := onlyFunc(t, parseInput(t, src))
	ifStmt := fn.Body.Stmts[0].(*ast.IfStmt)
	elseIf, ok := ifStmt.Else.(*ast.IfStmt)
	be.True(t, ok)
	_, ok = elseIf.Else.(*ast.BlockStmt)
	be.True(t, ok)
}

func TestParseWhile(t *testing.T) {
	fn := onlyFunc(t, parseInput(t, "void f() { while (i < 10) { i = i + 1; } }"))
	w := fn.Body.Stmts[0].(*ast.WhileStmt)
	be.Equal(t, ast.ExprString(w.Condition), "(i < 10)")
	be.Equal(t, len(w.Body.Stmts), 1)
}

func TestParseFor(t *testing.T) {
	fn := onlyFunc(t, parseInput(t, "void f() { for (int i = 0; i < 10; i = i + 1) { } }"))
	f := fn.Body.Stmts[0].(*ast.ForStmt)
	init, ok := f.Init.(*ast.VarDecl)
	be.True(t, ok)
	be.Equal(t, init.Name, "i")
	be.Equal(t, ast.ExprString(f.Condition), "(i < 10)")
	update, ok := f.Update.(*ast.AssignStmt)
	be.True(t, ok)
	be.Equal(t, update.Name, "i")
}

func TestParseForEmptyClauses(t *testing.T) {
	fn := onlyFunc(t, parseInput(t, "void f() { for (;;) { } }"))
	f := fn.Body.Stmts[0].(*ast.ForStmt)
	be.True(t, f.Init == nil)
	be.True(t, f.Condition == nil)
	be.True(t, f.Update == nil)
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func TestExpressionPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "(((1 + 2)) * 3)"},
		{"a - b - c", "((a - b) - c)"},
		{"a < b and c == d", "((a < b) and (c == d))"},
		{"a && b || c", "((a and b) or c)"},
		{"not a or b", "((not a) or b)"},
		{"!a", "(not a)"},
		{"-x * 2", "((-x) * 2)"},
		{"f(1, g(2))", "f(1, g(2))"},
		{`"s" == 'c'`, `("s" == 'c')`},
		{"true != false", "(true != false)"},
		{"x >= 1.5", "(x >= 1.5)"},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			prog := parseInput(t, "bool v = "+test.src+";")
			be.Equal(t, ast.ExprString(prog.Globals()[0].Value), test.want)
		})
	}
}

func TestBinaryExprClass(t *testing.T) {
	prog := parseInput(t, "bool a = 1 + 2; bool b = 1 < 2; bool c = 1 == 2; bool d = x or y;")
	globals := prog.Globals()
	be.Equal(t, globals[0].Value.(*ast.BinaryExpr).Class(), ast.OpArithmetic)
	be.Equal(t, globals[1].Value.(*ast.BinaryExpr).Class(), ast.OpRelational)
	be.Equal(t, globals[2].Value.(*ast.BinaryExpr).Class(), ast.OpEquality)
	be.Equal(t, globals[3].Value.(*ast.BinaryExpr).Class(), ast.OpLogical)
}

// ---------------------------------------------------------------------------
// Error recovery
// ---------------------------------------------------------------------------

func TestMissingSemicolon(t *testing.T) {
	_, errs := parseInputExpectErrors(t, "int x = 5")
	be.Equal(t, len(errs), 1)
	be.Equal(t, errs[0].Line, 1)
}

func TestRecoversAtNextDeclaration(t *testing.T) {
	prog, errs := parseInputExpectErrors(t, "; ; int main() { return 0; }")
	be.True(t, len(errs) >= 1)
	be.Equal(t, len(prog.Functions()), 1)
	be.Equal(t, prog.Functions()[0].Name, "main")
}

func TestBadStatementKeepsParsing(t *testing.T) {
	prog, errs := parseInputExpectErrors(t, "void f() { int = 3; return; }")
	be.True(t, len(errs) >= 1)
	fn := prog.Functions()[0]
	_, last := fn.Body.Stmts[len(fn.Body.Stmts)-1].(*ast.ReturnStmt)
	be.True(t, last)
}

func TestUnknownTypeName(t *testing.T) {
	_, errs := parseInputExpectErrors(t, "void f(number n) { }")
	be.True(t, len(errs) >= 1)
	be.Equal(t, errs[0].Message, "expected type name, got IDENT")
}
