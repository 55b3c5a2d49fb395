package semantic

import (
	"fmt"

	"minic/internal/ast"
	"minic/internal/symbols"
	"minic/internal/types"
)

// ---------------------------------------------------------------------------
// Diagnostic
// ---------------------------------------------------------------------------

// Diagnostic is a single semantic finding tagged with its source line.
type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// Diagnostics accumulates findings in the order the checks ran.
type Diagnostics struct {
	list []Diagnostic
}

// Addf appends a diagnostic for line.
func (d *Diagnostics) Addf(line int, format string, args ...any) {
	d.list = append(d.list, Diagnostic{Line: line, Message: fmt.Sprintf(format, args...)})
}

// Len returns the number of diagnostics collected so far.
func (d *Diagnostics) Len() int { return len(d.list) }

// List returns the collected diagnostics.
func (d *Diagnostics) List() []Diagnostic { return d.list }

// Options tightens rules that are permissive by default.
type Options struct {
	// StrictFunctionReferences reports a function name used as a value
	// instead of typing it Unknown.
	StrictFunctionReferences bool
	// StrictStringArithmetic rejects '-', '*' and '/' with a string operand.
	StrictStringArithmetic bool
}

// ---------------------------------------------------------------------------
// Checker
// ---------------------------------------------------------------------------

// placeholder is the identifier the parser substitutes for a malformed
// expression. Its syntax error has already been reported.
const placeholder = "<error>"

type checker struct {
	table *symbols.Table
	opts  Options
}

// Analyze checks prog in a single pass, filling table with every declared
// symbol, and returns the diagnostics in traversal order. Functions are
// registered as they are reached, so a call to a function declared further
// down is reported as undefined.
func Analyze(prog *ast.Program, table *symbols.Table, opts Options) []Diagnostic {
	c := &checker{table: table, opts: opts}
	var diags Diagnostics
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.VarDecl:
			c.checkVarDecl(d, nil, &diags)
		case *ast.FuncDecl:
			c.checkFuncDecl(d, &diags)
		}
	}
	return diags.List()
}

func (c *checker) exitScope() {
	if err := c.table.ExitScope(); err != nil {
		panic(err) // enter/exit pairs are unbalanced
	}
}

func typeOf(t *ast.TypeExpr) types.MiniType {
	if t == nil {
		return types.Unknown
	}
	return types.Parse(t.Name)
}

func unnamed(name string) bool {
	return name == "" || name == placeholder
}

// ---------------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------------

// checkVarDecl handles global (fn == nil) and local declarations. The symbol
// is defined even when a check fails.
func (c *checker) checkVarDecl(d *ast.VarDecl, fn *symbols.FunctionSymbol, diags *Diagnostics) {
	line := d.Pos.Line
	if unnamed(d.Name) {
		if d.Value != nil {
			c.checkExpr(d.Value, fn, diags)
		}
		return
	}

	declared := typeOf(d.Type)
	if declared == types.Void {
		diags.Addf(line, "variable '%s' cannot have type void", d.Name)
	}

	if c.table.ResolveCurrentScopeOnly(d.Name) != nil {
		if fn == nil {
			diags.Addf(line, "global variable '%s' already defined", d.Name)
		} else {
			diags.Addf(line, "variable '%s' already defined in function '%s'", d.Name, fn.Name())
		}
	}
	if fn != nil && fn.Parameter(d.Name) != nil {
		diags.Addf(line, "variable '%s' conflicts with parameter of function '%s'", d.Name, fn.Name())
	}

	if d.Value != nil {
		valType := c.checkExpr(d.Value, fn, diags)
		if declared != types.Void && !types.AreCompatible(declared, valType) {
			diags.Addf(line, "cannot initialize variable '%s' of type %s with value of type %s", d.Name, declared, valType)
		}
	} else if d.Const {
		diags.Addf(line, "constant '%s' must be initialized", d.Name)
	}

	sym := symbols.NewVariable(d.Name, declared, line, d.Const, d.ValueText)
	c.table.Define(sym)
	if fn != nil {
		fn.LocalVariables = append(fn.LocalVariables, sym)
	}
}

func (c *checker) checkFuncDecl(d *ast.FuncDecl, diags *Diagnostics) {
	line := d.Pos.Line
	if unnamed(d.Name) {
		return
	}

	ret := types.Void
	if d.ReturnType != nil {
		ret = typeOf(d.ReturnType)
	}

	// A conflicting declaration is not analyzed any further.
	if c.table.Function(d.Name) != nil {
		diags.Addf(line, "function '%s' already defined", d.Name)
		return
	}
	if existing, ok := c.table.ResolveCurrentScopeOnly(d.Name).(*symbols.VariableSymbol); ok {
		diags.Addf(line, "function '%s' conflicts with global variable '%s'", d.Name, existing.Name())
		return
	}

	fn := symbols.NewFunction(d.Name, ret, line)
	c.table.Define(fn)

	// The body shares the parameter scope, so a local that reuses a
	// parameter name is also a same-scope redefinition.
	c.table.EnterScope()
	defer c.exitScope()

	for _, p := range d.Params {
		pt := typeOf(p.Type)
		if pt == types.Void {
			diags.Addf(p.Pos.Line, "parameter '%s' of function '%s' cannot have type void", p.Name, d.Name)
		}
		param := symbols.NewVariable(p.Name, pt, p.Pos.Line, false, "")
		fn.Parameters = append(fn.Parameters, param)
		if !c.table.Define(param) {
			diags.Addf(p.Pos.Line, "duplicate parameter '%s' in function '%s'", p.Name, d.Name)
		}
	}

	if d.Body != nil {
		for _, stmt := range d.Body.Stmts {
			c.checkStmt(stmt, fn, diags)
		}
	}

	// Any return in the body counts, whichever branch it sits in.
	if ret != types.Void && !types.IsSentinel(ret) && !fn.HasReturn {
		diags.Addf(line, "function '%s' must return a value of type %s on all branches", d.Name, ret)
	}
	if fn.IsMain() && fn.IsRecursive {
		diags.Addf(line, "function 'main' cannot be recursive")
	}
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (c *checker) checkStmt(stmt ast.Stmt, fn *symbols.FunctionSymbol, diags *Diagnostics) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		c.checkVarDecl(s, fn, diags)
	case *ast.AssignStmt:
		c.checkAssign(s, fn, diags)
	case *ast.ReturnStmt:
		c.checkReturn(s, fn, diags)
	case *ast.ExprStmt:
		c.checkExpr(s.Expression, fn, diags)
	case *ast.IfStmt:
		c.checkIf(s, fn, diags)
	case *ast.WhileStmt:
		mark(fn, "while", s.Pos.Line)
		c.checkExpr(s.Condition, fn, diags)
		c.checkBlock(s.Body, fn, diags)
	case *ast.ForStmt:
		c.checkFor(s, fn, diags)
	case *ast.BlockStmt:
		c.checkBlock(s, fn, diags)
	}
}

// checkBlock checks a nested block in a scope of its own.
func (c *checker) checkBlock(block *ast.BlockStmt, fn *symbols.FunctionSymbol, diags *Diagnostics) {
	if block == nil {
		return
	}
	c.table.EnterScope()
	defer c.exitScope()
	for _, stmt := range block.Stmts {
		c.checkStmt(stmt, fn, diags)
	}
}

// mark records a control structure on the enclosing function, if any.
func mark(fn *symbols.FunctionSymbol, kind string, line int) {
	if fn != nil {
		fn.AddControlStructure(kind, line)
	}
}

func (c *checker) checkIf(s *ast.IfStmt, fn *symbols.FunctionSymbol, diags *Diagnostics) {
	if s.Else != nil {
		mark(fn, "if...else", s.Pos.Line)
	} else {
		mark(fn, "if", s.Pos.Line)
	}
	c.checkExpr(s.Condition, fn, diags)
	c.checkBlock(s.Then, fn, diags)
	switch e := s.Else.(type) {
	case *ast.BlockStmt:
		c.checkBlock(e, fn, diags)
	case *ast.IfStmt:
		c.checkIf(e, fn, diags)
	}
}

func (c *checker) checkFor(s *ast.ForStmt, fn *symbols.FunctionSymbol, diags *Diagnostics) {
	mark(fn, "for", s.Pos.Line)

	// The init clause gets its own scope so the loop variable ends with the loop.
	c.table.EnterScope()
	defer c.exitScope()

	if s.Init != nil {
		c.checkStmt(s.Init, fn, diags)
	}
	if s.Condition != nil {
		c.checkExpr(s.Condition, fn, diags)
	}
	if s.Update != nil {
		c.checkStmt(s.Update, fn, diags)
	}
	c.checkBlock(s.Body, fn, diags)
}

func (c *checker) checkAssign(s *ast.AssignStmt, fn *symbols.FunctionSymbol, diags *Diagnostics) {
	line := s.Pos.Line
	if unnamed(s.Name) {
		if s.Value != nil {
			c.checkExpr(s.Value, fn, diags)
		}
		return
	}

	var target *symbols.VariableSymbol
	switch sym := c.table.Resolve(s.Name).(type) {
	case nil:
		diags.Addf(line, "variable '%s' not declared", s.Name)
		return
	case *symbols.VariableSymbol:
		target = sym
	default:
		diags.Addf(line, "'%s' is not a variable", s.Name)
		return
	}

	if target.IsConst() {
		diags.Addf(line, "cannot assign to constant '%s'", s.Name)
	}
	if s.Value != nil {
		valType := c.checkExpr(s.Value, fn, diags)
		if !types.AreCompatible(target.Type(), valType) {
			diags.Addf(line, "cannot assign value of type %s to variable '%s' of type %s", valType, s.Name, target.Type())
		}
	}
}

func (c *checker) checkReturn(s *ast.ReturnStmt, fn *symbols.FunctionSymbol, diags *Diagnostics) {
	if fn == nil {
		diags.Addf(s.Pos.Line, "return statement outside of function")
		if s.Value != nil {
			c.checkExpr(s.Value, nil, diags)
		}
		return
	}

	fn.HasReturn = true
	valType := types.Void
	if s.Value != nil {
		valType = c.checkExpr(s.Value, fn, diags)
	}
	if !types.AreCompatible(fn.Type(), valType) {
		diags.Addf(s.Pos.Line, "function '%s' returns %s, got %s", fn.Name(), fn.Type(), valType)
	}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// checkExpr reports the problems inside expr and returns its type. A failed
// check yields Unknown or Error so the enclosing checks stay quiet.
func (c *checker) checkExpr(expr ast.Expr, fn *symbols.FunctionSymbol, diags *Diagnostics) types.MiniType {
	switch e := expr.(type) {
	case *ast.IntLitExpr:
		return types.Int
	case *ast.FloatLitExpr:
		return types.Float
	case *ast.StringLitExpr:
		return types.String
	case *ast.BoolLitExpr:
		return types.Bool
	case *ast.IdentExpr:
		return c.checkIdent(e, diags)
	case *ast.GroupExpr:
		return c.checkExpr(e.Expression, fn, diags)
	case *ast.NotExpr:
		c.checkExpr(e.Operand, fn, diags)
		return types.Bool
	case *ast.NegExpr:
		t := c.checkExpr(e.Operand, fn, diags)
		if types.IsNumeric(t) {
			return t
		}
		return types.Unknown
	case *ast.BinaryExpr:
		return c.checkBinary(e, fn, diags)
	case *ast.CallExpr:
		return c.checkCall(e, fn, diags)
	}
	return types.Unknown
}

func (c *checker) checkIdent(e *ast.IdentExpr, diags *Diagnostics) types.MiniType {
	if unnamed(e.Name) {
		return types.Unknown
	}
	switch sym := c.table.Resolve(e.Name).(type) {
	case nil:
		diags.Addf(e.Pos.Line, "identifier '%s' not declared", e.Name)
		return types.Unknown
	case *symbols.VariableSymbol:
		return sym.Type()
	default:
		if c.opts.StrictFunctionReferences {
			diags.Addf(e.Pos.Line, "'%s' is not a variable", e.Name)
			return types.Error
		}
		return types.Unknown
	}
}

func (c *checker) checkBinary(e *ast.BinaryExpr, fn *symbols.FunctionSymbol, diags *Diagnostics) types.MiniType {
	left := c.checkExpr(e.Left, fn, diags)
	right := c.checkExpr(e.Right, fn, diags)
	if e.Class() != ast.OpArithmetic {
		return types.Bool
	}
	if c.opts.StrictStringArithmetic && e.Op != "+" && (left == types.String || right == types.String) {
		diags.Addf(e.Pos.Line, "operator '%s' is not defined for string operands", e.Op)
		return types.Error
	}
	return types.CommonType(left, right)
}

func (c *checker) checkCall(e *ast.CallExpr, fn *symbols.FunctionSymbol, diags *Diagnostics) types.MiniType {
	line := e.Pos.Line
	callee := c.table.Function(e.Name)
	if callee == nil {
		if _, isVar := c.table.Resolve(e.Name).(*symbols.VariableSymbol); isVar {
			diags.Addf(line, "'%s' is not a function", e.Name)
		} else if !unnamed(e.Name) {
			diags.Addf(line, "function '%s' not defined", e.Name)
		}
		for _, arg := range e.Args {
			c.checkExpr(arg, fn, diags)
		}
		return types.Unknown
	}

	if callee == fn {
		fn.IsRecursive = true
	} else if callee.IsMain() {
		diags.Addf(line, "function 'main' cannot be called explicitly")
	}

	argTypes := make([]types.MiniType, len(e.Args))
	for i, arg := range e.Args {
		argTypes[i] = c.checkExpr(arg, fn, diags)
	}

	params := callee.Parameters
	if len(argTypes) != len(params) {
		diags.Addf(line, "function '%s' expects %d argument(s), got %d", e.Name, len(params), len(argTypes))
		return callee.Type()
	}
	for i, at := range argTypes {
		if want := params[i].Type(); !types.AreCompatible(want, at) {
			diags.Addf(line, "argument %d of function '%s': expected %s, got %s", i+1, e.Name, want, at)
		}
	}
	return callee.Type()
}
