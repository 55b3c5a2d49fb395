package ast

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Source position
// ---------------------------------------------------------------------------

// Position represents a line/column pair in source code (1-based).
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ---------------------------------------------------------------------------
// Interfaces
// ---------------------------------------------------------------------------

// Node is implemented by every AST node.
type Node interface {
	GetPos() Position
}

// Decl is implemented by the two top-level declaration kinds: *VarDecl and
// *FuncDecl.
type Decl interface {
	Node
	declNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// ---------------------------------------------------------------------------
// Program (root)
// ---------------------------------------------------------------------------

// Program holds the top-level declarations in source order. Globals and
// functions interleave, and a declaration is only visible to the ones that
// follow it.
type Program struct {
	Decls []Decl
	Pos   Position
}

func (n *Program) GetPos() Position { return n.Pos }

// Globals returns the top-level variable declarations in source order.
func (n *Program) Globals() []*VarDecl {
	var out []*VarDecl
	for _, d := range n.Decls {
		if v, ok := d.(*VarDecl); ok {
			out = append(out, v)
		}
	}
	return out
}

// Functions returns the function declarations in source order.
func (n *Program) Functions() []*FuncDecl {
	var out []*FuncDecl
	for _, d := range n.Decls {
		if f, ok := d.(*FuncDecl); ok {
			out = append(out, f)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Declarations
// ---------------------------------------------------------------------------

// TypeExpr is a type keyword such as "int" or "double".
type TypeExpr struct {
	Name string
	Pos  Position
}

// VarDecl: [const] <type> <name> [= <value>];
//
// The same node is used at global scope and inside function bodies.
type VarDecl struct {
	Name      string
	Type      *TypeExpr
	Const     bool
	Value     Expr   // nil when there is no initializer
	ValueText string // initializer tokens joined without whitespace
	Pos       Position
}

func (n *VarDecl) GetPos() Position { return n.Pos }
func (n *VarDecl) declNode()        {}
func (n *VarDecl) stmtNode()        {}

// Param represents a single function parameter: <type> <name>.
type Param struct {
	Name string
	Type *TypeExpr
	Pos  Position
}

// FuncDecl: [<type>] <name>(<params>) <body>
type FuncDecl struct {
	Name       string
	Params     []*Param
	ReturnType *TypeExpr // nil when omitted
	Body       *BlockStmt
	Pos        Position
}

func (n *FuncDecl) GetPos() Position { return n.Pos }
func (n *FuncDecl) declNode()        {}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// BlockStmt is a brace-delimited list of statements.
type BlockStmt struct {
	Stmts []Stmt
	Pos   Position
}

func (n *BlockStmt) GetPos() Position { return n.Pos }
func (n *BlockStmt) stmtNode()        {}

// ReturnStmt: return [<value>];
type ReturnStmt struct {
	Value Expr // nil for bare "return;"
	Pos   Position
}

func (n *ReturnStmt) GetPos() Position { return n.Pos }
func (n *ReturnStmt) stmtNode()        {}

// IfStmt: if (<cond>) <then> [else <else>]
type IfStmt struct {
	Condition Expr
	Then      *BlockStmt
	Else      Stmt // nil, *BlockStmt, or *IfStmt (else-if chain)
	Pos       Position
}

func (n *IfStmt) GetPos() Position { return n.Pos }
func (n *IfStmt) stmtNode()        {}

// WhileStmt: while (<cond>) <body>
type WhileStmt struct {
	Condition Expr
	Body      *BlockStmt
	Pos       Position
}

func (n *WhileStmt) GetPos() Position { return n.Pos }
func (n *WhileStmt) stmtNode()        {}

// ForStmt: for (<init>; <cond>; <update>) <body>
type ForStmt struct {
	Init      Stmt // *VarDecl, *AssignStmt, or nil
	Condition Expr // nil when omitted
	Update    Stmt // *AssignStmt or nil
	Body      *BlockStmt
	Pos       Position
}

func (n *ForStmt) GetPos() Position { return n.Pos }
func (n *ForStmt) stmtNode()        {}

// ExprStmt wraps a bare expression used as a statement.
type ExprStmt struct {
	Expression Expr
	Pos        Position
}

func (n *ExprStmt) GetPos() Position { return n.Pos }
func (n *ExprStmt) stmtNode()        {}

// AssignStmt: <name> = <value>;
type AssignStmt struct {
	Name  string
	Value Expr
	Pos   Position
}

func (n *AssignStmt) GetPos() Position { return n.Pos }
func (n *AssignStmt) stmtNode()        {}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// IdentExpr is a plain identifier reference.
type IdentExpr struct {
	Name string
	Pos  Position
}

func (n *IdentExpr) GetPos() Position { return n.Pos }
func (n *IdentExpr) exprNode()        {}

// IntLitExpr is an integer literal (value kept as the original lexeme).
type IntLitExpr struct {
	Value string
	Pos   Position
}

func (n *IntLitExpr) GetPos() Position { return n.Pos }
func (n *IntLitExpr) exprNode()        {}

// FloatLitExpr is a float literal.
type FloatLitExpr struct {
	Value string
	Pos   Position
}

func (n *FloatLitExpr) GetPos() Position { return n.Pos }
func (n *FloatLitExpr) exprNode()        {}

// StringLitExpr is a string literal (value includes surrounding quotes).
type StringLitExpr struct {
	Value string
	Pos   Position
}

func (n *StringLitExpr) GetPos() Position { return n.Pos }
func (n *StringLitExpr) exprNode()        {}

// BoolLitExpr is true or false.
type BoolLitExpr struct {
	Value bool
	Pos   Position
}

func (n *BoolLitExpr) GetPos() Position { return n.Pos }
func (n *BoolLitExpr) exprNode()        {}

// NotExpr: not <operand>  (also written !<operand>)
type NotExpr struct {
	Operand Expr
	Pos     Position
}

func (n *NotExpr) GetPos() Position { return n.Pos }
func (n *NotExpr) exprNode()        {}

// NegExpr: -<operand>
type NegExpr struct {
	Operand Expr
	Pos     Position
}

func (n *NegExpr) GetPos() Position { return n.Pos }
func (n *NegExpr) exprNode()        {}

// OpClass groups binary operators by how the analyzer types them.
type OpClass int

const (
	OpArithmetic OpClass = iota // + - * /
	OpRelational                // < > <= >=
	OpEquality                  // == !=
	OpLogical                   // and or
)

// BinaryExpr: <left> <op> <right>
//
// Op is normalised by the parser: "&&" is stored as "and", "||" as "or".
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
	Pos   Position
}

func (n *BinaryExpr) GetPos() Position { return n.Pos }
func (n *BinaryExpr) exprNode()        {}

// Class reports the operator class of the expression.
func (n *BinaryExpr) Class() OpClass {
	switch n.Op {
	case "<", ">", "<=", ">=":
		return OpRelational
	case "==", "!=":
		return OpEquality
	case "and", "or":
		return OpLogical
	default:
		return OpArithmetic
	}
}

// CallExpr: <name>(<args>)
type CallExpr struct {
	Name string
	Args []Expr
	Pos  Position
}

func (n *CallExpr) GetPos() Position { return n.Pos }
func (n *CallExpr) exprNode()        {}

// GroupExpr: (<expression>)
type GroupExpr struct {
	Expression Expr
	Pos        Position
}

func (n *GroupExpr) GetPos() Position { return n.Pos }
func (n *GroupExpr) exprNode()        {}

// ---------------------------------------------------------------------------
// Debug printer: a human-readable tree representation
// ---------------------------------------------------------------------------

// DebugString returns a readable multi-line representation of the AST.
func DebugString(prog *Program) string {
	var b strings.Builder
	writeIndent(&b, 0)
	b.WriteString("Program\n")
	for _, d := range prog.Decls {
		switch d := d.(type) {
		case *VarDecl:
			writeIndent(&b, 1)
			b.WriteString("Global: ")
			writeVarDecl(&b, d)
		case *FuncDecl:
			debugFuncDecl(&b, d, 1)
		}
	}
	return b.String()
}

func writeIndent(b *strings.Builder, level int) {
	for i := 0; i < level; i++ {
		b.WriteString("  ")
	}
}

func writeVarDecl(b *strings.Builder, v *VarDecl) {
	if v.Const {
		b.WriteString("const ")
	}
	fmt.Fprintf(b, "%s %s", v.Type.Name, v.Name)
	if v.Value != nil {
		fmt.Fprintf(b, " = %s", ExprString(v.Value))
	}
	b.WriteString("\n")
}

func debugFuncDecl(b *strings.Builder, fn *FuncDecl, level int) {
	writeIndent(b, level)
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Type.Name + " " + p.Name
	}
	retName := "<none>"
	if fn.ReturnType != nil {
		retName = fn.ReturnType.Name
	}
	fmt.Fprintf(b, "Func %s %s(%s)\n", retName, fn.Name, strings.Join(params, ", "))
	debugBlock(b, fn.Body, level+1)
}

func debugBlock(b *strings.Builder, block *BlockStmt, level int) {
	if block == nil {
		return
	}
	writeIndent(b, level)
	fmt.Fprintf(b, "Block [%d statements]\n", len(block.Stmts))
	for _, s := range block.Stmts {
		debugStmt(b, s, level+1)
	}
}

func debugStmt(b *strings.Builder, s Stmt, level int) {
	switch s := s.(type) {
	case *VarDecl:
		writeIndent(b, level)
		b.WriteString("VarDecl ")
		writeVarDecl(b, s)
	case *ReturnStmt:
		writeIndent(b, level)
		if s.Value != nil {
			fmt.Fprintf(b, "ReturnStmt %s\n", ExprString(s.Value))
		} else {
			b.WriteString("ReturnStmt\n")
		}
	case *IfStmt:
		writeIndent(b, level)
		fmt.Fprintf(b, "IfStmt (%s)\n", ExprString(s.Condition))
		debugBlock(b, s.Then, level+1)
		if s.Else != nil {
			writeIndent(b, level+1)
			b.WriteString("Else:\n")
			switch e := s.Else.(type) {
			case *BlockStmt:
				debugBlock(b, e, level+2)
			case *IfStmt:
				debugStmt(b, e, level+2)
			}
		}
	case *WhileStmt:
		writeIndent(b, level)
		fmt.Fprintf(b, "WhileStmt (%s)\n", ExprString(s.Condition))
		debugBlock(b, s.Body, level+1)
	case *ForStmt:
		writeIndent(b, level)
		b.WriteString("ForStmt\n")
		writeIndent(b, level+1)
		b.WriteString("Init: ")
		debugStmtInline(b, s.Init)
		writeIndent(b, level+1)
		fmt.Fprintf(b, "Cond: %s\n", ExprString(s.Condition))
		writeIndent(b, level+1)
		b.WriteString("Update: ")
		debugStmtInline(b, s.Update)
		debugBlock(b, s.Body, level+1)
	case *AssignStmt:
		writeIndent(b, level)
		fmt.Fprintf(b, "AssignStmt %s = %s\n", s.Name, ExprString(s.Value))
	case *ExprStmt:
		writeIndent(b, level)
		fmt.Fprintf(b, "ExprStmt %s\n", ExprString(s.Expression))
	case *BlockStmt:
		debugBlock(b, s, level)
	default:
		writeIndent(b, level)
		b.WriteString("<unknown stmt>\n")
	}
}

// debugStmtInline writes a one-line summary (used inside for-loop headers).
func debugStmtInline(b *strings.Builder, s Stmt) {
	switch s := s.(type) {
	case *VarDecl:
		writeVarDecl(b, s)
	case *AssignStmt:
		fmt.Fprintf(b, "%s = %s\n", s.Name, ExprString(s.Value))
	case nil:
		b.WriteString("<none>\n")
	default:
		b.WriteString("<stmt>\n")
	}
}

// ExprString returns a concise one-line representation of an expression.
func ExprString(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch e := e.(type) {
	case *IdentExpr:
		return e.Name
	case *IntLitExpr:
		return e.Value
	case *FloatLitExpr:
		return e.Value
	case *StringLitExpr:
		return e.Value
	case *BoolLitExpr:
		if e.Value {
			return "true"
		}
		return "false"
	case *NotExpr:
		return fmt.Sprintf("(not %s)", ExprString(e.Operand))
	case *NegExpr:
		return fmt.Sprintf("(-%s)", ExprString(e.Operand))
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", ExprString(e.Left), e.Op, ExprString(e.Right))
	case *CallExpr:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = ExprString(a)
		}
		return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
	case *GroupExpr:
		return fmt.Sprintf("(%s)", ExprString(e.Expression))
	default:
		return "<unknown expr>"
	}
}
