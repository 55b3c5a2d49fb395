package parser

import (
	"fmt"
	"strings"

	"minic/internal/ast"
	"minic/internal/lexer"
)

// ---------------------------------------------------------------------------
// ParseError
// ---------------------------------------------------------------------------

// ParseError represents a single error found during parsing.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Column, e.Message)
}

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

// Parser holds the state for a single parse pass over a token stream.
type Parser struct {
	tokens []lexer.Token
	pos    int
	errors []ParseError
}

// Parse is the main entry point. It takes a token slice (as produced by
// lexer.Lex) and returns an AST program plus any parse errors collected.
func Parse(tokens []lexer.Token) (*ast.Program, []ParseError) {
	p := &Parser{tokens: tokens, pos: 0}
	prog := p.parseProgram()
	return prog, p.errors
}

// ---------------------------------------------------------------------------
// Token helpers
// ---------------------------------------------------------------------------

// peek returns the current token without consuming it.
func (p *Parser) peek() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return lexer.Token{Type: lexer.EOF}
}

// peekAt returns the token at a given offset from the current position.
func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= 0 && idx < len(p.tokens) {
		return p.tokens[idx]
	}
	return lexer.Token{Type: lexer.EOF}
}

// advance consumes and returns the current token.
func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if tok.Type != lexer.EOF {
		p.pos++
	}
	return tok
}

// previous returns the most recently consumed token.
func (p *Parser) previous() lexer.Token {
	if p.pos > 0 {
		return p.tokens[p.pos-1]
	}
	return lexer.Token{Type: lexer.EOF}
}

// check returns true if the current token has the given type.
func (p *Parser) check(typ string) bool {
	return p.peek().Type == typ
}

// match consumes the current token if it matches any of the given types.
func (p *Parser) match(types ...string) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

// expect consumes the current token if it matches typ; otherwise it records
// an error and returns the current token without advancing.
func (p *Parser) expect(typ string, msg string) lexer.Token {
	if p.check(typ) {
		return p.advance()
	}
	tok := p.peek()
	p.addError(tok, fmt.Sprintf("%s (got %s %q)", msg, tok.Type, tok.Value))
	return tok
}

// addError appends a ParseError at the given token's location.
func (p *Parser) addError(tok lexer.Token, msg string) {
	p.errors = append(p.errors, ParseError{
		Message: msg,
		Line:    tok.Line,
		Column:  tok.Column,
	})
}

// synchronize advances past tokens until it reaches a likely statement
// boundary, allowing the parser to recover from an error and keep going.
func (p *Parser) synchronize() {
	p.advance()
	for !p.check(lexer.EOF) {
		if p.previous().Type == lexer.SEMICOLON {
			return
		}
		switch p.peek().Type {
		case lexer.CONST, lexer.IF, lexer.WHILE, lexer.FOR,
			lexer.RETURN, lexer.RBRACE:
			return
		}
		if lexer.IsTypeKeyword(p.peek().Type) {
			return
		}
		p.advance()
	}
}

// position converts a token into an ast.Position.
func (p *Parser) position(tok lexer.Token) ast.Position {
	return ast.Position{Line: tok.Line, Column: tok.Column}
}

// textSince joins the values of the tokens consumed since start, without
// separators.
func (p *Parser) textSince(start int) string {
	var b strings.Builder
	for i := start; i < p.pos && i < len(p.tokens); i++ {
		b.WriteString(p.tokens[i].Value)
	}
	return b.String()
}

// =========================================================================
// Top-level parsing
// =========================================================================

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{Pos: p.position(p.peek())}

	for !p.check(lexer.EOF) {
		startPos := p.pos
		if decl := p.parseTopLevel(); decl != nil {
			prog.Decls = append(prog.Decls, decl)
		}
		if p.pos == startPos {
			p.advance()
		}
	}

	return prog
}

// parseTopLevel decides between a global variable and a function:
//
//	[const] <type> <name> [= expr] ;
//	[<type>] <name> ( ... ) { ... }
func (p *Parser) parseTopLevel() ast.Decl {
	tok := p.peek()
	switch {
	case tok.Type == lexer.CONST:
		return p.parseVarDecl()
	case lexer.IsTypeKeyword(tok.Type) && p.peekAt(1).Type == lexer.IDENT && p.peekAt(2).Type == lexer.LPAREN:
		return p.parseFuncDecl(true)
	case tok.Type == lexer.IDENT && p.peekAt(1).Type == lexer.LPAREN:
		return p.parseFuncDecl(false)
	case lexer.IsTypeKeyword(tok.Type):
		return p.parseVarDecl()
	}

	p.addError(tok, fmt.Sprintf("expected function or variable declaration, got %s", tok.Type))
	p.synchronize()
	return nil
}

func (p *Parser) parseFuncDecl(hasType bool) *ast.FuncDecl {
	tok := p.peek()
	var retType *ast.TypeExpr
	if hasType {
		retType = p.parseType()
	}
	name := p.expect(lexer.IDENT, "expected function name")
	p.expect(lexer.LPAREN, "expected '(' after function name")
	params := p.parseParamList()
	p.expect(lexer.RPAREN, "expected ')' after parameters")
	body := p.parseBlock()

	return &ast.FuncDecl{
		Name:       name.Value,
		Params:     params,
		ReturnType: retType,
		Body:       body,
		Pos:        p.position(tok),
	}
}

func (p *Parser) parseParamList() []*ast.Param {
	var params []*ast.Param

	if p.check(lexer.RPAREN) {
		return params
	}

	params = append(params, p.parseParam())
	for p.match(lexer.COMMA) {
		params = append(params, p.parseParam())
	}
	return params
}

func (p *Parser) parseParam() *ast.Param {
	typ := p.parseType()
	name := p.expect(lexer.IDENT, "expected parameter name")
	return &ast.Param{
		Name: name.Value,
		Type: typ,
		Pos:  p.position(name),
	}
}

// parseType parses one of the type keywords.
func (p *Parser) parseType() *ast.TypeExpr {
	tok := p.peek()
	if lexer.IsTypeKeyword(tok.Type) {
		p.advance()
		return &ast.TypeExpr{Name: tok.Value, Pos: p.position(tok)}
	}

	p.addError(tok, fmt.Sprintf("expected type name, got %s", tok.Type))
	return &ast.TypeExpr{Name: "<error>", Pos: p.position(tok)}
}

// parseVarDecl parses: [const] <type> <name> [= <value>];
func (p *Parser) parseVarDecl() *ast.VarDecl {
	tok := p.peek()
	isConst := p.match(lexer.CONST)
	typ := p.parseType()
	name := p.expect(lexer.IDENT, "expected variable name")

	decl := &ast.VarDecl{
		Name:  name.Value,
		Type:  typ,
		Const: isConst,
		Pos:   p.position(tok),
	}
	if p.match(lexer.ASSIGN) {
		start := p.pos
		decl.Value = p.parseExpression()
		decl.ValueText = p.textSince(start)
	}
	p.expect(lexer.SEMICOLON, "expected ';' after variable declaration")
	return decl
}

// =========================================================================
// Block and statement parsing
// =========================================================================

func (p *Parser) parseBlock() *ast.BlockStmt {
	tok := p.expect(lexer.LBRACE, "expected '{'")
	block := &ast.BlockStmt{Pos: p.position(tok)}

	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		startPos := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		// Safety: if no tokens were consumed, skip one to avoid an infinite loop.
		if p.pos == startPos {
			p.advance()
		}
	}

	p.expect(lexer.RBRACE, "expected '}'")
	return block
}

func (p *Parser) parseStatement() ast.Stmt {
	tok := p.peek()
	switch {
	case tok.Type == lexer.CONST || lexer.IsTypeKeyword(tok.Type):
		return p.parseVarDecl()
	case tok.Type == lexer.LBRACE:
		return p.parseBlock()
	case tok.Type == lexer.RETURN:
		return p.parseReturnStmt()
	case tok.Type == lexer.IF:
		return p.parseIfStmt()
	case tok.Type == lexer.WHILE:
		return p.parseWhileStmt()
	case tok.Type == lexer.FOR:
		return p.parseForStmt()
	case tok.Type == lexer.IDENT && p.peekAt(1).Type == lexer.ASSIGN:
		stmt := p.parseAssign()
		p.expect(lexer.SEMICOLON, "expected ';' after assignment")
		return stmt
	default:
		expr := p.parseExpression()
		p.expect(lexer.SEMICOLON, "expected ';' after expression statement")
		return &ast.ExprStmt{Expression: expr, Pos: expr.GetPos()}
	}
}

// parseAssign parses <name> = <value> without the trailing semicolon.
func (p *Parser) parseAssign() *ast.AssignStmt {
	name := p.advance() // consume IDENT
	p.advance()         // consume =
	value := p.parseExpression()
	return &ast.AssignStmt{Name: name.Value, Value: value, Pos: p.position(name)}
}

// ---- Return ----

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	tok := p.advance() // consume RETURN
	var value ast.Expr
	if !p.check(lexer.SEMICOLON) {
		value = p.parseExpression()
	}
	p.expect(lexer.SEMICOLON, "expected ';' after return statement")
	return &ast.ReturnStmt{Value: value, Pos: p.position(tok)}
}

// ---- If ----

func (p *Parser) parseIfStmt() *ast.IfStmt {
	tok := p.advance() // consume IF
	p.expect(lexer.LPAREN, "expected '(' after 'if'")
	cond := p.parseExpression()
	p.expect(lexer.RPAREN, "expected ')' after if condition")
	body := p.parseBlock()

	var elseStmt ast.Stmt
	if p.match(lexer.ELSE) {
		if p.check(lexer.IF) {
			elseStmt = p.parseIfStmt()
		} else {
			elseStmt = p.parseBlock()
		}
	}

	return &ast.IfStmt{
		Condition: cond,
		Then:      body,
		Else:      elseStmt,
		Pos:       p.position(tok),
	}
}

// ---- While ----

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	tok := p.advance() // consume WHILE
	p.expect(lexer.LPAREN, "expected '(' after 'while'")
	cond := p.parseExpression()
	p.expect(lexer.RPAREN, "expected ')' after while condition")
	body := p.parseBlock()
	return &ast.WhileStmt{Condition: cond, Body: body, Pos: p.position(tok)}
}

// ---- For ----

func (p *Parser) parseForStmt() *ast.ForStmt {
	tok := p.advance() // consume FOR
	p.expect(lexer.LPAREN, "expected '(' after 'for'")

	// Init clause (including its trailing semicolon).
	var init ast.Stmt
	switch {
	case p.check(lexer.CONST) || lexer.IsTypeKeyword(p.peek().Type):
		init = p.parseVarDecl() // consumes trailing ;
	case p.check(lexer.IDENT) && p.peekAt(1).Type == lexer.ASSIGN:
		init = p.parseAssign()
		p.expect(lexer.SEMICOLON, "expected ';' after for initializer")
	default:
		p.expect(lexer.SEMICOLON, "expected ';' after for initializer")
	}

	var cond ast.Expr
	if !p.check(lexer.SEMICOLON) {
		cond = p.parseExpression()
	}
	p.expect(lexer.SEMICOLON, "expected ';' after for condition")

	// The update clause has no trailing semicolon.
	var update ast.Stmt
	if p.check(lexer.IDENT) && p.peekAt(1).Type == lexer.ASSIGN {
		update = p.parseAssign()
	} else if !p.check(lexer.RPAREN) {
		p.addError(p.peek(), "expected assignment in for update clause")
	}

	p.expect(lexer.RPAREN, "expected ')' after for clauses")
	body := p.parseBlock()

	return &ast.ForStmt{
		Init:      init,
		Condition: cond,
		Update:    update,
		Body:      body,
		Pos:       p.position(tok),
	}
}

// =========================================================================
// Expression parsing (precedence climbing, lowest first)
// =========================================================================

func (p *Parser) parseExpression() ast.Expr {
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.check(lexer.KWOR) || p.check(lexer.OR) {
		tok := p.advance()
		right := p.parseAnd()
		left = &ast.BinaryExpr{Op: "or", Left: left, Right: right, Pos: p.position(tok)}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.check(lexer.KWAND) || p.check(lexer.AND) {
		tok := p.advance()
		right := p.parseEquality()
		left = &ast.BinaryExpr{Op: "and", Left: left, Right: right, Pos: p.position(tok)}
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	return p.parseBinaryLevel(p.parseRelational, lexer.EQ, lexer.NEQ)
}

func (p *Parser) parseRelational() ast.Expr {
	return p.parseBinaryLevel(p.parseAdditive, lexer.LT, lexer.GT, lexer.LTE, lexer.GTE)
}

func (p *Parser) parseAdditive() ast.Expr {
	return p.parseBinaryLevel(p.parseTerm, lexer.PLUS, lexer.MINUS)
}

func (p *Parser) parseTerm() ast.Expr {
	return p.parseBinaryLevel(p.parseUnary, lexer.STAR, lexer.SLASH)
}

// parseBinaryLevel parses a left-associative chain of the given operators
// whose operands are produced by next.
func (p *Parser) parseBinaryLevel(next func() ast.Expr, ops ...string) ast.Expr {
	left := next()
	for {
		tok := p.peek()
		matched := false
		for _, op := range ops {
			if tok.Type == op {
				matched = true
				break
			}
		}
		if !matched {
			return left
		}
		p.advance()
		right := next()
		left = &ast.BinaryExpr{Op: tok.Value, Left: left, Right: right, Pos: p.position(tok)}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	tok := p.peek()
	switch tok.Type {
	case lexer.KWNOT, lexer.BANG:
		p.advance()
		return &ast.NotExpr{Operand: p.parseUnary(), Pos: p.position(tok)}
	case lexer.MINUS:
		p.advance()
		return &ast.NegExpr{Operand: p.parseUnary(), Pos: p.position(tok)}
	}
	return p.parseAtom()
}

func (p *Parser) parseAtom() ast.Expr {
	tok := p.peek()

	switch tok.Type {
	case lexer.IDENT:
		p.advance()
		if p.check(lexer.LPAREN) {
			return p.parseCallExpr(tok)
		}
		return &ast.IdentExpr{Name: tok.Value, Pos: p.position(tok)}

	case lexer.INT:
		p.advance()
		return &ast.IntLitExpr{Value: tok.Value, Pos: p.position(tok)}

	case lexer.FLOAT:
		p.advance()
		return &ast.FloatLitExpr{Value: tok.Value, Pos: p.position(tok)}

	case lexer.STRING:
		p.advance()
		return &ast.StringLitExpr{Value: tok.Value, Pos: p.position(tok)}

	case lexer.TRUE:
		p.advance()
		return &ast.BoolLitExpr{Value: true, Pos: p.position(tok)}

	case lexer.FALSE:
		p.advance()
		return &ast.BoolLitExpr{Value: false, Pos: p.position(tok)}

	case lexer.LPAREN:
		p.advance()
		expr := p.parseExpression()
		p.expect(lexer.RPAREN, "expected ')' after expression")
		return &ast.GroupExpr{Expression: expr, Pos: p.position(tok)}
	}

	p.addError(tok, fmt.Sprintf("unexpected token %s in expression", tok.Type))
	if tok.Type != lexer.SEMICOLON && tok.Type != lexer.RBRACE {
		p.advance() // consume the bad token so we make progress
	}
	return &ast.IdentExpr{Name: "<error>", Pos: p.position(tok)}
}

// parseCallExpr: <name> ( [args] ), with the name already consumed.
func (p *Parser) parseCallExpr(name lexer.Token) ast.Expr {
	p.advance() // consume (
	var args []ast.Expr

	if !p.check(lexer.RPAREN) {
		args = append(args, p.parseExpression())
		for p.match(lexer.COMMA) {
			args = append(args, p.parseExpression())
		}
	}

	p.expect(lexer.RPAREN, "expected ')' after arguments")
	return &ast.CallExpr{Name: name.Value, Args: args, Pos: p.position(name)}
}
