package lexer

import "fmt"

const (
	EOF = "EOF"

	// Literals
	IDENT  = "IDENT"  // total, fib
	INT    = "INT"    // 0, 42
	FLOAT  = "FLOAT"  // 3.14, 0.5
	STRING = "STRING" // "hello"

	// Keywords
	CONST  = "CONST"
	RETURN = "RETURN"
	TRUE   = "TRUE"
	FALSE  = "FALSE"
	IF     = "IF"
	ELSE   = "ELSE"
	FOR    = "FOR"
	WHILE  = "WHILE"
	KWAND  = "KWAND" // and
	KWOR   = "KWOR"  // or
	KWNOT  = "KWNOT" // not

	// Type keywords
	INT_T    = "INT_T"
	FLOAT_T  = "FLOAT_T"
	DOUBLE_T = "DOUBLE_T"
	STRING_T = "STRING_T"
	BOOL_T   = "BOOL_T"
	VOID_T   = "VOID_T"

	// Punctuation
	LPAREN    = "LPAREN"
	RPAREN    = "RPAREN"
	LBRACE    = "LBRACE"
	RBRACE    = "RBRACE"
	SEMICOLON = "SEMICOLON"
	COMMA     = "COMMA"

	// Operators
	ASSIGN = "ASSIGN"
	PLUS   = "PLUS"
	MINUS  = "MINUS"
	STAR   = "STAR"
	SLASH  = "SLASH"
	BANG   = "BANG"
	EQ     = "EQ"
	NEQ    = "NEQ"
	LT     = "LT"
	GT     = "GT"
	LTE    = "LTE"
	GTE    = "GTE"
	AND    = "AND"
	OR     = "OR"
)

var keywords = map[string]string{
	"const":  CONST,
	"return": RETURN,
	"true":   TRUE,
	"false":  FALSE,
	"if":     IF,
	"else":   ELSE,
	"for":    FOR,
	"while":  WHILE,
	"and":    KWAND,
	"or":     KWOR,
	"not":    KWNOT,
	"int":    INT_T,
	"float":  FLOAT_T,
	"double": DOUBLE_T,
	"string": STRING_T,
	"bool":   BOOL_T,
	"void":   VOID_T,
}

// Two-character operators are tried before single characters.
var (
	pairs = map[string]string{
		"==": EQ, "!=": NEQ, "<=": LTE, ">=": GTE, "&&": AND, "||": OR,
	}
	singles = map[byte]string{
		'(': LPAREN, ')': RPAREN, '{': LBRACE, '}': RBRACE, ';': SEMICOLON, ',': COMMA,
		'=': ASSIGN, '+': PLUS, '-': MINUS, '*': STAR, '/': SLASH, '!': BANG,
		'<': LT, '>': GT,
	}
)

// IsTypeKeyword reports whether typ is one of the type keyword tokens.
func IsTypeKeyword(typ string) bool {
	switch typ {
	case INT_T, FLOAT_T, DOUBLE_T, STRING_T, BOOL_T, VOID_T:
		return true
	}
	return false
}

// Token is a lexeme with the position of its first character.
type Token struct {
	Type   string
	Value  string
	Line   int
	Column int
}

// LexError is a recoverable lexing problem. The lexer skips past it.
type LexError struct {
	Message string
	Lexeme  string
	Line    int
	Column  int
}

func (e LexError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s (got %q)", e.Line, e.Column, e.Message, e.Lexeme)
}

// Lex turns input into tokens ending with EOF, along with every error
// found on the way.
func Lex(input string) ([]Token, []LexError) {
	s := &scanner{src: input, line: 1, col: 1}
	for !s.done() {
		s.scan()
	}
	s.tokens = append(s.tokens, Token{EOF, "", s.line, s.col})
	return s.tokens, s.errs
}

type scanner struct {
	src       string
	pos       int
	line, col int

	// start of the lexeme being scanned
	start, startLine, startCol int

	tokens []Token
	errs   []LexError
}

func (s *scanner) done() bool { return s.pos >= len(s.src) }

func (s *scanner) peek(n int) byte {
	if s.pos+n >= len(s.src) {
		return 0
	}
	return s.src[s.pos+n]
}

// advance consumes one byte, keeping line and column current. '\r' takes no
// column so CRLF files report the same positions as LF ones.
func (s *scanner) advance() byte {
	ch := s.src[s.pos]
	s.pos++
	switch ch {
	case '\n':
		s.line++
		s.col = 1
	case '\r':
	default:
		s.col++
	}
	return ch
}

func (s *scanner) mark() {
	s.start, s.startLine, s.startCol = s.pos, s.line, s.col
}

func (s *scanner) emit(typ string) {
	s.tokens = append(s.tokens, Token{typ, s.src[s.start:s.pos], s.startLine, s.startCol})
}

func (s *scanner) fail(message, lexeme string, line, col int) {
	s.errs = append(s.errs, LexError{Message: message, Lexeme: lexeme, Line: line, Column: col})
}

func (s *scanner) scan() {
	s.mark()
	ch := s.peek(0)
	switch {
	case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
		s.advance()
	case ch == '/' && s.peek(1) == '/':
		for !s.done() && s.peek(0) != '\n' {
			s.advance()
		}
	case ch == '/' && s.peek(1) == '*':
		s.skipBlockComment()
	case ch == '"':
		s.scanString()
	case isDigit(ch):
		s.scanNumber()
	case isLetter(ch) || ch == '_':
		s.scanWord()
	default:
		s.scanOperator()
	}
}

func (s *scanner) skipBlockComment() {
	s.advance()
	s.advance()
	for !s.done() {
		if s.peek(0) == '*' && s.peek(1) == '/' {
			s.advance()
			s.advance()
			return
		}
		s.advance()
	}
	s.fail("unterminated block comment", "/*", s.startLine, s.startCol)
}

// scanString reads a double-quoted literal. The token value keeps the quotes
// and escapes as written.
func (s *scanner) scanString() {
	s.advance()
	for !s.done() {
		switch ch := s.peek(0); ch {
		case '"':
			s.advance()
			s.emit(STRING)
			return
		case '\n', '\r':
			s.fail("unterminated string literal (newline in string)", s.src[s.start:s.pos], s.startLine, s.startCol)
			return
		case '\\':
			line, col := s.line, s.col
			s.advance()
			if s.done() {
				s.fail("unterminated escape sequence at end of input", "\\", line, col)
				return
			}
			next := s.advance()
			if !isEscape(next) {
				s.fail(fmt.Sprintf("invalid escape sequence '\\%c'", next), string([]byte{'\\', next}), line, col)
			}
		default:
			s.advance()
		}
	}
	s.fail("unterminated string literal (reached end of input)", s.src[s.start:], s.startLine, s.startCol)
}

// scanNumber reads digits, optionally followed by '.' and more digits.
// A '.' not followed by a digit is left for the next token.
func (s *scanner) scanNumber() {
	for isDigit(s.peek(0)) {
		s.advance()
	}
	if s.peek(0) != '.' || !isDigit(s.peek(1)) {
		s.emit(INT)
		return
	}
	s.advance()
	for isDigit(s.peek(0)) {
		s.advance()
	}
	s.emit(FLOAT)
}

func (s *scanner) scanWord() {
	for ch := s.peek(0); isLetter(ch) || isDigit(ch) || ch == '_'; ch = s.peek(0) {
		s.advance()
	}
	typ, ok := keywords[s.src[s.start:s.pos]]
	if !ok {
		typ = IDENT
	}
	s.emit(typ)
}

func (s *scanner) scanOperator() {
	if s.pos+2 <= len(s.src) {
		if typ, ok := pairs[s.src[s.pos:s.pos+2]]; ok {
			s.advance()
			s.advance()
			s.emit(typ)
			return
		}
	}
	ch := s.advance()
	if typ, ok := singles[ch]; ok {
		s.emit(typ)
		return
	}
	s.fail("unexpected character", string(ch), s.startLine, s.startCol)
}

func isDigit(ch byte) bool  { return ch >= '0' && ch <= '9' }
func isLetter(ch byte) bool { return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') }

func isEscape(ch byte) bool {
	switch ch {
	case 'n', 't', 'r', '\\', '"', '0':
		return true
	}
	return false
}
