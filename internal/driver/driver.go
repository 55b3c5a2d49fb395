// Package driver runs the lex, parse and analysis stages over compilation
// units and decides whether each one passed.
package driver

import (
	"fmt"
	"os"

	"minic/internal/ast"
	"minic/internal/lexer"
	"minic/internal/parser"
	"minic/internal/semantic"
	"minic/internal/symbols"
)

// MissingMain is reported on line 0 when a unit declares no main function.
const MissingMain = "function 'main' is not declared"

// Options configures a check run.
type Options struct {
	Semantic semantic.Options

	// Logf receives progress messages for each stage. Nil disables them.
	Logf func(format string, args ...any)
}

func (o Options) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}

// Unit is the result of checking one source file. Every unit gets its own
// symbol table.
type Unit struct {
	Name         string
	SyntaxErrors []error // lexer.LexError and parser.ParseError values
	Diagnostics  []semantic.Diagnostic
	Table        *symbols.Table
}

// OK reports whether the unit has neither syntax errors nor diagnostics.
func (u *Unit) OK() bool {
	return len(u.SyntaxErrors) == 0 && len(u.Diagnostics) == 0
}

// CheckSource checks src under the given unit name. Analysis runs even when
// the source has syntax errors, on whatever the parser recovered.
func CheckSource(name, src string, opts Options) *Unit {
	unit := &Unit{Name: name, Table: symbols.NewTable()}

	opts.logf("%s: starting lexing process...", name)
	tokens, lexErrs := lexer.Lex(src)
	for _, e := range lexErrs {
		unit.SyntaxErrors = append(unit.SyntaxErrors, e)
	}
	opts.logf("%s: lexing complete. %d tokens produced, %d error(s).", name, len(tokens), len(lexErrs))

	opts.logf("%s: starting parsing process...", name)
	prog, parseErrs := parser.Parse(tokens)
	for _, e := range parseErrs {
		unit.SyntaxErrors = append(unit.SyntaxErrors, e)
	}
	opts.logf("%s: parsing complete. %d declaration(s), %d error(s).", name, len(prog.Decls), len(parseErrs))
	if opts.Logf != nil {
		opts.logf("--- AST ---\n%s--- End AST ---", ast.DebugString(prog))
	}

	opts.logf("%s: starting semantic analysis...", name)
	unit.Diagnostics = semantic.Analyze(prog, unit.Table, opts.Semantic)
	if unit.Table.Function("main") == nil {
		unit.Diagnostics = append(unit.Diagnostics, semantic.Diagnostic{Line: 0, Message: MissingMain})
	}
	opts.logf("%s: semantic analysis complete. %d diagnostic(s).", name, len(unit.Diagnostics))

	return unit
}

// CheckFile reads and checks the file at path.
func CheckFile(path string, opts Options) (*Unit, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("driver: read %s: %w", path, err)
	}
	return CheckSource(path, string(content), opts), nil
}

// CheckFiles checks each file in turn. It stops at the first file that
// cannot be read and returns the units checked so far.
func CheckFiles(paths []string, opts Options) ([]*Unit, error) {
	units := make([]*Unit, 0, len(paths))
	for _, path := range paths {
		unit, err := CheckFile(path, opts)
		if err != nil {
			return units, err
		}
		units = append(units, unit)
	}
	return units, nil
}

// Summary totals the findings of several units.
type Summary struct {
	Units        int
	Failed       int
	SyntaxErrors int
	Diagnostics  int
}

// Summarize merges per-unit counts.
func Summarize(units []*Unit) Summary {
	s := Summary{Units: len(units)}
	for _, u := range units {
		s.SyntaxErrors += len(u.SyntaxErrors)
		s.Diagnostics += len(u.Diagnostics)
		if !u.OK() {
			s.Failed++
		}
	}
	return s
}

// OK reports whether every unit passed.
func (s Summary) OK() bool { return s.Failed == 0 }
