package semantic

import (
	"testing"

	"github.com/nalgeon/be"

	"minic/internal/ast"
	"minic/internal/symbols"
)

// The grammar only allows declarations at top level, so a return without an
// enclosing function has to be built by hand.
func TestReturnOutsideFunction(t *testing.T) {
	c := &checker{table: symbols.NewTable()}
	var diags Diagnostics

	c.checkStmt(&ast.ReturnStmt{Pos: ast.Position{Line: 4}}, nil, &diags)
	c.checkStmt(&ast.ReturnStmt{
		Value: &ast.IdentExpr{Name: "ghost", Pos: ast.Position{Line: 7}},
		Pos:   ast.Position{Line: 7},
	}, nil, &diags)

	be.Equal(t, diags.List(), []Diagnostic{
		{Line: 4, Message: "return statement outside of function"},
		{Line: 7, Message: "return statement outside of function"},
		{Line: 7, Message: "identifier 'ghost' not declared"},
	})
	be.Equal(t, c.table.Depth(), 1)
}
