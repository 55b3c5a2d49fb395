package symbols

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"

	"minic/internal/types"
)

func TestNewTableHasGlobalScope(t *testing.T) {
	table := NewTable()
	be.Equal(t, table.Depth(), 1)
	err := table.ExitScope()
	be.True(t, errors.Is(err, ErrGlobalScope))
	be.Equal(t, table.Depth(), 1)
}

func TestEnterExitScope(t *testing.T) {
	table := NewTable()
	table.EnterScope()
	table.EnterScope()
	be.Equal(t, table.Depth(), 3)
	be.Err(t, table.ExitScope(), nil)
	be.Err(t, table.ExitScope(), nil)
	be.Equal(t, table.Depth(), 1)
}

func TestDefineKeepsFirst(t *testing.T) {
	table := NewTable()
	first := NewVariable("x", types.Int, 1, false, "5")
	second := NewVariable("x", types.Float, 2, false, "6")

	be.True(t, table.Define(first))
	be.True(t, !table.Define(second))

	got := table.Resolve("x").(*VariableSymbol)
	be.Equal(t, got.InitializerText(), "5")
	be.Equal(t, got.Type(), types.Int)
	be.Equal(t, len(table.GlobalVariables()), 1)
}

func TestResolveShadowing(t *testing.T) {
	table := NewTable()
	table.Define(NewVariable("x", types.Int, 1, false, ""))
	table.EnterScope()
	table.Define(NewVariable("x", types.String, 3, false, ""))

	be.Equal(t, table.Resolve("x").Type(), types.String)
	be.Equal(t, table.ResolveCurrentScopeOnly("x").Line(), 3)

	be.Err(t, table.ExitScope(), nil)
	be.Equal(t, table.Resolve("x").Type(), types.Int)
}

func TestResolveCurrentScopeOnly(t *testing.T) {
	table := NewTable()
	table.Define(NewVariable("g", types.Int, 1, false, ""))
	table.EnterScope()
	be.True(t, table.ResolveCurrentScopeOnly("g") == nil)
	be.True(t, table.Resolve("g") != nil)
	be.True(t, table.Resolve("missing") == nil)
}

func TestFunctionRegistry(t *testing.T) {
	table := NewTable()
	table.Define(NewVariable("a", types.Int, 1, false, ""))
	table.Define(NewFunction("f", types.Void, 2))
	table.Define(NewFunction("main", types.Int, 5))

	be.True(t, table.Function("f") != nil)
	be.True(t, table.Function("a") == nil)
	be.True(t, table.Function("main").IsMain())

	fns := table.Functions()
	be.Equal(t, len(fns), 2)
	be.Equal(t, fns[0].Name(), "f")
	be.Equal(t, fns[1].Name(), "main")

	// Functions and variables share the global namespace.
	be.True(t, !table.Define(NewFunction("a", types.Int, 7)))
	be.True(t, table.Function("a") == nil)
}

func TestGlobalVariablesOrder(t *testing.T) {
	table := NewTable()
	table.Define(NewVariable("b", types.Int, 1, false, ""))
	table.Define(NewFunction("f", types.Void, 2))
	table.Define(NewVariable("a", types.Bool, 3, true, "true"))

	table.EnterScope()
	table.Define(NewVariable("local", types.Int, 4, false, ""))

	vars := table.GlobalVariables()
	be.Equal(t, len(vars), 2)
	be.Equal(t, vars[0].Name(), "b")
	be.Equal(t, vars[1].Name(), "a")
	be.True(t, vars[1].IsConst())
}

func TestFunctionSymbol(t *testing.T) {
	fn := NewFunction("sum", types.Int, 3)
	fn.Parameters = append(fn.Parameters,
		NewVariable("a", types.Int, 3, false, ""),
		NewVariable("b", types.Float, 3, false, ""),
	)
	fn.AddControlStructure("while", 4)
	fn.AddControlStructure("if...else", 6)

	be.Equal(t, fn.Parameter("b").Type(), types.Float)
	be.True(t, fn.Parameter("c") == nil)
	be.Equal(t, fn.ControlStructures, []string{"while, Line 4", "if...else, Line 6"})
	be.True(t, !fn.IsMain())
}

func TestVariableString(t *testing.T) {
	be.Equal(t, NewVariable("x", types.Int, 1, false, "").String(), "int x")
	be.Equal(t, NewVariable("pi", types.Double, 1, true, "3.14").String(), "const double pi = 3.14")
}
