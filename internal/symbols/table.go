package symbols

import (
	"errors"
	"fmt"
)

// ErrGlobalScope is returned when asked to exit the global scope.
var ErrGlobalScope = errors.New("cannot exit the global scope")

// ---------------------------------------------------------------------------
// Scope
// ---------------------------------------------------------------------------

type scope struct {
	symbols map[string]Symbol
	order   []Symbol
}

func newScope() *scope {
	return &scope{symbols: make(map[string]Symbol)}
}

func (s *scope) define(sym Symbol) bool {
	if _, exists := s.symbols[sym.Name()]; exists {
		return false
	}
	s.symbols[sym.Name()] = sym
	s.order = append(s.order, sym)
	return true
}

func (s *scope) lookup(name string) Symbol {
	return s.symbols[name]
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

// Table is a stack of lexical scopes plus the registry of global functions.
// The global scope sits at the bottom of the stack and is never popped.
//
// Variables and functions share one namespace per scope.
type Table struct {
	scopes    []*scope
	functions map[string]*FunctionSymbol
	funcOrder []*FunctionSymbol
}

// NewTable creates a table with the global scope already active.
func NewTable() *Table {
	return &Table{
		scopes:    []*scope{newScope()},
		functions: make(map[string]*FunctionSymbol),
	}
}

// EnterScope pushes a new empty scope.
func (t *Table) EnterScope() {
	t.scopes = append(t.scopes, newScope())
}

// ExitScope pops the innermost scope. The global scope stays in place and
// an error wrapping ErrGlobalScope is returned instead.
func (t *Table) ExitScope() error {
	if len(t.scopes) == 1 {
		return fmt.Errorf("symbols: exit scope: %w", ErrGlobalScope)
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
	return nil
}

// Depth returns the number of active scopes, 1 for the global scope alone.
func (t *Table) Depth() int {
	return len(t.scopes)
}

func (t *Table) current() *scope {
	return t.scopes[len(t.scopes)-1]
}

// Define adds sym to the current scope. It returns false and leaves the
// table untouched if the scope already holds the name; the earlier symbol
// stays. Function symbols are also added to the function registry.
//
// Define does not check the registry itself. Callers declaring functions
// look the name up with Function first.
func (t *Table) Define(sym Symbol) bool {
	if !t.current().define(sym) {
		return false
	}
	if fn, ok := sym.(*FunctionSymbol); ok {
		if _, exists := t.functions[fn.Name()]; !exists {
			t.functions[fn.Name()] = fn
			t.funcOrder = append(t.funcOrder, fn)
		}
	}
	return true
}

// ResolveCurrentScopeOnly looks name up in the innermost scope only.
func (t *Table) ResolveCurrentScopeOnly(name string) Symbol {
	return t.current().lookup(name)
}

// Resolve looks name up from the innermost scope outwards and returns the
// first match, or nil.
func (t *Table) Resolve(name string) Symbol {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym := t.scopes[i].lookup(name); sym != nil {
			return sym
		}
	}
	return nil
}

// Function returns the registered function with the given name, or nil.
func (t *Table) Function(name string) *FunctionSymbol {
	return t.functions[name]
}

// GlobalVariables returns the variables of the global scope in declaration
// order.
func (t *Table) GlobalVariables() []*VariableSymbol {
	var vars []*VariableSymbol
	for _, sym := range t.scopes[0].order {
		if v, ok := sym.(*VariableSymbol); ok {
			vars = append(vars, v)
		}
	}
	return vars
}

// Functions returns the registered functions in declaration order.
func (t *Table) Functions() []*FunctionSymbol {
	return append([]*FunctionSymbol(nil), t.funcOrder...)
}
