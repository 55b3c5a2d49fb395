package symbols

import (
	"fmt"

	"minic/internal/types"
)

// ---------------------------------------------------------------------------
// Symbol
// ---------------------------------------------------------------------------

// Symbol records the declaration of a name. It is either a *VariableSymbol
// or a *FunctionSymbol.
type Symbol interface {
	Name() string
	Type() types.MiniType // declared type; the return type for functions
	Line() int            // line of the declaration
	symbol()
}

// VariableSymbol is a declared variable, parameter or constant. It does not
// change once created.
type VariableSymbol struct {
	name     string
	typ      types.MiniType
	line     int
	isConst  bool
	initText string
}

// NewVariable creates a variable symbol. initText is the source text of the
// initializer and is only used for reporting.
func NewVariable(name string, typ types.MiniType, line int, isConst bool, initText string) *VariableSymbol {
	return &VariableSymbol{
		name:     name,
		typ:      typ,
		line:     line,
		isConst:  isConst,
		initText: initText,
	}
}

func (v *VariableSymbol) Name() string            { return v.name }
func (v *VariableSymbol) Type() types.MiniType    { return v.typ }
func (v *VariableSymbol) Line() int               { return v.line }
func (v *VariableSymbol) IsConst() bool           { return v.isConst }
func (v *VariableSymbol) InitializerText() string { return v.initText }
func (v *VariableSymbol) symbol()                 {}

func (v *VariableSymbol) String() string {
	s := fmt.Sprintf("%s %s", v.typ, v.name)
	if v.isConst {
		s = "const " + s
	}
	if v.initText != "" {
		s += " = " + v.initText
	}
	return s
}

// FunctionSymbol is a declared function. The analyzer fills in its
// parameters, locals and flags while it walks the body.
type FunctionSymbol struct {
	name       string
	returnType types.MiniType
	line       int

	// Parameters in declaration order, duplicates included.
	Parameters []*VariableSymbol
	// LocalVariables declared anywhere in the body, in declaration order.
	LocalVariables []*VariableSymbol
	// ControlStructures holds markers such as "if...else, Line 4".
	ControlStructures []string
	// HasReturn is set once any return statement is seen in the body.
	HasReturn bool
	// IsRecursive is set when the body calls the function itself.
	IsRecursive bool
}

// NewFunction creates a function symbol with no parameters.
func NewFunction(name string, returnType types.MiniType, line int) *FunctionSymbol {
	return &FunctionSymbol{name: name, returnType: returnType, line: line}
}

func (f *FunctionSymbol) Name() string         { return f.name }
func (f *FunctionSymbol) Type() types.MiniType { return f.returnType }
func (f *FunctionSymbol) Line() int            { return f.line }
func (f *FunctionSymbol) symbol()              {}

// IsMain reports whether this is the program entry point.
func (f *FunctionSymbol) IsMain() bool { return f.name == "main" }

// Parameter returns the first parameter with the given name, or nil.
func (f *FunctionSymbol) Parameter(name string) *VariableSymbol {
	for _, p := range f.Parameters {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// AddControlStructure records a control-structure marker for the report.
func (f *FunctionSymbol) AddControlStructure(kind string, line int) {
	f.ControlStructures = append(f.ControlStructures, fmt.Sprintf("%s, Line %d", kind, line))
}
