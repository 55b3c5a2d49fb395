// Package report renders the result of checking a unit: its symbol tables
// and its findings.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"minic/internal/driver"
	"minic/internal/symbols"
)

// ErrUnknownFormat is returned for a format other than text, yaml or json.
var ErrUnknownFormat = errors.New("unknown report format")

// Formats lists the accepted format names.
var Formats = []string{"text", "yaml", "json"}

// Report is the serialisable view of one checked unit.
type Report struct {
	Unit         string       `yaml:"unit" json:"unit"`
	OK           bool         `yaml:"ok" json:"ok"`
	Globals      []Variable   `yaml:"globals" json:"globals"`
	Functions    []Function   `yaml:"functions" json:"functions"`
	SyntaxErrors []string     `yaml:"syntax_errors,omitempty" json:"syntax_errors,omitempty"`
	Diagnostics  []Diagnostic `yaml:"diagnostics,omitempty" json:"diagnostics,omitempty"`
}

// Variable describes a global or local variable.
type Variable struct {
	Name  string `yaml:"name" json:"name"`
	Type  string `yaml:"type" json:"type"`
	Value string `yaml:"value,omitempty" json:"value,omitempty"`
	Const bool   `yaml:"const,omitempty" json:"const,omitempty"`
}

// Parameter is one entry of a function's parameter list.
type Parameter struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// Function describes a registered function.
type Function struct {
	Name              string      `yaml:"name" json:"name"`
	ReturnType        string      `yaml:"return_type" json:"return_type"`
	Main              bool        `yaml:"main,omitempty" json:"main,omitempty"`
	Recursive         bool        `yaml:"recursive,omitempty" json:"recursive,omitempty"`
	Parameters        []Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Locals            []Variable  `yaml:"locals,omitempty" json:"locals,omitempty"`
	ControlStructures []string    `yaml:"control_structures,omitempty" json:"control_structures,omitempty"`
}

// Diagnostic is a semantic finding.
type Diagnostic struct {
	Line    int    `yaml:"line" json:"line"`
	Message string `yaml:"message" json:"message"`
}

// ---------------------------------------------------------------------------
// Building
// ---------------------------------------------------------------------------

// Build collects the report for a checked unit.
func Build(unit *driver.Unit) Report {
	r := Report{
		Unit:      unit.Name,
		OK:        unit.OK(),
		Globals:   []Variable{},
		Functions: []Function{},
	}
	for _, v := range unit.Table.GlobalVariables() {
		r.Globals = append(r.Globals, variable(v))
	}
	for _, fn := range unit.Table.Functions() {
		r.Functions = append(r.Functions, function(fn))
	}
	for _, e := range unit.SyntaxErrors {
		r.SyntaxErrors = append(r.SyntaxErrors, e.Error())
	}
	for _, d := range unit.Diagnostics {
		r.Diagnostics = append(r.Diagnostics, Diagnostic{Line: d.Line, Message: d.Message})
	}
	return r
}

func variable(v *symbols.VariableSymbol) Variable {
	return Variable{
		Name:  v.Name(),
		Type:  v.Type().String(),
		Value: v.InitializerText(),
		Const: v.IsConst(),
	}
}

func function(fn *symbols.FunctionSymbol) Function {
	f := Function{
		Name:              fn.Name(),
		ReturnType:        fn.Type().String(),
		Main:              fn.IsMain(),
		Recursive:         fn.IsRecursive,
		ControlStructures: fn.ControlStructures,
	}
	for _, p := range fn.Parameters {
		f.Parameters = append(f.Parameters, Parameter{Name: p.Name(), Type: p.Type().String()})
	}
	for _, v := range fn.LocalVariables {
		f.Locals = append(f.Locals, variable(v))
	}
	return f
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

// Text renders r for a terminal.
func Text(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Unit: %s\n", r.Unit)

	b.WriteString("Global variables:\n")
	if len(r.Globals) == 0 {
		b.WriteString("  none\n")
	}
	for _, v := range r.Globals {
		fmt.Fprintf(&b, "  %s\n", v)
	}

	b.WriteString("Functions:\n")
	if len(r.Functions) == 0 {
		b.WriteString("  none\n")
	}
	for _, fn := range r.Functions {
		for _, line := range strings.SplitAfter(strings.TrimSuffix(fn.String(), "\n"), "\n") {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if len(r.SyntaxErrors) > 0 {
		b.WriteString("Syntax errors:\n")
		for _, e := range r.SyntaxErrors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	if len(r.Diagnostics) > 0 {
		b.WriteString("Semantic errors:\n")
		for _, d := range r.Diagnostics {
			fmt.Fprintf(&b, "  line %d: %s\n", d.Line, d.Message)
		}
	}

	if r.OK {
		b.WriteString("Result: OK\n")
	} else {
		fmt.Fprintf(&b, "Result: FAILED (%d syntax error(s), %d semantic error(s))\n",
			len(r.SyntaxErrors), len(r.Diagnostics))
	}
	return b.String()
}

// String renders the function header followed by its locals and control
// structures, indented by two spaces per level.
func (f Function) String() string {
	var b strings.Builder
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = p.Type + " " + p.Name
	}
	fmt.Fprintf(&b, "%s %s(%s)", f.ReturnType, f.Name, strings.Join(params, ", "))
	if f.Main {
		b.WriteString(" [main]")
	}
	if f.Recursive {
		b.WriteString(" [recursive]")
	}
	b.WriteString("\n")

	if len(f.Locals) > 0 {
		b.WriteString("  Local variables:\n")
		for _, v := range f.Locals {
			fmt.Fprintf(&b, "    %s\n", v)
		}
	}
	if len(f.ControlStructures) > 0 {
		b.WriteString("  Control structures:\n")
		for _, c := range f.ControlStructures {
			fmt.Fprintf(&b, "    %s\n", c)
		}
	}
	return b.String()
}

func (v Variable) String() string {
	s := v.Type + " " + v.Name
	if v.Const {
		s = "const " + s
	}
	if v.Value != "" {
		s += " = " + v.Value
	}
	return s
}

// YAML renders reports as a stream of YAML documents.
func YAML(reports ...Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, r := range reports {
		if err := enc.Encode(r); err != nil {
			return nil, fmt.Errorf("report: marshal yaml %s: %w", r.Unit, err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("report: encoder close: %w", err)
	}
	return buf.Bytes(), nil
}

// JSON renders a single report as an object and several as an array.
func JSON(reports ...Report) ([]byte, error) {
	var v any = reports
	if len(reports) == 1 {
		v = reports[0]
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("report: marshal json: %w", err)
	}
	return append(data, '\n'), nil
}

// Write renders reports in the given format to w.
func Write(w io.Writer, format string, reports ...Report) error {
	var data []byte
	var err error
	switch strings.ToLower(format) {
	case "", "text":
		var b strings.Builder
		for i, r := range reports {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(Text(r))
		}
		data = []byte(b.String())
	case "yaml":
		data, err = YAML(reports...)
	case "json":
		data, err = JSON(reports...)
	default:
		return fmt.Errorf("report: %q: %w", format, ErrUnknownFormat)
	}
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	return nil
}
