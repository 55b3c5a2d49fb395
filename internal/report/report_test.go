package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/nalgeon/be"
	"gopkg.in/yaml.v3"

	"minic/internal/driver"
)

const sample = `int count = 0;
const string name = "minic";

int fact(int n) {
	if (n <= 1) { return 1; }
	return n * fact(n - 1);
}

int main() {
	int r = fact(5);
	while (r > 0) { r = r - 1; }
	return r;
}`

func sampleReport(t *testing.T) Report {
	t.Helper()
	unit := driver.CheckSource("sample.mc", sample, driver.Options{})
	if !unit.OK() {
		t.Fatalf("sample has findings: %v %v", unit.SyntaxErrors, unit.Diagnostics)
	}
	return Build(unit)
}

func TestBuild(t *testing.T) {
	want := Report{
		Unit: "sample.mc",
		OK:   true,
		Globals: []Variable{
			{Name: "count", Type: "int", Value: "0"},
			{Name: "name", Type: "string", Value: `"minic"`, Const: true},
		},
		Functions: []Function{
			{
				Name:              "fact",
				ReturnType:        "int",
				Recursive:         true,
				Parameters:        []Parameter{{Name: "n", Type: "int"}},
				ControlStructures: []string{"if, Line 5"},
			},
			{
				Name:              "main",
				ReturnType:        "int",
				Main:              true,
				Locals:            []Variable{{Name: "r", Type: "int", Value: "fact(5)"}},
				ControlStructures: []string{"while, Line 11"},
			},
		},
	}
	if diff := deep.Equal(sampleReport(t), want); diff != nil {
		t.Error(diff)
	}
}

func TestBuildFailedUnit(t *testing.T) {
	unit := driver.CheckSource("bad.mc", "int x = y;", driver.Options{})
	r := Build(unit)
	be.True(t, !r.OK)
	want := []Diagnostic{
		{Line: 1, Message: "identifier 'y' not declared"},
		{Line: 0, Message: driver.MissingMain},
	}
	if diff := deep.Equal(r.Diagnostics, want); diff != nil {
		t.Error(diff)
	}
	be.Equal(t, len(r.Functions), 0)
}

func TestText(t *testing.T) {
	want := `Unit: sample.mc
Global variables:
  int count = 0
  const string name = "minic"
Functions:
  int fact(int n) [recursive]
    Control structures:
      if, Line 5
  int main() [main]
    Local variables:
      int r = fact(5)
    Control structures:
      while, Line 11
Result: OK
`
	be.Equal(t, Text(sampleReport(t)), want)
}

func TestTextFailed(t *testing.T) {
	r := Report{
		Unit:         "x.mc",
		Globals:      []Variable{},
		Functions:    []Function{},
		SyntaxErrors: []string{"line 1, col 9: expected ';'"},
		Diagnostics:  []Diagnostic{{Line: 0, Message: driver.MissingMain}},
	}
	want := `Unit: x.mc
Global variables:
  none
Functions:
  none
Syntax errors:
  line 1, col 9: expected ';'
Semantic errors:
  line 0: function 'main' is not declared
Result: FAILED (1 syntax error(s), 1 semantic error(s))
`
	be.Equal(t, Text(r), want)
}

func TestYAML(t *testing.T) {
	r := sampleReport(t)
	data, err := YAML(r)
	be.Err(t, err, nil)

	out := string(data)
	be.True(t, strings.Contains(out, "unit: sample.mc\n"))
	be.True(t, strings.Contains(out, "return_type: int\n"))
	be.True(t, !strings.Contains(out, "diagnostics:"))

	var back Report
	be.Err(t, yaml.Unmarshal(data, &back), nil)
	if diff := deep.Equal(back, r); diff != nil {
		t.Error(diff)
	}
}

func TestYAMLStream(t *testing.T) {
	r := sampleReport(t)
	data, err := YAML(r, r)
	be.Err(t, err, nil)
	be.Equal(t, strings.Count(string(data), "unit: sample.mc"), 2)
	be.True(t, strings.Contains(string(data), "\n---\n"))
}

func TestJSON(t *testing.T) {
	r := sampleReport(t)
	data, err := JSON(r)
	be.Err(t, err, nil)

	var back Report
	be.Err(t, json.Unmarshal(data, &back), nil)
	if diff := deep.Equal(back, r); diff != nil {
		t.Error(diff)
	}

	data, err = JSON(r, r)
	be.Err(t, err, nil)
	var list []Report
	be.Err(t, json.Unmarshal(data, &list), nil)
	be.Equal(t, len(list), 2)
}

func TestWrite(t *testing.T) {
	r := sampleReport(t)
	for _, format := range Formats {
		var buf bytes.Buffer
		be.Err(t, Write(&buf, format, r), nil)
		be.True(t, buf.Len() > 0)
	}

	var buf bytes.Buffer
	err := Write(&buf, "xml", r)
	be.True(t, errors.Is(err, ErrUnknownFormat))
	be.Equal(t, buf.Len(), 0)
}
