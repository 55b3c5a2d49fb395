// Package casebook reads end-to-end analyzer cases from Markdown files.
//
// A case starts at a heading of the form "Test: <name>". It holds exactly
// one input fence and at least one assertion fence:
//
//	## Test: shadowing is allowed
//
//	```minic
//	int x; int main() { int x = 1; return x; }
//	```
//
//	```diagnostics
//	```
//
// Input fences are "minic" and "minic-strict", the latter turning on every
// strict option. Assertion fences list the expected lines: "diagnostics" as
// "line N: message", "globals" as "int x = 5", and "functions" as the
// function blocks of the text report. An empty assertion fence expects
// nothing.
package casebook

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-test/deep"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"minic/internal/driver"
	"minic/internal/report"
	"minic/internal/semantic"
)

// InputType is the language of an input fence.
type InputType string

const (
	InputMinic       InputType = "minic"
	InputMinicStrict InputType = "minic-strict"
)

// AssertionType is the language of an assertion fence.
type AssertionType string

const (
	AssertDiagnostics AssertionType = "diagnostics"
	AssertGlobals     AssertionType = "globals"
	AssertFunctions   AssertionType = "functions"
)

// Assertion is one assertion fence.
type Assertion struct {
	Type    AssertionType
	Content string
	Line    int // line of the fence in the Markdown file
}

// Case is one test case.
type Case struct {
	Name       string
	Input      string
	InputType  InputType
	Line       int
	Assertions []Assertion
}

// Options returns the semantic options selected by the input fence.
func (c Case) Options() semantic.Options {
	if c.InputType == InputMinicStrict {
		return semantic.Options{StrictFunctionReferences: true, StrictStringArithmetic: true}
	}
	return semantic.Options{}
}

// ---------------------------------------------------------------------------
// Extraction
// ---------------------------------------------------------------------------

// Load reads and extracts the cases of a Markdown file.
func Load(path string) ([]Case, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("casebook: %w", err)
	}
	cases, err := Extract(content)
	if err != nil {
		return nil, fmt.Errorf("casebook: %s: %w", path, err)
	}
	return cases, nil
}

// Extract parses a Markdown document and returns its cases in order.
func Extract(source []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []Case
	var current *Case

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := headingText(n, source)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}
			if current != nil {
				if err := validate(current); err != nil {
					return ast.WalkStop, err
				}
				cases = append(cases, *current)
			}
			current = &Case{
				Name: strings.TrimSpace(strings.TrimPrefix(heading, "Test: ")),
				Line: lineOf(n, source),
			}

		case *ast.FencedCodeBlock:
			lang := string(n.Language(source))
			line := lineOf(n, source)
			content := strings.TrimRight(fenceContent(n, source), "\n")

			if current == nil {
				if lang == "" {
					return ast.WalkContinue, nil
				}
				return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of a test case", line, lang)
			}

			switch {
			case isInput(lang):
				if current.InputType != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences in test '%s'", line, current.Name)
				}
				current.Input = content
				current.InputType = InputType(lang)
			case isAssertion(lang):
				current.Assertions = append(current.Assertions, Assertion{
					Type:    AssertionType(lang),
					Content: content,
					Line:    line,
				})
			case lang != "":
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", line, lang, current.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if current != nil {
		if err := validate(current); err != nil {
			return nil, err
		}
		cases = append(cases, *current)
	}
	return cases, nil
}

func isInput(lang string) bool {
	return lang == string(InputMinic) || lang == string(InputMinicStrict)
}

func isAssertion(lang string) bool {
	switch AssertionType(lang) {
	case AssertDiagnostics, AssertGlobals, AssertFunctions:
		return true
	}
	return false
}

func validate(c *Case) error {
	if c.InputType == "" {
		return fmt.Errorf("test '%s' has no input fence", c.Name)
	}
	if len(c.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", c.Name)
	}
	return nil
}

func headingText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

// lineOf returns the 1-based line where node's content starts.
func lineOf(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	start := node.Lines().At(0).Start
	return bytes.Count(source[:min(start, len(source))], []byte("\n")) + 1
}

// ---------------------------------------------------------------------------
// Running
// ---------------------------------------------------------------------------

// Result is the outcome of running one case.
type Result struct {
	Case Case
	// Diffs holds one entry per mismatching line, prefixed with the
	// assertion type. Empty when the case passed.
	Diffs []string
}

// Passed reports whether every assertion held.
func (r Result) Passed() bool { return len(r.Diffs) == 0 }

// Run checks the case input and evaluates its assertions.
func Run(c Case) Result {
	unit := driver.CheckSource(c.Name, c.Input, driver.Options{Semantic: c.Options()})
	rep := report.Build(unit)

	res := Result{Case: c}
	if len(rep.SyntaxErrors) > 0 {
		for _, e := range rep.SyntaxErrors {
			res.Diffs = append(res.Diffs, "syntax: "+e)
		}
		return res
	}

	for _, a := range c.Assertions {
		got := actual(a.Type, rep)
		want := expectedLines(a.Content)
		for _, diff := range deep.Equal(got, want) {
			res.Diffs = append(res.Diffs, fmt.Sprintf("%s (line %d): %s", a.Type, a.Line, diff))
		}
	}
	return res
}

// RunAll runs every case in order.
func RunAll(cases []Case) []Result {
	results := make([]Result, 0, len(cases))
	for _, c := range cases {
		results = append(results, Run(c))
	}
	return results
}

func actual(typ AssertionType, rep report.Report) []string {
	lines := []string{}
	switch typ {
	case AssertDiagnostics:
		for _, d := range rep.Diagnostics {
			lines = append(lines, fmt.Sprintf("line %d: %s", d.Line, d.Message))
		}
	case AssertGlobals:
		for _, v := range rep.Globals {
			lines = append(lines, v.String())
		}
	case AssertFunctions:
		for _, fn := range rep.Functions {
			lines = append(lines, strings.Split(strings.TrimSuffix(fn.String(), "\n"), "\n")...)
		}
	}
	return lines
}

// expectedLines splits fence content into lines, dropping trailing spaces
// and blank lines.
func expectedLines(content string) []string {
	lines := []string{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
