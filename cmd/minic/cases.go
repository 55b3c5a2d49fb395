package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"minic/internal/casebook"
)

func (a *app) casesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cases <file.md>...",
		Short: "Run Markdown casebooks",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a.code = a.runCases(args)
		},
	}
}

func (a *app) runCases(paths []string) int {
	passed, failed := 0, 0
	for _, path := range paths {
		cases, err := casebook.Load(path)
		if err != nil {
			fmt.Fprintln(a.stderr, "Error: "+err.Error())
			return 1
		}
		a.debugf("%s: %d case(s).", path, len(cases))
		for _, res := range casebook.RunAll(cases) {
			if res.Passed() {
				passed++
				fmt.Fprintf(a.stdout, "PASS %s: %s\n", path, res.Case.Name)
				continue
			}
			failed++
			fmt.Fprintf(a.stdout, "FAIL %s: %s (line %d)\n", path, res.Case.Name, res.Case.Line)
			for _, diff := range res.Diffs {
				fmt.Fprintf(a.stdout, "  %s\n", diff)
			}
		}
	}

	fmt.Fprintf(a.stdout, "%d passed, %d failed\n", passed, failed)
	if failed > 0 {
		return 1
	}
	return 0
}
