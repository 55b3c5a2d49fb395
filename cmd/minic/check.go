package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"minic/internal/config"
	"minic/internal/driver"
	"minic/internal/report"
)

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>...",
		Short: "Check source files and print a report",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a.code = a.runCheck(args)
		},
	}
}

func (a *app) runCheck(paths []string) int {
	cfg, err := a.loadConfig()
	if err != nil {
		fmt.Fprintln(a.stderr, "Error: "+err.Error())
		return 1
	}

	start := time.Now()
	opts := driver.Options{Semantic: cfg.Options()}
	if a.debugMode {
		opts.Logf = a.debugf
	}
	units, err := driver.CheckFiles(paths, opts)
	if err != nil {
		fmt.Fprintln(a.stderr, "Error: could not read file.")
		fmt.Fprintln(a.stderr, "Error details: "+err.Error())
		return 1
	}

	reports := make([]report.Report, len(units))
	for i, u := range units {
		reports[i] = report.Build(u)
	}
	if err := a.writeReports(cfg.Report, reports); err != nil {
		fmt.Fprintln(a.stderr, "Error: "+err.Error())
		return 1
	}

	sum := driver.Summarize(units)
	a.debugf("Checked %d unit(s) in %s: %d failed, %d syntax error(s), %d semantic error(s).",
		sum.Units, time.Since(start), sum.Failed, sum.SyntaxErrors, sum.Diagnostics)
	if !sum.OK() {
		return 1
	}
	return 0
}

func (a *app) writeReports(rc config.ReportConfig, reports []report.Report) error {
	if rc.Output == "" {
		return report.Write(a.stdout, rc.Format, reports...)
	}
	file, err := os.Create(rc.Output)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.Write(file, rc.Format, reports...); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	a.printDebug("Report written to " + rc.Output)
	return nil
}
