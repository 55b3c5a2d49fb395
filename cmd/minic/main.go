package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"minic/internal/config"
)

const VERSION = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type app struct {
	stdout, stderr io.Writer
	code           int

	debugMode  bool
	configPath string
	format     string
	reportPath string
	strict     bool
}

func run(args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		return 1
	}
	return a.code
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "minic",
		Short:   "minic semantic checker",
		Version: VERSION,
		Long: `minic lexes, parses and semantically checks mini-language sources.

Commands:
  check    Check source files and print a report
  cases    Run Markdown casebooks
  version  Print the version
`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.printDebug("Using debug mode.")
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(a.stderr, cmd.UsageString())
			a.code = 1
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate("minic {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.BoolVar(&a.debugMode, "debug", false, "print progress for every stage to stderr")
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default: ./"+config.FileName+" when present)")
	flags.StringVarP(&a.format, "format", "f", "", "report format: text, yaml or json")
	flags.StringVarP(&a.reportPath, "report", "o", "", "write the report to this file instead of stdout")
	flags.BoolVar(&a.strict, "strict", false, "enable every strict check")

	root.AddCommand(a.checkCmd(), a.casesCmd(), a.versionCmd())
	return root
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.stdout, "minic "+VERSION)
		},
	}
}

// printDebug prints a message to stderr when --debug is set.
func (a *app) printDebug(message string) {
	if !a.debugMode {
		return
	}
	fmt.Fprintln(a.stderr, "[DEBUG] "+message)
}

func (a *app) debugf(format string, args ...any) {
	a.printDebug(fmt.Sprintf(format, args...))
}

// loadConfig reads the config file and applies the command-line overrides.
func (a *app) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if a.configPath != "" {
		cfg, err = config.Load(a.configPath)
	} else {
		cfg, err = config.Find(".")
	}
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		a.printDebug("Using config: " + cfg.Path)
	}

	if a.format != "" {
		cfg.Report.Format = a.format
	}
	if a.reportPath != "" {
		cfg.Report.Output = a.reportPath
	}
	if a.strict {
		cfg.Strict.FunctionReferences = true
		cfg.Strict.StringArithmetic = true
	}
	return cfg, nil
}
