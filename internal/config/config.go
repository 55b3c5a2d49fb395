// Package config loads minic.yaml.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"minic/internal/semantic"
)

// FileName is the configuration file looked up by Find.
const FileName = "minic.yaml"

// ErrUnknownField is wrapped by Load when the file sets a key that does not
// exist.
var ErrUnknownField = errors.New("unknown field")

// Config mirrors the layout of minic.yaml.
type Config struct {
	Strict StrictConfig `yaml:"strict"`
	Report ReportConfig `yaml:"report"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `yaml:"-"`
}

// StrictConfig turns on the optional semantic checks.
type StrictConfig struct {
	FunctionReferences bool `yaml:"function_references"`
	StringArithmetic   bool `yaml:"string_arithmetic"`
}

// ReportConfig selects how results are rendered.
type ReportConfig struct {
	Format string `yaml:"format"` // text, yaml or json
	Output string `yaml:"output"` // file path; empty means stdout
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{Report: ReportConfig{Format: "text"}}
}

// Load parses the config file at path. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		if isUnknownField(err) {
			return nil, fmt.Errorf("config: parse %s: %w: %w", abs, ErrUnknownField, err)
		}
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	cfg.Path = abs
	cfg.normalize()
	return cfg, nil
}

// Find loads FileName from dir, or returns the defaults when dir has none.
func Find(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}
	return Load(path)
}

// Options returns the semantic options selected by the config.
func (c *Config) Options() semantic.Options {
	return semantic.Options{
		StrictFunctionReferences: c.Strict.FunctionReferences,
		StrictStringArithmetic:   c.Strict.StringArithmetic,
	}
}

func (c *Config) normalize() {
	c.Report.Format = strings.ToLower(strings.TrimSpace(c.Report.Format))
	if c.Report.Format == "" {
		c.Report.Format = "text"
	}
	c.Report.Output = strings.TrimSpace(c.Report.Output)
}

// yaml.v3 reports unknown keys as a TypeError with one entry per key.
func isUnknownField(err error) bool {
	var typeErr *yaml.TypeError
	if !errors.As(err, &typeErr) {
		return false
	}
	for _, msg := range typeErr.Errors {
		if strings.Contains(msg, "not found in type") {
			return true
		}
	}
	return false
}
