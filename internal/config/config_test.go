package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"

	"minic/internal/semantic"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	be.Equal(t, cfg.Report.Format, "text")
	be.Equal(t, cfg.Options(), semantic.Options{})
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
strict:
  function_references: true
report:
  format: " YAML "
  output: out.yaml
`)
	cfg, err := Load(path)
	be.Err(t, err, nil)
	be.True(t, cfg.Strict.FunctionReferences)
	be.True(t, !cfg.Strict.StringArithmetic)
	be.Equal(t, cfg.Report.Format, "yaml")
	be.Equal(t, cfg.Report.Output, "out.yaml")
	be.Equal(t, cfg.Options(), semantic.Options{StrictFunctionReferences: true})
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "")
	cfg, err := Load(path)
	be.Err(t, err, nil)
	be.Equal(t, cfg.Report.Format, "text")
}

func TestLoadUnknownField(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "strict:\n  everything: true\n")
	_, err := Load(path)
	be.True(t, errors.Is(err, ErrUnknownField))
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "strict: [unclosed\n")
	_, err := Load(path)
	be.Err(t, err)
	be.True(t, !errors.Is(err, ErrUnknownField))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	be.True(t, errors.Is(err, os.ErrNotExist))

	_, err = Load("")
	be.Err(t, err)
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Find(dir)
	be.Err(t, err, nil)
	be.Equal(t, cfg.Path, "")

	writeConfig(t, dir, "strict:\n  string_arithmetic: true\n")
	cfg, err = Find(dir)
	be.Err(t, err, nil)
	be.True(t, cfg.Strict.StringArithmetic)
	be.Equal(t, filepath.Base(cfg.Path), FileName)
}
