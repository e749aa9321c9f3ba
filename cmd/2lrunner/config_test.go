package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestFlagSet() *flag.FlagSet {
	fset := flag.NewFlagSet("test", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	fset.Int("capacity", 1024, "")
	fset.Uint64("max-steps", 0, "")
	fset.String("palette", "", "")
	fset.Duration("tick", 40*time.Millisecond, "")
	fset.Bool("no-cache", false, "")
	fset.String("program", "", "")
	return fset
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestApplyConfigFile(t *testing.T) {
	path := writeConfig(t, `
capacity = 64
max-steps = 5000
palette = ["#0000ff", "#ff0000"]
tick = "20ms"
no-cache = true
`)

	fset := newTestFlagSet()
	if err := fset.Parse([]string{"-capacity", "8"}); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if err := applyConfigFile(fset, path, true); err != nil {
		t.Fatalf("applyConfigFile() failed: %v", err)
	}

	want := map[string]string{
		"capacity":  "8",
		"max-steps": "5000",
		"palette":   "#0000ff,#ff0000",
		"tick":      "20ms",
		"no-cache":  "true",
	}
	for name, value := range want {
		if got := fset.Lookup(name).Value.String(); got != value {
			t.Errorf("%s = %q, want %q", name, got, value)
		}
	}
}

func TestApplyConfigFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	if err := applyConfigFile(newTestFlagSet(), path, false); err != nil {
		t.Errorf("optional missing config: %v", err)
	}
	if err := applyConfigFile(newTestFlagSet(), path, true); err == nil {
		t.Error("required missing config was accepted")
	}
}

func TestApplyConfigFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"unknown key", `program = "o"`, "unknown setting"},
		{"bad value", `capacity = "lots"`, "capacity"},
		{"bad toml", `capacity = `, "parse error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := applyConfigFile(newTestFlagSet(), writeConfig(t, tt.content), true)
			if err == nil {
				t.Fatal("applyConfigFile() accepted invalid config")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error %q does not mention %q", err, tt.errPart)
			}
		})
	}
}
