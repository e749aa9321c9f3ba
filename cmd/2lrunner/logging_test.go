package main

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestSetLogLevel(t *testing.T) {
	defer func() { minLevel = levelInfo }()

	for name, want := range map[string]int{"debug": levelDebug, "INFO": levelInfo, "warn": levelWarn, "error": levelError} {
		if err := setLogLevel(name); err != nil {
			t.Errorf("setLogLevel(%q) failed: %v", name, err)
		}
		if minLevel != want {
			t.Errorf("setLogLevel(%q) set level %d, want %d", name, minLevel, want)
		}
	}
	if err := setLogLevel("verbose"); err == nil {
		t.Error("setLogLevel(verbose) accepted an unknown level")
	}
}

func TestLogLevelGating(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
		minLevel = levelInfo
	}()

	tests := []struct {
		level string
		want  []string
	}{
		{"debug", []string{"d", "i", "w", "e"}},
		{"info", []string{"i", "w", "e"}},
		{"warn", []string{"w", "e"}},
		{"error", []string{"e"}},
	}
	for _, tt := range tests {
		buf.Reset()
		if err := setLogLevel(tt.level); err != nil {
			t.Fatalf("setLogLevel(%q) failed: %v", tt.level, err)
		}
		debugf("d")
		infof("i")
		warnf("w")
		errorf("e")

		got := strings.Fields(buf.String())
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("level %s logged %v, want %v", tt.level, got, tt.want)
		}
	}
}
