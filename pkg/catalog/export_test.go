package catalog

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/erwinbonsma/2lrunner/pkg/vm"
)

func TestExportImport(t *testing.T) {
	src, _ := openTestStore(t)
	p := goldenProgram(t)
	if _, err := src.Put("default", p, "browser default"); err != nil {
		t.Fatalf("failed to put program: %v", err)
	}
	if _, err := src.Put("tiny", vm.MustNewProgram(2, 1), ""); err != nil {
		t.Fatalf("failed to put program: %v", err)
	}

	var buf bytes.Buffer
	if err := src.Export(&buf); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}
	for _, want := range []string{"name: default", "description: browser default", "*_*__", "name: tiny"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("export lacks %q:\n%s", want, buf.String())
		}
	}

	dst, _ := openTestStore(t)
	if _, err := dst.Put("tiny", p, "keep me"); err != nil {
		t.Fatalf("failed to put program: %v", err)
	}

	n, err := dst.Import(bytes.NewReader(buf.Bytes()), false)
	if err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Import() stored %d programs, want 1", n)
	}
	q, err := dst.Load("default")
	if err != nil {
		t.Fatalf("failed to load program: %v", err)
	}
	if !p.Equal(q) {
		t.Error("imported program differs")
	}
	if e, _ := dst.Get("tiny"); e.Description != "keep me" {
		t.Errorf("existing program overwritten: %q", e.Description)
	}

	n, err = dst.Import(bytes.NewReader(buf.Bytes()), true)
	if err != nil {
		t.Fatalf("Import(overwrite) failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Import(overwrite) stored %d programs, want 2", n)
	}
	if e, _ := dst.Get("tiny"); e.Width != 2 || e.Height != 1 {
		t.Errorf("tiny is %dx%d after overwrite, want 2x1", e.Width, e.Height)
	}
}

func TestImportFingerprintMismatch(t *testing.T) {
	src, _ := openTestStore(t)
	p := goldenProgram(t)
	if _, err := src.Put("default", p, ""); err != nil {
		t.Fatalf("failed to put program: %v", err)
	}
	var buf bytes.Buffer
	if err := src.Export(&buf); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	// Flip the top-left turn into a data cell.
	tampered := strings.Replace(buf.String(), "*_*__", "o_*__", 1)

	dst, _ := openTestStore(t)
	if _, err := dst.Import(strings.NewReader(tampered), false); !errors.Is(err, ErrFingerprintMismatch) {
		t.Errorf("Import() = %v, want ErrFingerprintMismatch", err)
	}
	if dst.Has("default") {
		t.Error("tampered program was stored")
	}
}

func TestImportEmpty(t *testing.T) {
	store, _ := openTestStore(t)
	n, err := store.Import(strings.NewReader(""), false)
	if err != nil || n != 0 {
		t.Errorf("Import(empty) = %d, %v, want 0, nil", n, err)
	}
	if _, err := store.Import(strings.NewReader("programs: [{name: x, grid: \"o?\"}]"), false); err == nil {
		t.Error("Import() accepted an invalid grid")
	}
}
