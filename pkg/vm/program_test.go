package vm

import (
	"errors"
	"testing"

	"github.com/erwinbonsma/2lrunner/internal/types"
)

// TestNewProgram tests grid construction.
func TestNewProgram(t *testing.T) {
	p, err := NewProgram(4, 3)
	if err != nil {
		t.Fatalf("NewProgram() failed: %v", err)
	}
	if p.Width() != 4 || p.Height() != 3 {
		t.Errorf("size = %dx%d, want 4x3", p.Width(), p.Height())
	}
	if n := p.Count(types.Noop); n != 12 {
		t.Errorf("Count(NOOP) = %d, want 12", n)
	}

	for _, dims := range [][2]int{{0, 1}, {1, 0}, {-2, 3}} {
		if _, err := NewProgram(dims[0], dims[1]); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("NewProgram(%d, %d) = %v, want ErrInvalidDimensions", dims[0], dims[1], err)
		}
	}
}

// TestProgramSetGet tests that in-range writes are read back and that
// everything outside the grid reads as DONE.
func TestProgramSetGet(t *testing.T) {
	p := MustNewProgram(3, 2)

	tags := []types.Instruction{types.Noop, types.Data, types.Turn}
	for col := 0; col < 3; col++ {
		for row := 0; row < 2; row++ {
			want := tags[(col+row)%len(tags)]
			if err := p.SetInstruction(col, row, want); err != nil {
				t.Fatalf("SetInstruction(%d, %d) failed: %v", col, row, err)
			}
			if got := p.Instruction(col, row); got != want {
				t.Errorf("Instruction(%d, %d) = %s, want %s", col, row, got, want)
			}
		}
	}

	outside := [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 2}, {100, -100}}
	for _, pos := range outside {
		err := p.SetInstruction(pos[0], pos[1], types.Data)
		if !errors.Is(err, ErrOutOfBoundsWrite) {
			t.Errorf("SetInstruction(%d, %d) = %v, want ErrOutOfBoundsWrite", pos[0], pos[1], err)
		}
		if got := p.Instruction(pos[0], pos[1]); got != types.Done {
			t.Errorf("Instruction(%d, %d) = %s, want DONE", pos[0], pos[1], got)
		}
	}
}

// TestProgramRejectsDone tests that DONE cannot be stored in a cell.
func TestProgramRejectsDone(t *testing.T) {
	p := MustNewProgram(2, 2)
	if err := p.SetInstruction(1, 1, types.Done); !errors.Is(err, ErrInvalidInstruction) {
		t.Errorf("SetInstruction(DONE) = %v, want ErrInvalidInstruction", err)
	}
	if got := p.Instruction(1, 1); got != types.Noop {
		t.Errorf("Instruction(1, 1) = %s, want NOOP", got)
	}
}

// TestProgramCloneEqual tests that clones are equal but independent.
func TestProgramCloneEqual(t *testing.T) {
	p := gridFromRows(t, goldenRows...)
	q := p.Clone()
	if !p.Equal(q) {
		t.Fatal("clone not equal to original")
	}
	if err := q.SetInstruction(0, 0, types.Noop); err != nil {
		t.Fatalf("SetInstruction() failed: %v", err)
	}
	if p.Equal(q) {
		t.Error("edit to clone changed the original")
	}
	if p.Equal(MustNewProgram(5, 4)) {
		t.Error("programs of different shape compare equal")
	}
}
