package vm

import (
	"testing"

	"github.com/erwinbonsma/2lrunner/internal/types"
)

// gridFromRows builds a program from rows of '_', 'o' and '*', top row first.
func gridFromRows(t *testing.T, rows ...string) *Program {
	t.Helper()
	p, err := NewProgram(len(rows[0]), len(rows))
	if err != nil {
		t.Fatalf("NewProgram() failed: %v", err)
	}
	for i, line := range rows {
		row := len(rows) - 1 - i
		for col, ch := range line {
			var ins types.Instruction
			switch ch {
			case '_':
				ins = types.Noop
			case 'o':
				ins = types.Data
			case '*':
				ins = types.Turn
			default:
				t.Fatalf("bad cell %q", ch)
			}
			if err := p.SetInstruction(col, row, ins); err != nil {
				t.Fatalf("SetInstruction(%d, %d) failed: %v", col, row, err)
			}
		}
	}
	return p
}

// goldenRows is the default program of the browser runner.
var goldenRows = []string{
	"*_*__",
	"o___*",
	"o____",
	"o*_oo",
	"o__*_",
}
