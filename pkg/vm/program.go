package vm

import (
	"fmt"

	"github.com/erwinbonsma/2lrunner/internal/types"
)

// Program is a fixed-size grid of instructions.
//
// Cells are addressed by (col, row) with col in [0,width) and row in
// [0,height). Anything outside that rectangle reads as types.Done.
type Program struct {
	width  int
	height int
	cells  []types.Instruction // column-major: col*height + row
}

// NewProgram creates a program with every cell set to NOOP.
func NewProgram(width, height int) (*Program, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Program{
		width:  width,
		height: height,
		cells:  make([]types.Instruction, width*height),
	}, nil
}

// MustNewProgram is like NewProgram but panics on invalid dimensions.
func MustNewProgram(width, height int) *Program {
	p, err := NewProgram(width, height)
	if err != nil {
		panic(err)
	}
	return p
}

// Width returns the number of columns.
func (p *Program) Width() int {
	return p.width
}

// Height returns the number of rows.
func (p *Program) Height() int {
	return p.height
}

// Contains reports whether (col, row) lies inside the grid.
func (p *Program) Contains(col, row int) bool {
	return col >= 0 && col < p.width && row >= 0 && row < p.height
}

// Instruction returns the instruction at (col, row), or types.Done when the
// position is outside the grid.
func (p *Program) Instruction(col, row int) types.Instruction {
	if !p.Contains(col, row) {
		return types.Done
	}
	return p.cells[col*p.height+row]
}

// SetInstruction stores ins at (col, row).
func (p *Program) SetInstruction(col, row int, ins types.Instruction) error {
	if !p.Contains(col, row) {
		return fmt.Errorf("%w: (%d,%d) in %dx%d grid", ErrOutOfBoundsWrite, col, row, p.width, p.height)
	}
	if !ins.Storable() {
		return fmt.Errorf("%w: %s at (%d,%d)", ErrInvalidInstruction, ins, col, row)
	}
	p.cells[col*p.height+row] = ins
	return nil
}

// Count returns how many cells hold ins.
func (p *Program) Count(ins types.Instruction) int {
	n := 0
	for _, c := range p.cells {
		if c == ins {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the program.
func (p *Program) Clone() *Program {
	cells := make([]types.Instruction, len(p.cells))
	copy(cells, p.cells)
	return &Program{width: p.width, height: p.height, cells: cells}
}

// Equal reports whether both programs have the same shape and cells.
func (p *Program) Equal(other *Program) bool {
	if other == nil || p.width != other.width || p.height != other.height {
		return false
	}
	for i := range p.cells {
		if p.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}
