package vm

import (
	"fmt"

	"github.com/erwinbonsma/2lrunner/internal/types"
)

// ProgramPointer is the execution cursor. Its position is unbounded: it
// starts one row below the grid and may end one step outside it.
type ProgramPointer struct {
	Col int
	Row int
	Dir types.Dir
}

// StartPointer is the pointer state every run begins from.
var StartPointer = ProgramPointer{Col: 0, Row: -1, Dir: types.Up}

// Next returns the cell one step ahead in the current direction.
func (pp ProgramPointer) Next() (col, row int) {
	return pp.Col + pp.Dir.DX(), pp.Row + pp.Dir.DY()
}

// Step moves the pointer one cell in its current direction.
func (pp *ProgramPointer) Step() {
	pp.Col, pp.Row = pp.Next()
}

// TurnClockwise rotates the pointer a quarter turn clockwise.
func (pp *ProgramPointer) TurnClockwise() {
	pp.Dir = pp.Dir.Clockwise()
}

// TurnCounterClockwise rotates the pointer a quarter turn counter-clockwise.
func (pp *ProgramPointer) TurnCounterClockwise() {
	pp.Dir = pp.Dir.CounterClockwise()
}

func (pp ProgramPointer) String() string {
	return fmt.Sprintf("[x = %d, y = %d, dir = %s]", pp.Col, pp.Row, pp.Dir)
}
