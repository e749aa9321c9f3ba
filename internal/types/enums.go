// Package types defines the enumerations shared by the 2L interpreter,
// its loaders and its tooling.
//
// Everything here is an immutable typed constant. Rows grow upwards: moving
// Up increments the row, so row 0 is the bottom row of a program.
package types

import "fmt"

// Instruction is the tag stored in a program cell.
type Instruction uint8

// Instruction tags. Done is never stored in a grid; it is what lookups
// outside the grid report.
const (
	Noop Instruction = iota
	Data
	Turn
	Done
)

// NumStorableInstructions is the number of tags a grid cell can hold.
const NumStorableInstructions = 3

// Valid reports whether i is a known tag.
func (i Instruction) Valid() bool {
	return i <= Done
}

// Storable reports whether i may be written into a grid cell.
func (i Instruction) Storable() bool {
	return i < Done
}

// String returns the instruction mnemonic.
func (i Instruction) String() string {
	switch i {
	case Noop:
		return "NOOP"
	case Data:
		return "DATA"
	case Turn:
		return "TURN"
	case Done:
		return "DONE"
	default:
		return fmt.Sprintf("Instruction(%d)", uint8(i))
	}
}

// Dir is a compass direction of the program pointer.
type Dir uint8

// Directions in clockwise order.
const (
	Up Dir = iota
	Right
	Down
	Left
)

// NumDirs is the size of the direction space.
const NumDirs = 4

var (
	dirDX = [NumDirs]int{0, 1, 0, -1}
	dirDY = [NumDirs]int{1, 0, -1, 0}
)

// DX returns the column delta of one step in direction d.
func (d Dir) DX() int {
	return dirDX[d%NumDirs]
}

// DY returns the row delta of one step in direction d.
func (d Dir) DY() int {
	return dirDY[d%NumDirs]
}

// Clockwise returns the direction one quarter turn clockwise of d.
func (d Dir) Clockwise() Dir {
	return (d + 1) % NumDirs
}

// CounterClockwise returns the direction one quarter turn counter-clockwise of d.
func (d Dir) CounterClockwise() Dir {
	return (d + NumDirs - 1) % NumDirs
}

// String returns the direction name.
func (d Dir) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return fmt.Sprintf("Dir(%d)", uint8(d))
	}
}

// Status is the run state of a computer.
type Status uint8

// Run states. Status only moves forward until the computer is reset.
const (
	StatusReady Status = iota
	StatusRunning
	StatusDone
	StatusError
)

// Terminal reports whether no further steps can change the run.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}
