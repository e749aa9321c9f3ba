package vm

import (
	"fmt"

	"github.com/erwinbonsma/2lrunner/internal/types"
)

// Computer executes a Program one step at a time.
type Computer struct {
	program *Program
	data    *Data
	tracker *PathTracker
	pp      ProgramPointer

	status   types.Status
	numSteps uint64
	err      error
}

// NewComputer creates a computer for program with a tape of the given
// capacity. The program is shared, not copied: edits made between runs are
// seen by the next run.
func NewComputer(tapeCapacity int, program *Program) *Computer {
	c := &Computer{
		program: program,
		data:    NewData(tapeCapacity),
		tracker: NewPathTracker(program.Width(), program.Height()),
	}
	c.Reset()
	return c
}

// Reset restores the initial state. The program grid is kept.
func (c *Computer) Reset() {
	c.data.Reset()
	c.tracker.Reset()
	c.pp = StartPointer
	c.status = types.StatusReady
	c.numSteps = 0
	c.err = nil
}

// Program returns the program being executed.
func (c *Computer) Program() *Program {
	return c.program
}

// Data returns the tape.
func (c *Computer) Data() *Data {
	return c.data
}

// PathTracker returns the edge visit tracker.
func (c *Computer) PathTracker() *PathTracker {
	return c.tracker
}

// Pointer returns a copy of the program pointer.
func (c *Computer) Pointer() ProgramPointer {
	return c.pp
}

// Status returns the run state.
func (c *Computer) Status() types.Status {
	return c.status
}

// NumSteps returns the number of steps taken since the last reset.
func (c *Computer) NumSteps() uint64 {
	return c.numSteps
}

// Err returns the cause of a StatusError run, or nil.
func (c *Computer) Err() error {
	return c.err
}

// Terminated reports whether the run has ended.
func (c *Computer) Terminated() bool {
	return c.status.Terminal()
}

func (c *Computer) fail(err error) {
	c.status = types.StatusError
	c.err = err
}

// Step advances the pointer by one move and returns the resulting status.
//
// Turn cells are not move destinations: the pointer turns in place and
// probes the next cell in its new direction, repeatedly, until it finds a
// cell it can enter. Stepping a finished run does nothing.
func (c *Computer) Step() types.Status {
	if c.status == types.StatusReady {
		c.status = types.StatusRunning
	}
	if c.status != types.StatusRunning {
		return c.status
	}

	var (
		col, row int
		ins      types.Instruction
		turns    int
	)

	for {
		col, row = c.pp.Next()
		ins = c.program.Instruction(col, row)

		switch ins {
		case types.Noop:
		case types.Done:
			c.status = types.StatusDone
		case types.Data:
			c.execData()
		case types.Turn:
			if c.data.Value() == 0 {
				c.pp.TurnCounterClockwise()
			} else {
				c.pp.TurnClockwise()
			}
		}

		if ins != types.Turn {
			break
		}
		turns++
		if turns > maxTurnResolutions {
			// Unreachable for programs entered from a non-turn cell.
			c.fail(fmt.Errorf("%w: at (%d,%d) after %d turns", ErrTurnLoop, c.pp.Col, c.pp.Row, turns))
			return c.status
		}
	}

	// The first and last moves cross the grid boundary and have no edge.
	if c.status != types.StatusDone && c.numSteps > 0 {
		c.tracker.TrackMoveStep(c.pp)
	}
	c.pp.Col, c.pp.Row = col, row
	c.numSteps++

	return c.status
}

// execData applies a DATA instruction entered in the current direction.
func (c *Computer) execData() {
	switch c.pp.Dir {
	case types.Up:
		c.data.Inc()
	case types.Down:
		c.data.Dec()
	case types.Right:
		if err := c.data.Shr(); err != nil {
			c.fail(err)
		}
	case types.Left:
		if err := c.data.Shl(); err != nil {
			c.fail(err)
		}
	}
}

// Run steps until the run terminates or maxSteps steps have been taken in
// this call. A maxSteps of zero means no limit.
func (c *Computer) Run(maxSteps uint64) types.Status {
	for n := uint64(0); maxSteps == 0 || n < maxSteps; n++ {
		if c.Step().Terminal() {
			break
		}
	}
	return c.status
}
