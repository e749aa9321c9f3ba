// Package vm implements the 2L interpreter.
//
// A 2L program is a rectangular grid of instructions. A single program
// pointer walks the grid, mutating an unbounded tape of integers and turning
// based on the tape contents, until it leaves the grid or the tape runs out
// of capacity.
//
// The package is made of five parts:
// - Program:        the fixed-size instruction grid
// - ProgramPointer: position and direction of the execution cursor
// - Data:           the lazily grown tape
// - PathTracker:    per-edge visit counters and their ranking into heat tiers
// - Computer:       the single-step state machine composing the above
//
// A Computer is not safe for concurrent use. Callers driving one instance
// from several goroutines must serialize access themselves.
package vm

import "errors"

// Errors.
var (
	// ErrOutOfBoundsWrite is returned when an instruction edit targets a cell
	// outside the grid. The grid is left unchanged.
	ErrOutOfBoundsWrite = errors.New("instruction out of bounds")

	// ErrInvalidInstruction is returned when a tag cannot be stored in a cell.
	ErrInvalidInstruction = errors.New("invalid instruction")

	// ErrTapeCapacityExceeded is returned when the tape cannot grow any further.
	ErrTapeCapacityExceeded = errors.New("tape capacity exceeded")

	// ErrTurnLoop is reported when turn resolution fails to reach a non-turn
	// cell within one full rotation.
	ErrTurnLoop = errors.New("turn resolution did not converge")

	// ErrUnrankedVisitCount is returned when a visit count falls in no bucket.
	ErrUnrankedVisitCount = errors.New("visit count not ranked")

	// ErrInvalidDimensions is returned for non-positive grid dimensions.
	ErrInvalidDimensions = errors.New("invalid program dimensions")
)

// Defaults.
const (
	// DefaultTapeCapacity is the tape span used by the browser runner.
	DefaultTapeCapacity = 8192

	// maxTurnResolutions bounds the turn loop inside Step. The direction
	// space has four values, so a fifth consecutive turn would repeat one.
	maxTurnResolutions = 4
)
