// Package runner drives a vm.Computer outside of any user interface.
//
// Run executes a program to completion in batches, re-ranking the path
// tracker between batches and honouring both a step budget and context
// cancellation. Play replays a run at one of the interactive speeds,
// handing a snapshot to a callback on every tick.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/erwinbonsma/2lrunner/internal/types"
	"github.com/erwinbonsma/2lrunner/pkg/vm"
)

// Options configures Run.
type Options struct {
	// BatchSize is the number of steps between context checks and
	// visit-count ranking.
	BatchSize uint64

	// MaxSteps bounds the run. Zero means no bound.
	MaxSteps uint64
}

// DefaultOptions returns the options used by the command line runner.
func DefaultOptions() Options {
	return Options{
		BatchSize: 1024,
		MaxSteps:  0,
	}
}

// Result summarizes the state of a computer after a run.
type Result struct {
	Status  types.Status
	Steps   uint64
	Pointer vm.ProgramPointer

	// Fault holds the engine error message for StatusError runs.
	Fault string

	Tape        []int
	TapeMin     int // address of Tape[0]
	DP          int
	MinValue    int
	MaxValue    int
	ChangeCount uint64

	Buckets      []vm.Bucket
	VisitedEdges int

	Elapsed time.Duration
}

// Value returns the tape value at addr, zero outside the snapshot.
func (r *Result) Value(addr int) int {
	i := addr - r.TapeMin
	if i < 0 || i >= len(r.Tape) {
		return 0
	}
	return r.Tape[i]
}

// Snapshot captures the observable state of c.
func Snapshot(c *vm.Computer) *Result {
	d := c.Data()
	t := c.PathTracker()
	r := &Result{
		Status:       c.Status(),
		Steps:        c.NumSteps(),
		Pointer:      c.Pointer(),
		Tape:         d.Values(),
		TapeMin:      d.MinBound(),
		DP:           d.DP(),
		MinValue:     d.MinValue(),
		MaxValue:     d.MaxValue(),
		ChangeCount:  d.ChangeCount(),
		Buckets:      t.Buckets(),
		VisitedEdges: t.NumVisitedEdges(),
	}
	if err := c.Err(); err != nil {
		r.Fault = err.Error()
	}
	return r
}

// Run steps c until it terminates, the budget in opts runs out or ctx is
// done. The returned Result is always non-nil. The error is non-nil only
// when the run was stopped early; engine failures show up as StatusError
// in the Result.
func Run(ctx context.Context, c *vm.Computer, opts Options) (*Result, error) {
	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultOptions().BatchSize
	}
	meter := NewStepMeter(opts.MaxSteps)

	start := time.Now()
	finish := func(err error) (*Result, error) {
		c.PathTracker().RankVisitCounts()
		r := Snapshot(c)
		r.Elapsed = time.Since(start)
		return r, err
	}

	for !c.Terminated() {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		batch := meter.Allowance(opts.BatchSize)
		if batch == 0 {
			return finish(fmt.Errorf("%w: %d steps", ErrStepBudgetExceeded, meter.Limit()))
		}

		before := c.NumSteps()
		c.Run(batch)
		if err := meter.Consume(c.NumSteps() - before); err != nil {
			return finish(err)
		}
		c.PathTracker().RankVisitCounts()
	}
	return finish(nil)
}
