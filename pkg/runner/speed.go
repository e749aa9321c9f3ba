package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/erwinbonsma/2lrunner/pkg/vm"
)

// Run speed limits. At UnitSpeed one step is taken per tick. Each level
// below halves the step rate by waiting more ticks; each level above
// doubles the number of steps per tick.
const (
	MaxSpeed     Speed = 20
	UnitSpeed    Speed = 5
	DefaultSpeed Speed = 4

	// DefaultTick is the refresh interval of the interactive runner.
	DefaultTick = 40 * time.Millisecond
)

// Speed selects how fast Play advances a computer.
type Speed int

// Clamp limits s to [0, MaxSpeed].
func (s Speed) Clamp() Speed {
	switch {
	case s < 0:
		return 0
	case s > MaxSpeed:
		return MaxSpeed
	default:
		return s
	}
}

// Change returns the speed adjusted by delta, clamped to the valid range.
func (s Speed) Change(delta int) Speed {
	return (s + Speed(delta)).Clamp()
}

// PlayPeriod returns the number of ticks between play updates.
func (s Speed) PlayPeriod() int {
	s = s.Clamp()
	if s < UnitSpeed {
		return 1 << (UnitSpeed - s)
	}
	return 1
}

// StepsPerPlay returns the number of steps taken per play update.
func (s Speed) StepsPerPlay() int {
	s = s.Clamp()
	if s < UnitSpeed {
		return 1
	}
	return 1 << (s - UnitSpeed)
}

// FrameFunc receives a snapshot after every play update.
type FrameFunc func(*Result)

// Play advances c at the given speed, one play update every PlayPeriod
// ticks, until it terminates, takes maxSteps steps or ctx is done. A zero
// maxSteps means no limit. onFrame is called once before the first tick and
// after every update. Play returns nil when the run terminates,
// ErrStepBudgetExceeded when the limit stops it and ctx.Err() when cancelled.
func Play(ctx context.Context, c *vm.Computer, speed Speed, tick time.Duration, maxSteps uint64, onFrame FrameFunc) error {
	if tick <= 0 {
		tick = DefaultTick
	}
	if onFrame == nil {
		onFrame = func(*Result) {}
	}

	start := time.Now()
	frame := func() {
		r := Snapshot(c)
		r.Elapsed = time.Since(start)
		onFrame(r)
	}

	frame()
	if c.Terminated() {
		return nil
	}

	meter := NewStepMeter(maxSteps)
	budgetExceeded := func() error {
		return fmt.Errorf("%w: %d steps", ErrStepBudgetExceeded, meter.Limit())
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	period := speed.PlayPeriod()
	steps := uint64(speed.StepsPerPlay())
	ticksSinceLastPlay := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			ticksSinceLastPlay++
			if ticksSinceLastPlay < period {
				continue
			}
			ticksSinceLastPlay = 0

			n := meter.Allowance(steps)
			if n == 0 {
				return budgetExceeded()
			}
			before := c.NumSteps()
			c.Run(n)
			if err := meter.Consume(c.NumSteps() - before); err != nil {
				return err
			}
			c.PathTracker().RankVisitCounts()
			frame()
			if c.Terminated() {
				return nil
			}
			if meter.Enabled() && meter.Remaining() == 0 {
				return budgetExceeded()
			}
		}
	}
}
