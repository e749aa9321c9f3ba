package runner

import (
	"errors"
	"sync/atomic"
)

var (
	// ErrStepBudgetExceeded is returned when a run uses up its step budget
	// before terminating.
	ErrStepBudgetExceeded = errors.New("step budget exceeded")
)

// StepMeter tracks how many interpreter steps a run may still take.
type StepMeter struct {
	remaining uint64
	consumed  uint64
	limit     uint64
	disabled  bool
}

// NewStepMeter creates a meter allowing limit steps. A zero limit disables
// metering.
func NewStepMeter(limit uint64) *StepMeter {
	if limit == 0 {
		return NewStepMeterDisabled()
	}
	return &StepMeter{
		remaining: limit,
		limit:     limit,
	}
}

// NewStepMeterDisabled creates a meter that never runs out.
func NewStepMeterDisabled() *StepMeter {
	return &StepMeter{disabled: true}
}

// Consume records n steps. Returns ErrStepBudgetExceeded if fewer than n
// steps remain, in which case the budget is drained.
func (m *StepMeter) Consume(n uint64) error {
	if m.disabled {
		atomic.AddUint64(&m.consumed, n)
		return nil
	}

	for {
		remaining := atomic.LoadUint64(&m.remaining)
		if remaining < n {
			if atomic.CompareAndSwapUint64(&m.remaining, remaining, 0) {
				atomic.AddUint64(&m.consumed, remaining)
				return ErrStepBudgetExceeded
			}
			continue
		}
		if atomic.CompareAndSwapUint64(&m.remaining, remaining, remaining-n) {
			atomic.AddUint64(&m.consumed, n)
			return nil
		}
	}
}

// Allowance returns how many of the next n steps fit in the budget.
func (m *StepMeter) Allowance(n uint64) uint64 {
	if m.disabled {
		return n
	}
	if remaining := m.Remaining(); remaining < n {
		return remaining
	}
	return n
}

// Remaining returns the steps left. Disabled meters report zero.
func (m *StepMeter) Remaining() uint64 {
	return atomic.LoadUint64(&m.remaining)
}

// Consumed returns the steps recorded so far.
func (m *StepMeter) Consumed() uint64 {
	return atomic.LoadUint64(&m.consumed)
}

// Limit returns the budget. Zero for disabled meters.
func (m *StepMeter) Limit() uint64 {
	return m.limit
}

// Enabled reports whether the meter enforces a budget.
func (m *StepMeter) Enabled() bool {
	return !m.disabled
}

// IsExhausted returns true if an enabled meter has no steps left.
func (m *StepMeter) IsExhausted() bool {
	return !m.disabled && atomic.LoadUint64(&m.remaining) == 0
}

// Reset restores the full budget.
func (m *StepMeter) Reset() {
	atomic.StoreUint64(&m.remaining, m.limit)
	atomic.StoreUint64(&m.consumed, 0)
}
