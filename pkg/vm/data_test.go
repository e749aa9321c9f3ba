package vm

import (
	"errors"
	"testing"
)

// TestDataInitialState tests a fresh tape.
func TestDataInitialState(t *testing.T) {
	d := NewData(16)
	if d.Value() != 0 || d.DP() != 0 {
		t.Errorf("Value() = %d, DP() = %d, want 0, 0", d.Value(), d.DP())
	}
	if d.MinBound() != 0 || d.MaxBound() != 0 {
		t.Errorf("bounds = [%d,%d], want [0,0]", d.MinBound(), d.MaxBound())
	}
	if d.String() != "[0]" {
		t.Errorf("String() = %q, want %q", d.String(), "[0]")
	}
}

// TestDataValueAtFarAddresses tests that unmaterialized addresses read as zero.
func TestDataValueAtFarAddresses(t *testing.T) {
	d := NewData(4)
	d.Inc()
	for _, addr := range []int{-1, 1, 5, -5, 1 << 40, -(1 << 40)} {
		if v := d.ValueAt(addr); v != 0 {
			t.Errorf("ValueAt(%d) = %d, want 0", addr, v)
		}
	}
	if v := d.ValueAt(0); v != 1 {
		t.Errorf("ValueAt(0) = %d, want 1", v)
	}
}

// TestDataIncDec tests value changes and the tracked extremes.
func TestDataIncDec(t *testing.T) {
	d := NewData(4)
	d.Inc()
	d.Inc()
	d.Dec()
	d.Dec()
	d.Dec()

	if d.Value() != -1 {
		t.Errorf("Value() = %d, want -1", d.Value())
	}
	if d.MaxValue() != 2 || d.MinValue() != -1 {
		t.Errorf("extremes = [%d,%d], want [-1,2]", d.MinValue(), d.MaxValue())
	}
	if d.ChangeCount() != 5 {
		t.Errorf("ChangeCount() = %d, want 5", d.ChangeCount())
	}
}

// TestDataGrowth tests lazy growth in both directions.
func TestDataGrowth(t *testing.T) {
	d := NewData(100)

	d.Inc()
	if err := d.Shr(); err != nil {
		t.Fatalf("Shr() failed: %v", err)
	}
	d.Inc()
	d.Inc()
	for i := 0; i < 3; i++ {
		if err := d.Shl(); err != nil {
			t.Fatalf("Shl() failed: %v", err)
		}
	}
	d.Dec()

	if d.MinBound() != -2 || d.MaxBound() != 1 {
		t.Errorf("bounds = [%d,%d], want [-2,1]", d.MinBound(), d.MaxBound())
	}
	if d.String() != "[-1],0,1,2" {
		t.Errorf("String() = %q, want %q", d.String(), "[-1],0,1,2")
	}
	want := []int{-1, 0, 1, 2}
	got := d.Values()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values() = %v, want %v", got, want)
		}
	}
}

// TestDataCapacity tests that growth stops once the span reaches the size.
func TestDataCapacity(t *testing.T) {
	d := NewData(2)

	for i := 0; i < 2; i++ {
		if err := d.Shr(); err != nil {
			t.Fatalf("Shr() #%d failed: %v", i, err)
		}
	}
	changes := d.ChangeCount()

	if err := d.Shr(); !errors.Is(err, ErrTapeCapacityExceeded) {
		t.Fatalf("Shr() = %v, want ErrTapeCapacityExceeded", err)
	}
	if d.DP() != 2 {
		t.Errorf("DP() = %d after refused move, want 2", d.DP())
	}
	if d.Span() != 2 {
		t.Errorf("Span() = %d, want 2", d.Span())
	}
	if d.ChangeCount() != changes {
		t.Errorf("ChangeCount() = %d after refused move, want %d", d.ChangeCount(), changes)
	}

	// Moving inside the materialized range needs no growth.
	for i := 0; i < 2; i++ {
		if err := d.Shl(); err != nil {
			t.Fatalf("Shl() inside bounds failed: %v", err)
		}
	}
	if err := d.Shl(); !errors.Is(err, ErrTapeCapacityExceeded) {
		t.Errorf("Shl() = %v, want ErrTapeCapacityExceeded", err)
	}
	if d.MaxBound()-d.MinBound() > d.Size() {
		t.Errorf("span %d exceeds size %d", d.MaxBound()-d.MinBound(), d.Size())
	}
}

// TestDataZeroCapacity tests a tape that can never grow.
func TestDataZeroCapacity(t *testing.T) {
	d := NewData(0)
	if err := d.Shl(); !errors.Is(err, ErrTapeCapacityExceeded) {
		t.Errorf("Shl() = %v, want ErrTapeCapacityExceeded", err)
	}
	if err := d.Shr(); !errors.Is(err, ErrTapeCapacityExceeded) {
		t.Errorf("Shr() = %v, want ErrTapeCapacityExceeded", err)
	}
	d.Inc()
	if d.Value() != 1 {
		t.Errorf("Value() = %d, want 1", d.Value())
	}
}

// TestDataReset tests that reset wipes values and bounds.
func TestDataReset(t *testing.T) {
	d := NewData(8)
	d.Inc()
	_ = d.Shl()
	d.Dec()
	_ = d.Shr()
	_ = d.Shr()

	d.Reset()

	if d.MinBound() != 0 || d.MaxBound() != 0 || d.DP() != 0 {
		t.Errorf("after Reset bounds = [%d,%d], dp = %d", d.MinBound(), d.MaxBound(), d.DP())
	}
	if d.ValueAt(-1) != 0 || d.Value() != 0 {
		t.Error("values survived Reset")
	}
	if d.ChangeCount() != 0 || d.MinValue() != 0 || d.MaxValue() != 0 {
		t.Error("counters survived Reset")
	}
}
