package types

import "testing"

func TestDirRotation(t *testing.T) {
	for d := Dir(0); d < NumDirs; d++ {
		if got := d.Clockwise().CounterClockwise(); got != d {
			t.Errorf("%s: Clockwise().CounterClockwise() = %s", d, got)
		}
		if got := d.Clockwise().Clockwise().Clockwise().Clockwise(); got != d {
			t.Errorf("%s: four clockwise turns = %s", d, got)
		}
	}

	tests := []struct {
		dir    Dir
		cw     Dir
		dx, dy int
	}{
		{Up, Right, 0, 1},
		{Right, Down, 1, 0},
		{Down, Left, 0, -1},
		{Left, Up, -1, 0},
	}
	for _, tt := range tests {
		if got := tt.dir.Clockwise(); got != tt.cw {
			t.Errorf("%s.Clockwise() = %s, want %s", tt.dir, got, tt.cw)
		}
		if tt.dir.DX() != tt.dx || tt.dir.DY() != tt.dy {
			t.Errorf("%s delta = (%d,%d), want (%d,%d)", tt.dir, tt.dir.DX(), tt.dir.DY(), tt.dx, tt.dy)
		}
	}
}

func TestInstruction(t *testing.T) {
	for _, ins := range []Instruction{Noop, Data, Turn} {
		if !ins.Storable() {
			t.Errorf("%s should be storable", ins)
		}
	}
	if Done.Storable() {
		t.Error("DONE should not be storable")
	}
	if Instruction(7).Valid() {
		t.Error("Instruction(7) should be invalid")
	}
	if got := Instruction(7).String(); got != "Instruction(7)" {
		t.Errorf("String() = %q", got)
	}
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusReady, false},
		{StatusRunning, false},
		{StatusDone, true},
		{StatusError, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
