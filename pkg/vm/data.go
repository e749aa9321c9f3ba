package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// Data is the tape: a conceptually infinite array of integers addressed by
// a data pointer.
//
// Cells are materialized one address at a time as the data pointer moves
// past the current bounds. The span maxBound-minBound never exceeds size;
// a move that would need more is refused with ErrTapeCapacityExceeded.
type Data struct {
	size int

	// pos holds addresses 0, 1, 2, ...; neg holds -1, -2, -3, ...
	pos []int
	neg []int

	dp       int
	minValue int
	maxValue int

	changeCount uint64
}

// NewData creates a tape whose materialized span may reach size.
func NewData(size int) *Data {
	if size < 0 {
		size = 0
	}
	d := &Data{size: size}
	d.Reset()
	return d
}

// Reset wipes the tape back to a single zero cell at address 0.
func (d *Data) Reset() {
	d.pos = append(d.pos[:0], 0)
	d.neg = d.neg[:0]
	d.dp = 0
	d.minValue = 0
	d.maxValue = 0
	d.changeCount = 0
}

// Size returns the maximum span of materialized addresses.
func (d *Data) Size() int {
	return d.size
}

// DP returns the current data pointer.
func (d *Data) DP() int {
	return d.dp
}

// MinBound returns the lowest materialized address.
func (d *Data) MinBound() int {
	return -len(d.neg)
}

// MaxBound returns the highest materialized address.
func (d *Data) MaxBound() int {
	return len(d.pos) - 1
}

// Span returns maxBound - minBound.
func (d *Data) Span() int {
	return d.MaxBound() - d.MinBound()
}

// ChangeCount increases with every mutation. Observers compare it against a
// previous reading to detect that nothing changed.
func (d *Data) ChangeCount() uint64 {
	return d.changeCount
}

// MinValue returns the lowest value any cell has held since the last reset.
func (d *Data) MinValue() int {
	return d.minValue
}

// MaxValue returns the highest value any cell has held since the last reset.
func (d *Data) MaxValue() int {
	return d.maxValue
}

// cell returns a pointer to a materialized cell.
func (d *Data) cell(addr int) *int {
	if addr >= 0 {
		return &d.pos[addr]
	}
	return &d.neg[-addr-1]
}

// Value returns the value at the data pointer.
func (d *Data) Value() int {
	return *d.cell(d.dp)
}

// ValueAt returns the value at addr. Addresses never materialized read as 0.
func (d *Data) ValueAt(addr int) int {
	if addr < d.MinBound() || addr > d.MaxBound() {
		return 0
	}
	return *d.cell(addr)
}

// Inc adds one to the value at the data pointer.
func (d *Data) Inc() {
	c := d.cell(d.dp)
	*c++
	d.changeCount++
	if *c > d.maxValue {
		d.maxValue = *c
	}
}

// Dec subtracts one from the value at the data pointer.
func (d *Data) Dec() {
	c := d.cell(d.dp)
	*c--
	d.changeCount++
	if *c < d.minValue {
		d.minValue = *c
	}
}

// Shr moves the data pointer one address to the right, materializing a zero
// cell when it passes the upper bound. On failure the pointer stays put.
func (d *Data) Shr() error {
	next := d.dp + 1
	if next > d.MaxBound() {
		if d.Span() >= d.size {
			return fmt.Errorf("%w: cannot grow to address %d (span %d)", ErrTapeCapacityExceeded, next, d.size)
		}
		d.pos = append(d.pos, 0)
	}
	d.dp = next
	d.changeCount++
	return nil
}

// Shl moves the data pointer one address to the left, materializing a zero
// cell when it passes the lower bound. On failure the pointer stays put.
func (d *Data) Shl() error {
	next := d.dp - 1
	if next < d.MinBound() {
		if d.Span() >= d.size {
			return fmt.Errorf("%w: cannot grow to address %d (span %d)", ErrTapeCapacityExceeded, next, d.size)
		}
		d.neg = append(d.neg, 0)
	}
	d.dp = next
	d.changeCount++
	return nil
}

// Values returns a copy of the materialized cells, lowest address first.
func (d *Data) Values() []int {
	out := make([]int, 0, len(d.neg)+len(d.pos))
	for i := len(d.neg) - 1; i >= 0; i-- {
		out = append(out, d.neg[i])
	}
	return append(out, d.pos...)
}

// String lists the materialized cells, with the current one in brackets.
func (d *Data) String() string {
	var sb strings.Builder
	for addr := d.MinBound(); addr <= d.MaxBound(); addr++ {
		if addr > d.MinBound() {
			sb.WriteByte(',')
		}
		v := strconv.Itoa(*d.cell(addr))
		if addr == d.dp {
			sb.WriteByte('[')
			sb.WriteString(v)
			sb.WriteByte(']')
		} else {
			sb.WriteString(v)
		}
	}
	return sb.String()
}
