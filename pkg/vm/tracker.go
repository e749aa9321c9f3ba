package vm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/erwinbonsma/2lrunner/internal/types"
)

// DefaultPalette holds the heat-map colours, coolest first.
var DefaultPalette = []string{
	"#0000FF", "#6A00FF", "#D500FF", "#FF00BD", "#FF0052", "#FF1800", "#FF8300", "#FFFF00",
}

// Bucket groups the visit counts in [MinRange, MaxRange]. Count is the number
// of edges whose visit count fell in the range when the buckets were built.
type Bucket struct {
	MinRange int
	MaxRange int
	Count    int
}

func (b Bucket) contains(count int) bool {
	return count >= b.MinRange && count <= b.MaxRange
}

// PathTracker counts how often the pointer crossed each edge of the grid and
// ranks those counts into a small number of tiers for display.
//
// horizontal[x][y] counts crossings between (x,y) and (x+1,y); vertical[x][y]
// counts crossings between (x,y) and (x,y+1).
type PathTracker struct {
	width  int
	height int

	horizontal []int // (width-1) x height, index x*height + y
	vertical   []int // width x (height-1), index x*(height-1) + y

	buckets []Bucket
	palette []string
}

// NewPathTracker creates a tracker for a width x height grid.
func NewPathTracker(width, height int) *PathTracker {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &PathTracker{
		width:      width,
		height:     height,
		horizontal: make([]int, (width-1)*height),
		vertical:   make([]int, width*(height-1)),
		palette:    DefaultPalette,
	}
}

// Reset zeroes all counters and drops the ranking.
func (t *PathTracker) Reset() {
	clear(t.horizontal)
	clear(t.vertical)
	t.buckets = t.buckets[:0]
}

// SetPalette replaces the colours used by ColorForVisitCount. An empty
// palette restores DefaultPalette.
func (t *PathTracker) SetPalette(palette []string) {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	t.palette = palette
}

// Palette returns the colours in use.
func (t *PathTracker) Palette() []string {
	return t.palette
}

func (t *PathTracker) horizontalIndex(x, y int) (int, bool) {
	if x < 0 || x >= t.width-1 || y < 0 || y >= t.height {
		return 0, false
	}
	return x*t.height + y, true
}

func (t *PathTracker) verticalIndex(x, y int) (int, bool) {
	if x < 0 || x >= t.width || y < 0 || y >= t.height-1 {
		return 0, false
	}
	return x*(t.height-1) + y, true
}

// TrackMoveStep records the edge the pointer is about to cross. It must be
// called with the pointer state from before the move. Moves across the grid
// boundary have no edge and are ignored.
func (t *PathTracker) TrackMoveStep(pp ProgramPointer) {
	var (
		idx int
		ok  bool
	)
	switch pp.Dir {
	case types.Up:
		if idx, ok = t.verticalIndex(pp.Col, pp.Row); ok {
			t.vertical[idx]++
		}
	case types.Down:
		if idx, ok = t.verticalIndex(pp.Col, pp.Row-1); ok {
			t.vertical[idx]++
		}
	case types.Right:
		if idx, ok = t.horizontalIndex(pp.Col, pp.Row); ok {
			t.horizontal[idx]++
		}
	case types.Left:
		if idx, ok = t.horizontalIndex(pp.Col-1, pp.Row); ok {
			t.horizontal[idx]++
		}
	}
}

// HorizontalVisitCount returns the crossings of the edge right of (x,y).
func (t *PathTracker) HorizontalVisitCount(x, y int) int {
	if idx, ok := t.horizontalIndex(x, y); ok {
		return t.horizontal[idx]
	}
	return 0
}

// VerticalVisitCount returns the crossings of the edge above (x,y).
func (t *PathTracker) VerticalVisitCount(x, y int) int {
	if idx, ok := t.verticalIndex(x, y); ok {
		return t.vertical[idx]
	}
	return 0
}

// NumVisitedEdges returns how many edges have a non-zero count.
func (t *PathTracker) NumVisitedEdges() int {
	n := 0
	for _, c := range t.horizontal {
		if c > 0 {
			n++
		}
	}
	for _, c := range t.vertical {
		if c > 0 {
			n++
		}
	}
	return n
}

// RankVisitCounts rebuilds the bucket list from the current counters. It
// must be called after a batch of steps and before querying ranks or colours.
func (t *PathTracker) RankVisitCounts() {
	t.buckets = t.buckets[:0]

	for x := 0; x < t.width; x++ {
		for y := 0; y < t.height; y++ {
			if idx, ok := t.horizontalIndex(x, y); ok {
				t.registerVisitCount(t.horizontal[idx])
			}
			if idx, ok := t.verticalIndex(x, y); ok {
				t.registerVisitCount(t.vertical[idx])
			}
		}
	}

	t.collapseBuckets()
}

// registerVisitCount adds one observation of count to the bucket list,
// keeping it sorted by range.
func (t *PathTracker) registerVisitCount(count int) {
	if count == 0 {
		return
	}

	i := sort.Search(len(t.buckets), func(i int) bool {
		return t.buckets[i].MaxRange >= count
	})

	if i < len(t.buckets) {
		b := &t.buckets[i]
		switch {
		case b.MinRange <= count:
			b.Count++
			return
		case count == b.MinRange-1:
			b.MinRange = count
			b.Count++
			return
		case count == b.MaxRange+1:
			b.MaxRange = count
			b.Count++
			return
		}
	}

	t.buckets = append(t.buckets, Bucket{})
	copy(t.buckets[i+1:], t.buckets[i:])
	t.buckets[i] = Bucket{MinRange: count, MaxRange: count, Count: 1}
}

// collapseBuckets merges every bucket whose range touches or overlaps its
// predecessor's.
func (t *PathTracker) collapseBuckets() {
	if len(t.buckets) == 0 {
		return
	}
	out := t.buckets[:1]
	for _, b := range t.buckets[1:] {
		prev := &out[len(out)-1]
		if b.MinRange-prev.MaxRange <= 1 {
			if b.MaxRange > prev.MaxRange {
				prev.MaxRange = b.MaxRange
			}
			prev.Count += b.Count
			continue
		}
		out = append(out, b)
	}
	t.buckets = out
}

// Buckets returns a copy of the current ranking, lowest range first.
func (t *PathTracker) Buckets() []Bucket {
	out := make([]Bucket, len(t.buckets))
	copy(out, t.buckets)
	return out
}

// NumBuckets returns the number of ranked tiers.
func (t *PathTracker) NumBuckets() int {
	return len(t.buckets)
}

// RankForVisitCount returns the zero-based position of the bucket holding
// count. ok is false when no bucket holds it.
func (t *PathTracker) RankForVisitCount(count int) (rank int, ok bool) {
	i := sort.Search(len(t.buckets), func(i int) bool {
		return t.buckets[i].MaxRange >= count
	})
	if i < len(t.buckets) && t.buckets[i].contains(count) {
		return i, true
	}
	return -1, false
}

// ColorForVisitCount maps count to a palette colour. Ranks beyond the
// palette share its last colour.
func (t *PathTracker) ColorForVisitCount(count int) (string, error) {
	rank, ok := t.RankForVisitCount(count)
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnrankedVisitCount, count)
	}
	if rank >= len(t.palette) {
		rank = len(t.palette) - 1
	}
	return t.palette[rank], nil
}

// Dump describes the buckets as "min-max(count)" items.
func (t *PathTracker) Dump() string {
	parts := make([]string, len(t.buckets))
	for i, b := range t.buckets {
		parts[i] = fmt.Sprintf("%d-%d(%d)", b.MinRange, b.MaxRange, b.Count)
	}
	return strings.Join(parts, " ")
}
