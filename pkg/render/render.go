// Package render draws a computer's state as terminal text.
//
// The program grid is drawn on a canvas with one character per cell and one
// between neighbouring cells for the edge joining them. A ring of blank
// cells around the grid holds the pointer before the first and after the
// last step. Visited edges show their heat-map rank, either as a digit or,
// on colour terminals, as a line in the palette colour of the rank.
package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"

	"github.com/erwinbonsma/2lrunner/internal/types"
	"github.com/erwinbonsma/2lrunner/pkg/vm"
)

// ErrInvalidColor is returned for palette entries that are not hex colours.
var ErrInvalidColor = errors.New("invalid palette colour")

// Options configures a Renderer.
type Options struct {
	// Profile selects the colour capability of the output. termenv.Ascii
	// draws rank digits instead of coloured edges.
	Profile termenv.Profile

	// TapeWindow is the number of addresses shown on each side of the
	// data pointer.
	TapeWindow int
}

// DefaultOptions returns plain text output with a 16 cell tape window.
func DefaultOptions() Options {
	return Options{
		Profile:    termenv.Ascii,
		TapeWindow: 8,
	}
}

// Renderer formats computer state.
type Renderer struct {
	opts Options
}

// New creates a renderer.
func New(opts Options) *Renderer {
	if opts.TapeWindow < 0 {
		opts.TapeWindow = 0
	}
	return &Renderer{opts: opts}
}

// isHexColor reports whether s has the exact "#rrggbb" form. colorful.Hex
// alone accepts trailing garbage and short digit runs.
func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

// CheckPalette verifies that every entry is a "#rrggbb" colour.
func CheckPalette(palette []string) error {
	if len(palette) == 0 {
		return fmt.Errorf("%w: empty palette", ErrInvalidColor)
	}
	for i, hex := range palette {
		if !isHexColor(hex) {
			return fmt.Errorf("%w: entry %d %q", ErrInvalidColor, i, hex)
		}
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("%w: entry %d %q", ErrInvalidColor, i, hex)
		}
	}
	return nil
}

func cellGlyph(ins types.Instruction) string {
	switch ins {
	case types.Data:
		return "o"
	case types.Turn:
		return "*"
	default:
		return "."
	}
}

func pointerGlyph(d types.Dir) string {
	switch d {
	case types.Up:
		return "^"
	case types.Right:
		return ">"
	case types.Down:
		return "v"
	default:
		return "<"
	}
}

func (r *Renderer) colored() bool {
	return r.opts.Profile != termenv.Ascii
}

// edgeGlyph draws an edge with the given visit count. line is the glyph
// used in colour mode.
func (r *Renderer) edgeGlyph(t *vm.PathTracker, count int, line string) string {
	if count == 0 {
		return " "
	}
	if r.colored() {
		hex, err := t.ColorForVisitCount(count)
		if err != nil {
			return "?"
		}
		return r.opts.Profile.String(line).Foreground(r.opts.Profile.Color(hex)).String()
	}
	rank, ok := t.RankForVisitCount(count)
	switch {
	case !ok:
		return "?"
	case rank < 10:
		return strconv.Itoa(rank)
	default:
		return "+"
	}
}

// Grid draws the program with its visited edges and the program pointer.
// The top row of the program comes first.
func (r *Renderer) Grid(c *vm.Computer) string {
	p := c.Program()
	t := c.PathTracker()
	w, h := p.Width(), p.Height()

	// Cell (col, row) lands on canvas (2*(col+1), 2*(h-row)).
	cw, ch := 2*(w+2)-1, 2*(h+2)-1
	canvas := make([][]string, ch)
	for y := range canvas {
		canvas[y] = make([]string, cw)
		for x := range canvas[y] {
			canvas[y][x] = " "
		}
	}

	for col := 0; col < w; col++ {
		for row := 0; row < h; row++ {
			cx, cy := 2*(col+1), 2*(h-row)
			canvas[cy][cx] = cellGlyph(p.Instruction(col, row))
			if col < w-1 {
				canvas[cy][cx+1] = r.edgeGlyph(t, t.HorizontalVisitCount(col, row), "-")
			}
			if row < h-1 {
				canvas[cy-1][cx] = r.edgeGlyph(t, t.VerticalVisitCount(col, row), "|")
			}
		}
	}

	pp := c.Pointer()
	if cx, cy := 2*(pp.Col+1), 2*(h-pp.Row); cx >= 0 && cx < cw && cy >= 0 && cy < ch {
		canvas[cy][cx] = pointerGlyph(pp.Dir)
	}

	var sb strings.Builder
	for _, line := range canvas {
		sb.WriteString(strings.TrimRight(strings.Join(line, ""), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Tape draws the cells around the data pointer. Addresses that were never
// reached show as '.', the current cell is bracketed.
func (r *Renderer) Tape(d *vm.Data) string {
	dp := d.DP()
	parts := make([]string, 0, 2*r.opts.TapeWindow+1)
	for addr := dp - r.opts.TapeWindow; addr <= dp+r.opts.TapeWindow; addr++ {
		var s string
		if addr < d.MinBound() || addr > d.MaxBound() {
			s = "."
		} else {
			s = strconv.Itoa(d.ValueAt(addr))
		}
		if addr == dp {
			s = "[" + s + "]"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// StatusLine summarizes the run.
func (r *Renderer) StatusLine(c *vm.Computer) string {
	line := fmt.Sprintf("step %d  %s  %s  dp=%d", c.NumSteps(), c.Status(), c.Pointer(), c.Data().DP())
	if err := c.Err(); err != nil {
		line += "  " + err.Error()
	}
	return line
}

// Legend lists the heat-map buckets with their rank glyph.
func (r *Renderer) Legend(t *vm.PathTracker) string {
	buckets := t.Buckets()
	parts := make([]string, len(buckets))
	for i, b := range buckets {
		parts[i] = fmt.Sprintf("%s %d-%d(%d)", r.edgeGlyph(t, b.MinRange, "#"), b.MinRange, b.MaxRange, b.Count)
	}
	return strings.Join(parts, "  ")
}

// Frame combines the grid, status, tape and legend.
func (r *Renderer) Frame(c *vm.Computer) string {
	var sb strings.Builder
	sb.WriteString(r.Grid(c))
	sb.WriteString(r.StatusLine(c))
	sb.WriteByte('\n')
	sb.WriteString(r.Tape(c.Data()))
	sb.WriteByte('\n')
	if legend := r.Legend(c.PathTracker()); legend != "" {
		sb.WriteString(legend)
		sb.WriteByte('\n')
	}
	return sb.String()
}
