// Package loader converts 2L programs to and from their textual and binary
// representations.
//
// Supported encodings:
// - Web string:  square grid, one character per cell ('_', 'o', '*')
// - Base-27:     width and height digits followed by letters packing three cells each
// - Grid text:   one line per row, top row first, '#' starts a comment
// - Packed:      uvarint dimensions followed by two bits per cell
// - Share token: base58 of the packed form
//
// Every textual form lists the top row first, left to right. Row 0 is the
// bottom row of the program.
package loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/erwinbonsma/2lrunner/internal/types"
	"github.com/erwinbonsma/2lrunner/pkg/vm"
)

// Errors.
var (
	// ErrInvalidInstructionEncoding is returned for a character or code that
	// does not denote an instruction.
	ErrInvalidInstructionEncoding = errors.New("invalid instruction encoding")

	// ErrNotSquare is returned when a web string's length is not a square.
	ErrNotSquare = errors.New("web programs must be square")

	// ErrTruncated is returned when an encoding ends before all cells are read.
	ErrTruncated = errors.New("program encoding too short")

	// ErrInvalidDimensions is returned for unusable width or height values.
	ErrInvalidDimensions = errors.New("invalid program dimensions")

	// ErrNotRectangular is returned when grid rows differ in length.
	ErrNotRectangular = errors.New("grid rows differ in length")
)

// MaxCells bounds the size of decoded programs.
const MaxCells = 1 << 20

// Encoding identifies a textual program representation.
type Encoding string

// Encodings.
const (
	EncodingWeb    Encoding = "web"
	EncodingBase27 Encoding = "base27"
	EncodingGrid   Encoding = "grid"
	EncodingShare  Encoding = "share"
)

// Parse decodes s, picking the encoding the way the browser runner does:
// strings containing a turn ('*') are web strings, anything else base-27.
// Multi-line input is read as grid text.
func Parse(s string) (*vm.Program, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.Contains(s, "\n"):
		return ParseGrid(strings.NewReader(s))
	case strings.Contains(s, "*"):
		return ParseWebString(s)
	default:
		return ParseBase27(s)
	}
}

// ParseAs decodes s with an explicit encoding.
func ParseAs(s string, enc Encoding) (*vm.Program, error) {
	switch enc {
	case EncodingWeb:
		return ParseWebString(s)
	case EncodingBase27:
		return ParseBase27(s)
	case EncodingGrid:
		return ParseGrid(strings.NewReader(s))
	case EncodingShare:
		return ParseShareToken(s)
	default:
		return nil, fmt.Errorf("unknown encoding %q", enc)
	}
}

// Encode renders p in the given encoding.
func Encode(p *vm.Program, enc Encoding) (string, error) {
	switch enc {
	case EncodingWeb:
		return EncodeWebString(p)
	case EncodingBase27:
		return EncodeBase27(p)
	case EncodingGrid:
		return EncodeGrid(p), nil
	case EncodingShare:
		return ShareToken(p), nil
	default:
		return "", fmt.Errorf("unknown encoding %q", enc)
	}
}

// cellChar maps instructions to the web/grid characters.
func cellChar(ins types.Instruction) byte {
	switch ins {
	case types.Data:
		return 'o'
	case types.Turn:
		return '*'
	default:
		return '_'
	}
}

// charCell maps a web/grid character to its instruction.
func charCell(ch rune) (types.Instruction, bool) {
	switch ch {
	case '_', '.':
		return types.Noop, true
	case 'o':
		return types.Data, true
	case '*':
		return types.Turn, true
	default:
		return types.Noop, false
	}
}

// newProgram checks dimensions before allocating a grid.
func newProgram(width, height int) (*vm.Program, error) {
	if width <= 0 || height <= 0 || width > MaxCells/height {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return vm.NewProgram(width, height)
}

// cellSetter fills a program in text order: top row first, left to right.
type cellSetter struct {
	p        *vm.Program
	col, row int
}

func newCellSetter(p *vm.Program) *cellSetter {
	return &cellSetter{p: p, row: p.Height() - 1}
}

func (cs *cellSetter) done() bool {
	return cs.row < 0
}

func (cs *cellSetter) set(ins types.Instruction) error {
	if err := cs.p.SetInstruction(cs.col, cs.row, ins); err != nil {
		return err
	}
	cs.col++
	if cs.col == cs.p.Width() {
		cs.col = 0
		cs.row--
	}
	return nil
}

// cellsInTextOrder returns p's cells top row first, left to right.
func cellsInTextOrder(p *vm.Program) []types.Instruction {
	out := make([]types.Instruction, 0, p.Width()*p.Height())
	for row := p.Height() - 1; row >= 0; row-- {
		for col := 0; col < p.Width(); col++ {
			out = append(out, p.Instruction(col, row))
		}
	}
	return out
}
