package loader

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/erwinbonsma/2lrunner/pkg/vm"
)

// ParseWebString decodes a square program with one character per cell.
func ParseWebString(s string) (*vm.Program, error) {
	n := len(s)
	size := int(math.Round(math.Sqrt(float64(n))))
	if n == 0 || size*size != n {
		return nil, fmt.Errorf("%w: length %d", ErrNotSquare, n)
	}

	p, err := newProgram(size, size)
	if err != nil {
		return nil, err
	}
	cs := newCellSetter(p)
	for i, ch := range s {
		ins, ok := charCell(ch)
		if !ok {
			return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidInstructionEncoding, ch, i)
		}
		if err := cs.set(ins); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// EncodeWebString renders a square program as a web string.
func EncodeWebString(p *vm.Program) (string, error) {
	if p.Width() != p.Height() {
		return "", fmt.Errorf("%w: %dx%d", ErrNotSquare, p.Width(), p.Height())
	}
	cells := cellsInTextOrder(p)
	buf := make([]byte, len(cells))
	for i, ins := range cells {
		buf[i] = cellChar(ins)
	}
	return string(buf), nil
}

// ParseGrid reads one row per line, top row first. Blank lines and text
// after '#' are ignored. All rows must have the same length.
func ParseGrid(r io.Reader) (*vm.Program, error) {
	var rows []string

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(rows) > 0 && len(line) != len(rows[0]) {
			return nil, fmt.Errorf("%w: line %d has %d cells, want %d", ErrNotRectangular, lineNo, len(line), len(rows[0]))
		}
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty grid", ErrInvalidDimensions)
	}

	p, err := newProgram(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}
	cs := newCellSetter(p)
	for i, line := range rows {
		for j, ch := range line {
			ins, ok := charCell(ch)
			if !ok {
				return nil, fmt.Errorf("%w: %q in row %d, column %d", ErrInvalidInstructionEncoding, ch, i, j)
			}
			if err := cs.set(ins); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

// EncodeGrid renders p as grid text, one newline-terminated line per row.
func EncodeGrid(p *vm.Program) string {
	var sb strings.Builder
	sb.Grow((p.Width() + 1) * p.Height())
	for i, ins := range cellsInTextOrder(p) {
		sb.WriteByte(cellChar(ins))
		if (i+1)%p.Width() == 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
