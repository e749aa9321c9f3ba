package loader

import (
	"fmt"
	"strings"

	"github.com/erwinbonsma/2lrunner/internal/types"
	"github.com/erwinbonsma/2lrunner/pkg/vm"
)

// Each base-27 letter packs three cells, most significant first.
const cellsPerLetter = 3

// ParseBase27 decodes a base-27 program string: a width digit, a height
// digit, then one letter ('_' for 0, 'a'-'z' for 1-26) per three cells.
// Characters past the last cell are ignored.
func ParseBase27(s string) (*vm.Program, error) {
	if len(s) < 2 {
		return nil, fmt.Errorf("%w: missing dimensions", ErrTruncated)
	}
	w, h := int(s[0]-'0'), int(s[1]-'0')
	if w < 1 || w > 9 || h < 1 || h > 9 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDimensions, s[:2])
	}

	p, err := newProgram(w, h)
	if err != nil {
		return nil, err
	}

	cs := newCellSetter(p)
	var digits []types.Instruction // pending cells, least significant first
	i := 2
	for !cs.done() {
		if len(digits) == 0 {
			if i == len(s) {
				return nil, fmt.Errorf("%w: %d characters for %dx%d cells", ErrTruncated, len(s), w, h)
			}
			val, err := base27Value(s[i])
			if err != nil {
				return nil, fmt.Errorf("%w at offset %d", err, i)
			}
			i++
			for len(digits) < cellsPerLetter {
				digits = append(digits, types.Instruction(val%types.NumStorableInstructions))
				val /= types.NumStorableInstructions
			}
		}
		ins := digits[len(digits)-1]
		digits = digits[:len(digits)-1]
		if err := cs.set(ins); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func base27Value(ch byte) (int, error) {
	switch {
	case ch == '_':
		return 0, nil
	case ch >= 'a' && ch <= 'z':
		return int(ch-'a') + 1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidInstructionEncoding, ch)
	}
}

// EncodeBase27 renders p as a base-27 string. Only programs up to 9x9 fit.
func EncodeBase27(p *vm.Program) (string, error) {
	if p.Width() > 9 || p.Height() > 9 {
		return "", fmt.Errorf("%w: %dx%d exceeds 9x9", ErrInvalidDimensions, p.Width(), p.Height())
	}

	cells := cellsInTextOrder(p)
	for len(cells)%cellsPerLetter != 0 {
		cells = append(cells, types.Noop)
	}

	var sb strings.Builder
	sb.WriteByte(byte('0' + p.Width()))
	sb.WriteByte(byte('0' + p.Height()))
	for i := 0; i < len(cells); i += cellsPerLetter {
		val := 0
		for _, ins := range cells[i : i+cellsPerLetter] {
			val = val*types.NumStorableInstructions + int(ins)
		}
		if val == 0 {
			sb.WriteByte('_')
		} else {
			sb.WriteByte(byte('a' + val - 1))
		}
	}
	return sb.String(), nil
}
