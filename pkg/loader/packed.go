package loader

import (
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/zeebo/blake3"

	"github.com/erwinbonsma/2lrunner/internal/types"
	"github.com/erwinbonsma/2lrunner/pkg/vm"
)

const (
	bitsPerCell  = 2
	cellsPerByte = 8 / bitsPerCell
	cellMask     = 1<<bitsPerCell - 1
)

// EncodePacked serializes p as uvarint width, uvarint height and two bits
// per cell in text order, lowest bits first.
func EncodePacked(p *vm.Program) []byte {
	cells := cellsInTextOrder(p)

	buf := make([]byte, 0, 2*binary.MaxVarintLen64+(len(cells)+cellsPerByte-1)/cellsPerByte)
	buf = binary.AppendUvarint(buf, uint64(p.Width()))
	buf = binary.AppendUvarint(buf, uint64(p.Height()))

	var cur byte
	for i, ins := range cells {
		cur |= byte(ins) << (bitsPerCell * (i % cellsPerByte))
		if i%cellsPerByte == cellsPerByte-1 {
			buf = append(buf, cur)
			cur = 0
		}
	}
	if len(cells)%cellsPerByte != 0 {
		buf = append(buf, cur)
	}
	return buf
}

// DecodePacked parses the output of EncodePacked.
func DecodePacked(data []byte) (*vm.Program, error) {
	w, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, fmt.Errorf("%w: width", ErrTruncated)
	}
	data = data[n:]
	h, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, fmt.Errorf("%w: height", ErrTruncated)
	}
	data = data[n:]

	if w == 0 || h == 0 || w > MaxCells || h > MaxCells {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	p, err := newProgram(int(w), int(h))
	if err != nil {
		return nil, err
	}

	numCells := int(w) * int(h)
	want := (numCells + cellsPerByte - 1) / cellsPerByte
	if len(data) < want {
		return nil, fmt.Errorf("%w: %d bytes for %d cells", ErrTruncated, len(data), numCells)
	}
	if len(data) > want {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidInstructionEncoding, len(data)-want)
	}

	cs := newCellSetter(p)
	for i := 0; i < numCells; i++ {
		code := (data[i/cellsPerByte] >> (bitsPerCell * (i % cellsPerByte))) & cellMask
		ins := types.Instruction(code)
		if !ins.Storable() {
			return nil, fmt.Errorf("%w: code %d for cell %d", ErrInvalidInstructionEncoding, code, i)
		}
		if err := cs.set(ins); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ShareToken returns the base58 form of the packed program, suitable for
// URLs and command lines.
func ShareToken(p *vm.Program) string {
	return base58.Encode(EncodePacked(p))
}

// ParseShareToken decodes a token produced by ShareToken.
func ParseShareToken(token string) (*vm.Program, error) {
	data, err := base58.Decode(token)
	if err != nil {
		return nil, fmt.Errorf("base58 decode: %w", err)
	}
	return DecodePacked(data)
}

// FingerprintSize is the length of a program fingerprint in bytes.
const FingerprintSize = 32

// Fingerprint identifies a program by the blake3 hash of its packed form.
type Fingerprint [FingerprintSize]byte

// FingerprintOf computes the fingerprint of p.
func FingerprintOf(p *vm.Program) Fingerprint {
	return blake3.Sum256(EncodePacked(p))
}

// ParseFingerprint parses the base58 form of a fingerprint.
func ParseFingerprint(s string) (Fingerprint, error) {
	var f Fingerprint
	data, err := base58.Decode(s)
	if err != nil {
		return f, fmt.Errorf("base58 decode: %w", err)
	}
	if len(data) != FingerprintSize {
		return f, fmt.Errorf("fingerprint must be %d bytes, got %d", FingerprintSize, len(data))
	}
	copy(f[:], data)
	return f, nil
}

// String returns the base58-encoded representation.
func (f Fingerprint) String() string {
	return base58.Encode(f[:])
}

// Short returns the first characters of the base58 form.
func (f Fingerprint) Short() string {
	s := f.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
