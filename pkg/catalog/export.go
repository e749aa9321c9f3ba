package catalog

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/erwinbonsma/2lrunner/pkg/loader"
)

// ErrFingerprintMismatch is returned on import when a program does not
// match the fingerprint recorded next to it.
var ErrFingerprintMismatch = errors.New("fingerprint mismatch")

// exportFile is the YAML document written by Export.
type exportFile struct {
	Programs []exportProgram `yaml:"programs"`
}

type exportProgram struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Fingerprint string `yaml:"fingerprint,omitempty"`
	Grid        string `yaml:"grid"`
}

// Export writes every program as a YAML document with grid text.
func (s *Store) Export(w io.Writer) error {
	entries, err := s.List()
	if err != nil {
		return err
	}

	doc := exportFile{Programs: make([]exportProgram, 0, len(entries))}
	for i := range entries {
		p, err := entries[i].Program()
		if err != nil {
			return err
		}
		doc.Programs = append(doc.Programs, exportProgram{
			Name:        entries[i].Name,
			Description: entries[i].Description,
			Fingerprint: entries[i].Fingerprint.String(),
			Grid:        loader.EncodeGrid(p),
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// Import reads a document written by Export. Programs whose name is
// already taken are skipped unless overwrite is set. It returns the number
// of programs stored.
func (s *Store) Import(r io.Reader, overwrite bool) (int, error) {
	var doc exportFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("decode yaml: %w", err)
	}

	stored := 0
	for _, ep := range doc.Programs {
		p, err := loader.ParseGrid(strings.NewReader(ep.Grid))
		if err != nil {
			return stored, fmt.Errorf("program %q: %w", ep.Name, err)
		}
		if ep.Fingerprint != "" {
			want, err := loader.ParseFingerprint(ep.Fingerprint)
			if err != nil {
				return stored, fmt.Errorf("program %q: %w", ep.Name, err)
			}
			if loader.FingerprintOf(p) != want {
				return stored, fmt.Errorf("%w: program %q", ErrFingerprintMismatch, ep.Name)
			}
		}
		if !overwrite && s.Has(ep.Name) {
			continue
		}
		if _, err := s.Put(ep.Name, p, ep.Description); err != nil {
			return stored, err
		}
		stored++
	}
	return stored, nil
}
