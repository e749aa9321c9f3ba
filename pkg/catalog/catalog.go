// Package catalog provides persistent storage for named 2L programs.
//
// Programs are kept in their packed form together with a fingerprint and
// timestamps. A secondary index maps fingerprints back to names so that
// saving a program a second time under another name can be detected.
package catalog

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	bolt "go.etcd.io/bbolt"

	"github.com/erwinbonsma/2lrunner/pkg/loader"
	"github.com/erwinbonsma/2lrunner/pkg/vm"
)

var (
	// ErrProgramNotFound is returned when no program has the given name.
	ErrProgramNotFound = errors.New("program not found")

	// ErrInvalidName is returned for names that cannot be stored.
	ErrInvalidName = errors.New("invalid program name")

	// ErrClosed is returned when operating on a closed catalog.
	ErrClosed = errors.New("catalog closed")
)

// MaxNameLength bounds program names.
const MaxNameLength = 64

// Bucket names for BoltDB.
var (
	// bucketPrograms stores entries keyed by name.
	bucketPrograms = []byte("programs")

	// bucketByFingerprint holds fingerprint+name keys. The value is the
	// big-endian save time in Unix nanoseconds.
	bucketByFingerprint = []byte("by_fingerprint")
)

// fingerprintKey builds the index key for name holding a program with
// fingerprint fp.
func fingerprintKey(fp loader.Fingerprint, name string) []byte {
	key := make([]byte, loader.FingerprintSize+len(name))
	copy(key, fp[:])
	copy(key[loader.FingerprintSize:], name)
	return key
}

func encodeSaveTime(t time.Time) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(t.UnixNano()))
	return buf[:]
}

// Config holds catalog configuration options.
type Config struct {
	// Path is the database file.
	Path string

	// NoSync disables fsync after each write.
	NoSync bool

	// ReadOnly opens the database in read-only mode.
	ReadOnly bool

	// Timeout bounds the wait for the file lock.
	Timeout time.Duration
}

// DefaultConfig returns the default catalog configuration.
func DefaultConfig(path string) Config {
	return Config{
		Path:     path,
		NoSync:   false,
		ReadOnly: false,
		Timeout:  5 * time.Second,
	}
}

// Entry is a stored program.
type Entry struct {
	Name        string
	Description string

	Width       int
	Height      int
	Packed      []byte
	Fingerprint loader.Fingerprint

	Created time.Time
	Updated time.Time
}

// Program decodes the stored program.
func (e *Entry) Program() (*vm.Program, error) {
	p, err := loader.DecodePacked(e.Packed)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", e.Name, err)
	}
	return p, nil
}

// Stats contains catalog statistics.
type Stats struct {
	// ProgramCount is the number of stored programs.
	ProgramCount int

	// DatabaseSize is the size of the database file in bytes.
	DatabaseSize int64
}

// Store is a program catalog backed by BoltDB.
type Store struct {
	db     *bolt.DB
	config Config

	mu     sync.RWMutex
	closed bool
}

// Open creates or opens a catalog.
func Open(config Config) (*Store, error) {
	if !config.ReadOnly {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
	}

	opts := &bolt.Options{
		Timeout:  config.Timeout,
		NoSync:   config.NoSync,
		ReadOnly: config.ReadOnly,
	}
	db, err := bolt.Open(config.Path, 0600, opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{
		db:     db,
		config: config,
	}

	if !config.ReadOnly {
		if err := s.initBuckets(); err != nil {
			db.Close()
			return nil, fmt.Errorf("init buckets: %w", err)
		}
	}
	return s, nil
}

func (s *Store) initBuckets() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketPrograms, bucketByFingerprint} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// ValidateName checks that name is non-empty, printable and free of spaces.
func ValidateName(name string) error {
	if name == "" || len(name) > MaxNameLength {
		return fmt.Errorf("%w: length %d", ErrInvalidName, len(name))
	}
	if strings.IndexFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || !unicode.IsPrint(r)
	}) >= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func encodeEntry(e *Entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, fmt.Errorf("encode entry: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeEntry(data []byte) (*Entry, error) {
	var e Entry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&e); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}
	return &e, nil
}

// Put stores p under name, replacing any program of that name. The
// creation time of a replaced entry is kept.
func (s *Store) Put(name string, p *vm.Program, description string) (*Entry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := &Entry{
		Name:        name,
		Description: description,
		Width:       p.Width(),
		Height:      p.Height(),
		Packed:      loader.EncodePacked(p),
		Fingerprint: loader.FingerprintOf(p),
		Created:     now,
		Updated:     now,
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		programs := tx.Bucket(bucketPrograms)
		index := tx.Bucket(bucketByFingerprint)
		key := []byte(name)

		if old := programs.Get(key); old != nil {
			prev, err := decodeEntry(old)
			if err != nil {
				return err
			}
			entry.Created = prev.Created
			if err := index.Delete(fingerprintKey(prev.Fingerprint, name)); err != nil {
				return err
			}
		}

		data, err := encodeEntry(entry)
		if err != nil {
			return err
		}
		if err := programs.Put(key, data); err != nil {
			return err
		}
		return index.Put(fingerprintKey(entry.Fingerprint, name), encodeSaveTime(entry.Updated))
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Get retrieves the entry stored under name.
func (s *Store) Get(name string) (*Entry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var entry *Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPrograms)
		if b == nil {
			return ErrProgramNotFound
		}
		data := b.Get([]byte(name))
		if data == nil {
			return fmt.Errorf("%w: %q", ErrProgramNotFound, name)
		}
		var err error
		entry, err = decodeEntry(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Load retrieves and decodes the program stored under name.
func (s *Store) Load(name string) (*vm.Program, error) {
	entry, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	return entry.Program()
}

// Has reports whether a program is stored under name.
func (s *Store) Has(name string) bool {
	if s.checkOpen() != nil {
		return false
	}

	found := false
	s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketPrograms); b != nil {
			found = b.Get([]byte(name)) != nil
		}
		return nil
	})
	return found
}

// FindByFingerprint returns the most recently saved entry holding the
// program with the given fingerprint.
func (s *Store) FindByFingerprint(fp loader.Fingerprint) (*Entry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var (
		name   string
		latest uint64
		found  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketByFingerprint)
		if b == nil {
			return ErrProgramNotFound
		}
		c := b.Cursor()
		for k, v := c.Seek(fp[:]); k != nil && bytes.HasPrefix(k, fp[:]); k, v = c.Next() {
			var saved uint64
			if len(v) == 8 {
				saved = binary.BigEndian.Uint64(v)
			}
			if !found || saved >= latest {
				name = string(k[loader.FingerprintSize:])
				latest = saved
				found = true
			}
		}
		if !found {
			return fmt.Errorf("%w: fingerprint %s", ErrProgramNotFound, fp.Short())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(name)
}

// Delete removes the program stored under name.
func (s *Store) Delete(name string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		programs := tx.Bucket(bucketPrograms)
		index := tx.Bucket(bucketByFingerprint)
		key := []byte(name)

		data := programs.Get(key)
		if data == nil {
			return fmt.Errorf("%w: %q", ErrProgramNotFound, name)
		}
		entry, err := decodeEntry(data)
		if err != nil {
			return err
		}
		if err := index.Delete(fingerprintKey(entry.Fingerprint, name)); err != nil {
			return err
		}
		return programs.Delete(key)
	})
}

// List returns all entries ordered by name.
func (s *Store) List() ([]Entry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPrograms)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			entry, err := decodeEntry(v)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			entries = append(entries, *entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Stats returns catalog statistics.
func (s *Store) Stats() (*Stats, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	stats := &Stats{}
	s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketPrograms); b != nil {
			stats.ProgramCount = b.Stats().KeyN
		}
		return nil
	})

	if info, err := os.Stat(s.config.Path); err == nil {
		stats.DatabaseSize = info.Size()
	}
	return stats, nil
}

// Sync forces a sync of the database to disk.
func (s *Store) Sync() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.db.Sync()
}

// Close shuts down the catalog.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return s.db.Close()
}
