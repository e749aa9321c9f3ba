// Package runcache memoizes run results in BadgerDB.
//
// A 2L run is fully determined by the program, the tape capacity and the
// step budget, so its summary can be reused across invocations. Entries
// are keyed by program fingerprint and both limits. Values are
// gob-encoded runner.Result records compressed with zstd.
package runcache

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"

	"github.com/erwinbonsma/2lrunner/pkg/loader"
	"github.com/erwinbonsma/2lrunner/pkg/runner"
	"github.com/erwinbonsma/2lrunner/pkg/vm"
)

var (
	// ErrNotFound is returned when no result is cached for a key.
	ErrNotFound = errors.New("result not cached")

	// ErrClosed is returned when operating on a closed cache.
	ErrClosed = errors.New("run cache closed")
)

// prefixResult is the key prefix for cached results.
// Key format: prefixResult + fingerprint (32) + capacity (8) + max steps (8)
var prefixResult = []byte{0x01}

const keySize = 1 + loader.FingerprintSize + 8 + 8

// Config contains configuration for the cache database.
type Config struct {
	// Path is the directory path for the database.
	Path string

	// InMemory runs the database in memory (for testing).
	InMemory bool

	// SyncWrites ensures writes are synced to disk.
	SyncWrites bool

	// NumCompactors is the number of compaction workers.
	NumCompactors int

	// NumMemtables is the number of memtables.
	NumMemtables int

	// ValueLogFileSize is the size of each value log file.
	ValueLogFileSize int64

	// TTL expires entries after the given duration. Zero keeps them.
	TTL time.Duration

	// Logger is an optional logger. Set to nil to disable logging.
	Logger badger.Logger
}

// DefaultConfig returns default configuration.
func DefaultConfig(path string) Config {
	return Config{
		Path:             path,
		InMemory:         false,
		SyncWrites:       false,
		NumCompactors:    2,
		NumMemtables:     2,
		ValueLogFileSize: 64 << 20, // 64MB
		TTL:              0,
		Logger:           nil, // Disable logging by default
	}
}

// Key identifies a run.
type Key struct {
	Fingerprint  loader.Fingerprint
	TapeCapacity int
	MaxSteps     uint64
}

// KeyFor builds the key of running p with the given limits.
func KeyFor(p *vm.Program, tapeCapacity int, maxSteps uint64) Key {
	return Key{
		Fingerprint:  loader.FingerprintOf(p),
		TapeCapacity: tapeCapacity,
		MaxSteps:     maxSteps,
	}
}

func (k Key) bytes() []byte {
	key := make([]byte, keySize)
	key[0] = prefixResult[0]
	n := copy(key[1:], k.Fingerprint[:]) + 1
	binary.BigEndian.PutUint64(key[n:], uint64(k.TapeCapacity))
	binary.BigEndian.PutUint64(key[n+8:], k.MaxSteps)
	return key
}

// record is the stored value.
type record struct {
	Result         runner.Result
	BudgetExceeded bool
	Stored         time.Time
}

// Stats contains cache statistics.
type Stats struct {
	Hits     uint64
	Misses   uint64
	LSMSize  int64
	VLogSize int64
}

// Cache is a BadgerDB-backed result cache.
type Cache struct {
	db       *badger.DB
	ttl      time.Duration
	inMemory bool

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	hits   atomic.Uint64
	misses atomic.Uint64

	// closed indicates if the database is closed
	closed atomic.Bool
}

// Open creates or opens a result cache.
func Open(cfg Config) (*Cache, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}

	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumCompactors(cfg.NumCompactors).
		WithNumMemtables(cfg.NumMemtables).
		WithValueLogFileSize(cfg.ValueLogFileSize).
		WithLogger(cfg.Logger)

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	db, err := badger.Open(opts)
	if err != nil {
		encoder.Close()
		decoder.Close()
		return nil, fmt.Errorf("open badger: %w", err)
	}

	return &Cache{
		db:       db,
		ttl:      cfg.TTL,
		inMemory: cfg.InMemory,
		encoder:  encoder,
		decoder:  decoder,
	}, nil
}

func (c *Cache) encode(rec *record) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return c.encoder.EncodeAll(buf.Bytes(), nil), nil
}

func (c *Cache) decode(data []byte) (*record, error) {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	var rec record
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &rec, nil
}

func (c *Cache) get(key Key) (*record, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	var rec *record
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key.bytes())
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			rec, err = c.decode(val)
			return err
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.misses.Add(1)
		}
		return nil, err
	}
	c.hits.Add(1)
	return rec, nil
}

func (c *Cache) put(key Key, rec *record) error {
	if c.closed.Load() {
		return ErrClosed
	}

	data, err := c.encode(rec)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key.bytes(), data)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Get retrieves a cached result.
func (c *Cache) Get(key Key) (*runner.Result, error) {
	rec, err := c.get(key)
	if err != nil {
		return nil, err
	}
	return &rec.Result, nil
}

// Put caches r under key.
func (c *Cache) Put(key Key, r *runner.Result) error {
	return c.put(key, &record{
		Result:         *r,
		BudgetExceeded: !r.Status.Terminal() && key.MaxSteps > 0 && r.Steps >= key.MaxSteps,
		Stored:         time.Now().UTC(),
	})
}

// Delete removes a cached result.
func (c *Cache) Delete(key Key) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key.bytes())
	})
}

// GetOrRun returns the cached result of running p, or runs it and caches
// the outcome. hit reports whether the cache answered. Cancelled runs are
// returned but not cached. A budget stop is cached and reported with
// runner.ErrStepBudgetExceeded on every lookup.
func (c *Cache) GetOrRun(ctx context.Context, p *vm.Program, tapeCapacity int, opts runner.Options) (result *runner.Result, hit bool, err error) {
	key := KeyFor(p, tapeCapacity, opts.MaxSteps)

	rec, err := c.get(key)
	switch {
	case err == nil:
		if rec.BudgetExceeded {
			return &rec.Result, true, fmt.Errorf("%w: %d steps", runner.ErrStepBudgetExceeded, opts.MaxSteps)
		}
		return &rec.Result, true, nil
	case !errors.Is(err, ErrNotFound):
		return nil, false, err
	}

	result, runErr := runner.Run(ctx, vm.NewComputer(tapeCapacity, p), opts)
	budgetExceeded := errors.Is(runErr, runner.ErrStepBudgetExceeded)
	if runErr != nil && !budgetExceeded {
		return result, false, runErr
	}

	if err := c.put(key, &record{
		Result:         *result,
		BudgetExceeded: budgetExceeded,
		Stored:         time.Now().UTC(),
	}); err != nil {
		return result, false, fmt.Errorf("cache result: %w", err)
	}
	return result, false, runErr
}

// Purge removes every cached result.
func (c *Cache) Purge() error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.db.DropAll()
}

// Count returns the number of cached results.
func (c *Cache) Count() (int, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}

	count := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefixResult
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Stats returns hit counters and database sizes.
func (c *Cache) Stats() Stats {
	lsm, vlog := c.db.Size()
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		LSMSize:  lsm,
		VLogSize: vlog,
	}
}

// RunGC runs value log garbage collection until no log file is worth
// rewriting. It returns the number of files rewritten.
func (c *Cache) RunGC() (int, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}
	if c.inMemory {
		return 0, nil
	}

	rewritten := 0
	for {
		err := c.db.RunValueLogGC(0.5)
		switch {
		case err == nil:
			rewritten++
		case errors.Is(err, badger.ErrNoRewrite):
			return rewritten, nil
		default:
			return rewritten, err
		}
	}
}

// Close closes the database.
func (c *Cache) Close() error {
	if c.closed.Swap(true) {
		return ErrClosed
	}
	c.encoder.Close()
	c.decoder.Close()
	return c.db.Close()
}
