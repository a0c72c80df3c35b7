package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keySettings       = "settings"
	keyStats          = "stats"
	prefixAnalysis    = "analysis/"
	defaultListLength = 50
)

// ErrNotFound is returned when no analysis is stored for a position.
var ErrNotFound = errors.New("storage: not found")

// Settings are the engine options that survive restarts.
type Settings struct {
	HashMB       int           `json:"hash_mb"`
	MaxDepth     int           `json:"max_depth"`
	MoveOverhead time.Duration `json:"move_overhead"`
	EvalMaterial int           `json:"eval_material"`
	EvalCenter   int           `json:"eval_center"`
	OwnBook      bool          `json:"own_book"`
	BookPath     string        `json:"book_path"`
}

// Analysis is the outcome of one search, keyed by the position's FEN.
type Analysis struct {
	FEN      string        `json:"fen"`
	BestMove string        `json:"best_move"`
	PV       []string      `json:"pv"`
	Score    float64       `json:"score"`
	Depth    int           `json:"depth"`
	Nodes    uint64        `json:"nodes"`
	Time     time.Duration `json:"time"`
	At       time.Time     `json:"at"`
}

// Stats accumulates over every recorded search.
type Stats struct {
	Searches  int           `json:"searches"`
	Nodes     uint64        `json:"nodes"`
	TotalTime time.Duration `json:"total_time"`
	Deepest   int           `json:"deepest"`
}

// NodesPerSecond returns the average search speed.
func (s *Stats) NodesPerSecond() float64 {
	if s.TotalTime <= 0 {
		return 0
	}
	return float64(s.Nodes) / s.TotalTime.Seconds()
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens (creating if needed) the database in dir. An empty dir selects
// the platform data directory.
func Open(dir string) (*Storage, error) {
	if dir == "" {
		var err error
		if dir, err = GetDatabaseDir(); err != nil {
			return nil, fmt.Errorf("database dir: %w", err)
		}
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging
	return open(opts)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Storage, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSettings stores the engine settings.
func (s *Storage) SaveSettings(set *Settings) error {
	return s.put(keySettings, set)
}

// LoadSettings returns the stored settings and whether any were stored.
func (s *Storage) LoadSettings() (*Settings, bool, error) {
	set := &Settings{}
	found, err := s.get(keySettings, set)
	return set, found, err
}

// RecordAnalysis stores a search result and folds it into the statistics.
// A stored analysis of the same position is only replaced by one at least
// as deep.
func (s *Storage) RecordAnalysis(a *Analysis) error {
	if a.At.IsZero() {
		a.At = time.Now()
	}
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(prefixAnalysis + a.FEN)
		var old Analysis
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			old.Depth = -1
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &old)
			}); err != nil {
				return err
			}
		}
		if a.Depth >= old.Depth {
			if err := txn.Set(key, data); err != nil {
				return err
			}
		}

		stats := &Stats{}
		if err := txnGet(txn, keyStats, stats); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		stats.Searches++
		stats.Nodes += a.Nodes
		stats.TotalTime += a.Time
		stats.Deepest = max(stats.Deepest, a.Depth)
		statsData, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), statsData)
	})
}

// LookupAnalysis returns the stored analysis of fen, or ErrNotFound.
func (s *Storage) LookupAnalysis(fen string) (*Analysis, error) {
	a := &Analysis{}
	found, err := s.get(prefixAnalysis+fen, a)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, fen)
	}
	return a, nil
}

// Analyses returns up to limit stored analyses in key order. A limit of 0
// or less means a default page.
func (s *Storage) Analyses(limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = defaultListLength
	}
	var out []Analysis
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixAnalysis)
		for it.Seek(prefix); it.ValidForPrefix(prefix) && len(out) < limit; it.Next() {
			var a Analysis
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &a)
			}); err != nil {
				return err
			}
			out = append(out, a)
		}
		return nil
	})
	return out, err
}

// LoadStats loads search statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*Stats, error) {
	stats := &Stats{}
	_, err := s.get(keyStats, stats)
	return stats, err
}

func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (s *Storage) get(key string, v any) (bool, error) {
	found := true
	err := s.db.View(func(txn *badger.Txn) error {
		err := txnGet(txn, key, v)
		if errors.Is(err, badger.ErrKeyNotFound) {
			found = false
			return nil
		}
		return err
	})
	return found, err
}

func txnGet(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}
