package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/nao1215/sdksniff/internal/model"
)

// Store is the deduplicated JSON detection log.
//
// Design decision: the log is a single JSON array rewritten in full on
// every accepted entry rather than an append-only JSONL stream. The file
// stays a valid document at all times, so a dashboard can re-read it at
// any moment without a partial-line parser. Capture sessions produce at
// most a few thousand entries, so rewrite cost is irrelevant.
type Store struct {
	mu sync.Mutex

	// path is the JSON log file location.
	path string

	// entries holds the accepted log entries in append order.
	entries []model.LogEntry

	// seen indexes finding fingerprints per destination domain. An entry
	// is a duplicate only when the same domain already logged the exact
	// same finding set.
	seen map[string]map[[32]byte]struct{}
}

// Open creates a Store for a new capture session. The log file is reset
// to an empty array: each session starts from a clean log, while
// historical entries live in the SQLite archive.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	s := &Store{
		path: path,
		seen: make(map[string]map[[32]byte]struct{}),
	}
	if err := s.flush(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load opens an existing log without resetting it, for read-only
// consumers such as the risk scorer. A missing or corrupt file yields an
// empty store with a warning rather than an error: scoring an absent log
// is a meaningful "no data" result, not a failure.
func Load(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		path: path,
		seen: make(map[string]map[[32]byte]struct{}),
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read detection log, treating as empty", "path", path, "error", err)
		}
		return s
	}

	var entries []model.LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Warn("detection log is not valid JSON, treating as empty", "path", path, "error", err)
		return s
	}

	s.entries = entries
	for _, entry := range entries {
		if entry.Findings != nil {
			s.index(entry)
		}
	}
	return s
}

// AppendIfNew appends the entry unless an entry with the same domain and
// an identical finding set was already logged. It reports whether the
// entry was accepted; on acceptance the log file is rewritten.
func (s *Store) AppendIfNew(entry model.LogEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fp := entry.Findings.Fingerprint()
	if _, dup := s.seen[entry.Domain][fp]; dup {
		return false, nil
	}

	s.entries = append(s.entries, entry)
	s.index(entry)

	if err := s.flush(); err != nil {
		return true, err
	}
	return true, nil
}

// Entries returns a snapshot copy of the accepted entries.
func (s *Store) Entries() []model.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.LogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of accepted entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Path returns the log file location.
func (s *Store) Path() string {
	return s.path
}

// index records the entry's fingerprint under its domain. Callers hold
// the mutex (or run before the store escapes the constructor).
func (s *Store) index(entry model.LogEntry) {
	fps, ok := s.seen[entry.Domain]
	if !ok {
		fps = make(map[[32]byte]struct{})
		s.seen[entry.Domain] = fps
	}
	fps[entry.Findings.Fingerprint()] = struct{}{}
}

// flush rewrites the full log file. Callers hold the mutex.
func (s *Store) flush() error {
	entries := s.entries
	if entries == nil {
		entries = []model.LogEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to serialize detection log: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write detection log: %w", err)
	}
	return nil
}
