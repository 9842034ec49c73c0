package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"log/slog"
)

// Store is a generic record collection backed by whichever backend the
// Selector has chosen. One Store instance owns one collection (one JSON file
// in durable mode, one slice in volatile mode).
//
// WRITE MODEL:
// Every mutation is a full-collection serialize-and-replace: read the whole
// file, modify the slice, write the whole file back. No deltas, no partial
// writes. This is the simplest storage model that supports the access
// patterns here (linear scans, append, delete-first-match) and it means a
// write either fully replaces the file or leaves it untouched.
//
// LOCKING:
// A per-collection mutex guards the entire read-modify-write cycle. Without
// it, two concurrent appends race: both read N records, both write N+1, and
// the last writer's snapshot silently discards the other's record. The mutex
// closes that lost-update hazard within the process. Cross-process writers
// are out of scope.
//
// SNAPSHOT FALLBACK:
// The in-memory slice doubles as the volatile backend AND the last known
// snapshot of the durable one. Every successful durable read refreshes it,
// so when the Selector degrades mid-flight, operations continue from the
// most recent state instead of an empty collection.
//
// Under the soft-degradation policy no operation can fail from the caller's
// perspective, so none of the methods return an error. Failures flip the
// Selector to volatile mode and the call is served from memory.
type Store[T any] struct {
	sel    *Selector
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	records []T
}

// NewStore creates a Store for the named resource file under the Selector's
// root, e.g. NewStore[model.User](sel, "users.json", logger).
func NewStore[T any](sel *Selector, filename string, logger *slog.Logger) *Store[T] {
	return &Store[T]{
		sel:    sel,
		path:   filepath.Join(sel.Root(), filename),
		logger: logger,
	}
}

// List returns the full collection from whichever backend is active.
// A durable read failure is never fatal: the last known snapshot (or an
// empty slice) is returned instead.
func (s *Store[T]) List() []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load()

	out := make([]T, len(s.records))
	copy(out, s.records)
	return out
}

// Append reads the full collection, appends the record, and writes the full
// collection back.
func (s *Store[T]) Append(record T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load()
	s.records = append(s.records, record)
	s.persist()
}

// Find returns the first record matching the predicate.
func (s *Store[T]) Find(match func(T) bool) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load()
	for _, r := range s.records {
		if match(r) {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// Delete removes the first record matching the predicate and rewrites the
// collection. Returns whether a match was found and removed.
func (s *Store[T]) Delete(match func(T) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.load()
	for i, r := range s.records {
		if match(r) {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.persist()
			return true
		}
	}
	return false
}

// load refreshes the in-memory slice from the durable backend. In volatile
// mode it is a no-op — the slice IS the collection. A read or decode failure
// degrades the Selector and keeps the current snapshot.
func (s *Store[T]) load() {
	if s.sel.VolatileMode() {
		return
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.sel.Degrade("read "+filepath.Base(s.path), err)
		return
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		// A corrupt file is treated identically to an I/O failure.
		s.sel.Degrade("decode "+filepath.Base(s.path), fmt.Errorf("decoding collection: %w", err))
		return
	}

	s.records = records
}

// persist writes the in-memory slice to the durable backend, pretty-printed.
// In volatile mode it is a no-op. A marshal or write failure degrades the
// Selector; the slice already holds the new state, so the caller's write
// survives in memory.
func (s *Store[T]) persist() {
	if s.sel.VolatileMode() {
		return
	}

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		s.sel.Degrade("encode "+filepath.Base(s.path), fmt.Errorf("encoding collection: %w", err))
		return
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.sel.Degrade("write "+filepath.Base(s.path), err)
		return
	}
}
