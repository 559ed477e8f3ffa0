// Package cache holds last-known server state keyed by query identity.
//
// Entries move empty -> loading -> fresh or error; successful mutations mark
// entries stale via Invalidate so the next read re-fetches. A prior value is
// retained through loading, stale and error states (stale-while-revalidate).
// Staleness is purely mutation-triggered; there is no time-based expiry.
//
// Responses are applied last-issued-wins per key: Begin hands out a sequence
// number for each fetch and Resolve discards any response whose sequence has
// been superseded. The store is not safe for concurrent use; it is meant to
// be owned by the UI event loop, with fetches delivering results back to that
// loop as messages.
package cache

import "time"

// Status is the freshness state of a cache entry.
type Status int

const (
	// StatusEmpty means the key has never been fetched.
	StatusEmpty Status = iota
	// StatusLoading means a fetch is in flight.
	StatusLoading
	// StatusFresh means the value reflects the last known server state.
	StatusFresh
	// StatusStale means a mutation invalidated the value; it is still
	// served until a refetch completes.
	StatusStale
	// StatusError means the last fetch failed.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusLoading:
		return "loading"
	case StatusFresh:
		return "fresh"
	case StatusStale:
		return "stale"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Snapshot is a read view of one entry.
type Snapshot[V any] struct {
	Value     V
	HasValue  bool
	Status    Status
	Err       error
	FetchedAt time.Time
}

type entry[V any] struct {
	value     V
	hasValue  bool
	status    Status
	err       error
	seq       uint64
	fetchedAt time.Time
}

// Store is a keyed cache for one value type.
type Store[V any] struct {
	entries map[string]*entry[V]
	seq     uint64
}

// New returns an empty store.
func New[V any]() *Store[V] {
	return &Store[V]{entries: make(map[string]*entry[V])}
}

// Get returns the current snapshot for key.
func (s *Store[V]) Get(key string) Snapshot[V] {
	e, ok := s.entries[key]
	if !ok {
		return Snapshot[V]{Status: StatusEmpty}
	}
	return Snapshot[V]{
		Value:     e.value,
		HasValue:  e.hasValue,
		Status:    e.status,
		Err:       e.err,
		FetchedAt: e.fetchedAt,
	}
}

// NeedsFetch reports whether a consumer mounting on key should issue a
// request. Loading entries return false: the in-flight fetch is shared
// (request de-duplication).
func (s *Store[V]) NeedsFetch(key string) bool {
	e, ok := s.entries[key]
	if !ok {
		return true
	}
	return e.status != StatusLoading && e.status != StatusFresh
}

// Begin marks key as loading and returns the sequence number identifying
// this fetch. Any previously issued fetch for the key is superseded. The
// prior value, if any, remains visible.
func (s *Store[V]) Begin(key string) uint64 {
	e, ok := s.entries[key]
	if !ok {
		e = &entry[V]{}
		s.entries[key] = e
	}
	s.seq++
	e.seq = s.seq
	e.status = StatusLoading
	e.err = nil
	return s.seq
}

// Resolve applies the outcome of the fetch identified by seq. It returns
// false, leaving the entry untouched, if a newer fetch for the key has been
// issued since (last-issued-wins) or the key is unknown.
func (s *Store[V]) Resolve(key string, seq uint64, value V, err error) bool {
	e, ok := s.entries[key]
	if !ok || e.seq != seq {
		return false
	}
	if err != nil {
		e.status = StatusError
		e.err = err
		return true
	}
	e.value = value
	e.hasValue = true
	e.status = StatusFresh
	e.err = nil
	e.fetchedAt = time.Now()
	return true
}

// Invalidate marks every fresh or errored entry whose key starts with prefix
// as stale and returns the number of entries affected. Loading entries keep
// loading; their in-flight response still applies (it was issued after the
// mutation's effect only if its sequence is newest, which Resolve enforces).
func (s *Store[V]) Invalidate(prefix string) int {
	n := 0
	for key, e := range s.entries {
		if !hasPrefix(key, prefix) {
			continue
		}
		if e.status == StatusFresh || e.status == StatusError {
			e.status = StatusStale
			n++
		}
	}
	return n
}

// Drop removes the entry for key. Used when the underlying entity no longer
// exists, e.g. the single-task key after delete.
func (s *Store[V]) Drop(key string) {
	delete(s.entries, key)
}

// Len returns the number of entries, for tests and diagnostics.
func (s *Store[V]) Len() int { return len(s.entries) }

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
