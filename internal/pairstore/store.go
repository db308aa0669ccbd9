package pairstore

import (
	"fmt"
	"sync"
)

// PairCount is the accumulated co-occurrence state for one pair key.
// LastSeq is the id of the last analysis run applied to this key: applying
// the same run twice is a no-op, so incremental mining is safe to retry.
type PairCount struct {
	Count   int64
	LastSeq int64
}

// Store abstracts the pair-count backend. Accumulation is plain addition,
// so merging shard results is commutative and associative: merge order
// never changes final counts.
type Store interface {
	Apply(key string, delta int64, seq int64) (applied bool, st PairCount, err error)
	Get(key string) (PairCount, bool)
	Range(fn func(key string, st PairCount) error) error
	LoadAll(all map[string]PairCount)
}

// InMemoryStore is a simple thread-safe map store.
type InMemoryStore struct {
	mu   sync.RWMutex
	data map[string]PairCount
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{data: make(map[string]PairCount)}
}

// LoadAll replaces the store contents with the provided dump.
func (s *InMemoryStore) LoadAll(all map[string]PairCount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]PairCount, len(all))
	for k, v := range all {
		s.data[k] = v
	}
}

func (s *InMemoryStore) Apply(key string, delta int64, seq int64) (bool, PairCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.data[key]
	if seq <= st.LastSeq {
		return false, st, nil
	}
	st.Count += delta
	st.LastSeq = seq
	s.data[key] = st
	return true, st, nil
}

func (s *InMemoryStore) Get(key string) (PairCount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.data[key]
	return st, ok
}

func (s *InMemoryStore) Range(fn func(key string, st PairCount) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, v := range s.data {
		if err := fn(k, v); err != nil {
			return fmt.Errorf("range callback failed: %w", err)
		}
	}
	return nil
}
