package pairstore

import (
	"sync"
	"testing"
)

func TestApply_SeqRules(t *testing.T) {
	s := NewInMemoryStore()

	applied, st, err := s.Apply("all#a#b", 3, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !applied {
		t.Fatalf("first apply should apply")
	}
	if st.Count != 3 || st.LastSeq != 1 {
		t.Fatalf("unexpected state after first apply: %+v", st)
	}

	// Same or lower seq is a no-op (retried runs must not double-count)
	applied, st, err = s.Apply("all#a#b", 3, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied {
		t.Fatalf("re-apply with same seq should not apply")
	}
	if st.Count != 3 || st.LastSeq != 1 {
		t.Fatalf("state should be unchanged: %+v", st)
	}

	// Seq gaps are allowed: runs are independent batches
	applied, st, err = s.Apply("all#a#b", 2, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !applied || st.Count != 5 || st.LastSeq != 5 {
		t.Fatalf("unexpected state after gap apply: %+v", st)
	}
}

func TestGetAndRange(t *testing.T) {
	s := NewInMemoryStore()
	if _, ok := s.Get("missing"); ok {
		t.Fatalf("missing key should not be found")
	}
	if _, _, err := s.Apply("all#a#b", 1, 1); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, _, err := s.Apply("all#a#c", 2, 1); err != nil {
		t.Fatalf("apply: %v", err)
	}

	seen := map[string]int64{}
	err := s.Range(func(k string, st PairCount) error {
		seen[k] = st.Count
		return nil
	})
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(seen) != 2 || seen["all#a#b"] != 1 || seen["all#a#c"] != 2 {
		t.Fatalf("unexpected range result: %+v", seen)
	}
}

func TestLoadAll_Replaces(t *testing.T) {
	s := NewInMemoryStore()
	if _, _, err := s.Apply("stale", 1, 1); err != nil {
		t.Fatalf("apply: %v", err)
	}
	s.LoadAll(map[string]PairCount{"fresh": {Count: 7, LastSeq: 3}})

	if _, ok := s.Get("stale"); ok {
		t.Fatalf("LoadAll should drop prior contents")
	}
	st, ok := s.Get("fresh")
	if !ok || st.Count != 7 || st.LastSeq != 3 {
		t.Fatalf("unexpected loaded state: %+v", st)
	}
}

func TestInMemoryStore_ConcurrentAppliesDifferentKeys(t *testing.T) {
	s := NewInMemoryStore()
	var wg sync.WaitGroup
	keys := []string{"all#a#b", "all#a#c", "all#b#c", "all#c#d"}
	iters := 1000

	for _, k := range keys {
		k := k
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 1; i <= iters; i++ {
				if _, _, err := s.Apply(k, 1, int64(i)); err != nil {
					t.Errorf("apply err: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	for _, k := range keys {
		st, ok := s.Get(k)
		if !ok {
			t.Fatalf("missing key %s", k)
		}
		if st.Count != int64(iters) || st.LastSeq != int64(iters) {
			t.Fatalf("bad state for %s: %+v", k, st)
		}
	}
}
