package pairstore

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"
)

// PebbleStore implements Store using PebbleDB. Suited to pair tables that
// outgrow memory when mining large multi-month exports incrementally.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(dir string) (*PebbleStore, error) {
	d, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: d}, nil
}

func (p *PebbleStore) Close() error { return p.db.Close() }

func encodePebblePair(st PairCount) ([]byte, error) { return json.Marshal(st) }
func decodePebblePair(val []byte) (PairCount, error) {
	var st PairCount
	if err := json.Unmarshal(val, &st); err != nil {
		return PairCount{}, err
	}
	return st, nil
}

func (p *PebbleStore) Apply(key string, delta int64, seq int64) (bool, PairCount, error) {
	k := []byte(key)
	var cur PairCount
	v, closer, err := p.db.Get(k)
	if err == nil {
		cur, err = decodePebblePair(v)
		_ = closer.Close()
		if err != nil {
			return false, PairCount{}, err
		}
	} else if err != pebble.ErrNotFound {
		return false, PairCount{}, err
	}
	if seq <= cur.LastSeq {
		return false, cur, nil
	}
	cur.Count += delta
	cur.LastSeq = seq
	bytes, err := encodePebblePair(cur)
	if err != nil {
		return false, PairCount{}, err
	}
	if err := p.db.Set(k, bytes, pebble.NoSync); err != nil {
		return false, PairCount{}, err
	}
	return true, cur, nil
}

func (p *PebbleStore) Get(key string) (PairCount, bool) {
	v, closer, err := p.db.Get([]byte(key))
	if err != nil {
		return PairCount{}, false
	}
	defer closer.Close()
	st, e := decodePebblePair(v)
	if e != nil {
		return PairCount{}, false
	}
	return st, true
}

func (p *PebbleStore) Range(fn func(key string, st PairCount) error) error {
	it, _ := p.db.NewIter(nil)
	defer it.Close()
	for it.First(); it.Valid(); it.Next() {
		k := append([]byte(nil), it.Key()...)
		v := append([]byte(nil), it.Value()...)
		st, err := decodePebblePair(v)
		if err != nil {
			return err
		}
		if err := fn(string(k), st); err != nil {
			return err
		}
	}
	return nil
}

// LoadAll replaces the full pair table with the provided dump.
func (p *PebbleStore) LoadAll(all map[string]PairCount) {
	var toDelete [][]byte
	it, _ := p.db.NewIter(nil)
	for it.First(); it.Valid(); it.Next() {
		k := append([]byte(nil), it.Key()...)
		toDelete = append(toDelete, k)
	}
	it.Close()
	if len(toDelete) > 0 {
		wb := p.db.NewBatch()
		for _, k := range toDelete {
			_ = wb.Delete(k, nil)
		}
		_ = wb.Commit(pebble.NoSync)
		_ = wb.Close()
	}
	if len(all) > 0 {
		wb := p.db.NewBatch()
		for k, st := range all {
			bytes, err := encodePebblePair(st)
			if err != nil {
				continue
			}
			_ = wb.Set([]byte(k), bytes, nil)
		}
		_ = wb.Commit(pebble.NoSync)
		_ = wb.Close()
	}
}
