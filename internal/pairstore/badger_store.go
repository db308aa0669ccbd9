package pairstore

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore implements Store using BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(filepath.Clean(dir))
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Close() error { return b.db.Close() }

func encodePair(st PairCount) ([]byte, error) { return json.Marshal(st) }
func decodePair(val []byte) (PairCount, error) {
	var st PairCount
	if err := json.Unmarshal(val, &st); err != nil {
		return PairCount{}, err
	}
	return st, nil
}

func (b *BadgerStore) Apply(key string, delta int64, seq int64) (bool, PairCount, error) {
	var applied bool
	var out PairCount
	err := b.db.Update(func(txn *badger.Txn) error {
		var cur PairCount
		item, err := txn.Get([]byte(key))
		if err == nil {
			v, e := item.ValueCopy(nil)
			if e != nil {
				return e
			}
			cur, e = decodePair(v)
			if e != nil {
				return e
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		if seq <= cur.LastSeq {
			applied = false
			out = cur
			return nil
		}
		cur.Count += delta
		cur.LastSeq = seq
		bytes, e := encodePair(cur)
		if e != nil {
			return e
		}
		if e = txn.Set([]byte(key), bytes); e != nil {
			return e
		}
		applied = true
		out = cur
		return nil
	})
	return applied, out, err
}

func (b *BadgerStore) Get(key string) (PairCount, bool) {
	var st PairCount
	err := b.db.View(func(txn *badger.Txn) error {
		item, e := txn.Get([]byte(key))
		if e != nil {
			return e
		}
		v, e := item.ValueCopy(nil)
		if e != nil {
			return e
		}
		var dErr error
		st, dErr = decodePair(v)
		return dErr
	})
	if err != nil {
		return PairCount{}, false
	}
	return st, true
}

func (b *BadgerStore) Range(fn func(key string, st PairCount) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			k := item.KeyCopy(nil)
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			st, err := decodePair(v)
			if err != nil {
				return err
			}
			if err := fn(string(k), st); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadAll replaces the full pair table with the provided dump.
func (b *BadgerStore) LoadAll(all map[string]PairCount) {
	_ = b.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		var keysToDelete [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			k := it.Item().KeyCopy(nil)
			keysToDelete = append(keysToDelete, k)
		}
		it.Close()
		for _, k := range keysToDelete {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		for k, st := range all {
			bytes, err := encodePair(st)
			if err != nil {
				return err
			}
			if err := txn.Set([]byte(k), bytes); err != nil {
				return err
			}
		}
		return nil
	})
}
