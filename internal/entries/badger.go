// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package entries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ManuGH/stbbridge/internal/config"
	"github.com/dgraph-io/badger/v4"
)

const entryPrefix = "entry:"

// Badger is a Store backed by an embedded Badger database. Values are JSON.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens the database directory at path.
func OpenBadger(path string) (*Badger, error) {
	return openBadger(badger.DefaultOptions(path).WithLogger(nil))
}

func openBadger(opts badger.Options) (*Badger, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open failed: %w", err)
	}
	return &Badger{db: db}, nil
}

func (s *Badger) Put(_ context.Context, e Entry) error {
	buf, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		var conflict bool
		err := scan(txn, func(existing Entry) bool {
			if existing.ID != e.ID && existing.Provider == e.Provider && existing.Username == e.Username {
				conflict = true
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
		if conflict {
			return ErrAlreadyConfigured
		}
		return txn.Set([]byte(entryPrefix+e.ID), buf)
	})
}

func (s *Badger) Get(_ context.Context, id string) (Entry, error) {
	var out Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(entryPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entry{}, ErrNotFound
	}
	return out, err
}

func (s *Badger) Lookup(_ context.Context, provider config.Provider, username string) (Entry, error) {
	var (
		out   Entry
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		return scan(txn, func(e Entry) bool {
			if e.Provider == provider && e.Username == username {
				out, found = e, true
				return false
			}
			return true
		})
	})
	if err != nil {
		return Entry{}, err
	}
	if !found {
		return Entry{}, ErrNotFound
	}
	return out, nil
}

func (s *Badger) List(_ context.Context) ([]Entry, error) {
	out := []Entry{}
	err := s.db.View(func(txn *badger.Txn) error {
		return scan(txn, func(e Entry) bool {
			out = append(out, e)
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	sortEntries(out)
	return out, nil
}

func (s *Badger) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(entryPrefix + id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

func (s *Badger) Close() error { return s.db.Close() }

// scan visits every entry until fn returns false.
func scan(txn *badger.Txn, fn func(Entry) bool) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	prefix := []byte(entryPrefix)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var e Entry
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		}); err != nil {
			return err
		}
		if !fn(e) {
			return nil
		}
	}
	return nil
}
