package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
)

const sessionPrefix = "session/"

type badgerStore struct {
	db *badger.DB
}

// OpenBadger opens a badger database at path. An empty path keeps the data
// in memory only.
func OpenBadger(path string) (Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %s: %w", path, err)
	}
	return &badgerStore{db: db}, nil
}

func key(id string) []byte { return []byte(sessionPrefix + id) }

func (b *badgerStore) Save(ctx context.Context, s game.Session) error {
	val, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(s.ID), val)
	})
}

func (b *badgerStore) Get(ctx context.Context, id string) (game.Session, error) {
	var s game.Session
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &s)
		})
	})
	if err != nil {
		return game.Session{}, err
	}
	return s, nil
}

func (b *badgerStore) Delete(ctx context.Context, id string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(id))
	})
}

func (b *badgerStore) List(ctx context.Context) ([]game.Session, error) {
	var out []game.Session
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var s game.Session
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &s)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByCreation(out)
	return out, nil
}

func (b *badgerStore) Close() error { return b.db.Close() }

// Open picks the backend named by kind: "memory" or "badger".
func Open(kind, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "badger":
		return OpenBadger(path)
	}
	return nil, fmt.Errorf("store: unknown backend %q", kind)
}
