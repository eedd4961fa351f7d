// internal/store/memory.go
//
// In-memory implementation of Store.
//
// Characteristics:
//   - Keeps deep copies of sessions keyed by ID; callers never share state
//     with the store.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
)

var ErrNotFound = errors.New("store: session not found")

// Store persists session snapshots so games survive a restart.
// Implementations may be backed by memory (this file) or badger.
type Store interface {
	// Save persists or replaces a snapshot.
	Save(ctx context.Context, s game.Session) error

	// Get retrieves a snapshot by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (game.Session, error)

	Delete(ctx context.Context, id string) error

	// List returns every stored snapshot ordered by creation time.
	List(ctx context.Context) ([]game.Session, error)

	Close() error
}

type memory struct {
	mu       sync.RWMutex
	sessions map[string]game.Session
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]game.Session)}
}

func (m *memory) Save(ctx context.Context, s game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s.Clone(), nil
	}
	return game.Session{}, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) List(ctx context.Context) ([]game.Session, error) {
	m.mu.RLock()
	out := make([]game.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Clone())
	}
	m.mu.RUnlock()
	sortByCreation(out)
	return out, nil
}

func (m *memory) Close() error { return nil }

func sortByCreation(list []game.Session) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
