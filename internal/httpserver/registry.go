package httpserver

import (
	"context"
	"sync"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/store"
)

// registry keeps one Machine per live session and restores sessions from
// the store on first use after a restart. Machines save through the
// registry while they hold their own lock; mu is held across every store
// write so a deleted session is never written back.
type registry struct {
	mu    sync.RWMutex
	live  map[string]*game.Machine
	store store.Store
	deps  game.Deps
}

func newRegistry(st store.Store, deps game.Deps) *registry {
	g := &registry{live: make(map[string]*game.Machine), store: st}
	deps.Persist = g.save
	g.deps = deps
	return g
}

func (g *registry) add(s game.Session) *game.Machine {
	m := game.NewMachine(s, g.deps)
	g.mu.Lock()
	g.live[s.ID] = m
	g.mu.Unlock()
	return m
}

func (g *registry) get(ctx context.Context, id string) (*game.Machine, error) {
	g.mu.RLock()
	m := g.live[id]
	g.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	// restore under the write lock so a concurrent drop cannot be undone
	g.mu.Lock()
	defer g.mu.Unlock()
	if m := g.live[id]; m != nil {
		return m, nil
	}
	s, err := g.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	m = game.NewMachine(s, g.deps)
	g.live[id] = m
	return m, nil
}

func (g *registry) isLive(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.live[id]
	return ok
}

func (g *registry) drop(ctx context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.live, id)
	return g.store.Delete(ctx, id)
}

// save writes s unless its session was dropped. It runs to completion even
// if the request that triggered it has gone away.
func (g *registry) save(ctx context.Context, s game.Session) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.live[s.ID]; !ok {
		return nil
	}
	return g.store.Save(context.WithoutCancel(ctx), s)
}
