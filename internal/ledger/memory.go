package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process ledger. State is lost on restart.
type Memory struct {
	mu      sync.RWMutex
	records []Record
	seq     int64
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) Save(ctx context.Context, e Entry) (Record, error) {
	e, err := Validate(e)
	if err != nil {
		return Record{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	r := Record{ID: newID(), Entry: e, Seq: m.seq, CreatedAt: m.now().UTC()}
	m.records = append(m.records, r)
	return r, nil
}

func (m *Memory) Top(ctx context.Context, gameType string, limit int) ([]Record, error) {
	limit = ClampLimit(limit)
	gameType = strings.TrimSpace(gameType)
	m.mu.RLock()
	var out []Record
	for _, r := range m.records {
		if r.GameType == gameType {
			out = append(out, r)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Seq < out[j].Seq
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
