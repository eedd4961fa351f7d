package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	onDisk, err := OpenBadger(filepath.Join(t.TempDir(), "badger"))
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	inMem, err := OpenBadger("")
	if err != nil {
		t.Fatalf("open in-memory badger: %v", err)
	}
	out := map[string]Store{"memory": NewMemoryStore(), "badger": onDisk, "badger-mem": inMem}
	t.Cleanup(func() {
		for _, s := range out {
			_ = s.Close()
		}
	})
	return out
}

func sampleSession(t *testing.T, id string, created time.Time) game.Session {
	t.Helper()
	s, err := game.NewSession(id, game.Settings{TotalRounds: 3, Difficulty: game.DifficultyHard}, created)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	s.Nickname = "Ana"
	s.Phase = game.PhaseAwaitingAnswer
	s.Category = game.CategoryBook
	s.Stage = game.StageYear
	s.Phrase = &game.Phrase{Text: "Call me Ishmael.", Source: "Moby-Dick", Year: "1851", Creator: game.Creator{Role: "author", Name: "Herman Melville"}}
	s.Log = append(s.Log, game.LogEntry{Round: 1, Category: game.CategoryBook, Stage: game.StageSource, WasCorrect: true, Input: "moby dick", Timestamp: created})
	s.RoundPoints, s.TotalScore = 4, 4
	return s
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	for name, st := range stores(t) {
		in := sampleSession(t, "s1", now)
		if err := st.Save(ctx, in); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		out, err := st.Get(ctx, "s1")
		if err != nil {
			t.Fatalf("%s: get: %v", name, err)
		}
		if out.Nickname != "Ana" || out.Stage != game.StageYear || out.Phrase == nil || out.Phrase.Creator.Name != "Herman Melville" {
			t.Fatalf("%s: unexpected snapshot %+v", name, out)
		}
		if len(out.Log) != 1 || !out.Log[0].Timestamp.Equal(now) || out.Settings.Difficulty != game.DifficultyHard {
			t.Fatalf("%s: log or settings lost: %+v", name, out)
		}
	}
}

func TestGetMissing(t *testing.T) {
	for name, st := range stores(t) {
		if _, err := st.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	for name, st := range stores(t) {
		for i, id := range []string{"c", "a", "b"} {
			if err := st.Save(ctx, sampleSession(t, id, base.Add(time.Duration(i)*time.Minute))); err != nil {
				t.Fatalf("%s: save: %v", name, err)
			}
		}
		list, err := st.List(ctx)
		if err != nil {
			t.Fatalf("%s: list: %v", name, err)
		}
		if len(list) != 3 || list[0].ID != "c" || list[2].ID != "b" {
			t.Fatalf("%s: expected creation order c,a,b, got %v", name, ids(list))
		}
		if err := st.Delete(ctx, "a"); err != nil {
			t.Fatalf("%s: delete: %v", name, err)
		}
		if _, err := st.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: expected deleted session to be gone, got %v", name, err)
		}
	}
}

func TestMemoryStoreCopiesSessions(t *testing.T) {
	st := NewMemoryStore()
	s := sampleSession(t, "s1", time.Now())
	_ = st.Save(context.Background(), s)
	s.Log[0].Input = "changed"
	got, _ := st.Get(context.Background(), "s1")
	if got.Log[0].Input != "moby dick" {
		t.Fatal("store must keep its own copy")
	}
}

func TestOpenBackends(t *testing.T) {
	if _, err := Open("redis", ""); err == nil {
		t.Fatal("expected unknown backend error")
	}
	st, err := Open("badger", filepath.Join(t.TempDir(), "b"))
	if err != nil {
		t.Fatalf("badger: %v", err)
	}
	_ = st.Close()
}

func ids(list []game.Session) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.ID
	}
	return out
}
