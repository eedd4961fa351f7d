package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
)

func finishedSession() game.Session {
	at := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	return game.Session{
		ID:          "abc",
		Nickname:    "Ana",
		Settings:    game.Settings{Difficulty: game.DifficultyEasy, TotalRounds: 2},
		Phase:       game.PhaseCompleted,
		TotalScore:  7,
		MaxPossible: 24,
		CreatedAt:   at,
		Log: []game.LogEntry{
			{Round: 1, Category: game.CategorySong, Stage: game.StageSource, WasCorrect: true, Input: "bohemian rhapsody"},
			{Round: 1, Category: game.CategorySong, Stage: game.StageYear, Bonus: true, WasCorrect: false, Input: "no"},
			{Round: 2, Category: game.CategoryQuote, Stage: game.StageSource, WasCorrect: true, Input: "einstein"},
			{Round: 2, Category: game.CategoryQuote, Stage: game.StageYear, Bonus: true, WasCorrect: true, Input: "yes"},
		},
		Rounds: []game.RoundResult{
			{Round: 1, Category: game.CategorySong, Points: 1, MaxPoints: 6, Declined: true},
			{Round: 2, Category: game.CategoryQuote, Points: 6, MaxPoints: 18, Forfeited: false},
		},
	}
}

func TestTranscript(t *testing.T) {
	out := Transcript(finishedSession(), time.Date(2025, 6, 1, 20, 5, 0, 0, time.UTC))
	for _, want := range []string{
		"Session abc",
		"Player: Ana",
		"Round 1: SONG - 1/6 points (bonus declined)",
		"- [ok] source: \"bohemian rhapsody\"",
		"- [declined] year bonus?: \"no\"",
		"- [accepted] year bonus?: \"yes\"",
		"Round 2: QUOTE - 6/18 points",
		"Final score: 7 of 24",
		"Game ended at 2025-06-01 20:05:00",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("transcript missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[x] year bonus?") {
		t.Fatal("declined bonus marked as a wrong answer")
	}
	if strings.Contains(out, "Perfect game!") {
		t.Fatal("non-perfect game marked perfect")
	}
}

func TestExportAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results.txt")
	e := New(path)
	if err := e.ExportSession(finishedSession()); err != nil {
		t.Fatalf("first export: %v", err)
	}
	if err := e.ExportSession(finishedSession()); err != nil {
		t.Fatalf("second export: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n := strings.Count(string(b), "Legendary Lines Results"); n != 2 {
		t.Fatalf("expected 2 transcripts, got %d", n)
	}
}
