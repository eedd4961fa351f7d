package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/export"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/judge"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/ledger"
)

type quoteSource struct{}

func (quoteSource) FetchPhrase(context.Context, game.PhraseRequest) (game.Phrase, error) {
	return game.Phrase{Text: "I think, therefore I am.", Source: "René Descartes", Year: "1637"}, nil
}

func newPlayer(t *testing.T, rounds int, out *bytes.Buffer) (*player, *[]time.Duration) {
	t.Helper()
	sess, err := game.NewSession("cli", game.Settings{TotalRounds: rounds}, time.Now())
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	led := ledger.NewMemory()
	var slept []time.Duration
	return &player{
		m: game.NewMachine(sess, game.Deps{
			Phrases: quoteSource{},
			Judge:   judge.New(),
			Ledger:  ledger.Recorder{Ledger: led},
			Logger:  zerolog.Nop(),
		}),
		tag:      language.English,
		out:      out,
		board:    led,
		gameType: ledger.DefaultGameType,
		sleep:    func(_ context.Context, d time.Duration) { slept = append(slept, d) },
	}, &slept
}

func TestPlayPerfectGame(t *testing.T) {
	var out bytes.Buffer
	p, slept := newPlayer(t, 1, &out)
	path := filepath.Join(t.TempDir(), "out.txt")
	p.exporter = export.New(path)

	in := strings.NewReader("Dee\nquote\nrene descartes\nyes\n1637\n")
	if err := p.play(context.Background(), in); err != nil {
		t.Fatalf("play: %v", err)
	}
	if len(*slept) != 1 || (*slept)[0] != game.CompletePause {
		t.Fatalf("expected one complete pause, got %v", *slept)
	}
	s := p.m.Snapshot()
	if s.Phase != game.PhaseCompleted || s.TotalScore != 18 || !s.Perfect() {
		t.Fatalf("unexpected final session %+v", s)
	}
	text := out.String()
	if !strings.Contains(text, "*  *  *") || !strings.Contains(text, "Dee") || !strings.Contains(text, "18/18") {
		t.Fatalf("missing celebration or leaderboard:\n%s", text)
	}
}

func TestPlayQuit(t *testing.T) {
	var out bytes.Buffer
	p, _ := newPlayer(t, 3, &out)
	if err := p.play(context.Background(), strings.NewReader("Eve\nquit\nsong\n")); err != nil {
		t.Fatalf("play: %v", err)
	}
	if s := p.m.Snapshot(); s.Phase != game.PhaseSelecting {
		t.Fatalf("expected to stop while selecting, got %s", s.Phase)
	}
}

func TestPlayEndOfInput(t *testing.T) {
	var out bytes.Buffer
	p, _ := newPlayer(t, 2, &out)
	if err := p.play(context.Background(), strings.NewReader("Fay\npoet")); err != nil {
		t.Fatalf("play: %v", err)
	}
	if s := p.m.Snapshot(); s.Phase != game.PhaseAwaitingAnswer {
		t.Fatalf("expected awaiting answer, got %s", s.Phase)
	}
}
