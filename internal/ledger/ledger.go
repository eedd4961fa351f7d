// internal/ledger/ledger.go
//
// Score ledger: durable final scores and the leaderboard read from them.
//
// Backends:
//   - Memory   (tests, cmd/play without a database)
//   - SQLite   (default server backend, embedded migrations)
//   - Postgres (gorm, for shared deployments)
//
// Ordering: score DESC, then submission order ASC. Every backend keeps a
// monotonically increasing sequence number for the tie-break.

package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
)

const (
	DefaultGameType = "legendary-lines"
	DefaultLimit    = 10
	MaxLimit        = 100
	MaxGameType     = 50
)

var ErrInvalidEntry = errors.New("ledger: missing required fields: nickname, gameType, or score")

// Entry is a score submission.
type Entry struct {
	Nickname    string          `json:"nickname"`
	GameType    string          `json:"gameType"`
	Score       int             `json:"score"`
	MaxPossible int             `json:"maxPossible,omitempty"`
	Rounds      int             `json:"rounds,omitempty"`
	Difficulty  game.Difficulty `json:"difficulty,omitempty"`
	SessionID   string          `json:"sessionId,omitempty"`
}

// Record is a stored entry.
type Record struct {
	ID string `json:"id"`
	Entry
	Seq       int64     `json:"-"`
	CreatedAt time.Time `json:"timestamp"`
}

// Ledger stores final scores and answers leaderboard queries.
type Ledger interface {
	Save(ctx context.Context, e Entry) (Record, error)
	// Top returns at most limit records for gameType, best first.
	Top(ctx context.Context, gameType string, limit int) ([]Record, error)
	Close() error
}

// Validate normalises e and rejects submissions without a nickname,
// a game type, or with a negative score. Nicknames are clipped to
// game.MaxNicknameRunes; game types longer than MaxGameType are rejected.
func Validate(e Entry) (Entry, error) {
	e.Nickname = game.ClipNickname(e.Nickname)
	e.GameType = strings.TrimSpace(e.GameType)
	if e.Nickname == "" || e.GameType == "" || len(e.GameType) > MaxGameType || e.Score < 0 {
		return Entry{}, ErrInvalidEntry
	}
	return e, nil
}

// ClampLimit maps a requested limit onto [1, MaxLimit]; 0 or less means DefaultLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

func newID() string { return uuid.NewString() }

// Recorder adapts a Ledger to game.Ledger for one game type.
type Recorder struct {
	Ledger   Ledger
	GameType string
}

// RecordScore implements game.Ledger.
func (r Recorder) RecordScore(ctx context.Context, fs game.FinalScore) error {
	gt := r.GameType
	if gt == "" {
		gt = DefaultGameType
	}
	_, err := r.Ledger.Save(ctx, Entry{
		Nickname:    fs.Nickname,
		GameType:    gt,
		Score:       fs.Score,
		MaxPossible: fs.MaxPossible,
		Rounds:      fs.Rounds,
		Difficulty:  fs.Difficulty,
		SessionID:   fs.SessionID,
	})
	if err != nil {
		return fmt.Errorf("record score for %s: %w", fs.SessionID, err)
	}
	return nil
}

// Open builds the ledger for driver: "memory", "sqlite" (path) or "postgres" (url).
func Open(driver, path, url string, log zerolog.Logger) (Ledger, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "memory":
		return NewMemory(), nil
	case "", "sqlite":
		return OpenSQLite(path, log)
	case "postgres":
		return OpenPostgres(url)
	}
	return nil, fmt.Errorf("ledger: unknown driver %q", driver)
}
