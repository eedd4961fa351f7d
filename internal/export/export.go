package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
)

// Exporter appends finished-game transcripts to a text file.
// Safe for concurrent use by many sessions.
type Exporter struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func New(path string) *Exporter {
	return &Exporter{path: path, now: time.Now}
}

// Path returns the target file.
func (e *Exporter) Path() string { return e.path }

// ExportSession appends s to the export file, creating it if needed.
func (e *Exporter) ExportSession(s game.Session) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Create directory if it doesn't exist
	dir := filepath.Dir(e.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	fileExists := false
	if st, err := os.Stat(e.path); err == nil && st.Size() > 0 {
		fileExists = true
	}

	file, err := os.OpenFile(e.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if fileExists {
		if _, err := io.WriteString(file, "\n\n"); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
	}
	if _, err := io.WriteString(file, Transcript(s, e.now())); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}

// Transcript renders a plain-text summary of a session.
func Transcript(s game.Session, at time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Legendary Lines Results - Session %s\n", s.ID))
	sb.WriteString(fmt.Sprintf("Player: %s\n", s.Nickname))
	sb.WriteString(fmt.Sprintf("Difficulty: %s, Rounds: %d\n", s.Settings.Difficulty, s.Settings.TotalRounds))
	sb.WriteString(fmt.Sprintf("Started: %s\n", s.CreatedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	for _, r := range s.Rounds {
		status := fmt.Sprintf("%d/%d points", r.Points, r.MaxPoints)
		switch {
		case r.Maxed:
			status += " (perfect)"
		case r.Forfeited:
			status += " (forfeited)"
		case r.Declined:
			status += " (bonus declined)"
		}
		sb.WriteString(fmt.Sprintf("Round %d: %s - %s\n", r.Round, r.Category, status))
		sb.WriteString(strings.Repeat("-", 40) + "\n")
		for _, le := range s.Log {
			if le.Round != r.Round {
				continue
			}
			mark := "x"
			if le.WasCorrect {
				mark = "ok"
			}
			stage := string(le.Stage)
			if le.Bonus {
				stage += " bonus?"
				mark = "declined"
				if le.WasCorrect {
					mark = "accepted"
				}
			}
			sb.WriteString(fmt.Sprintf("- [%s] %s: \"%s\"\n", mark, stage, le.Input))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Final score: %d of %d\n", s.TotalScore, s.MaxPossible))
	if s.Perfect() {
		sb.WriteString("Perfect game!\n")
	}
	sb.WriteString(fmt.Sprintf("Game ended at %s\n", at.Format("2006-01-02 15:04:05")))
	sb.WriteString(strings.Repeat("=", 50) + "\n")
	return sb.String()
}
