// internal/game/types.go
//
// Core type definitions for the Legendary Lines round engine.
// Defines:
//   - Phase, Stage, Difficulty: closed enumerations driving transitions.
//   - Phrase/Creator: the artefact a round is played against.
//   - LogEntry/RoundResult: append-only history of a play-through.
//   - Session: the single aggregate mutated by Reduce.

package game

import (
	"strings"
	"time"
)

// Phase is the coarse position of a session in its lifecycle.
type Phase string

const (
	PhaseGreeting            Phase = "greeting"
	PhaseSelecting           Phase = "selecting"
	PhaseAwaitingAnswer      Phase = "awaiting_answer"
	PhaseAwaitingBonusChoice Phase = "awaiting_bonus_choice"
	PhaseRoundResolved       Phase = "round_resolved"
	PhaseCompleted           Phase = "completed"
)

// Open reports whether a round is in progress in this phase.
func (p Phase) Open() bool {
	return p == PhaseSelecting || p == PhaseAwaitingAnswer || p == PhaseAwaitingBonusChoice
}

// Stage is one step of a round's answer chain.
type Stage string

const (
	StageSource  Stage = "source"
	StageYear    Stage = "year"
	StageCreator Stage = "creator"
)

// multiplier applied to a category's base points when a stage is answered.
func (s Stage) multiplier() int {
	switch s {
	case StageYear:
		return 2
	case StageCreator:
		return 3
	default:
		return 1
	}
}

// Difficulty biases phrase selection. It never affects scoring.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// ParseDifficulty accepts any casing of EASY, MEDIUM or HARD.
func ParseDifficulty(raw string) (Difficulty, bool) {
	switch d := Difficulty(strings.ToUpper(strings.TrimSpace(raw))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, true
	}
	return "", false
}

// HistoryPolicy decides when prior rounds are handed to the phrase source.
type HistoryPolicy string

const (
	// HistoryWhenPlayed sends the log only if the chosen category was played before.
	HistoryWhenPlayed HistoryPolicy = "played"
	HistoryAlways     HistoryPolicy = "always"
	HistoryOff        HistoryPolicy = "off"
)

// ParseHistoryPolicy maps a config value to a policy; empty means HistoryWhenPlayed.
func ParseHistoryPolicy(raw string) (HistoryPolicy, bool) {
	switch p := HistoryPolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return HistoryWhenPlayed, true
	case HistoryWhenPlayed, HistoryAlways, HistoryOff:
		return p, true
	}
	return "", false
}

// Creator names who made the source (artist, director, author...).
type Creator struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

// Phrase is the obscured line shown to the player plus its ground truth.
type Phrase struct {
	Text    string  `json:"text"`
	Source  string  `json:"source"`
	Year    string  `json:"year"`
	Hint    string  `json:"hint,omitempty"`
	Genre   string  `json:"genre,omitempty"`
	Creator Creator `json:"creator"`
}

// Expected returns the ground-truth value graded at stage s.
func (p Phrase) Expected(s Stage) string {
	switch s {
	case StageYear:
		return p.Year
	case StageCreator:
		return p.Creator.Name
	default:
		return p.Source
	}
}

// LogEntry records one judged submission. Entries are only ever appended.
type LogEntry struct {
	Round      int       `json:"round"`
	Category   Category  `json:"category"`
	Stage      Stage     `json:"questionStage"`
	Bonus      bool      `json:"bonusConfirmation,omitempty"`
	WasCorrect bool      `json:"wasCorrect"`
	Input      string    `json:"input"`
	Feedback   string    `json:"feedback"`
	Phrase     string    `json:"phrase,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// RoundResult is written once, at the moment a round resolves.
type RoundResult struct {
	Round     int      `json:"round"`
	Category  Category `json:"category"`
	Points    int      `json:"points"`
	MaxPoints int      `json:"maxPoints"`
	Maxed     bool     `json:"maxed"`
	Forfeited bool     `json:"forfeited"`
	Declined  bool     `json:"declined"`
}

// Settings are fixed for the lifetime of a session.
type Settings struct {
	Difficulty  Difficulty    `json:"difficulty"`
	TotalRounds int           `json:"totalRounds"`
	History     HistoryPolicy `json:"history"`
	// Language is carried for the presentation layer; the engine never reads it.
	Language string `json:"language,omitempty"`
}

type pendingKind string

const (
	pendingPhrase  pendingKind = "phrase"
	pendingVerdict pendingKind = "verdict"
)

// Pending describes the collaborator call a session is waiting on.
type Pending struct {
	Kind     pendingKind `json:"kind"`
	Category Category    `json:"category,omitempty"`
	Stage    Stage       `json:"stage,omitempty"`
	Bonus    bool        `json:"bonus,omitempty"`
	Input    string      `json:"input,omitempty"`
}

// MaxNicknameRunes bounds a stored nickname.
const MaxNicknameRunes = 40

// ClipNickname trims s and cuts it to MaxNicknameRunes runes.
func ClipNickname(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > MaxNicknameRunes {
		s = strings.TrimSpace(string(r[:MaxNicknameRunes]))
	}
	return s
}

// Session is the root aggregate of one play-through.
type Session struct {
	ID       string   `json:"id"`
	Settings Settings `json:"settings"`

	Phase      Phase  `json:"phase"`
	Nickname   string `json:"nickname"`
	RoundIndex int    `json:"roundIndex"`

	Category    Category `json:"category,omitempty"`
	Stage       Stage    `json:"questionStage,omitempty"`
	Phrase      *Phrase  `json:"activePhrase,omitempty"`
	RoundPoints int      `json:"roundPoints"`

	BankedScore int `json:"bankedScore"`
	TotalScore  int `json:"totalScore"`
	MaxPossible int `json:"maxPossible"`
	Streak      int `json:"streak"`

	Log    []LogEntry    `json:"conversationLog"`
	Rounds []RoundResult `json:"rounds"`

	Pending *Pending `json:"pending,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy; callers may keep it after further transitions.
func (s Session) Clone() Session {
	out := s
	if s.Phrase != nil {
		p := *s.Phrase
		out.Phrase = &p
	}
	if s.Pending != nil {
		p := *s.Pending
		out.Pending = &p
	}
	out.Log = append([]LogEntry(nil), s.Log...)
	out.Rounds = append([]RoundResult(nil), s.Rounds...)
	return out
}

// Perfect reports whether every resolved round reached its maximum.
func (s Session) Perfect() bool {
	return s.MaxPossible > 0 && s.TotalScore == s.MaxPossible
}

// played reports whether category c appears anywhere in the log.
func (s Session) played(c Category) bool {
	for _, e := range s.Log {
		if e.Category == c {
			return true
		}
	}
	return false
}
