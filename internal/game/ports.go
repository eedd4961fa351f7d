package game

import "context"

// AffirmativeAnswer is the sentinel expected value for bonus confirmations.
const AffirmativeAnswer = "yes"

// BonusConfirmation is the answer-type tag sent to judges for yes/no questions.
const BonusConfirmation = "bonus_confirmation"

// PhraseRequest asks a phrase source for the next round's phrase.
type PhraseRequest struct {
	SessionID  string
	Round      int
	Category   Category
	Difficulty Difficulty
	// Prior is nil unless the session's HistoryPolicy asks for it.
	// Sources must avoid phrases that appear in it.
	Prior []LogEntry
}

// PhraseSource produces phrases with their ground-truth metadata.
type PhraseSource interface {
	FetchPhrase(ctx context.Context, req PhraseRequest) (Phrase, error)
}

// JudgeRequest asks a judge to grade free text against an expected value.
type JudgeRequest struct {
	Input    string
	Expected string
	Stage    Stage
	Bonus    bool
	Category Category
	History  []LogEntry
}

// AnswerType is the stage tag a judge sees: the stage name, or
// BonusConfirmation for yes/no questions.
func (r JudgeRequest) AnswerType() string {
	if r.Bonus {
		return BonusConfirmation
	}
	return string(r.Stage)
}

// Verdict is a judge's answer. For bonus confirmations IsCorrect means
// the player accepted.
type Verdict struct {
	IsCorrect       bool   `json:"isCorrect"`
	Feedback        string `json:"feedback"`
	IsBonusResponse bool   `json:"isBonusResponse"`
}

// Judge grades player input. It is an opaque oracle to the engine.
type Judge interface {
	Evaluate(ctx context.Context, req JudgeRequest) (Verdict, error)
}

// FinalScore is handed to the ledger once, when a session completes.
type FinalScore struct {
	SessionID   string
	Nickname    string
	Score       int
	MaxPossible int
	Rounds      int
	Difficulty  Difficulty
}

// Ledger persists final scores.
type Ledger interface {
	RecordScore(ctx context.Context, fs FinalScore) error
}
