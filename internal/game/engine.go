// internal/game/engine.go
//
// Pure transition function for a Legendary Lines session.
// Responsibilities:
//   - Interpret raw player input according to phase and question stage.
//   - Request collaborator work (phrase, verdict, ledger) as effects.
//   - Apply collaborator results: award points, forfeit, advance the chain.
//   - Resolve and advance rounds; complete the game after the last one.
//
// Notes:
//   - Reduce never performs I/O and never reads the wall clock; timestamps
//     arrive inside events.
//   - Pacing between rounds belongs to the presentation layer, which is told
//     how long to wait through a ScheduleAdvance effect.

package game

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	MinRounds = 1
	MaxRounds = 10
)

// Pacing hints handed to the presentation layer.
const (
	DeclinePause  = 2 * time.Second
	ForfeitPause  = 5 * time.Second
	CompletePause = 6 * time.Second
)

var (
	ErrCompleted       = errors.New("session completed")
	ErrBusy            = errors.New("session busy")
	ErrUnexpectedEvent = errors.New("unexpected event")
	ErrInvalidSettings = errors.New("invalid settings")
	ErrNoPhrase        = errors.New("phrase source returned an empty phrase")
)

// Event is an input to Reduce.
type Event interface{ event() }

// InputSubmitted carries raw player text.
type InputSubmitted struct {
	Text string
	At   time.Time
}

// PhraseLoaded answers a FetchPhrase effect.
type PhraseLoaded struct{ Phrase Phrase }

// PhraseFailed reports that a FetchPhrase effect could not be served.
type PhraseFailed struct{ Err error }

// VerdictReceived answers an Evaluate effect.
type VerdictReceived struct {
	Verdict Verdict
	At      time.Time
}

// VerdictFailed reports that an Evaluate effect could not be served.
type VerdictFailed struct{ Err error }

// AdvanceRequested moves a resolved round on. It is a no-op in any other phase.
type AdvanceRequested struct{ At time.Time }

func (InputSubmitted) event()   {}
func (PhraseLoaded) event()     {}
func (PhraseFailed) event()     {}
func (VerdictReceived) event()  {}
func (VerdictFailed) event()    {}
func (AdvanceRequested) event() {}

// Effect is a side-effect request returned by Reduce for the caller to execute.
type Effect interface{ effect() }

// Say asks the presentation layer to show a notice.
type Say struct{ Notice Notice }

// FetchPhrase asks for a phrase; answer with PhraseLoaded or PhraseFailed.
type FetchPhrase struct{ Request PhraseRequest }

// Evaluate asks for a verdict; answer with VerdictReceived or VerdictFailed.
type Evaluate struct{ Request JudgeRequest }

// SaveScore asks for the final score to be written to the ledger.
type SaveScore struct{ Score FinalScore }

// Celebrate marks a maximum-points round. Purely presentational.
type Celebrate struct {
	Category Category
	Points   int
}

// ScheduleAdvance tells the presentation layer to call for the next round
// after its own delay.
type ScheduleAdvance struct{ After time.Duration }

func (Say) effect()             {}
func (FetchPhrase) effect()     {}
func (Evaluate) effect()        {}
func (SaveScore) effect()       {}
func (Celebrate) effect()       {}
func (ScheduleAdvance) effect() {}

// NewSession creates a session in the greeting phase.
func NewSession(id string, st Settings, now time.Time) (Session, error) {
	if st.TotalRounds < MinRounds || st.TotalRounds > MaxRounds {
		return Session{}, fmt.Errorf("%w: rounds must be %d-%d, got %d", ErrInvalidSettings, MinRounds, MaxRounds, st.TotalRounds)
	}
	if st.Difficulty == "" {
		st.Difficulty = DifficultyMedium
	}
	if _, ok := ParseDifficulty(string(st.Difficulty)); !ok {
		return Session{}, fmt.Errorf("%w: difficulty %q", ErrInvalidSettings, st.Difficulty)
	}
	policy, ok := ParseHistoryPolicy(string(st.History))
	if !ok {
		return Session{}, fmt.Errorf("%w: history policy %q", ErrInvalidSettings, st.History)
	}
	st.History = policy
	return Session{
		ID:         id,
		Settings:   st,
		Phase:      PhaseGreeting,
		RoundIndex: 1,
		Log:        []LogEntry{},
		Rounds:     []RoundResult{},
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}, nil
}

// Reduce applies ev to s and returns the next session plus the effects the
// caller must run. s itself is never modified.
//
// Errors are returned only for calls the session cannot accept at all
// (completed, busy, or a collaborator answer nobody asked for); in that case
// the returned session is s unchanged.
func Reduce(s Session, ev Event) (Session, []Effect, error) {
	if s.Phase == PhaseCompleted {
		if _, ok := ev.(AdvanceRequested); ok {
			return s, nil, nil
		}
		return s, nil, ErrCompleted
	}
	next := s.Clone()
	var (
		effects []Effect
		err     error
	)
	switch e := ev.(type) {
	case InputSubmitted:
		effects, err = next.onInput(e)
	case PhraseLoaded:
		effects, err = next.onPhrase(e)
	case PhraseFailed:
		effects, err = next.onPhraseFailed()
	case VerdictReceived:
		effects, err = next.onVerdict(e)
	case VerdictFailed:
		effects, err = next.onVerdictFailed()
	case AdvanceRequested:
		effects, err = next.onAdvance(e)
	default:
		err = fmt.Errorf("%w: %T", ErrUnexpectedEvent, ev)
	}
	if err != nil {
		return s, nil, err
	}
	return next, effects, nil
}

func (s *Session) onInput(e InputSubmitted) ([]Effect, error) {
	if s.Pending != nil {
		return nil, ErrBusy
	}
	text := strings.TrimSpace(e.Text)
	s.touch(e.At)

	switch s.Phase {
	case PhaseGreeting:
		if text == "" {
			return []Effect{say(NoticeNicknameBlank)}, nil
		}
		s.Nickname = ClipNickname(text)
		s.Phase = PhaseSelecting
		return []Effect{say(NoticeNicknameConfirmed, s.Nickname), say(NoticePickCategory)}, nil

	case PhaseSelecting:
		c, ok := ParseCategory(text)
		if !ok {
			return []Effect{say(NoticeUnknownCategory, text)}, nil
		}
		s.Pending = &Pending{Kind: pendingPhrase, Category: c}
		return []Effect{FetchPhrase{Request: PhraseRequest{
			SessionID:  s.ID,
			Round:      s.RoundIndex,
			Category:   c,
			Difficulty: s.Settings.Difficulty,
			Prior:      s.priorRounds(c),
		}}}, nil

	case PhaseAwaitingAnswer:
		if text == "" {
			return []Effect{say(NoticeAnswerBlank)}, nil
		}
		s.Pending = &Pending{Kind: pendingVerdict, Category: s.Category, Stage: s.Stage, Input: text}
		return []Effect{Evaluate{Request: JudgeRequest{
			Input:    text,
			Expected: s.Phrase.Expected(s.Stage),
			Stage:    s.Stage,
			Category: s.Category,
			History:  append([]LogEntry(nil), s.Log...),
		}}}, nil

	case PhaseAwaitingBonusChoice:
		if text == "" {
			return []Effect{say(NoticeBonusOffer, s.Stage, s.Category, StagePoints(s.Category, s.Stage))}, nil
		}
		s.Pending = &Pending{Kind: pendingVerdict, Category: s.Category, Stage: s.Stage, Bonus: true, Input: text}
		return []Effect{Evaluate{Request: JudgeRequest{
			Input:    text,
			Expected: AffirmativeAnswer,
			Stage:    s.Stage,
			Bonus:    true,
			Category: s.Category,
			History:  append([]LogEntry(nil), s.Log...),
		}}}, nil

	case PhaseRoundResolved:
		return []Effect{say(NoticeRoundWait)}, nil
	}
	return nil, fmt.Errorf("%w: input in phase %s", ErrUnexpectedEvent, s.Phase)
}

func (s *Session) onPhrase(e PhraseLoaded) ([]Effect, error) {
	if s.Pending == nil || s.Pending.Kind != pendingPhrase {
		return nil, fmt.Errorf("%w: phrase without request", ErrUnexpectedEvent)
	}
	c := s.Pending.Category
	s.Pending = nil
	if strings.TrimSpace(e.Phrase.Text) == "" || strings.TrimSpace(e.Phrase.Source) == "" {
		return []Effect{say(NoticePhraseFailed)}, nil
	}
	p := e.Phrase
	s.Category = c
	s.Phrase = &p
	s.Stage = StageSource
	s.RoundPoints = 0
	s.Phase = PhaseAwaitingAnswer
	return []Effect{say(NoticePhrase, c, p.Text)}, nil
}

func (s *Session) onPhraseFailed() ([]Effect, error) {
	if s.Pending == nil || s.Pending.Kind != pendingPhrase {
		return nil, fmt.Errorf("%w: phrase failure without request", ErrUnexpectedEvent)
	}
	s.Pending = nil
	return []Effect{say(NoticePhraseFailed)}, nil
}

func (s *Session) onVerdictFailed() ([]Effect, error) {
	if s.Pending == nil || s.Pending.Kind != pendingVerdict {
		return nil, fmt.Errorf("%w: verdict failure without request", ErrUnexpectedEvent)
	}
	s.Pending = nil
	return []Effect{say(NoticeJudgeFailed)}, nil
}

func (s *Session) onVerdict(e VerdictReceived) ([]Effect, error) {
	if s.Pending == nil || s.Pending.Kind != pendingVerdict {
		return nil, fmt.Errorf("%w: verdict without request", ErrUnexpectedEvent)
	}
	p := *s.Pending
	s.Pending = nil
	s.touch(e.At)
	v := e.Verdict

	entry := LogEntry{
		Round:      s.RoundIndex,
		Category:   s.Category,
		Stage:      p.Stage,
		Bonus:      p.Bonus,
		WasCorrect: v.IsCorrect,
		Input:      p.Input,
		Feedback:   v.Feedback,
		Timestamp:  e.At.UTC(),
	}
	if s.Phrase != nil {
		entry.Phrase = s.Phrase.Text
	}
	s.Log = append(s.Log, entry)

	if p.Bonus {
		return s.onBonusChoice(v), nil
	}
	return s.onAnswer(v), nil
}

func (s *Session) onBonusChoice(v Verdict) []Effect {
	var effects []Effect
	if v.Feedback != "" {
		effects = append(effects, say(NoticeFeedback, v.Feedback))
	}
	switch {
	case !v.IsBonusResponse:
		return append(effects, say(NoticeBonusUnclear), say(NoticeBonusOffer, s.Stage, s.Category, StagePoints(s.Category, s.Stage)))
	case v.IsCorrect:
		s.Phase = PhaseAwaitingAnswer
		return append(effects, say(NoticeBonusAccepted, s.Stage, s.Category))
	default:
		s.resolve(false, true)
		return append(effects,
			say(NoticeKeepPoints, s.RoundPoints),
			ScheduleAdvance{After: DeclinePause},
		)
	}
}

func (s *Session) onAnswer(v Verdict) []Effect {
	var effects []Effect
	if v.Feedback != "" {
		effects = append(effects, say(NoticeFeedback, v.Feedback))
	}
	if !v.IsCorrect {
		lost := s.RoundPoints
		s.RoundPoints = 0
		s.TotalScore = s.BankedScore
		s.Streak = 0
		s.resolve(true, false)
		return append(effects,
			say(NoticeRoundForfeited, lost),
			ScheduleAdvance{After: ForfeitPause},
		)
	}

	s.RoundPoints += StagePoints(s.Category, s.Stage)
	s.TotalScore = s.BankedScore + s.RoundPoints
	s.Streak++

	if next, ok := s.Category.NextStage(s.Stage); ok {
		s.Stage = next
		s.Phase = PhaseAwaitingBonusChoice
		return append(effects, say(NoticeBonusOffer, next, s.Category, StagePoints(s.Category, next)))
	}

	s.resolve(false, false)
	if s.RoundPoints == MaxPoints(s.Category) {
		effects = append(effects,
			Celebrate{Category: s.Category, Points: s.RoundPoints},
			say(NoticeRoundPerfect, s.Category, s.RoundPoints),
		)
	}
	return append(effects, ScheduleAdvance{After: CompletePause})
}

// resolve closes the current round and banks its points.
func (s *Session) resolve(forfeited, declined bool) {
	ceiling := MaxPoints(s.Category)
	s.Rounds = append(s.Rounds, RoundResult{
		Round:     s.RoundIndex,
		Category:  s.Category,
		Points:    s.RoundPoints,
		MaxPoints: ceiling,
		Maxed:     !forfeited && s.RoundPoints == ceiling,
		Forfeited: forfeited,
		Declined:  declined,
	})
	s.MaxPossible += ceiling
	s.BankedScore = s.TotalScore
	s.Phase = PhaseRoundResolved
}

func (s *Session) onAdvance(e AdvanceRequested) ([]Effect, error) {
	if s.Phase != PhaseRoundResolved {
		return nil, nil
	}
	s.touch(e.At)
	s.Category = ""
	s.Stage = ""
	s.Phrase = nil
	s.RoundPoints = 0

	if s.RoundIndex >= s.Settings.TotalRounds {
		s.Phase = PhaseCompleted
		final := say(NoticeGameOver, s.TotalScore, s.MaxPossible)
		if s.Perfect() {
			final = say(NoticePerfectGame, s.TotalScore)
		}
		return []Effect{
			final,
			SaveScore{Score: FinalScore{
				SessionID:   s.ID,
				Nickname:    s.Nickname,
				Score:       s.TotalScore,
				MaxPossible: s.MaxPossible,
				Rounds:      s.Settings.TotalRounds,
				Difficulty:  s.Settings.Difficulty,
			}},
		}, nil
	}

	s.RoundIndex++
	s.Phase = PhaseSelecting
	return []Effect{say(NoticeNextRound, s.Nickname, s.RoundIndex)}, nil
}

// priorRounds applies the session's history policy for category c.
func (s *Session) priorRounds(c Category) []LogEntry {
	switch s.Settings.History {
	case HistoryOff:
		return nil
	case HistoryAlways:
		return append([]LogEntry(nil), s.Log...)
	}
	if s.played(c) {
		return append([]LogEntry(nil), s.Log...)
	}
	return nil
}

func (s *Session) touch(at time.Time) {
	if !at.IsZero() {
		s.UpdatedAt = at.UTC()
	}
}
