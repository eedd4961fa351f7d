package game

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Deps are the collaborators a Machine executes effects against.
// Ledger and Persist may be nil; Clock defaults to time.Now.
type Deps struct {
	Phrases PhraseSource
	Judge   Judge
	Ledger  Ledger
	Logger  zerolog.Logger
	Clock   func() time.Time
	// Persist receives the session after every call, while the call still
	// holds the machine, so snapshots reach it in call order.
	Persist func(ctx context.Context, s Session) error
}

// Update is what the presentation layer renders after a call.
type Update struct {
	Notices []Notice `json:"notices"`
	Prompt  string   `json:"prompt"`
	// Retry is set when a collaborator failed and the same input may be resubmitted.
	Retry        bool          `json:"retry"`
	Celebrate    bool          `json:"celebrate"`
	AdvanceAfter time.Duration `json:"advanceAfter,omitempty"`
	ScoreSaved   bool          `json:"scoreSaved"`
	Session      Session       `json:"session"`
}

// Machine owns one session and runs Reduce's effects to completion, one
// call at a time.
type Machine struct {
	mu      sync.Mutex
	session Session
	deps    Deps
}

// NewMachine wraps s. s may be a fresh session or a restored snapshot.
func NewMachine(s Session, deps Deps) *Machine {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Machine{session: s.Clone(), deps: deps}
}

// ID returns the session id.
func (m *Machine) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.ID
}

// Snapshot returns a deep copy of the current session.
func (m *Machine) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Clone()
}

// Save hands the current session to Deps.Persist.
func (m *Machine) Save(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persist(ctx)
}

// Greet returns the opening update for a fresh session.
func (m *Machine) Greet() Update {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.update()
	if m.session.Phase == PhaseGreeting {
		u.Notices = append(u.Notices, Notice{Key: NoticeWelcome})
	}
	return u
}

// SubmitInput is the single mutating entry point for player text.
// It returns ErrBusy if another call is in flight and ErrCompleted once the
// game is over. Collaborator failures are not errors: they come back as an
// Update with Retry set and the session left in its pre-call phase.
func (m *Machine) SubmitInput(ctx context.Context, raw string) (Update, error) {
	if !m.mu.TryLock() {
		return Update{}, ErrBusy
	}
	defer m.mu.Unlock()
	return m.dispatch(ctx, InputSubmitted{Text: raw, At: m.deps.Clock()})
}

// AdvanceRound moves a resolved round on to the next selection, or
// completes the game after the last round. Calling it in any other phase,
// including a second time, changes nothing.
func (m *Machine) AdvanceRound(ctx context.Context) (Update, error) {
	if !m.mu.TryLock() {
		return Update{}, ErrBusy
	}
	defer m.mu.Unlock()
	return m.dispatch(ctx, AdvanceRequested{At: m.deps.Clock()})
}

func (m *Machine) dispatch(ctx context.Context, first Event) (Update, error) {
	defer func() {
		if err := m.persist(ctx); err != nil {
			m.deps.Logger.Warn().Err(err).Str("session", m.session.ID).Msg("persist session")
		}
	}()

	var u Update
	queue := []Event{first}
	for len(queue) > 0 {
		ev := queue[0]
		queue = queue[1:]

		before := m.session.Phase
		next, effects, err := Reduce(m.session, ev)
		if err != nil {
			return m.update(), err
		}
		m.session = next
		if next.Phase != before {
			m.deps.Logger.Info().
				Str("session", next.ID).
				Str("from", string(before)).
				Str("to", string(next.Phase)).
				Int("round", next.RoundIndex).
				Msg("phase transition")
		}

		for _, eff := range effects {
			switch e := eff.(type) {
			case Say:
				u.Notices = append(u.Notices, e.Notice)
			case FetchPhrase:
				queue = append(queue, m.fetchPhrase(ctx, e.Request, &u))
			case Evaluate:
				queue = append(queue, m.evaluate(ctx, e.Request, &u))
			case Celebrate:
				u.Celebrate = true
				m.deps.Logger.Info().Str("session", next.ID).Str("category", string(e.Category)).Int("points", e.Points).Msg("maximum round")
			case ScheduleAdvance:
				u.AdvanceAfter = e.After
			case SaveScore:
				u.ScoreSaved = m.saveScore(ctx, e.Score, &u)
			}
		}
	}

	full := m.update()
	full.Notices = u.Notices
	full.Retry = u.Retry
	full.Celebrate = u.Celebrate
	full.AdvanceAfter = u.AdvanceAfter
	full.ScoreSaved = u.ScoreSaved
	return full, nil
}

func (m *Machine) fetchPhrase(ctx context.Context, req PhraseRequest, u *Update) Event {
	if m.deps.Phrases == nil {
		u.Retry = true
		return PhraseFailed{Err: ErrNoPhrase}
	}
	p, err := m.deps.Phrases.FetchPhrase(ctx, req)
	if err == nil && (strings.TrimSpace(p.Text) == "" || strings.TrimSpace(p.Source) == "") {
		err = ErrNoPhrase
	}
	if err != nil {
		m.deps.Logger.Warn().Err(err).Str("session", req.SessionID).Str("category", string(req.Category)).Msg("fetch phrase")
		u.Retry = true
		return PhraseFailed{Err: err}
	}
	return PhraseLoaded{Phrase: p}
}

func (m *Machine) evaluate(ctx context.Context, req JudgeRequest, u *Update) Event {
	if m.deps.Judge == nil {
		u.Retry = true
		return VerdictFailed{}
	}
	v, err := m.deps.Judge.Evaluate(ctx, req)
	if err != nil {
		m.deps.Logger.Warn().Err(err).Str("session", m.session.ID).Str("answerType", req.AnswerType()).Msg("evaluate answer")
		u.Retry = true
		return VerdictFailed{Err: err}
	}
	return VerdictReceived{Verdict: v, At: m.deps.Clock()}
}

func (m *Machine) saveScore(ctx context.Context, fs FinalScore, u *Update) bool {
	if m.deps.Ledger == nil {
		return false
	}
	if err := m.deps.Ledger.RecordScore(ctx, fs); err != nil {
		m.deps.Logger.Error().Err(err).Str("session", fs.SessionID).Str("nickname", fs.Nickname).Int("score", fs.Score).Msg("record score")
		u.Notices = append(u.Notices, Notice{Key: NoticeSaveFailed})
		return false
	}
	m.deps.Logger.Info().Str("session", fs.SessionID).Str("nickname", fs.Nickname).Int("score", fs.Score).Msg("score recorded")
	return true
}

func (m *Machine) persist(ctx context.Context) error {
	if m.deps.Persist == nil {
		return nil
	}
	return m.deps.Persist(ctx, m.session.Clone())
}

func (m *Machine) update() Update {
	return Update{
		Prompt:  PromptFor(m.session),
		Session: m.session.Clone(),
	}
}
