package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/text/language"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/i18n"
)

type messageView struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

type phraseView struct {
	Text  string `json:"text"`
	Hint  string `json:"hint,omitempty"`
	Genre string `json:"genre,omitempty"`
}

// stateView is the client-visible part of a session. Answers never leave
// the server; only the phrase text and hint are exposed.
type stateView struct {
	ID           string             `json:"id"`
	Phase        game.Phase         `json:"phase"`
	Nickname     string             `json:"nickname,omitempty"`
	Language     string             `json:"language"`
	Difficulty   game.Difficulty    `json:"difficulty"`
	Round        int                `json:"round"`
	TotalRounds  int                `json:"totalRounds"`
	Category     game.Category      `json:"category,omitempty"`
	CategoryName string             `json:"categoryName,omitempty"`
	Stage        game.Stage         `json:"stage,omitempty"`
	Phrase       *phraseView        `json:"phrase,omitempty"`
	RoundPoints  int                `json:"roundPoints"`
	BankedScore  int                `json:"bankedScore"`
	TotalScore   int                `json:"totalScore"`
	MaxPossible  int                `json:"maxPossible"`
	Streak       int                `json:"streak"`
	Perfect      bool               `json:"perfect"`
	Log          []game.LogEntry    `json:"log,omitempty"`
	Rounds       []game.RoundResult `json:"rounds,omitempty"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

type updateView struct {
	Messages       []messageView `json:"messages"`
	Prompt         messageView   `json:"prompt"`
	Retry          bool          `json:"retry"`
	Celebrate      bool          `json:"celebrate"`
	AdvanceAfterMs int64         `json:"advanceAfterMs,omitempty"`
	ScoreSaved     bool          `json:"scoreSaved"`
	State          stateView     `json:"state"`
}

func (s *Server) langOf(sess game.Session) language.Tag {
	if sess.Settings.Language == "" {
		return s.opts.DefaultLanguage
	}
	return i18n.Match(sess.Settings.Language)
}

func (s *Server) viewState(sess game.Session, full bool) stateView {
	tag := s.langOf(sess)
	v := stateView{
		ID:          sess.ID,
		Phase:       sess.Phase,
		Nickname:    sess.Nickname,
		Language:    tag.String(),
		Difficulty:  sess.Settings.Difficulty,
		Round:       sess.RoundIndex,
		TotalRounds: sess.Settings.TotalRounds,
		Category:    sess.Category,
		Stage:       sess.Stage,
		RoundPoints: sess.RoundPoints,
		BankedScore: sess.BankedScore,
		TotalScore:  sess.TotalScore,
		MaxPossible: sess.MaxPossible,
		Streak:      sess.Streak,
		Perfect:     sess.Phase == game.PhaseCompleted && sess.Perfect(),
		UpdatedAt:   sess.UpdatedAt,
	}
	if sess.Category != "" {
		v.CategoryName = i18n.CategoryName(tag, sess.Category)
	}
	if sess.Phrase != nil {
		v.Phrase = &phraseView{Text: sess.Phrase.Text, Hint: sess.Phrase.Hint, Genre: sess.Phrase.Genre}
	}
	if full {
		v.Log = sess.Log
		v.Rounds = sess.Rounds
	}
	return v
}

func (s *Server) viewUpdate(u game.Update) updateView {
	tag := s.langOf(u.Session)
	msgs := make([]messageView, 0, len(u.Notices))
	for _, n := range u.Notices {
		msgs = append(msgs, messageView{Key: n.Key, Text: i18n.Render(tag, n)})
	}
	return updateView{
		Messages:       msgs,
		Prompt:         messageView{Key: u.Prompt, Text: i18n.Prompt(tag, u.Prompt)},
		Retry:          u.Retry,
		Celebrate:      u.Celebrate,
		AdvanceAfterMs: u.AdvanceAfter.Milliseconds(),
		ScoreSaved:     u.ScoreSaved,
		State:          s.viewState(u.Session, false),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": code}.
func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
