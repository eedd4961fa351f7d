// internal/httpserver/server.go
//
// HTTP presentation layer for Legendary Lines.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     access log).
//   - Public endpoints: "/", "/health", "/categories", "/leaderboard".
//   - Game endpoints: POST /game/new issues a token bound to the new game;
//     /game/input, /game/advance and /game/state require it.
//   - Admin endpoints under /admin (basic auth, bcrypt-hashed password).
//
// Notes:
//   - One game.Machine per session lives in memory; every mutating call
//     writes a snapshot to the session store so games survive restarts.
//   - Pacing is the client's job: updates carry advanceAfterMs and the
//     client calls /game/advance when it elapses.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/export"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/i18n"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/ledger"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/store"
)

const (
	defaultRounds  = 5
	defaultTimeout = 60 * time.Second
)

// Options configure a Server. Zero values get usable defaults except
// JWTSecret, which must be set.
type Options struct {
	ClientOrigin      string
	JWTSecret         []byte
	TokenTTL          time.Duration
	SecureCookies     bool
	AdminUser         string
	AdminPasswordHash string
	DefaultLanguage   language.Tag
	GameType          string
	History           game.HistoryPolicy
	RequestTimeout    time.Duration
	Exporter          *export.Exporter
	Logger            zerolog.Logger
	Clock             func() time.Time
}

// Server bundles router, live games, session store and score ledger.
type Server struct {
	r      *chi.Mux
	opts   Options
	games  *registry
	ledger ledger.Ledger
	log    zerolog.Logger
}

// New constructs a Server, installs middleware, and registers routes.
// deps supplies the phrase source and judge shared by every game; when
// deps.Ledger is nil and led is not, scores are recorded into led.
func New(deps game.Deps, st store.Store, led ledger.Ledger, opts Options) *Server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 12 * time.Hour
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultTimeout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.DefaultLanguage == language.Und {
		opts.DefaultLanguage = i18n.Default()
	}
	if opts.GameType == "" {
		opts.GameType = ledger.DefaultGameType
	}
	if st == nil {
		st = store.NewMemoryStore()
	}
	if deps.Ledger == nil && led != nil {
		deps.Ledger = ledger.Recorder{Ledger: led, GameType: opts.GameType}
	}
	deps.Logger = opts.Logger
	deps.Clock = opts.Clock

	s := &Server{
		r:      chi.NewRouter(),
		opts:   opts,
		games:  newRegistry(st, deps),
		ledger: led,
		log:    opts.Logger.With().Str("component", "http").Logger(),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog(s.log))                   // one line per request
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(opts.RequestTimeout)) // bound handler time (language models are slow)
	s.r.Use(jsonContentType)                    // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))            // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "legendary-lines",
			"endpoints": []string{"/health", "/categories", "/leaderboard", "POST /game/new", "POST /game/input", "POST /game/advance", "/game/state"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "time": s.opts.Clock().UTC()})
	})

	s.r.Get("/categories", s.handleCategories)
	s.r.Get("/leaderboard", s.handleLeaderboard)

	s.r.Post("/game/new", s.handleNewGame)
	s.r.Group(func(r chi.Router) {
		r.Use(s.requireGame)
		r.Post("/game/input", s.handleInput)
		r.Post("/game/advance", s.handleAdvance)
		r.Get("/game/state", s.handleState)
	})

	s.r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/sessions", s.handleListSessions)
		r.Delete("/sessions/{id}", s.handleDeleteSession)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Handler exposes the router (used by tests and by main for graceful shutdown).
func (s *Server) Handler() http.Handler { return s.r }

// ------------------------------ GAME ---------------------------------------

type newGameReq struct {
	Difficulty string `json:"difficulty"`
	Rounds     int    `json:"rounds"`
	Language   string `json:"language"`
	// Nickname, when present, is submitted as the first input.
	Nickname string `json:"nickname"`
}

type newGameRes struct {
	GameID    string     `json:"gameId"`
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	Update    updateView `json:"update"`
}

type inputReq struct {
	Text string `json:"text"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	difficulty := game.DifficultyMedium
	if req.Difficulty != "" {
		d, ok := game.ParseDifficulty(req.Difficulty)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_settings")
			return
		}
		difficulty = d
	}
	if req.Rounds == 0 {
		req.Rounds = defaultRounds
	}
	lang := s.opts.DefaultLanguage
	switch {
	case req.Language != "":
		lang = i18n.Match(req.Language)
	case r.Header.Get("Accept-Language") != "":
		lang = i18n.Match(r.Header.Get("Accept-Language"))
	}

	sess, err := game.NewSession(uuid.NewString(), game.Settings{
		Difficulty:  difficulty,
		TotalRounds: req.Rounds,
		History:     s.opts.History,
		Language:    lang.String(),
	}, s.opts.Clock())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_settings")
		return
	}

	m := s.games.add(sess)
	u := m.Greet()
	if nick := strings.TrimSpace(req.Nickname); nick != "" {
		next, err := m.SubmitInput(r.Context(), nick)
		if err != nil {
			s.writeGameError(w, sess.ID, err)
			return
		}
		next.Notices = append(u.Notices, next.Notices...)
		u = next
	} else if err := m.Save(r.Context()); err != nil {
		s.log.Warn().Err(err).Str("session", sess.ID).Msg("persist session")
	}

	tok, exp, err := s.signToken(sess.ID)
	if err != nil {
		s.log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setGameCookie(w, tok, exp)
	s.log.Info().Str("session", sess.ID).Str("difficulty", string(difficulty)).Int("rounds", req.Rounds).Str("language", lang.String()).Msg("game created")

	writeJSON(w, http.StatusCreated, newGameRes{GameID: sess.ID, Token: tok, ExpiresAt: exp, Update: s.viewUpdate(u)})
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	m := machineFrom(r.Context())
	u, err := m.SubmitInput(r.Context(), req.Text)
	if err != nil {
		s.writeGameError(w, m.ID(), err)
		return
	}
	writeJSON(w, http.StatusOK, s.viewUpdate(u))
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	m := machineFrom(r.Context())
	u, err := m.AdvanceRound(r.Context())
	if err != nil {
		s.writeGameError(w, m.ID(), err)
		return
	}
	if finished(u) {
		s.export(u.Session)
	}
	writeJSON(w, http.StatusOK, s.viewUpdate(u))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.viewState(machineFrom(r.Context()).Snapshot(), true))
}

// finished reports whether u is the update that completed its game.
func finished(u game.Update) bool {
	for _, n := range u.Notices {
		if n.Key == game.NoticeGameOver || n.Key == game.NoticePerfectGame {
			return true
		}
	}
	return false
}

func (s *Server) export(sess game.Session) {
	if s.opts.Exporter == nil {
		return
	}
	if err := s.opts.Exporter.ExportSession(sess); err != nil {
		s.log.Error().Err(err).Str("session", sess.ID).Str("file", s.opts.Exporter.Path()).Msg("export session")
		return
	}
	s.log.Info().Str("session", sess.ID).Str("file", s.opts.Exporter.Path()).Msg("session exported")
}

func (s *Server) writeGameError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, game.ErrBusy):
		writeError(w, http.StatusConflict, "busy")
	case errors.Is(err, game.ErrCompleted):
		writeError(w, http.StatusConflict, "completed")
	case errors.Is(err, game.ErrUnexpectedEvent):
		writeError(w, http.StatusConflict, "unexpected_event")
	default:
		s.log.Error().Err(err).Str("session", id).Msg("game call")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

// --------------------------- CATALOG / SCORES ------------------------------

type categoryView struct {
	Key         game.Category `json:"key"`
	Name        string        `json:"name"`
	BasePoints  int           `json:"basePoints"`
	MaxPoints   int           `json:"maxPoints"`
	Stages      []game.Stage  `json:"stages"`
	CreatorRole string        `json:"creatorRole,omitempty"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	tag := s.opts.DefaultLanguage
	if q := r.URL.Query().Get("lang"); q != "" {
		tag = i18n.Match(q)
	} else if h := r.Header.Get("Accept-Language"); h != "" {
		tag = i18n.Match(h)
	}
	out := make([]categoryView, 0, len(game.Categories))
	for _, c := range game.Categories {
		info := c.Info()
		out = append(out, categoryView{
			Key:         c,
			Name:        i18n.CategoryName(tag, c),
			BasePoints:  info.BasePoints,
			MaxPoints:   game.MaxPoints(c),
			Stages:      info.Chain,
			CreatorRole: info.CreatorRole,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	gameType := r.URL.Query().Get("gameType")
	if gameType == "" {
		gameType = s.opts.GameType
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_limit")
			return
		}
		limit = n
	}
	if s.ledger == nil {
		writeJSON(w, http.StatusOK, []ledger.Record{})
		return
	}
	recs, err := s.ledger.Top(r.Context(), gameType, ledger.ClampLimit(limit))
	if err != nil {
		s.log.Error().Err(err).Str("gameType", gameType).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if recs == nil {
		recs = []ledger.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// ------------------------------- ADMIN -------------------------------------

type sessionSummary struct {
	ID          string          `json:"id"`
	Nickname    string          `json:"nickname,omitempty"`
	Phase       game.Phase      `json:"phase"`
	Difficulty  game.Difficulty `json:"difficulty"`
	Round       int             `json:"round"`
	TotalRounds int             `json:"totalRounds"`
	TotalScore  int             `json:"totalScore"`
	MaxPossible int             `json:"maxPossible"`
	Live        bool            `json:"live"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.games.store.List(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("list sessions")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	out := make([]sessionSummary, 0, len(list))
	for _, sess := range list {
		out = append(out, sessionSummary{
			ID:          sess.ID,
			Nickname:    sess.Nickname,
			Phase:       sess.Phase,
			Difficulty:  sess.Settings.Difficulty,
			Round:       sess.RoundIndex,
			TotalRounds: sess.Settings.TotalRounds,
			TotalScore:  sess.TotalScore,
			MaxPossible: sess.MaxPossible,
			Live:        s.games.isLive(sess.ID),
			CreatedAt:   sess.CreatedAt,
			UpdatedAt:   sess.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.games.drop(r.Context(), id); err != nil {
		s.log.Error().Err(err).Str("session", id).Msg("delete session")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	s.log.Info().Str("session", id).Msg("session deleted")
	w.WriteHeader(http.StatusNoContent)
}
