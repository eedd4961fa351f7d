package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/export"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/judge"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/ledger"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/store"
)

var secret = []byte("test-secret")

type onePhrase struct{}

func (onePhrase) FetchPhrase(context.Context, game.PhraseRequest) (game.Phrase, error) {
	return game.Phrase{
		Text:    "Is this the real life? Is this just fantasy?",
		Source:  "Bohemian Rhapsody",
		Year:    "1975",
		Hint:    "A six-minute operatic rock epic",
		Creator: game.Creator{Role: "artist", Name: "Queen"},
	}, nil
}

type fixture struct {
	srv    *Server
	h      http.Handler
	st     store.Store
	led    ledger.Ledger
	export string
}

func newFixture(t *testing.T, mutate func(*Options)) *fixture {
	t.Helper()
	st := store.NewMemoryStore()
	led := ledger.NewMemory()
	path := filepath.Join(t.TempDir(), "results.txt")
	opts := Options{
		JWTSecret: secret,
		Exporter:  export.New(path),
		Logger:    zerolog.Nop(),
	}
	if mutate != nil {
		mutate(&opts)
	}
	srv := New(game.Deps{Phrases: onePhrase{}, Judge: judge.New()}, st, led, opts)
	return &fixture{srv: srv, h: srv.Handler(), st: st, led: led, export: path}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func (f *fixture) newGame(t *testing.T, body map[string]any) newGameRes {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/game/new", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("new game: %d %s", rec.Code, rec.Body.String())
	}
	return decode[newGameRes](t, rec)
}

func (f *fixture) input(t *testing.T, token, text string) updateView {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/game/input", token, inputReq{Text: text})
	if rec.Code != http.StatusOK {
		t.Fatalf("input %q: %d %s", text, rec.Code, rec.Body.String())
	}
	return decode[updateView](t, rec)
}

func hasMessage(u updateView, key string) bool {
	for _, m := range u.Messages {
		if m.Key == key {
			return true
		}
	}
	return false
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Fatalf("health: %d %s", rec.Code, rec.Body.String())
	}
}

func TestFullGameOverHTTP(t *testing.T) {
	f := newFixture(t, nil)
	g := f.newGame(t, map[string]any{"rounds": 1, "nickname": "Ana", "difficulty": "easy"})
	if g.GameID == "" || g.Token == "" {
		t.Fatalf("missing id or token: %+v", g)
	}
	if !hasMessage(g.Update, game.NoticeWelcome) || !hasMessage(g.Update, game.NoticeNicknameConfirmed) {
		t.Fatalf("expected welcome and nickname notices, got %+v", g.Update.Messages)
	}
	if g.Update.Prompt.Key != game.PromptCategory || g.Update.State.Difficulty != game.DifficultyEasy {
		t.Fatalf("unexpected state after new game: %+v", g.Update)
	}

	rec := f.do(t, http.MethodPost, "/game/input", g.Token, inputReq{Text: "song"})
	if rec.Code != http.StatusOK {
		t.Fatalf("select: %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "Bohemian Rhapsody") || strings.Contains(rec.Body.String(), "Queen") {
		t.Fatalf("answer leaked to client: %s", rec.Body.String())
	}
	u := decode[updateView](t, rec)
	if u.State.Phrase == nil || u.Prompt.Key != game.PromptSource || u.State.CategoryName != "song" {
		t.Fatalf("expected phrase and source prompt, got %+v", u)
	}

	u = f.input(t, g.Token, "bohemian rhapsody")
	if u.State.TotalScore != 1 || u.Prompt.Key != game.PromptBonus {
		t.Fatalf("expected 1 point and bonus prompt, got %+v", u)
	}

	u = f.input(t, g.Token, "no")
	if u.State.Phase != game.PhaseRoundResolved || u.AdvanceAfterMs != game.DeclinePause.Milliseconds() {
		t.Fatalf("expected resolved round with decline pause, got %+v", u)
	}

	rec = f.do(t, http.MethodPost, "/game/advance", g.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("advance: %d %s", rec.Code, rec.Body.String())
	}
	u = decode[updateView](t, rec)
	if u.State.Phase != game.PhaseCompleted || !u.ScoreSaved || !hasMessage(u, game.NoticeGameOver) {
		t.Fatalf("expected completed game with saved score, got %+v", u)
	}

	// a second advance is a no-op and does not save again
	rec = f.do(t, http.MethodPost, "/game/advance", g.Token, nil)
	if u := decode[updateView](t, rec); rec.Code != http.StatusOK || u.ScoreSaved {
		t.Fatalf("second advance: %d %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodPost, "/game/input", g.Token, inputReq{Text: "movie"})
	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), `"completed"`) {
		t.Fatalf("expected completed conflict, got %d %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodGet, "/leaderboard", "", nil)
	board := decode[[]ledger.Record](t, rec)
	if len(board) != 1 || board[0].Nickname != "Ana" || board[0].Score != 1 || board[0].MaxPossible != 6 {
		t.Fatalf("unexpected leaderboard %+v", board)
	}

	b, err := os.ReadFile(f.export)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if n := strings.Count(string(b), "Legendary Lines Results"); n != 1 {
		t.Fatalf("expected one exported transcript, got %d", n)
	}

	rec = f.do(t, http.MethodGet, "/game/state", g.Token, nil)
	st := decode[stateView](t, rec)
	if len(st.Rounds) != 1 || !st.Rounds[0].Declined || len(st.Log) != 2 {
		t.Fatalf("unexpected final state %+v", st)
	}
}

func TestNewGameValidation(t *testing.T) {
	f := newFixture(t, nil)
	for name, body := range map[string]map[string]any{
		"rounds":     {"rounds": 11},
		"difficulty": {"difficulty": "insane"},
	} {
		rec := f.do(t, http.MethodPost, "/game/new", "", body)
		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "invalid_settings") {
			t.Fatalf("%s: expected invalid_settings, got %d %s", name, rec.Code, rec.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/game/new", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "bad_json") {
		t.Fatalf("expected bad_json, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestNewGameDefaultsAndLanguage(t *testing.T) {
	f := newFixture(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/game/new", nil)
	req.Header.Set("Accept-Language", "es-MX,es;q=0.9")
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("new game: %d %s", rec.Code, rec.Body.String())
	}
	g := decode[newGameRes](t, rec)
	if g.Update.State.TotalRounds != defaultRounds || g.Update.State.Difficulty != game.DifficultyMedium {
		t.Fatalf("unexpected defaults %+v", g.Update.State)
	}
	if g.Update.State.Language != "es" {
		t.Fatalf("expected spanish session, got %q", g.Update.State.Language)
	}
	if g.Update.Prompt.Key != game.PromptNickname || g.Update.Prompt.Text == "" {
		t.Fatalf("expected nickname prompt, got %+v", g.Update.Prompt)
	}
}

func TestGameRoutesRequireToken(t *testing.T) {
	f := newFixture(t, nil)
	if rec := f.do(t, http.MethodGet, "/game/state", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/game/state", "garbage", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", rec.Code)
	}

	other := newFixture(t, func(o *Options) { o.JWTSecret = []byte("another-secret") })
	g := other.newGame(t, nil)
	if rec := f.do(t, http.MethodGet, "/game/state", g.Token, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("foreign token: expected 401, got %d", rec.Code)
	}

	tok, _, err := f.srv.signToken("no-such-game")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if rec := f.do(t, http.MethodGet, "/game/state", tok, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown game: expected 404, got %d", rec.Code)
	}
}

func TestExpiredToken(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, func(o *Options) {
		o.TokenTTL = time.Hour
		o.Clock = func() time.Time { return now }
	})
	g := f.newGame(t, nil)
	now = now.Add(2 * time.Hour)
	if rec := f.do(t, http.MethodGet, "/game/state", g.Token, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: expected 401, got %d", rec.Code)
	}
}

func TestSessionsSurviveRestart(t *testing.T) {
	f := newFixture(t, nil)
	g := f.newGame(t, map[string]any{"nickname": "Bo"})
	f.input(t, g.Token, "movie")

	restarted := New(game.Deps{Phrases: onePhrase{}, Judge: judge.New()}, f.st, f.led, Options{JWTSecret: secret, Logger: zerolog.Nop()})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/game/state", nil)
	req.Header.Set("Authorization", "Bearer "+g.Token)
	restarted.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("restore: %d %s", rec.Code, rec.Body.String())
	}
	st := decode[stateView](t, rec)
	if st.ID != g.GameID || st.Nickname != "Bo" || st.Phase != game.PhaseAwaitingAnswer || st.Category != game.CategoryMovie {
		t.Fatalf("unexpected restored state %+v", st)
	}
}

// gatedStore holds the first round_resolved save until release is closed.
type gatedStore struct {
	store.Store
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Save(ctx context.Context, s game.Session) error {
	if s.Phase == game.PhaseRoundResolved {
		g.once.Do(func() {
			close(g.entered)
			<-g.release
		})
	}
	return g.Store.Save(ctx, s)
}

func TestSlowSaveKeepsNewestSnapshot(t *testing.T) {
	st := &gatedStore{Store: store.NewMemoryStore(), entered: make(chan struct{}), release: make(chan struct{})}
	led := ledger.NewMemory()
	deps := game.Deps{Phrases: onePhrase{}, Judge: judge.New()}
	opts := Options{JWTSecret: secret, Logger: zerolog.Nop()}
	f := &fixture{st: st, led: led}
	f.srv = New(deps, st, led, opts)
	f.h = f.srv.Handler()

	g := f.newGame(t, map[string]any{"rounds": 1, "nickname": "Dee"})
	f.input(t, g.Token, "song")

	answered := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		answered <- f.do(t, http.MethodPost, "/game/input", g.Token, inputReq{Text: "stairway to heaven"})
	}()
	<-st.entered

	// the answer is still being saved, so the game cannot move on yet
	if rec := f.do(t, http.MethodPost, "/game/advance", g.Token, nil); rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), `"busy"`) {
		t.Fatalf("advance during save: expected busy, got %d %s", rec.Code, rec.Body.String())
	}
	close(st.release)
	if rec := <-answered; rec.Code != http.StatusOK {
		t.Fatalf("answer: %d %s", rec.Code, rec.Body.String())
	}

	rec := f.do(t, http.MethodPost, "/game/advance", g.Token, nil)
	if u := decode[updateView](t, rec); rec.Code != http.StatusOK || u.State.Phase != game.PhaseCompleted || !u.ScoreSaved {
		t.Fatalf("advance: %d %s", rec.Code, rec.Body.String())
	}
	stored, err := st.Get(context.Background(), g.GameID)
	if err != nil || stored.Phase != game.PhaseCompleted {
		t.Fatalf("stored phase %q (%v), want completed", stored.Phase, err)
	}

	restarted := New(deps, st, led, opts).Handler()
	req := httptest.NewRequest(http.MethodPost, "/game/advance", nil)
	req.Header.Set("Authorization", "Bearer "+g.Token)
	rec = httptest.NewRecorder()
	restarted.ServeHTTP(rec, req)
	if u := decode[updateView](t, rec); rec.Code != http.StatusOK || u.ScoreSaved {
		t.Fatalf("advance after restart: %d %s", rec.Code, rec.Body.String())
	}
	top, err := led.Top(context.Background(), ledger.DefaultGameType, 10)
	if err != nil || len(top) != 1 {
		t.Fatalf("expected one recorded score, got %+v %v", top, err)
	}
}

func TestDeletedSessionIsNotSavedAgain(t *testing.T) {
	f := newFixture(t, nil)
	g := f.newGame(t, map[string]any{"nickname": "Eve"})
	m, err := f.srv.games.get(context.Background(), g.GameID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := f.srv.games.drop(context.Background(), g.GameID); err != nil {
		t.Fatalf("drop: %v", err)
	}
	// a call that was already holding the machine finishes after the delete
	if _, err := m.SubmitInput(context.Background(), "movie"); err != nil {
		t.Fatalf("late input: %v", err)
	}
	if _, err := f.st.Get(context.Background(), g.GameID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("deleted session came back: %v", err)
	}
}

func TestCategories(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/categories?lang=es", "", nil)
	cats := decode[[]categoryView](t, rec)
	if len(cats) != len(game.Categories) {
		t.Fatalf("expected %d categories, got %d", len(game.Categories), len(cats))
	}
	if cats[0].Key != game.CategorySong || cats[0].Name != "canción" || cats[0].MaxPoints != 6 || cats[0].CreatorRole != "artist" {
		t.Fatalf("unexpected first category %+v", cats[0])
	}
	last := cats[len(cats)-1]
	if last.Key != game.CategoryQuote || last.MaxPoints != 18 || len(last.Stages) != 2 {
		t.Fatalf("unexpected last category %+v", last)
	}
}

func TestLeaderboardLimit(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	for i, nick := range []string{"a", "b", "c"} {
		if _, err := f.led.Save(ctx, ledger.Entry{Nickname: nick, GameType: ledger.DefaultGameType, Score: i}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	board := decode[[]ledger.Record](t, f.do(t, http.MethodGet, "/leaderboard?limit=2", "", nil))
	if len(board) != 2 || board[0].Nickname != "c" || board[1].Nickname != "b" {
		t.Fatalf("unexpected leaderboard %+v", board)
	}
	if rec := f.do(t, http.MethodGet, "/leaderboard?limit=ten", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
	board = decode[[]ledger.Record](t, f.do(t, http.MethodGet, "/leaderboard?gameType=other", "", nil))
	if len(board) != 0 {
		t.Fatalf("expected empty board for other game type, got %+v", board)
	}
}

func TestAdmin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	disabled := newFixture(t, nil)
	if rec := disabled.do(t, http.MethodGet, "/admin/sessions", "", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected admin disabled, got %d", rec.Code)
	}

	f := newFixture(t, func(o *Options) {
		o.AdminUser = "admin"
		o.AdminPasswordHash = string(hash)
	})
	g := f.newGame(t, map[string]any{"nickname": "Cy"})

	get := func(user, pw string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin/sessions", nil)
		req.SetBasicAuth(user, pw)
		rec := httptest.NewRecorder()
		f.h.ServeHTTP(rec, req)
		return rec
	}
	if rec := get("admin", "wrong"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", rec.Code)
	}
	rec := get("admin", "hunter22")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}
	list := decode[[]sessionSummary](t, rec)
	if len(list) != 1 || list[0].ID != g.GameID || list[0].Nickname != "Cy" || !list[0].Live {
		t.Fatalf("unexpected sessions %+v", list)
	}

	req := httptest.NewRequest(http.MethodDelete, "/admin/sessions/"+g.GameID, nil)
	req.SetBasicAuth("admin", "hunter22")
	del := httptest.NewRecorder()
	f.h.ServeHTTP(del, req)
	if del.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", del.Code, del.Body.String())
	}
	if rec := f.do(t, http.MethodGet, "/game/state", g.Token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("deleted game: expected 404, got %d", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/nope", "", nil)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "not_found") {
		t.Fatalf("expected JSON 404, got %d %s", rec.Code, rec.Body.String())
	}
}
