// internal/host/host.go
//
// Language-model backed phrase source and answer judge.
//
// The host plays an upbeat game-show presenter. Phrase generation is steered
// by per-difficulty popularity/temperature modifiers; judging follows the
// same tolerance rules as the local judge but leaves the wording to the model.

package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/ai"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/ai/ollama"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/ai/openai"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
)

var (
	ErrIncomplete      = errors.New("host: model reply is missing required fields")
	ErrUnknownProvider = errors.New("host: unknown provider")
)

const personality = `You are an enthusiastic, witty and encouraging game show host for 'Legendary Lines'.
Celebrate correct answers, always mention points with excitement, and keep the energy
high when players miss. Never mention typos or close matches. Put answers in single quotes.

Response templates:
- Correct source: Your answer is correct! The [type] is indeed '[answer]'.
- Correct year: That's spot on! The [type] '[answer]' was released in [year].
- Wrong answer: The answer was '[correct]'. No worries though - you've got this next one!`

const validationRules = `VALIDATION RULES:
1. Bonus confirmation questions (yes/no):
   - Accept as yes: "yes", "yeah", "sure", "y", "ok"
   - Accept as no: "no", "nope", "pass", "skip", "n"
   - Anything else is not a bonus response.
2. Source and creator answers: ignore case, accept common variations and
   abbreviations, be flexible with minor typos.
3. Year answers: must be an exact match.

Reply with a JSON object: {"isCorrect": bool, "feedback": string, "isBonusResponse": bool}.
For bonus confirmations isCorrect is true when the player accepts.`

const phraseFormat = `Reply with a JSON object:
{"phrase": string, "source": string, "year": number, "hint": string,
 "additionalInfo": {"creator": string, "genre": string}}.
"additionalInfo.creator" names the %s.`

// Modifier tunes phrase generation for a difficulty.
type Modifier struct {
	Popularity  string
	Description string
	Temperature float64
}

var Modifiers = map[game.Difficulty]Modifier{
	game.DifficultyEasy:   {Popularity: "well-known", Description: "commonly recognized phrases", Temperature: 0.7},
	game.DifficultyMedium: {Popularity: "moderately known", Description: "somewhat challenging phrases", Temperature: 0.8},
	game.DifficultyHard:   {Popularity: "obscure", Description: "rare and challenging phrases", Temperature: 0.9},
}

// Host implements game.PhraseSource and game.Judge over an ai.Provider.
type Host struct {
	provider ai.Provider
	model    string
	timeout  time.Duration
	log      zerolog.Logger
}

func New(p ai.Provider, model string, log zerolog.Logger) *Host {
	return &Host{provider: p, model: model, log: log.With().Str("component", "host").Logger()}
}

// WithTimeout bounds every model call to d. Zero means no bound beyond the caller's context.
func (h *Host) WithTimeout(d time.Duration) *Host {
	h.timeout = d
	return h
}

func (h *Host) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, h.timeout)
}

// NewProvider builds the client for kind ("openai" or "ollama").
func NewProvider(kind, openAIKey, openAIBaseURL, ollamaHost string) (ai.Provider, error) {
	switch strings.ToLower(kind) {
	case "openai":
		return openai.New(openAIKey, openAIBaseURL), nil
	case "ollama":
		return ollama.New(ollamaHost), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, kind)
}

type phraseReply struct {
	Phrase         string `json:"phrase"`
	Source         string `json:"source"`
	Year           year   `json:"year"`
	Hint           string `json:"hint"`
	AdditionalInfo struct {
		Creator string `json:"creator"`
		Genre   string `json:"genre"`
	} `json:"additionalInfo"`
}

// year accepts both 1975 and "1975".
type year string

func (y *year) UnmarshalJSON(b []byte) error {
	if s, err := strconv.Unquote(string(b)); err == nil {
		*y = year(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*y = year(n.String())
	return nil
}

// FetchPhrase implements game.PhraseSource.
func (h *Host) FetchPhrase(ctx context.Context, req game.PhraseRequest) (game.Phrase, error) {
	mod, ok := Modifiers[req.Difficulty]
	if !ok {
		mod = Modifiers[game.DifficultyMedium]
	}
	info := req.Category.Info()
	role := info.CreatorRole
	if role == "" {
		role = "person or work it comes from"
	}

	var sys strings.Builder
	sys.WriteString(personality)
	fmt.Fprintf(&sys, "\nYou are a game master for 'Legendary Lines'. Generate %s content for the %s category. Focus on %s.\n",
		mod.Popularity, req.Category, mod.Description)
	fmt.Fprintf(&sys, phraseFormat, role)
	if len(req.Prior) > 0 {
		hist, _ := json.Marshal(req.Prior)
		fmt.Fprintf(&sys, "\nPrevious game history (do not repeat these phrases): %s", hist)
	}
	prompt := fmt.Sprintf("Generate a %s difficulty %s phrase.", strings.ToLower(string(req.Difficulty)), strings.ToLower(info.Name))

	ctx, cancel := h.bound(ctx)
	defer cancel()
	var out phraseReply
	if err := ai.CompleteJSON(ctx, h.provider, h.model, sys.String(), prompt, ai.Options{Temperature: mod.Temperature}, &out); err != nil {
		return game.Phrase{}, fmt.Errorf("generate phrase: %w", err)
	}
	p := game.Phrase{
		Text:   strings.TrimSpace(out.Phrase),
		Source: strings.TrimSpace(out.Source),
		Year:   string(out.Year),
		Hint:   out.Hint,
		Genre:  out.AdditionalInfo.Genre,
		Creator: game.Creator{
			Role: info.CreatorRole,
			Name: strings.TrimSpace(out.AdditionalInfo.Creator),
		},
	}
	if p.Text == "" || p.Source == "" || p.Year == "" || (req.Category.HasCreator() && p.Creator.Name == "") {
		return game.Phrase{}, ErrIncomplete
	}
	h.log.Debug().Str("session", req.SessionID).Str("category", string(req.Category)).Str("source", p.Source).Msg("phrase generated")
	return p, nil
}

type verdictReply struct {
	IsCorrect       bool   `json:"isCorrect"`
	Feedback        string `json:"feedback"`
	IsBonusResponse bool   `json:"isBonusResponse"`
}

// Evaluate implements game.Judge.
func (h *Host) Evaluate(ctx context.Context, req game.JudgeRequest) (game.Verdict, error) {
	hist, _ := json.Marshal(req.History)
	sys := fmt.Sprintf("%s\n\n%s\n\nPrevious context: %s", personality, validationRules, hist)

	attempt := "Answer attempt"
	if req.Bonus {
		attempt = "Bonus confirmation"
	}
	prompt := fmt.Sprintf("Question type: %s\nPlayer's answer: %q\nCorrect answer: %q\nContext: %s",
		req.AnswerType(), req.Input, req.Expected, attempt)

	ctx, cancel := h.bound(ctx)
	defer cancel()
	var out verdictReply
	if err := ai.CompleteJSON(ctx, h.provider, h.model, sys, prompt, ai.Options{Temperature: 0.3}, &out); err != nil {
		return game.Verdict{}, fmt.Errorf("validate answer: %w", err)
	}
	if !req.Bonus {
		// the bonus flag is meaningless for plain answers
		out.IsBonusResponse = false
	}
	return game.Verdict{IsCorrect: out.IsCorrect, Feedback: strings.TrimSpace(out.Feedback), IsBonusResponse: out.IsBonusResponse}, nil
}
