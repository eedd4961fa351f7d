// internal/judge/judge.go
//
// Deterministic answer judge used when no language model is configured.
//
// Rules:
//   - Bonus confirmations accept common yes/no variations; anything else
//     is reported as not a bonus response.
//   - Years must match exactly (digits only are compared).
//   - Sources and creators ignore case, accents, punctuation and a leading
//     article, and tolerate one typo per eight characters.
//   - A surname alone is accepted for people ("Spielberg").

package judge

import (
	"context"
	"fmt"
	"strings"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
)

var (
	affirmative = set("yes", "yeah", "yep", "yup", "sure", "y", "ok", "okay", "of course", "absolutely", "lets go", "go", "si")
	negative    = set("no", "nope", "nah", "pass", "skip", "n", "no thanks", "stop")
)

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

// Local implements game.Judge without any network calls.
type Local struct{}

// New returns a local judge.
func New() Local { return Local{} }

// Evaluate implements game.Judge.
func (Local) Evaluate(ctx context.Context, req game.JudgeRequest) (game.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return game.Verdict{}, err
	}
	if req.Bonus {
		return bonus(req.Input), nil
	}
	if Match(req.Stage, req.Category, req.Input, req.Expected) {
		return game.Verdict{IsCorrect: true, Feedback: correctFeedback(req)}, nil
	}
	return game.Verdict{
		IsCorrect: false,
		Feedback:  fmt.Sprintf("The answer was '%s'. No worries though - you've got this next one!", req.Expected),
	}, nil
}

func bonus(input string) game.Verdict {
	reply := strings.Join(words(input), " ")
	first := ""
	if w := words(input); len(w) > 0 {
		first = w[0]
	}
	if _, ok := affirmative[reply]; ok {
		return game.Verdict{IsCorrect: true, IsBonusResponse: true, Feedback: "Let's go for it!"}
	}
	if _, ok := negative[reply]; ok {
		return game.Verdict{IsCorrect: false, IsBonusResponse: true}
	}
	// "yes please", "no way"
	if _, ok := affirmative[first]; ok {
		return game.Verdict{IsCorrect: true, IsBonusResponse: true, Feedback: "Let's go for it!"}
	}
	if _, ok := negative[first]; ok {
		return game.Verdict{IsCorrect: false, IsBonusResponse: true}
	}
	return game.Verdict{Feedback: "Just a yes or a no will do!"}
}

// Match reports whether input answers expected at the given stage.
func Match(stage game.Stage, c game.Category, input, expected string) bool {
	if stage == game.StageYear {
		want := digits(expected)
		return want != "" && digits(input) == want
	}
	got, want := canonical(input), canonical(expected)
	if got == "" || want == "" {
		return false
	}
	if got == want {
		return true
	}
	if distance(got, want) <= len([]rune(want))/8 {
		return true
	}
	if stage == game.StageCreator || namesPerson(c) {
		ws := strings.Fields(want)
		last := ws[len(ws)-1]
		if len(ws) > 1 && len([]rune(last)) >= 4 && distance(got, last) <= len([]rune(last))/8 {
			return true
		}
	}
	return false
}

// namesPerson reports whether a category's source is a person.
func namesPerson(c game.Category) bool {
	switch c {
	case game.CategoryFamousPerson, game.CategoryPoet, game.CategoryQuote:
		return true
	}
	return false
}

func correctFeedback(req game.JudgeRequest) string {
	kind := strings.ToLower(req.Category.Info().Name)
	switch req.Stage {
	case game.StageYear:
		return fmt.Sprintf("That's spot on! It was %s.", req.Expected)
	case game.StageCreator:
		return fmt.Sprintf("Brilliant! The %s is indeed '%s'.", req.Category.Info().CreatorRole, req.Expected)
	}
	return fmt.Sprintf("Your answer is correct! The %s is indeed '%s'.", kind, req.Expected)
}
