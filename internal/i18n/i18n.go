// Package i18n renders engine notices and prompts as player-facing text.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
)

var supported = []language.Tag{language.English, language.Spanish}

var matcher = language.NewMatcher(supported)

// Supported returns the languages with a full catalog, default first.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Default is the fallback language.
func Default() language.Tag { return language.English }

// Match picks the best supported language for an Accept-Language header or
// a bare tag like "es". Unknown input falls back to English.
func Match(accept string) language.Tag {
	accept = strings.TrimSpace(accept)
	if accept == "" {
		return Default()
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return Default()
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default()
	}
	return supported[idx]
}

// Render formats n for tag.
func Render(tag language.Tag, n game.Notice) string {
	p := message.NewPrinter(Match(tag.String()))
	return p.Sprintf(n.Key, localizeArgs(p, n.Args)...)
}

// Prompt returns the input prompt text for key.
func Prompt(tag language.Tag, key string) string {
	return message.NewPrinter(Match(tag.String())).Sprintf(key)
}

// CategoryName is the display name of c in tag's language.
func CategoryName(tag language.Tag, c game.Category) string {
	return message.NewPrinter(Match(tag.String())).Sprintf("category." + string(c))
}

// localizeArgs swaps categories and stages for their display names. A
// creator stage is named after the category's role (artist, director...).
func localizeArgs(p *message.Printer, args []any) []any {
	var cat game.Category
	for _, a := range args {
		if c, ok := a.(game.Category); ok {
			cat = c
		}
	}
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case game.Category:
			out[i] = p.Sprintf("category." + string(v))
		case game.Stage:
			if v == game.StageCreator && cat.Info().CreatorRole != "" {
				out[i] = p.Sprintf("role." + cat.Info().CreatorRole)
			} else {
				out[i] = p.Sprintf("stage." + string(v))
			}
		default:
			out[i] = a
		}
	}
	return out
}
