// Package app assembles collaborators from configuration. Both the HTTP
// server and the terminal client start from here.
package app

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/config"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/host"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/judge"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/phrases"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs its level globally.
func NewLogger(cfg config.Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	zerolog.TimeFieldFormat = time.RFC3339
	if strings.EqualFold(cfg.LogFormat, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// Collaborators returns the phrase source and judge for cfg.AIProvider:
// the embedded catalog plus the local judge for "local", a language-model
// host otherwise.
func Collaborators(cfg config.Config, log zerolog.Logger) (game.PhraseSource, game.Judge, error) {
	if strings.EqualFold(cfg.AIProvider, "local") || cfg.AIProvider == "" {
		cat, err := phrases.Open(cfg.PhrasesFile, cfg.PhraseSalt)
		if err != nil {
			return nil, nil, err
		}
		stats := log.Info()
		for c, n := range cat.Stats() {
			stats = stats.Int(string(c), n)
		}
		stats.Msg("phrase catalog loaded")
		return cat, judge.New(), nil
	}

	p, err := host.NewProvider(cfg.AIProvider, cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OllamaHost)
	if err != nil {
		return nil, nil, err
	}
	h := host.New(p, cfg.Model(), log).WithTimeout(cfg.AITimeout)
	log.Info().Str("provider", cfg.AIProvider).Str("model", cfg.Model()).Msg("language model host enabled")
	return h, h, nil
}
