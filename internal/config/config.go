// internal/config/config.go
//
// Process configuration. Values come from the environment, optionally
// seeded from a .env file in development.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
)

var ErrInvalid = errors.New("invalid config")

// Config holds every setting the server and the terminal client read.
type Config struct {
	Port         string `env:"PORT" envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"json"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	JWTSecret       string `env:"JWT_SECRET"`
	JWTExpiresHours int    `env:"JWT_EXPIRES_HOURS" envDefault:"12"`

	AIProvider    string        `env:"AI_PROVIDER" envDefault:"local"`
	AIModel       string        `env:"AI_MODEL"`
	AITimeout     time.Duration `env:"AI_TIMEOUT" envDefault:"30s"`
	OpenAIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL"`
	OllamaHost    string        `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`

	PhrasesFile   string `env:"PHRASES_FILE"`
	PhraseSalt    string `env:"PHRASE_SALT" envDefault:"legendary-lines"`
	PhraseHistory string `env:"PHRASE_HISTORY" envDefault:"played"`

	LedgerDriver string `env:"LEDGER_DRIVER" envDefault:"sqlite"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/app.db"`
	DatabaseURL  string `env:"DATABASE_URL"`
	GameType     string `env:"GAME_TYPE" envDefault:"legendary-lines"`

	SessionStore string `env:"SESSION_STORE" envDefault:"memory"`
	BadgerPath   string `env:"BADGER_PATH" envDefault:"./data/sessions"`

	ExportFile string `env:"EXPORT_FILE"`

	AdminUser         string `env:"ADMIN_USER" envDefault:"admin"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"en"`
}

// Load reads .env (if present) and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown enum values and missing companions
// (an OpenAI provider without a key, a postgres ledger without a URL).
func (c Config) Validate() error {
	switch strings.ToLower(c.AIProvider) {
	case "local", "ollama":
	case "openai":
		if c.OpenAIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required for AI_PROVIDER=openai", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: AI_PROVIDER %q", ErrInvalid, c.AIProvider)
	}
	switch strings.ToLower(c.LedgerDriver) {
	case "sqlite", "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for LEDGER_DRIVER=postgres", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: LEDGER_DRIVER %q", ErrInvalid, c.LedgerDriver)
	}
	switch strings.ToLower(c.SessionStore) {
	case "memory", "badger":
	default:
		return fmt.Errorf("%w: SESSION_STORE %q", ErrInvalid, c.SessionStore)
	}
	if _, ok := game.ParseHistoryPolicy(c.PhraseHistory); !ok {
		return fmt.Errorf("%w: PHRASE_HISTORY %q", ErrInvalid, c.PhraseHistory)
	}
	if _, err := language.Parse(c.DefaultLanguage); err != nil {
		return fmt.Errorf("%w: DEFAULT_LANGUAGE %q", ErrInvalid, c.DefaultLanguage)
	}
	if c.JWTExpiresHours <= 0 {
		return fmt.Errorf("%w: JWT_EXPIRES_HOURS must be positive", ErrInvalid)
	}
	return nil
}

// History returns the parsed phrase history policy.
func (c Config) History() game.HistoryPolicy {
	p, _ := game.ParseHistoryPolicy(c.PhraseHistory)
	return p
}

// Model returns AI_MODEL or the provider's default model.
func (c Config) Model() string {
	if c.AIModel != "" {
		return c.AIModel
	}
	switch strings.ToLower(c.AIProvider) {
	case "openai":
		return "gpt-4o-mini"
	case "ollama":
		return "llama3.1"
	}
	return ""
}

// TokenTTL is how long a game token stays valid.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpiresHours) * time.Hour
}
